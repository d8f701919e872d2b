// Package library persists book records and exposes the small set of
// queries and mutations the rest of the application needs.
package library

import (
	"context"

	"github.com/lepinkainen/mylibrary/internal/book"
)

// Store is the persistent book collection.
//
// Read failures are logged and reported as "no records"; commit failures are
// logged and swallowed. Neither is surfaced to the user as an error because
// there is nothing the user could do about it beyond retrying.
type Store interface {
	// FindByIDs returns the stored records whose id is in ids, oldest first.
	FindByIDs(ctx context.Context, ids []string) []*book.Book

	// FindByISBN returns the records carrying isbn13.
	FindByISBN(ctx context.Context, isbn13 string) []*book.Book

	// All returns every record, oldest first.
	All(ctx context.Context) []*book.Book

	// Add inserts a new record. Callers run validate.CheckRegisterable first.
	Add(ctx context.Context, b *book.Book) error

	// Delete removes the records whose id is in ids and returns how many
	// were removed. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) int

	// Save commits field edits of existing records and reports whether the
	// commit went through.
	Save(ctx context.Context, books ...*book.Book) bool

	// Close releases the underlying database
	Close() error
}
