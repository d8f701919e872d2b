package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lepinkainen/mylibrary/internal/book"
)

// SQLiteStore implements Store on a local SQLite database
type SQLiteStore struct {
	db     *sqlx.DB
	dbPath string
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// bookRow is the column layout of the books table
type bookRow struct {
	ID            string `db:"id"`
	Title         string `db:"title"`
	Subtitle      string `db:"subtitle"`
	Authors       string `db:"authors"`
	Description   string `db:"description"`
	PageCount     string `db:"page_count"`
	ISBN13        string `db:"isbn13"`
	PublishedDate string `db:"published_date"`
	ImageURL      string `db:"image_url"`
	Memo          string `db:"memo"`
	CreatedAt     int64  `db:"created_at"`
}

func toRow(b *book.Book) bookRow {
	return bookRow{
		ID:            b.ID,
		Title:         b.Title,
		Subtitle:      b.Subtitle,
		Authors:       b.Authors,
		Description:   b.Description,
		PageCount:     b.PageCount,
		ISBN13:        b.ISBN13,
		PublishedDate: b.PublishedDate,
		ImageURL:      b.ImageURLString(),
		Memo:          b.Memo,
		CreatedAt:     b.CreatedAt.UnixNano(),
	}
}

func (r bookRow) toBook() *book.Book {
	return &book.Book{
		ID:            r.ID,
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		Authors:       r.Authors,
		Description:   r.Description,
		PageCount:     r.PageCount,
		ISBN13:        r.ISBN13,
		PublishedDate: r.PublishedDate,
		ImageURL:      book.NormalizeImageURL(r.ImageURL),
		Memo:          r.Memo,
		CreatedAt:     time.Unix(0, r.CreatedAt).UTC(),
	}
}

// NewSQLiteStore creates a new SQLiteStore instance. Call Connect before use.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Open creates a store for dbPath and connects to it
func Open(dbPath string) (*SQLiteStore, error) {
	s := NewSQLiteStore(dbPath)
	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// Connect opens the database and creates the books table if needed
func (s *SQLiteStore) Connect() error {
	db, err := sqlx.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; SQLite would otherwise return SQLITE_BUSY under
	// parallel registrations.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(booksSchema); err != nil {
		closeErr := db.Close()
		return errors.Join(fmt.Errorf("failed to create books table: %w", err), closeErr)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FindByIDs returns the records whose id is in ids, oldest first
func (s *SQLiteStore) FindByIDs(ctx context.Context, ids []string) []*book.Book {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM books WHERE id IN (?) ORDER BY created_at, id`, bookColumns), ids)
	if err != nil {
		slog.Error("Failed to build id query", "ids", ids, "error", err)
		return nil
	}

	books, err := s.query(ctx, s.db.Rebind(query), args...)
	if err != nil {
		slog.Error("Failed to find books by id", "ids", ids, "error", err)
		return nil
	}
	return books
}

// FindByISBN returns the records carrying isbn13
func (s *SQLiteStore) FindByISBN(ctx context.Context, isbn13 string) []*book.Book {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE isbn13 = ? ORDER BY created_at, id`, bookColumns)
	books, err := s.query(ctx, query, isbn13)
	if err != nil {
		slog.Error("Failed to find books by ISBN", "isbn", isbn13, "error", err)
		return nil
	}
	return books
}

// All returns every record, oldest first
func (s *SQLiteStore) All(ctx context.Context) []*book.Book {
	books, err := s.query(ctx, fmt.Sprintf(`SELECT %s FROM books ORDER BY created_at, id`, bookColumns))
	if err != nil {
		slog.Error("Failed to list books", "error", err)
		return nil
	}
	return books
}

// Add inserts a new record
func (s *SQLiteStore) Add(ctx context.Context, b *book.Book) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (:id, :title, :subtitle, :authors, :description, :page_count,
			:isbn13, :published_date, :image_url, :memo, :created_at)
	`, toRow(b))
	if err != nil {
		return fmt.Errorf("failed to insert book %s: %w", b.ID, err)
	}
	slog.Info("Book added", "id", b.ID, "isbn", b.ISBN13)
	return nil
}

// Delete removes the records whose id is in ids
func (s *SQLiteStore) Delete(ctx context.Context, ids []string) int {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0
	}

	query, args, err := sqlx.In(`DELETE FROM books WHERE id IN (?)`, ids)
	if err != nil {
		slog.Error("Failed to build delete query", "ids", ids, "error", err)
		return 0
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		slog.Error("Failed to delete books", "ids", ids, "error", err)
		return 0
	}

	removed, err := result.RowsAffected()
	if err != nil {
		slog.Warn("Could not count deleted books", "error", err)
		return 0
	}
	slog.Info("Books deleted", "requested", len(ids), "deleted", removed)
	return int(removed)
}

// Save writes the editable fields of each book back in one transaction.
// id and created_at are never rewritten.
func (s *SQLiteStore) Save(ctx context.Context, books ...*book.Book) bool {
	if len(books) == 0 {
		return true
	}

	if err := s.save(ctx, books); err != nil {
		slog.Error("Failed to save books", "count", len(books), "error", err)
		return false
	}
	for _, b := range books {
		slog.Info("Book updated", "id", b.ID)
	}
	return true
}

func (s *SQLiteStore) save(ctx context.Context, books []*book.Book) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback if we don't commit - ignore errors as they're expected if transaction was committed
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareNamedContext(ctx, `
		UPDATE books SET
			title = :title, subtitle = :subtitle, authors = :authors,
			description = :description, page_count = :page_count, isbn13 = :isbn13,
			published_date = :published_date, image_url = :image_url, memo = :memo
		WHERE id = :id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range books {
		if _, err := stmt.ExecContext(ctx, toRow(b)); err != nil {
			return fmt.Errorf("failed to update book %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]*book.Book, error) {
	var rows []bookRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	books := make([]*book.Book, len(rows))
	for i, r := range rows {
		books[i] = r.toBook()
	}
	return books, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
