// Package export renders library records as a CSV document.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lepinkainen/mylibrary/internal/book"
)

// FileName is the name of the exported document
const FileName = "MyLibrary.csv"

// Header is the first line of every export
const Header = "ID,Title,Subtitle,Authors,Description,PublishedDate,PageCount,ISBN13"

// Finder resolves record ids
type Finder interface {
	FindByIDs(ctx context.Context, ids []string) []*book.Book
}

// Document is a rendered export ready to be written or shared.
type Document struct {
	Name    string
	Content string
}

// Exporter builds CSV documents from stored records.
type Exporter struct {
	finder Finder
}

// New creates an Exporter reading from finder
func New(finder Finder) *Exporter {
	return &Exporter{finder: finder}
}

// ExportToCSV renders the records with the given ids. It returns nil when
// the ids resolve to no records.
func (e *Exporter) ExportToCSV(ctx context.Context, ids []string) *Document {
	books := e.finder.FindByIDs(ctx, ids)
	if len(books) == 0 {
		slog.Debug("Nothing to export", "requested", len(ids))
		return nil
	}

	return &Document{Name: FileName, Content: Render(books)}
}

// Render produces the CSV text for books.
//
// Text fields are always quoted and PageCount and ISBN13 are written bare,
// so the output cannot be produced with encoding/csv.
func Render(books []*book.Book) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")

	for _, b := range books {
		fields := []string{
			quote(b.ID),
			quote(b.Title),
			quote(b.Subtitle),
			quote(strings.Join(book.SplitAuthors(b.Authors), ";")),
			quote(b.Description),
			quote(b.PublishedDate),
			b.PageCount,
			b.ISBN13,
		}
		sb.WriteString(strings.Join(fields, ","))
		sb.WriteString("\n")
	}
	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteTo writes the document into dir, creating it if needed, and returns
// the file path. An empty dir means the OS temp directory.
func (d *Document) WriteTo(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, d.Name)
	if err := os.WriteFile(path, []byte(d.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	slog.Info("Exported library", "path", path)
	return path, nil
}
