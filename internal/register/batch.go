package register

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/mylibrary/internal/book"
	"github.com/lepinkainen/mylibrary/internal/csvutil"
)

// DefaultConcurrency bounds parallel lookups during batch registration
const DefaultConcurrency = 4

// RegisterBatch registers every distinct ISBN in isbns. Registrations for
// different ISBNs run in parallel; outcomes come back in first-seen order.
// The first fatal error cancels the remaining registrations.
func (r *Registrar) RegisterBatch(ctx context.Context, isbns []string, concurrency int, opts Options) ([]Outcome, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	unique := dedupe(isbns)
	outcomes := make([]Outcome, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, isbn := range unique {
		i, isbn := i, isbn
		g.Go(func() error {
			out, err := r.Register(gctx, isbn, opts)
			outcomes[i] = out
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	slog.Info("Batch registration finished", "requested", len(isbns), "distinct", len(unique))
	return outcomes, nil
}

// Summary counts outcomes per final state
func Summary(outcomes []Outcome) map[State]int {
	counts := make(map[State]int)
	for _, o := range outcomes {
		counts[o.State]++
	}
	return counts
}

func dedupe(isbns []string) []string {
	seen := make(map[string]bool, len(isbns))
	out := make([]string, 0, len(isbns))
	for _, isbn := range isbns {
		if seen[isbn] {
			continue
		}
		seen[isbn] = true
		out = append(out, isbn)
	}
	return out
}

// LoadISBNs reads ISBNs from a CSV file with a header row. The column named
// "isbn13" or "isbn" (case-insensitive) is used, falling back to the first
// column. Hyphens and spaces are stripped; blank cells are skipped.
func LoadISBNs(path string) ([]string, error) {
	column := 0
	opts := csvutil.ProcessorOptions{
		FieldsPerRecord: -1,
		SkipInvalid:     true,
		OnHeader: func(header []string) error {
			column = isbnColumn(header)
			return nil
		},
	}

	isbns, err := csvutil.ProcessCSV(path, func(record []string) (string, error) {
		if column >= len(record) {
			return "", fmt.Errorf("missing column %d", column)
		}
		isbn := book.CleanISBNInput(record[column])
		if isbn == "" {
			return "", fmt.Errorf("empty ISBN")
		}
		return isbn, nil
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load ISBNs from %s: %w", path, err)
	}
	return isbns, nil
}

func isbnColumn(header []string) int {
	for _, want := range []string{"isbn13", "isbn"} {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return i
			}
		}
	}
	return 0
}
