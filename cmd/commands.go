package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/mylibrary/internal/book"
	"github.com/lepinkainen/mylibrary/internal/config"
	liberrors "github.com/lepinkainen/mylibrary/internal/errors"
	"github.com/lepinkainen/mylibrary/internal/export"
	"github.com/lepinkainen/mylibrary/internal/library"
	"github.com/lepinkainen/mylibrary/internal/register"
	"github.com/lepinkainen/mylibrary/internal/validate"
)

// AddCmd represents the add command
type AddCmd struct {
	ISBN       string `arg:"" help:"ISBN-13 to register (hyphens and spaces are ignored)"`
	SkipLookup bool   `help:"Store an empty record without querying Google Books"`
}

func (a *AddCmd) Run(ctx context.Context) error {
	isbn := book.CleanISBNInput(a.ISBN)

	return withStore(func(store library.Store) error {
		var lookup register.Lookuper
		if !a.SkipLookup {
			lookup = newLookup()
		}

		out, err := register.New(store, lookup).Register(ctx, isbn, register.Options{SkipLookup: a.SkipLookup})
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	})
}

// ImportCmd represents the import command
type ImportCmd struct {
	Input       string `short:"f" help:"Path to a CSV file with an isbn13 or isbn column" required:""`
	SkipLookup  bool   `help:"Store empty records without querying Google Books"`
	Concurrency int    `short:"c" help:"Number of parallel lookups" default:"4"`
}

func (i *ImportCmd) Run(ctx context.Context) error {
	isbns, err := register.LoadISBNs(i.Input)
	if err != nil {
		return err
	}
	if len(isbns) == 0 {
		_, _ = fmt.Fprintln(stdout, "No ISBNs found.")
		return nil
	}

	return withStore(func(store library.Store) error {
		var lookup register.Lookuper
		if !i.SkipLookup {
			lookup = newLookup()
		}

		outcomes, err := register.New(store, lookup).RegisterBatch(ctx, isbns, i.Concurrency, register.Options{SkipLookup: i.SkipLookup})
		for _, out := range outcomes {
			printOutcome(out)
		}
		if err != nil {
			return err
		}

		counts := register.Summary(outcomes)
		_, _ = fmt.Fprintf(stdout, "\n%d registered, %d without catalog data, %d rejected\n",
			counts[register.PersistedFull],
			counts[register.PersistedEmptyShell],
			counts[register.FormatInvalid]+counts[register.Duplicate])
		return nil
	})
}

func printOutcome(out register.Outcome) {
	switch out.State {
	case register.FormatInvalid, register.Duplicate:
		_, _ = fmt.Fprintf(stdout, "%s: %s\n", out.ISBN, out.Problem.Message)
	case register.PersistedFull:
		_, _ = fmt.Fprintf(stdout, "%s: registered %q (%s)\n", out.ISBN, out.Book.Title, out.Book.ID)
	case register.PersistedEmptyShell:
		reason := "lookup skipped"
		if out.LookupErr != nil {
			reason = lookupReason(out.LookupErr)
		}
		_, _ = fmt.Fprintf(stdout, "%s: registered without catalog data, %s (%s)\n", out.ISBN, reason, out.Book.ID)
	}
}

func lookupReason(err error) string {
	switch {
	case liberrors.IsNotFoundError(err):
		return "not found in Google Books"
	case liberrors.IsMismatchError(err):
		return "Google Books returned a different edition"
	default:
		return "Google Books could not be reached"
	}
}

// ListCmd represents the list command
type ListCmd struct {
	Sort string `help:"Sort order: created-asc, created-desc, title-asc, title-desc, published-asc, published-desc" default:"created-asc"`
}

func (l *ListCmd) Run(ctx context.Context) error {
	opt, err := book.ParseSortOption(l.Sort)
	if err != nil {
		return err
	}

	return withStore(func(store library.Store) error {
		books := store.All(ctx)
		if len(books) == 0 {
			_, _ = fmt.Fprintln(stdout, "The library is empty.")
			return nil
		}

		book.Sort(books, opt)

		w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tISBN13\tPUBLISHED\tTITLE")
		for _, b := range books {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.ISBN13, b.PublishedDate, displayTitle(b))
		}
		_, _ = fmt.Fprintf(w, "\n%d books, %s\n", len(books), opt.Label())
		return w.Flush()
	})
}

func displayTitle(b *book.Book) string {
	if b.Title == "" {
		return "(untitled)"
	}
	return b.Title
}

// ShowCmd represents the show command
type ShowCmd struct {
	ID string `arg:"" help:"Book id"`
}

// bookView is the YAML rendering of a record
type bookView struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Subtitle      string   `yaml:"subtitle,omitempty"`
	Authors       []string `yaml:"authors,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	PageCount     string   `yaml:"pagecount"`
	ISBN13        string   `yaml:"isbn13"`
	PublishedDate string   `yaml:"publisheddate,omitempty"`
	ImageURL      string   `yaml:"imageurl,omitempty"`
	Memo          string   `yaml:"memo,omitempty"`
	Created       string   `yaml:"created"`
}

func (s *ShowCmd) Run(ctx context.Context) error {
	return withStore(func(store library.Store) error {
		b, err := findOne(ctx, store, s.ID)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(bookView{
			ID:            b.ID,
			Title:         b.Title,
			Subtitle:      b.Subtitle,
			Authors:       b.AuthorList(),
			Description:   b.Description,
			PageCount:     b.PageCount,
			ISBN13:        b.ISBN13,
			PublishedDate: b.PublishedDate,
			ImageURL:      b.ImageURLString(),
			Memo:          b.Memo,
			Created:       b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
		if err != nil {
			return fmt.Errorf("failed to render book: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	})
}

func findOne(ctx context.Context, store library.Store, id string) (*book.Book, error) {
	found := store.FindByIDs(ctx, []string{id})
	if len(found) == 0 {
		return nil, fmt.Errorf("no book with id %s", id)
	}
	return found[0], nil
}

// EditCmd represents the edit command
type EditCmd struct {
	ID  string            `arg:"" help:"Book id"`
	Set map[string]string `help:"Field to change as field=value (title, subtitle, authors, description, pagecount, isbn13, publisheddate, imageurl, memo)" required:""`
}

func (e *EditCmd) Run(ctx context.Context) error {
	return withStore(func(store library.Store) error {
		b, err := findOne(ctx, store, e.ID)
		if err != nil {
			return err
		}

		edited := b.Clone()
		fields := make([]string, 0, len(e.Set))
		for field := range e.Set {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			if err := edited.Apply(field, e.Set[field]); err != nil {
				return err
			}
		}

		form := validate.FormFromBook(edited)
		for field, value := range e.Set {
			// Apply drops unusable URLs; validate what was typed
			if strings.EqualFold(field, book.FieldImageURL) {
				form.ImageURL = strings.TrimSpace(value)
			}
		}

		if err := validate.NewFormValidator().Validate(form); err != nil {
			if fieldErrs, ok := err.(validate.FieldErrors); ok {
				for _, f := range sortedKeys(fieldErrs) {
					_, _ = fmt.Fprintf(stdout, "%s: %s\n", f, fieldErrs[f])
				}
				_, _ = fmt.Fprintln(stdout, "Nothing was saved.")
				return nil
			}
			return err
		}

		if edited.ISBN13 != b.ISBN13 && hasOtherWithISBN(ctx, store, edited) {
			_, _ = fmt.Fprintf(stdout, "isbn13: %s\nNothing was saved.\n", validate.MessageDuplicate)
			return nil
		}

		if !store.Save(ctx, edited) {
			_, _ = fmt.Fprintln(stdout, "Saving failed; the edit was not stored. Try again.")
			return nil
		}
		_, _ = fmt.Fprintf(stdout, "Saved %s\n", edited.ID)
		return nil
	})
}

func hasOtherWithISBN(ctx context.Context, store library.Store, b *book.Book) bool {
	for _, other := range store.FindByISBN(ctx, b.ISBN13) {
		if other.ID != b.ID {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeleteCmd represents the delete command
type DeleteCmd struct {
	IDs []string `arg:"" optional:"" help:"Book ids; pick interactively when omitted"`
	All bool     `help:"Delete every book"`
	Yes bool     `short:"y" help:"Do not ask for confirmation"`
}

func (d *DeleteCmd) Run(ctx context.Context) error {
	return withStore(func(store library.Store) error {
		ids, err := resolveIDs(ctx, store, d.IDs, d.All, "Select books to delete")
		if err != nil {
			return ignoreStop(err)
		}
		if len(ids) == 0 {
			_, _ = fmt.Fprintln(stdout, "Nothing selected.")
			return nil
		}

		if !d.Yes {
			ok, err := confirm(fmt.Sprintf("Delete %d book(s)? This cannot be undone.", len(ids)))
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(stdout, "Nothing deleted.")
				return nil
			}
		}

		removed := store.Delete(ctx, ids)
		_, _ = fmt.Fprintf(stdout, "Deleted %d book(s)\n", removed)
		return nil
	})
}

// ExportCmd represents the export command
type ExportCmd struct {
	IDs    []string `arg:"" optional:"" help:"Book ids; pick interactively when omitted"`
	All    bool     `help:"Export every book"`
	Output string   `short:"o" help:"Directory for MyLibrary.csv (defaults to export.dir or the temp directory)"`
}

func (x *ExportCmd) Run(ctx context.Context) error {
	return withStore(func(store library.Store) error {
		ids, err := resolveIDs(ctx, store, x.IDs, x.All, "Select books to export")
		if err != nil {
			return ignoreStop(err)
		}

		doc := export.New(store).ExportToCSV(ctx, ids)
		if doc == nil {
			_, _ = fmt.Fprintln(stdout, "Nothing to export.")
			return nil
		}

		dir := x.Output
		if dir == "" {
			dir = config.ExportDir
		}
		path, err := doc.WriteTo(dir)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, path)
		return nil
	})
}

// resolveIDs returns explicit ids, every id, or the interactive selection
func resolveIDs(ctx context.Context, store library.Store, ids []string, all bool, heading string) ([]string, error) {
	if len(ids) > 0 {
		return ids, nil
	}

	books := store.All(ctx)
	if all {
		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.ID
		}
		return out, nil
	}
	return selectBooks(heading, books)
}

func ignoreStop(err error) error {
	if liberrors.IsStopProcessingError(err) {
		slog.Info("Cancelled")
		return nil
	}
	return err
}

// CoverCmd represents the cover command
type CoverCmd struct {
	ID       string `arg:"" help:"Book id"`
	Dir      string `help:"Directory for cover images (defaults to covers.dir)"`
	MaxWidth int    `help:"Scale covers down to this width (defaults to covers.maxwidth)"`
}

func (c *CoverCmd) Run(ctx context.Context) error {
	dir := c.Dir
	if dir == "" {
		dir = config.CoversDir
	}
	width := c.MaxWidth
	if width <= 0 {
		width = config.CoversMaxWidth
	}

	return withStore(func(store library.Store) error {
		b, err := findOne(ctx, store, c.ID)
		if err != nil {
			return err
		}

		path, err := downloadCover(ctx, b, dir, width)
		if err != nil {
			return err
		}
		if path == "" {
			_, _ = fmt.Fprintln(stdout, "This book has no cover image.")
			return nil
		}
		_, _ = fmt.Fprintln(stdout, path)
		return nil
	})
}
