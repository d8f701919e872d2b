// Package book holds the canonical library record and the rules for
// constructing it from user input or catalog data.
package book

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthorSeparator joins author names in the stored display string
const AuthorSeparator = ", "

// now is overridden in tests
var now = func() time.Time { return time.Now().UTC() }

// newID generates surrogate ids for records without a catalog id
var newID = func() string { return uuid.NewString() }

// Book is a single entry in the library.
type Book struct {
	ID            string
	Title         string
	Subtitle      string
	Authors       string
	Description   string
	PageCount     string
	ISBN13        string
	PublishedDate string
	ImageURL      *url.URL
	Memo          string
	CreatedAt     time.Time
}

// Params carries the raw values a Book is built from.
type Params struct {
	ID            string // catalog id; a UUID is generated when empty
	Title         string
	Subtitle      string
	Authors       []string
	Description   string
	PublishedDate string
	ImageURL      string
	PageCount     int
	ISBN13        string
	Memo          string
}

// New builds a Book from p. CreatedAt is stamped here and never changes.
func New(p Params) *Book {
	id := p.ID
	if id == "" {
		id = newID()
	}

	return &Book{
		ID:            id,
		Title:         p.Title,
		Subtitle:      p.Subtitle,
		Authors:       strings.Join(p.Authors, AuthorSeparator),
		Description:   p.Description,
		PageCount:     strconv.Itoa(p.PageCount),
		ISBN13:        p.ISBN13,
		PublishedDate: p.PublishedDate,
		ImageURL:      NormalizeImageURL(p.ImageURL),
		Memo:          p.Memo,
		CreatedAt:     now(),
	}
}

// NewEmpty builds a shell record carrying only the ISBN. It is used when the
// catalog lookup fails or is skipped.
func NewEmpty(isbn13 string) *Book {
	return New(Params{ISBN13: isbn13})
}

// NormalizeImageURL parses a cover URL and forces secure transport.
// Plain http is rewritten to https; anything that does not parse into an
// absolute http(s) URL yields nil.
func NormalizeImageURL(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}

	switch u.Scheme {
	case "https":
	case "http":
		u.Scheme = "https"
	default:
		return nil
	}
	return u
}

// ImageURLString returns the cover URL or an empty string
func (b *Book) ImageURLString() string {
	if b.ImageURL == nil {
		return ""
	}
	return b.ImageURL.String()
}

// AuthorList splits the stored author display string back into names.
func (b *Book) AuthorList() []string {
	return SplitAuthors(b.Authors)
}

// SplitAuthors splits a comma-delimited author string, trimming whitespace
// around each name and dropping empty entries.
func SplitAuthors(display string) []string {
	parts := strings.Split(display, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// CleanISBNInput strips the spaces and hyphens people type or scanners
// emit around ISBN digits.
func CleanISBNInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// Editable field names accepted by Apply
const (
	FieldTitle         = "title"
	FieldSubtitle      = "subtitle"
	FieldAuthors       = "authors"
	FieldDescription   = "description"
	FieldPageCount     = "pagecount"
	FieldISBN13        = "isbn13"
	FieldPublishedDate = "publisheddate"
	FieldImageURL      = "imageurl"
	FieldMemo          = "memo"
)

// EditableFields lists every field Apply understands.
var EditableFields = []string{
	FieldTitle, FieldSubtitle, FieldAuthors, FieldDescription, FieldPageCount,
	FieldISBN13, FieldPublishedDate, FieldImageURL, FieldMemo,
}

// Apply sets a single editable field. ID and CreatedAt are never editable.
// Values are taken as given; validation is the caller's job.
func (b *Book) Apply(field, value string) error {
	switch strings.ToLower(field) {
	case FieldTitle:
		b.Title = value
	case FieldSubtitle:
		b.Subtitle = value
	case FieldAuthors:
		b.Authors = strings.Join(SplitAuthors(value), AuthorSeparator)
	case FieldDescription:
		b.Description = value
	case FieldPageCount:
		b.PageCount = strings.TrimSpace(value)
	case FieldISBN13:
		b.ISBN13 = CleanISBNInput(value)
	case FieldPublishedDate:
		b.PublishedDate = strings.TrimSpace(value)
	case FieldImageURL:
		b.ImageURL = NormalizeImageURL(value)
	case FieldMemo:
		b.Memo = value
	default:
		return fmt.Errorf("unknown field %q (editable: %s)", field, strings.Join(EditableFields, ", "))
	}
	return nil
}

// Clone returns a deep copy of b
func (b *Book) Clone() *Book {
	c := *b
	if b.ImageURL != nil {
		u := *b.ImageURL
		c.ImageURL = &u
	}
	return &c
}
