// Package validate holds the input rules a record must pass before it is
// registered or saved.
package validate

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/lepinkainen/mylibrary/internal/book"
)

// ISBNPrefix is the only EAN-13 prefix accepted for registration
const ISBNPrefix = "978"

var (
	isbn13Pattern = regexp.MustCompile(`^[0-9]{13}$`)

	// Accepted publication date granularities, most specific first
	datePatterns = []struct {
		re     *regexp.Regexp
		layout string
	}{
		{regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`), "2006-01-02"},
		{regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`), "2006-01"},
		{regexp.MustCompile(`^[0-9]{4}$`), "2006"},
	}
)

// IsValidISBN13 reports whether s is exactly 13 ASCII digits starting with 978.
func IsValidISBN13(s string) bool {
	return isbn13Pattern.MatchString(s) && strings.HasPrefix(s, ISBNPrefix)
}

// IsValidPublishedDate reports whether s is empty or a real calendar date in
// one of the YYYY-MM-DD, YYYY-MM or YYYY forms. Parsing is strict and always
// in UTC.
func IsValidPublishedDate(s string) bool {
	if s == "" {
		return true
	}
	for _, p := range datePatterns {
		if !p.re.MatchString(s) {
			continue
		}
		_, err := time.ParseInLocation(p.layout, s, time.UTC)
		return err == nil
	}
	return false
}

// ProblemKind classifies why an ISBN cannot be registered
type ProblemKind int

const (
	// FormatInvalid means the input is not a 978-prefixed ISBN-13
	FormatInvalid ProblemKind = iota + 1
	// Duplicate means a record with the same ISBN already exists
	Duplicate
)

func (k ProblemKind) String() string {
	switch k {
	case FormatInvalid:
		return "format-invalid"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// User facing registration messages
const (
	MessageFormatInvalid = "The input is not an ISBN code. Enter a 13-digit number starting with 978."
	MessageDuplicate     = "A book with this ISBN is already registered."
)

// Problem is a user facing reason an input was rejected. It is shown next to
// the input field and is not an error value.
type Problem struct {
	Kind    ProblemKind
	Message string
}

// ISBNFinder is the slice of the library store needed for duplicate checks
type ISBNFinder interface {
	FindByISBN(ctx context.Context, isbn13 string) []*book.Book
}

// CheckRegisterable returns nil when isbn13 can be registered. The format
// check runs first; the store is only queried for well-formed ISBNs.
func CheckRegisterable(ctx context.Context, isbn13 string, finder ISBNFinder) *Problem {
	if !IsValidISBN13(isbn13) {
		return &Problem{Kind: FormatInvalid, Message: MessageFormatInvalid}
	}
	if len(finder.FindByISBN(ctx, isbn13)) > 0 {
		return &Problem{Kind: Duplicate, Message: MessageDuplicate}
	}
	return nil
}
