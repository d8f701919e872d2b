package book

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOption is a list ordering offered to the user.
type SortOption string

const (
	SortCreatedAsc    SortOption = "created-asc"
	SortCreatedDesc   SortOption = "created-desc"
	SortTitleAsc      SortOption = "title-asc"
	SortTitleDesc     SortOption = "title-desc"
	SortPublishedAsc  SortOption = "published-asc"
	SortPublishedDesc SortOption = "published-desc"
)

// DefaultSortOption orders by date added, oldest first
const DefaultSortOption = SortCreatedAsc

// SortOptions lists every option in display order.
var SortOptions = []SortOption{
	SortCreatedAsc, SortCreatedDesc,
	SortTitleAsc, SortTitleDesc,
	SortPublishedAsc, SortPublishedDesc,
}

// ParseSortOption resolves a user supplied option name. Empty means default.
func ParseSortOption(s string) (SortOption, error) {
	if s == "" {
		return DefaultSortOption, nil
	}
	opt := SortOption(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SortOptions {
		if opt == known {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// Label is the human readable name of the option
func (o SortOption) Label() string {
	switch o {
	case SortCreatedAsc:
		return "Date added (oldest first)"
	case SortCreatedDesc:
		return "Date added (newest first)"
	case SortTitleAsc:
		return "Title (A-Z)"
	case SortTitleDesc:
		return "Title (Z-A)"
	case SortPublishedAsc:
		return "Published (oldest first)"
	case SortPublishedDesc:
		return "Published (newest first)"
	default:
		return string(o)
	}
}

// Sort orders books in place. The sort is stable so records that compare
// equal keep their creation order.
//
// Titles are compared with a locale-aware collator that orders embedded
// numbers numerically and ignores case. Published dates compare as plain
// strings, which is correct for the YYYY, YYYY-MM and YYYY-MM-DD forms.
func Sort(books []*Book, opt SortOption) {
	var less func(a, b *Book) bool

	switch opt {
	case SortCreatedDesc:
		less = func(a, b *Book) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortTitleAsc, SortTitleDesc:
		col := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
		desc := opt == SortTitleDesc
		less = func(a, b *Book) bool {
			c := col.CompareString(a.Title, b.Title)
			if desc {
				return c > 0
			}
			return c < 0
		}
	case SortPublishedAsc:
		less = func(a, b *Book) bool { return a.PublishedDate < b.PublishedDate }
	case SortPublishedDesc:
		less = func(a, b *Book) bool { return a.PublishedDate > b.PublishedDate }
	default:
		less = func(a, b *Book) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	sort.SliceStable(books, func(i, j int) bool { return less(books[i], books[j]) })
}
