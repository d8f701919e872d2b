package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooks() []*Book {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*Book{
		{ID: "a", Title: "book 10", PublishedDate: "2001-05", CreatedAt: base},
		{ID: "b", Title: "Book 2", PublishedDate: "1999", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Title: "apple", PublishedDate: "2001-05-20", CreatedAt: base.Add(2 * time.Hour)},
	}
}

func ids(books []*Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestSort(t *testing.T) {
	tests := []struct {
		opt  SortOption
		want []string
	}{
		{opt: SortCreatedAsc, want: []string{"a", "b", "c"}},
		{opt: SortCreatedDesc, want: []string{"c", "b", "a"}},
		{opt: SortTitleAsc, want: []string{"c", "b", "a"}},
		{opt: SortTitleDesc, want: []string{"a", "b", "c"}},
		{opt: SortPublishedAsc, want: []string{"b", "a", "c"}},
		{opt: SortPublishedDesc, want: []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.opt), func(t *testing.T) {
			books := sampleBooks()
			Sort(books, tt.opt)
			assert.Equal(t, tt.want, ids(books))
		})
	}
}

func TestParseSortOption(t *testing.T) {
	opt, err := ParseSortOption("")
	require.NoError(t, err)
	assert.Equal(t, SortCreatedAsc, opt)

	opt, err = ParseSortOption(" Title-Desc ")
	require.NoError(t, err)
	assert.Equal(t, SortTitleDesc, opt)

	_, err = ParseSortOption("rating")
	require.Error(t, err)
}

func TestSortOptionLabels(t *testing.T) {
	for _, opt := range SortOptions {
		assert.NotEqual(t, string(opt), opt.Label(), "missing label for %s", opt)
	}
}
