package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/mylibrary/internal/book"
)

func TestFormValidatorAcceptsValidForm(t *testing.T) {
	fv := NewFormValidator()

	form := EditForm{
		Title:         "Kokoro",
		PageCount:     "256",
		ISBN13:        "9784101010014",
		PublishedDate: "1952-02",
		ImageURL:      "https://example.com/c.jpg",
	}

	assert.NoError(t, fv.Validate(form))
}

func TestFormValidatorAllowsEmptyOptionalFields(t *testing.T) {
	fv := NewFormValidator()

	assert.NoError(t, fv.Validate(EditForm{ISBN13: "9784101010014"}))
}

func TestFormValidatorReportsEveryField(t *testing.T) {
	fv := NewFormValidator()

	form := EditForm{
		PageCount:     "12a",
		ISBN13:        "9791234567890",
		PublishedDate: "2020-02-30",
		ImageURL:      "not a url",
	}

	err := fv.Validate(form)
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Len(t, fieldErrs, 4)
	assert.Contains(t, fieldErrs, "pagecount")
	assert.Contains(t, fieldErrs, "isbn13")
	assert.Contains(t, fieldErrs, "publisheddate")
	assert.Contains(t, fieldErrs, "imageurl")
	assert.Contains(t, err.Error(), "isbn13 must be a 13-digit number starting with 978")
}

func TestFormFromBook(t *testing.T) {
	b := book.New(book.Params{
		Title:    "Kokoro",
		Authors:  []string{"Natsume Soseki"},
		ISBN13:   "9784101010014",
		ImageURL: "http://example.com/c.jpg",
	})

	form := FormFromBook(b)

	assert.Equal(t, "Kokoro", form.Title)
	assert.Equal(t, "Natsume Soseki", form.Authors)
	assert.Equal(t, "0", form.PageCount)
	assert.Equal(t, "https://example.com/c.jpg", form.ImageURL)
}
