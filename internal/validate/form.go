package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lepinkainen/mylibrary/internal/book"
)

// EditForm is the editable state of a record as submitted by the user.
type EditForm struct {
	Title         string `form:"title"`
	Subtitle      string `form:"subtitle"`
	Authors       string `form:"authors"`
	Description   string `form:"description"`
	PageCount     string `form:"pagecount" validate:"omitempty,number"`
	ISBN13        string `form:"isbn13" validate:"isbn13"`
	PublishedDate string `form:"publisheddate" validate:"pubdate"`
	ImageURL      string `form:"imageurl" validate:"omitempty,url"`
	Memo          string `form:"memo"`
}

// FormFromBook captures the current values of b
func FormFromBook(b *book.Book) EditForm {
	return EditForm{
		Title:         b.Title,
		Subtitle:      b.Subtitle,
		Authors:       b.Authors,
		Description:   b.Description,
		PageCount:     b.PageCount,
		ISBN13:        b.ISBN13,
		PublishedDate: b.PublishedDate,
		ImageURL:      b.ImageURLString(),
		Memo:          b.Memo,
	}
}

// FieldErrors maps a form field name to a user facing message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s %s", f, fe[f])
	}
	return strings.Join(parts, "; ")
}

// FormValidator validates edit forms
type FormValidator struct {
	v *validator.Validate
}

// NewFormValidator creates a validator with the isbn13 and pubdate rules registered.
func NewFormValidator() *FormValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})

	// Registration of static funcs only fails on empty tags
	_ = v.RegisterValidation("isbn13", func(fl validator.FieldLevel) bool {
		return IsValidISBN13(fl.Field().String())
	})
	_ = v.RegisterValidation("pubdate", func(fl validator.FieldLevel) bool {
		return IsValidPublishedDate(fl.Field().String())
	})

	return &FormValidator{v: v}
}

// Validate returns nil or FieldErrors describing every invalid field.
func (fv *FormValidator) Validate(form EditForm) error {
	err := fv.v.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(FieldErrors, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return fieldErrors
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "isbn13":
		return "must be a 13-digit number starting with 978"
	case "pubdate":
		return "must be empty or a date in YYYY-MM-DD, YYYY-MM or YYYY form"
	case "number":
		return "must be a whole number"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
