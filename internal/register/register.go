// Package register drives a single ISBN from user input to a stored record.
//
// The flow is Idle → Validating → (FormatInvalid | Duplicate | LookingUp) →
// (Found → PersistedFull | NotFound → PersistedEmptyShell). Nothing is
// persisted without passing format validation, and the duplicate check runs
// before the catalog is contacted.
package register

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/mylibrary/internal/book"
	liberrors "github.com/lepinkainen/mylibrary/internal/errors"
	"github.com/lepinkainen/mylibrary/internal/library"
	"github.com/lepinkainen/mylibrary/internal/validate"
)

// State is a step of the registration flow
type State int

const (
	Idle State = iota
	Validating
	FormatInvalid
	Duplicate
	LookingUp
	Found
	NotFound
	PersistedFull
	PersistedEmptyShell
)

var stateNames = map[State]string{
	Idle:                "idle",
	Validating:          "validating",
	FormatInvalid:       "format-invalid",
	Duplicate:           "duplicate",
	LookingUp:           "looking-up",
	Found:               "found",
	NotFound:            "not-found",
	PersistedFull:       "persisted-full",
	PersistedEmptyShell: "persisted-empty-shell",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Persisted reports whether a record was stored
func (s State) Persisted() bool {
	return s == PersistedFull || s == PersistedEmptyShell
}

// Lookuper fetches catalog data for a valid ISBN-13.
type Lookuper interface {
	Lookup(ctx context.Context, isbn13 string) (*book.Book, error)
}

// Options tweaks a single registration
type Options struct {
	// SkipLookup stores an empty shell without contacting the catalog.
	SkipLookup bool
}

// Outcome describes where a registration ended.
type Outcome struct {
	ISBN  string
	State State
	Book  *book.Book

	// Problem is set for FormatInvalid and Duplicate.
	Problem *validate.Problem

	// LookupErr holds the recoverable lookup failure behind an empty shell.
	LookupErr error
}

// Registrar validates, looks up and stores books.
type Registrar struct {
	store  library.Store
	lookup Lookuper
}

// New creates a Registrar. lookup may be nil, in which case every
// registration produces an empty shell.
func New(store library.Store, lookup Lookuper) *Registrar {
	return &Registrar{store: store, lookup: lookup}
}

// Register runs the registration flow for isbn13.
//
// Validation problems are reported through Outcome.Problem, not as errors.
// An error is returned only when the lookup is misconfigured, the context is
// done, or the insert fails; nothing is stored in those cases.
func (r *Registrar) Register(ctx context.Context, isbn13 string, opts Options) (Outcome, error) {
	out := Outcome{ISBN: isbn13, State: Validating}

	if problem := validate.CheckRegisterable(ctx, isbn13, r.store); problem != nil {
		out.Problem = problem
		switch problem.Kind {
		case validate.FormatInvalid:
			out.State = FormatInvalid
		case validate.Duplicate:
			out.State = Duplicate
		}
		slog.Debug("Registration rejected", "isbn", isbn13, "state", out.State)
		return out, nil
	}

	b, err := r.resolve(ctx, &out, opts)
	if err != nil {
		return out, err
	}

	if err := r.store.Add(ctx, b); err != nil {
		slog.Error("Failed to store book", "isbn", isbn13, "error", err)
		return out, err
	}

	out.Book = b
	if out.State == Found {
		out.State = PersistedFull
	} else {
		out.State = PersistedEmptyShell
	}
	slog.Info("Book registered", "isbn", isbn13, "id", b.ID, "state", out.State)
	return out, nil
}

// resolve produces the record to store, advancing out.State to Found or
// NotFound.
func (r *Registrar) resolve(ctx context.Context, out *Outcome, opts Options) (*book.Book, error) {
	if opts.SkipLookup || r.lookup == nil {
		out.State = NotFound
		return book.NewEmpty(out.ISBN), nil
	}

	out.State = LookingUp
	b, err := r.lookup.Lookup(ctx, out.ISBN)
	if err == nil {
		out.State = Found
		return b, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("lookup for %s abandoned: %w", out.ISBN, ctxErr)
	}
	if !liberrors.IsRecoverable(err) {
		return nil, fmt.Errorf("lookup for %s failed: %w", out.ISBN, err)
	}

	slog.Warn("Lookup failed, storing empty record", "isbn", out.ISBN, "error", err)
	out.State = NotFound
	out.LookupErr = err
	return book.NewEmpty(out.ISBN), nil
}
