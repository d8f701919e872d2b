package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := stdErrors.Join(err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{name: "zero", duration: 0, want: "rate limited"},
		{name: "30 seconds", duration: 30 * time.Second, want: "rate limited (retry after 30s)"},
		{name: "1 hour", duration: time.Hour, want: "rate limited (retry after 1h0m0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRateLimitErrorWithRetry("rate limited", tt.duration)
			if err.Error() != tt.want {
				t.Fatalf("Error message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestStopProcessingError(t *testing.T) {
	err := NewStopProcessingError("selection cancelled")

	if err.Error() != "selection cancelled" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "selection cancelled")
	}

	if !IsStopProcessingError(fmt.Errorf("delete: %w", err)) {
		t.Fatalf("IsStopProcessingError returned false for wrapped StopProcessingError")
	}
}

func TestLookupErrorClassification(t *testing.T) {
	cause := stdErrors.New("boom")

	tests := []struct {
		name        string
		err         error
		check       func(error) bool
		recoverable bool
	}{
		{name: "configuration", err: NewConfigurationError("bad base URL", cause), check: IsConfigurationError, recoverable: false},
		{name: "transport", err: NewTransportError("google books request", cause), check: IsTransportError, recoverable: true},
		{name: "not found", err: NewNotFoundError("9784000000000"), check: IsNotFoundError, recoverable: true},
		{name: "mismatch", err: NewMismatchError("9784000000000", "vol1", []string{"9784111111111"}), check: IsMismatchError, recoverable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("lookup: %w", tt.err)
			if !tt.check(wrapped) {
				t.Fatalf("classifier returned false for wrapped %T", tt.err)
			}
			if got := IsRecoverable(wrapped); got != tt.recoverable {
				t.Fatalf("IsRecoverable = %v, want %v", got, tt.recoverable)
			}
		})
	}

	if IsRecoverable(nil) {
		t.Fatalf("IsRecoverable(nil) = true, want false")
	}
	if IsRecoverable(cause) {
		t.Fatalf("IsRecoverable on unclassified error = true, want false")
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := NewTransportError("google books request", cause)

	if !stdErrors.Is(err, cause) {
		t.Fatalf("errors.Is did not find the wrapped cause")
	}
	if err.Error() != "google books request: connection refused" {
		t.Fatalf("Error message = %q", err.Error())
	}
}

func TestMismatchErrorMessage(t *testing.T) {
	err := NewMismatchError("9784000000000", "abc", nil)
	want := "mismatched result for ISBN 9784000000000: volume abc has no ISBN-13"
	if err.Error() != want {
		t.Fatalf("Error message = %q, want %q", err.Error(), want)
	}
}
