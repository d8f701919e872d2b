package errors

import (
	"errors"
	"fmt"
)

// ConfigurationError means the lookup request itself could not be built.
// It is not recoverable by falling back to an empty record.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError creates a ConfigurationError wrapping cause
func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{Message: message, Err: cause}
}

// TransportError covers network, status and decoding failures
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError creates a TransportError for the failed operation
func NewTransportError(op string, cause error) *TransportError {
	return &TransportError{Op: op, Err: cause}
}

// NotFoundError is returned when the catalog has no result for an ISBN
type NotFoundError struct {
	ISBN string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no book found for ISBN %s", e.ISBN)
}

// NewNotFoundError creates a NotFoundError for isbn
func NewNotFoundError(isbn string) *NotFoundError {
	return &NotFoundError{ISBN: isbn}
}

// MismatchError is returned when the catalog answered with a different book
// than the one requested.
type MismatchError struct {
	Requested string
	VolumeID  string
	Found     []string // ISBN-13 identifiers carried by the returned volume
}

func (e *MismatchError) Error() string {
	if len(e.Found) == 0 {
		return fmt.Sprintf("mismatched result for ISBN %s: volume %s has no ISBN-13", e.Requested, e.VolumeID)
	}
	return fmt.Sprintf("mismatched result for ISBN %s: volume %s has ISBN-13 %v", e.Requested, e.VolumeID, e.Found)
}

// NewMismatchError creates a MismatchError
func NewMismatchError(requested, volumeID string, found []string) *MismatchError {
	return &MismatchError{Requested: requested, VolumeID: volumeID, Found: found}
}

// IsConfigurationError reports whether err is a ConfigurationError (even when wrapped).
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsTransportError reports whether err is a TransportError (even when wrapped).
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped).
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsMismatchError reports whether err is a MismatchError (even when wrapped).
func IsMismatchError(err error) bool {
	var target *MismatchError
	return errors.As(err, &target)
}

// IsRecoverable reports whether a lookup failure allows the caller to fall
// back to an empty record seeded with the requested ISBN.
func IsRecoverable(err error) bool {
	if err == nil || IsConfigurationError(err) {
		return false
	}
	return IsTransportError(err) || IsNotFoundError(err) || IsMismatchError(err)
}
