package homework

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the bot's stages wraps exactly one of
// these, so callers can classify failures with errors.Is().
var (
	// Configuration errors
	ErrConfigMissing = errors.New("required credentials are missing")

	// API errors
	ErrRequestFailed    = errors.New("homework API request failed")
	ErrUnexpectedStatus = errors.New("homework API returned unexpected status")

	// Response shape errors
	ErrMalformedResponse = errors.New("homework API response is malformed")
	ErrTypeMismatch      = errors.New("homework API response has unexpected type")

	// Record errors
	ErrMissingFields = errors.New("homework record is missing fields")
	ErrUnknownStatus = errors.New("homework status is unknown")

	// Delivery errors
	ErrDeliveryFailed = errors.New("notification delivery failed")
)

// Error is a stage failure with context.
type Error struct {
	Op      string // Stage that failed, e.g. "GetAPIAnswer", "ParseStatus"
	Kind    error  // One of the Err* kinds above
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against the kind and the wrapped error.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewError creates a new stage error.
func NewError(op string, kind error, message string) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with stage context.
func WrapError(op string, kind error, message string, err error) *Error {
	return &Error{
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// StatusError describes a non-200 answer from the homework API.
type StatusError struct {
	Code   int
	Status string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d (%s)", e.Code, e.Status)
}

// knownKinds are the failures a polling cycle is expected to run into.
var knownKinds = []error{
	ErrRequestFailed,
	ErrUnexpectedStatus,
	ErrMalformedResponse,
	ErrTypeMismatch,
	ErrMissingFields,
	ErrUnknownStatus,
	ErrDeliveryFailed,
}

// IsKnown reports whether err belongs to the recognised failure taxonomy.
func IsKnown(err error) bool {
	for _, kind := range knownKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// KindOf returns the taxonomy kind of err, or nil when err is not recognised.
func KindOf(err error) error {
	if errors.Is(err, ErrConfigMissing) {
		return ErrConfigMissing
	}
	for _, kind := range knownKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
