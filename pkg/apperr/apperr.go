// Package apperr defines the error taxonomy shared by all fleetdesk stores.
// Handlers map each kind to an HTTP status; stores never return raw driver
// errors for conditions a caller can act on.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	// KindNotFound means a referenced entity id does not exist.
	KindNotFound Kind = "not_found"
	// KindValidation means the input is malformed or incomplete; the caller can fix it.
	KindValidation Kind = "validation"
	// KindConflict means a uniqueness invariant was violated (duplicate code,
	// second attachment). Distinct from validation so callers can offer the
	// existing resource.
	KindConflict Kind = "conflict"
	// KindInternal means an invariant the caller cannot fix was violated,
	// e.g. a missing catalog seed row. Treated as a bug.
	KindInternal Kind = "internal"
)

// Error carries a kind alongside a message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFoundf creates a not-found error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validationf creates a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflictf creates a conflict error.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internalf creates an internal error.
func Internalf(format string, args ...any) error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }
