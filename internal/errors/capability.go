package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Capability codes. Every backend query that fails returns an *Error carrying
// one of these so callers can tell a missing feature from a broken read.
const (
	ErrNotSupported = "NOT_SUPPORTED"
	ErrNotAvailable = "NOT_AVAILABLE"
	ErrNotFound     = "NOT_FOUND"
	ErrNotAllowed   = "NOT_ALLOWED"
	ErrOther        = "OTHER"
)

// NotSupported reports that the platform or backend never provides what.
func NotSupported(what string) *Error {
	return &Error{
		Code:    ErrNotSupported,
		Message: what + " is not supported on this platform",
	}
}

// NotAvailable reports that what exists but cannot be read right now.
func NotAvailable(what string, cause error) *Error {
	return &Error{
		Code:    ErrNotAvailable,
		Message: what + " is not available",
		Cause:   cause,
	}
}

// NotFound reports that a specific object (usually a pid) vanished.
func NotFound(what string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: what + " not found",
	}
}

// NotAllowed reports a permission failure.
func NotAllowed(what string, cause error) *Error {
	return &Error{
		Code:       ErrNotAllowed,
		Message:    "Permission denied reading " + what,
		Suggestion: "Run with elevated privileges to see this information",
		Cause:      cause,
	}
}

// Other wraps a genuine read failure.
func Other(what string, cause error) *Error {
	return &Error{
		Code:    ErrOther,
		Message: "Failed to read " + what,
		Cause:   cause,
	}
}

// Classify maps a raw error from a platform read onto the capability taxonomy.
// Errors that already carry a capability code pass through unchanged.
func Classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if Kind(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ESRCH):
		return &Error{Code: ErrNotFound, Message: what + " not found", Cause: err}
	case errors.Is(err, fs.ErrPermission):
		return NotAllowed(what, err)
	default:
		return Other(what, err)
	}
}

// Kind returns the capability code carried by err, or "" when err is nil or
// unclassified.
func Kind(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	switch e.Code {
	case ErrNotSupported, ErrNotAvailable, ErrNotFound, ErrNotAllowed, ErrOther:
		return e.Code
	}
	return ""
}

// IsAcceptable reports whether err means "absent here" rather than "broken".
func IsAcceptable(err error) bool {
	switch Kind(err) {
	case ErrNotSupported, ErrNotAvailable, ErrNotFound, ErrNotAllowed:
		return true
	}
	return false
}

// Acceptable turns an acceptable failure into an explicit absence.
// A nil error yields a pointer to v; an acceptable error yields (nil, nil);
// anything else is returned unchanged.
func Acceptable[T any](v T, err error) (*T, error) {
	if err == nil {
		return &v, nil
	}
	if IsAcceptable(err) {
		return nil, nil
	}
	return nil, err
}

// Reason renders a short one-line description of err for display next to an
// unavailable widget.
func Reason(err error) string {
	switch Kind(err) {
	case ErrNotSupported:
		return "not supported"
	case ErrNotAvailable:
		return "not available"
	case ErrNotFound:
		return "not found"
	case ErrNotAllowed:
		return "permission denied"
	}
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fmt.Sprint(err)
}
