package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// Code classifies an [Error] so callers can branch on it without inspecting message text.
type Code string

const (
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not-found"
	CodeDatabase     Code = "database-error"
	CodeUnknown      Code = "unknown"
)

// Terminal reports whether retrying an operation that failed with this code can never succeed.
func (c Code) Terminal() bool {
	return c == CodeUnauthorized || c == CodeNotFound
}

// Error is a classified error surfaced by the data-access layer.
//
// Cause holds the underlying error, if any, and is reachable through [errors.Unwrap].
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// NewError builds an [Error] with the given classification.
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Terminal reports whether the error must not be retried.
func (e *Error) Terminal() bool { return e.Code.Terminal() }

// CodeOf returns the classification of the first [Error] in err's chain.
//
// Unclassified errors report [CodeUnknown]; a nil error reports the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err is classified with code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Classified reports whether err carries an [Error] anywhere in its chain.
func Classified(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
