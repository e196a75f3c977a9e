// Package apierr defines the error taxonomy shared by the API helpers and the
// page controllers.
//
// Transport and decode errors never leave the submit and listing packages as
// returned errors; they are carried inside results so callers can render a
// message. Validation errors are produced before any network call.
package apierr

import (
	"errors"
)

var (
	ErrTransport       = errors.New("network or server error")
	ErrDecode          = errors.New("invalid response body")
	ErrAPI             = errors.New("api rejected request")
	ErrValidation      = errors.New("validation failed")
	ErrNotFoundElement = errors.New("page element not found")
)

type wrapError struct {
	kind  error
	msg   string
	cause error
}

var _ error = (*wrapError)(nil)

// NewTransportError reports a failed round trip (DNS, refused connection, timeout).
func NewTransportError(msg string, cause error) error {
	return &wrapError{kind: ErrTransport, msg: msg, cause: cause}
}

// NewDecodeError reports a response body that is not the expected JSON.
func NewDecodeError(msg string, cause error) error {
	return &wrapError{kind: ErrDecode, msg: msg, cause: cause}
}

// NewAPIError reports a well-formed response that indicates failure.
func NewAPIError(msg string) error {
	return &wrapError{kind: ErrAPI, msg: msg}
}

// NewValidationError reports a client-side check that failed.
func NewValidationError(msg string) error {
	return &wrapError{kind: ErrValidation, msg: msg}
}

// NewNotFoundElement reports an element a page controller expected but did not find.
func NewNotFoundElement(selector string) error {
	return &wrapError{kind: ErrNotFoundElement, msg: selector}
}

func (err *wrapError) Error() string {
	if err == nil {
		return "(*wrapError)(nil)"
	}
	message := err.kind.Error()
	if err.msg != "" {
		message += ": " + err.msg
	}
	if err.cause != nil {
		message += ": " + err.cause.Error()
	}
	return message
}

func (err *wrapError) Unwrap() []error {
	if err.cause == nil {
		return []error{err.kind}
	}
	return []error{err.kind, err.cause}
}

// Message returns the human-readable part of err without the taxonomy prefix,
// falling back to err.Error() for errors not created by this package.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var w *wrapError
	if errors.As(err, &w) && w.msg != "" {
		return w.msg
	}
	return err.Error()
}
