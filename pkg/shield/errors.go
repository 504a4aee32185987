package shield

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies SDK failures so callers can handle them exhaustively
// instead of relying on optional error callbacks.
type ErrorKind string

const (
	KindAuthRequired ErrorKind = "AUTH_REQUIRED"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindValidation   ErrorKind = "VALIDATION"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindNetwork      ErrorKind = "NETWORK"
	KindServer       ErrorKind = "SERVER"
)

// APIError is the single error type surfaced by SDK operations. Message is
// always a single display string; backend validation message arrays are
// flattened before they get here.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, defaulting to KindServer for foreign errors.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

func authRequiredErr(op string) error {
	return &APIError{Kind: KindAuthRequired, Message: fmt.Sprintf("%s requires an authenticated session", op)}
}

func forbiddenErr(message string) error {
	return &APIError{Kind: KindForbidden, Message: message}
}

func conflictErr(message string) error {
	return &APIError{Kind: KindConflict, Message: message}
}

func networkErr(err error) error {
	return &APIError{Kind: KindNetwork, Message: "request failed", Err: err}
}

// flattenMessages reduces a backend message or message array to one display
// string.
func flattenMessages(message string, messages []string) string {
	if len(messages) > 0 {
		return strings.Join(messages, "; ")
	}
	return message
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return KindAuthRequired
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}
