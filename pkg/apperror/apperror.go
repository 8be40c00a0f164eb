// Package apperror is the error taxonomy shared by services and handlers.
// Every failure leaving a service is one of these kinds, carrying a stable
// machine-readable code and a message that is safe to show to the caller.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindSeatUnavailable Kind = "seat_unavailable"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindPersistence     Kind = "persistence_error"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and code so sentinel comparisons work through wrapping
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: message, Details: details}
}

// NotFound builds e.g. NotFound("event") -> EVENT_NOT_FOUND / "event not found"
func NotFound(resource string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    codeOf(resource) + "_NOT_FOUND",
		Message: resource + " not found",
	}
}

// InvalidState rejects a request that is well-formed but not applicable to the
// resource's current state; it is reported as a validation failure.
func InvalidState(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func SeatUnavailable(seatLabel string) *Error {
	return &Error{
		Kind:    KindSeatUnavailable,
		Code:    "SEAT_UNAVAILABLE",
		Message: fmt.Sprintf("seat %s is not available", seatLabel),
		Details: map[string]string{"seat": seatLabel},
	}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

// Persistence hides the storage cause behind a generic message
func Persistence(operation string, err error) *Error {
	return &Error{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE_ERROR",
		Message: "failed to " + operation,
		Err:     err,
	}
}

// As extracts an *Error from the chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err; unknown errors are persistence failures
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindPersistence
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindSeatUnavailable:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func codeOf(resource string) string {
	b := []byte(resource)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		case c == ' ' || c == '-':
			b[i] = '_'
		}
	}
	return string(b)
}
