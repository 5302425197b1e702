// Package apperr defines the error kinds raised by the todo service and the
// table that maps each kind to an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is anything that was not raised with an explicit kind.
	KindInternal Kind = iota
	// KindValidation is a request-shape violation detected before business logic runs.
	KindValidation
	// KindNotFound means the referenced todo does not exist.
	KindNotFound
	// KindRouteNotFound means no route matched the request.
	KindRouteNotFound
)

// InternalMessage is the only message ever shown to callers for internal errors.
const InternalMessage = "Internal server error"

// statusByKind is the kind -> HTTP status mapping. Business not-found is a 400,
// unmatched routes are the only 404.
var statusByKind = map[Kind]int{
	KindInternal:      http.StatusInternalServerError,
	KindValidation:    http.StatusBadRequest,
	KindNotFound:      http.StatusBadRequest,
	KindRouteNotFound: http.StatusNotFound,
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRouteNotFound:
		return "route_not_found"
	default:
		return "internal"
	}
}

// Error is an error with an explicit kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a validation error with the given message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf formats a validation error message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a business not-found error.
func NotFound(msg string, cause error) error {
	return &Error{Kind: KindNotFound, Message: msg, Err: cause}
}

// RouteNotFound returns the error raised for an unmatched route.
func RouteNotFound(path string) error {
	return &Error{Kind: KindRouteNotFound, Message: fmt.Sprintf("Route %s not found", path)}
}

// KindOf reports the kind of err. Errors without an explicit kind are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Status returns the HTTP status and caller-facing message for err.
// Internal errors never expose their cause.
func Status(err error) (int, string) {
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind == KindInternal {
		return http.StatusInternalServerError, InternalMessage
	}
	status, ok := statusByKind[ae.Kind]
	if !ok {
		return http.StatusInternalServerError, InternalMessage
	}
	return status, ae.Message
}
