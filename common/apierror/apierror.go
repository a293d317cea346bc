package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Kind classifies gateway-level failures. Adapter errors (storage SDK, chain RPC)
// are not classified and propagate as plain errors.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindDatabase     Kind = "database"
	KindNetwork      Kind = "network"
	KindUnknown      Kind = "unknown"
)

// Error is a tagged error returned by gateway operations. Callers branch on Kind
// instead of unwrapping; HTTP handlers map Kind to a status code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged error without a wrapped cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a tagged error with a formatted message
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a tagged error around a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FromDB classifies a database error: pgx.ErrNoRows becomes not_found with the
// given message, everything else is a database failure.
func FromDB(err error, notFoundMessage string) *Error {
	if errors.Is(err, pgx.ErrNoRows) {
		return New(KindNotFound, notFoundMessage)
	}
	return Wrap(KindDatabase, "database operation failed", err)
}

// KindOf extracts the Kind from an error, defaulting to unknown
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error kind to the status code the gateway responds with
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
