// Package domainerrors defines the typed error values services return and the
// single place where they are translated to HTTP status codes. Handlers must
// never invent their own status mapping; they call ToHTTPStatus through the
// shared response writer so every failure renders the same JSON envelope.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a failure for transport mapping and metrics without leaking
// internal detail to the client.
type Code string

const (
	// CodeInvalidInput covers schema validation failures. The message carries
	// every violated rule joined into one human-readable string.
	CodeInvalidInput Code = "invalid_input"

	// CodeUnauthorized means no authenticated identity is attached to the request.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden means the identity is authenticated but does not own the
	// resource it is trying to mutate.
	CodeForbidden Code = "forbidden"

	// CodeNotFound means the target record does not exist. This is an outcome,
	// not an exception: callers redirect with a notice instead of crashing.
	CodeNotFound Code = "not_found"

	// CodeConflict means the operation collides with existing state.
	CodeConflict Code = "conflict"

	// CodeUnprocessable means the input was well-formed but could not be acted
	// on, e.g. an address the geocoding provider cannot resolve.
	CodeUnprocessable Code = "unprocessable"

	// CodeUnavailable means an upstream collaborator (object storage, geocoding
	// provider) failed or timed out.
	CodeUnavailable Code = "unavailable"

	// CodeInternal is the catch-all for persistence and unexpected failures.
	// The message shown to clients stays generic.
	CodeInternal Code = "internal"
)

// Error is the value type carried across service boundaries.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e Error) Unwrap() error {
	return e.cause
}

// New builds a domain error with a client-safe message.
func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

// Wrap attaches an underlying cause for logs while keeping the client-facing
// message separate.
func Wrap(code Code, message string, cause error) Error {
	return Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the Code from any error, defaulting to CodeInternal so
// unclassified failures never leak detail.
func CodeOf(err error) Code {
	var de Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message for an error. Unclassified errors
// get a generic message; their detail belongs in logs only.
func MessageOf(err error) string {
	var de Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "something went wrong"
}

// ToHTTPStatus maps a Code to its HTTP status. Kept exhaustive so a new code
// cannot silently fall through to 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnprocessable:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
