// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package so that store errors
// never leak driver messages.
package apierror

import (
	"errors"
	"net/http"

	"github.com/nretrorsum/work-test/internal/apperr"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

const internalError = "Internal server error"

// Status maps an error kind to its HTTP status.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation, apperr.ImmutableField, apperr.ReferentialIntegrity:
		return http.StatusBadRequest
	case apperr.Unauthenticated, apperr.Expired:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError returns the status and body for err. Store failures get a
// generic message.
func FromError(err error) (int, *APIError) {
	kind := apperr.KindOf(err)
	status := Status(kind)
	if status == http.StatusInternalServerError {
		return status, New(internalError)
	}
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		msg = ae.Msg
	}
	return status, New(msg)
}
