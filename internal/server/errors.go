// Package server exposes the simulation engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/ats-simulator/internal/db"
	"github.com/jonathan/ats-simulator/internal/types"
)

// ErrValidation reports a request body that fails schema or syntax checks.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrUnavailable reports a route whose backing store is not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the status code for err.
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var unavailable *ErrUnavailable
	switch {
	case errors.As(err, &validation), errors.Is(err, types.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the machine-readable code of an error response.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusGatewayTimeout:
		return "timeout"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	default:
		return "internal_error"
	}
}
