package api

import (
	"errors"
	"net/http"

	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/askdoc/askdoc-api/internal/service"
	"github.com/askdoc/askdoc-api/internal/service/auth"
)

// MapErrorToStatusCode maps service and domain errors to HTTP status codes.
// Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrExecutorBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmptyJobPrompt):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrExchangeFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for the error. The
// underlying error text is logged but never sent over the wire.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return "Job not found"
	case errors.Is(err, service.ErrStoreUnavailable):
		return "Service temporarily unavailable, please retry"
	case errors.Is(err, service.ErrExecutorBusy):
		return "Server is busy processing other queries, please retry later"
	case errors.Is(err, domain.ErrEmptyJobPrompt):
		return "Prompt must not be empty"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrExchangeFailed):
		return "Authentication with identity provider failed"
	default:
		return "An internal error occurred"
	}
}
