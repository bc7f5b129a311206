// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("too many requests")
	ErrTimeout      = errors.New("request timed out")
	ErrUnavailable  = errors.New("dependency unavailable")
)

type problemMapping struct {
	err    error
	status int
	title  string
}

var problemMappings = []problemMapping{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrDuplicate, http.StatusConflict, "Duplicate"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrForbidden, http.StatusForbidden, "Forbidden"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{ErrRateLimited, http.StatusTooManyRequests, "Too Many Requests"},
	{ErrTimeout, http.StatusGatewayTimeout, "Timeout"},
	{ErrUnavailable, http.StatusServiceUnavailable, "Service Unavailable"},
}

// StatusOf returns the HTTP status and title for err. Unmapped errors are
// internal errors.
func StatusOf(err error) (int, string) {
	for _, m := range problemMappings {
		if errors.Is(err, m.err) {
			return m.status, m.title
		}
	}
	return http.StatusInternalServerError, "Internal Error"
}

// RespondError maps domain errors to HTTP responses using RFC7807. The
// message of an unmapped error never reaches the client.
func RespondError(w http.ResponseWriter, err error) {
	status, title := StatusOf(err)
	detail := ""
	if status != http.StatusInternalServerError {
		detail = err.Error()
	}
	Problem(w, status, title, detail)
}
