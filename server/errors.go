package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonwraymond/textops/memo"
	"github.com/jonwraymond/textops/resilience"
)

// requestError is a client error with its HTTP status.
type requestError struct {
	code int
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// statusFor maps an operation error to an HTTP status.
func statusFor(err error) int {
	var reqErr *requestError
	var transformErr *memo.TransformError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.code
	case errors.As(err, &transformErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, memo.ErrInvalidKey), errors.Is(err, memo.ErrKeyTooLong):
		return http.StatusBadRequest
	case errors.Is(err, memo.ErrCacheUnavailable), errors.Is(err, resilience.ErrBulkheadFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, resilience.ErrBulkheadFull) {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
}
