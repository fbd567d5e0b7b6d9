package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"modelhub/internal/download"
	"modelhub/internal/manager"
	"modelhub/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case download.IsNotFound(err), manager.IsFileNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, download.ErrNotActive), manager.IsNotLoaded(err):
		return http.StatusConflict
	case errors.Is(err, download.ErrClosed), manager.IsDependencyUnavailable(err), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case manager.IsModelLoadFailure(err):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zl().Warn().Err(err).Msg("encode response")
	}
}
