// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling that keeps internal error details out of responses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"popstats/internal/domain/entity"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// DomainError maps a domain error to an HTTP response. Validation errors
// become 400 with the field message, missing data becomes 404, and
// everything else becomes a 500 with a generic body. Internal error
// details are logged, not returned.
func DomainError(w http.ResponseWriter, err error) {
	var vErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr):
		JSON(w, http.StatusBadRequest, map[string]string{
			"error": vErr.Message,
			"field": vErr.Field,
		})
	case errors.Is(err, entity.ErrNoData):
		Error(w, http.StatusNotFound, entity.ErrNoData)
	default:
		slog.Default().Error("internal server error", slog.Any("error", err))
		JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
