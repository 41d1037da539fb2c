package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"libraryapi/internal/apperr"
)

// WriteError maps a service error onto a JSON error response by kind.
// Messages of unexpected errors are not exposed to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, apperr.ErrValidation):
		var details []ErrorDetail
		for _, f := range apperr.Fields(err) {
			details = append(details, ErrorDetail{Field: f.Field, Message: f.Message})
		}
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), details)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		JSONError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out", nil)
	default:
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// PathID parses a positive integer path parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid "+name,
			apperr.FieldError{Field: name, Message: name + " must be a positive integer"})
	}
	return id, nil
}

// QueryInt reads an integer query parameter, falling back to def when it is
// missing or malformed.
func QueryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
