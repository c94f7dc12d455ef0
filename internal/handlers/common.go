package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hangout-backend/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// statusFromError maps domain errors to HTTP status codes. Validation and
// state-conflict failures are 400, authorization failures 403, unknown
// entities 404; anything unrecognized is a storage-level 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCoordinate),
		errors.Is(err, models.ErrSelfRequest),
		errors.Is(err, models.ErrTargetUnavailable),
		errors.Is(err, models.ErrDuplicatePending),
		errors.Is(err, models.ErrAlreadyResponded),
		errors.Is(err, models.ErrRequestExpired):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotRequestTarget):
		return http.StatusForbidden
	case errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
