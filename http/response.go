package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/curioverse/curio"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("failed to encode error response", "err", err)
	}
}

// HandleError writes the appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "err", err)

	switch {
	case errors.Is(err, curio.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, curio.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, curio.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, curio.ErrUnavailable):
		WriteError(w, http.StatusInternalServerError, "Storage not configured")
	default:
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
