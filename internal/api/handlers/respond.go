package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/markdave123-py/kbase/internal/core"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, body any) {
	if body == nil {
		body = map[string]string{"message": "Ok"}
	}
	respondJSON(w, http.StatusOK, body)
}

// respondError maps the error taxonomy to HTTP statuses. Unexpected errors
// are logged and surfaced as a generic failure without internal detail.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrParse):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, core.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, core.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		log.Printf("internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"message": "an internal error occurred"})
	}
}
