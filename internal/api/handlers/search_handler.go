package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/services"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Text string `json:"text"`
}

type searchResponse struct {
	Results []string `json:"results"`
}

// Search embeds the query text and returns the nearest document texts.
// The API-key middleware has already authorized the request.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, fmt.Errorf("%w: invalid body", core.ErrValidation))
		return
	}
	if body.Text == "" {
		respondError(w, fmt.Errorf("%w: text is required", core.ErrValidation))
		return
	}

	results, err := h.search.Search(r.Context(), collection, body.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	if results == nil {
		results = []string{}
	}
	respondOK(w, searchResponse{Results: results})
}
