package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
	"github.com/markdave123-py/kbase/internal/services"
)

type CollectionHandler struct {
	collections *services.CollectionService
}

func NewCollectionHandler(collections *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

// List returns every collection with its metadata.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collections.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, collections)
}

// Create makes a new knowledge base collection. Name and description are
// required; creating an existing collection succeeds silently.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body models.KbCollection
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, fmt.Errorf("%w: invalid body", core.ErrValidation))
		return
	}
	if body.Name == "" || body.Description == "" {
		respondError(w, fmt.Errorf("%w: name and description are required", core.ErrValidation))
		return
	}

	if err := h.collections.Create(r.Context(), body); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}

// Delete destroys the named collection; absent collections succeed silently.
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.collections.Delete(r.Context(), name); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}
