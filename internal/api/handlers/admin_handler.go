package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/kbase/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// List returns every collection/key pair.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.admin.ListKeys(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, records)
}

// Get returns the collection's key, or "" when none exists.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := h.admin.GetKey(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]string{"api_key": key})
}

// Create returns the collection's key, creating one on first request.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	key, err := h.admin.CreateKey(r.Context(), chi.URLParam(r, "collection"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]string{"api_key": key})
}

// Delete removes the collection's key record.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteKey(r.Context(), chi.URLParam(r, "collection")); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}
