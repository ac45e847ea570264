package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/ingest"
	"github.com/markdave123-py/kbase/internal/models"
)

const maxUploadBytes = 52 << 20

type DocumentHandler struct {
	ingestor *ingest.DocumentIngestor
}

func NewDocumentHandler(ingestor *ingest.DocumentIngestor) *DocumentHandler {
	return &DocumentHandler{ingestor: ingestor}
}

// List returns the distinct filenames stored in the collection.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	names, err := h.ingestor.GetDocumentList(r.Context(), collection)
	if err != nil {
		respondError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondOK(w, names)
}

// Details returns the raw stored records for one document.
func (h *DocumentHandler) Details(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	document := chi.URLParam(r, "document")

	records, err := h.ingestor.GetDocumentDetails(r.Context(), collection, document)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(records) == 0 {
		respondError(w, fmt.Errorf("%w: document %q", core.ErrNotFound, document))
		return
	}
	respondOK(w, records)
}

// Upload ingests one or more multipart files. Remaining form fields are
// merged into every chunk's metadata as caller-supplied custom fields.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, fmt.Errorf("%w: invalid multipart body", core.ErrValidation))
		return
	}

	var files []ingest.File
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				respondError(w, fmt.Errorf("%w: unreadable file %q", core.ErrValidation, header.Filename))
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				respondError(w, fmt.Errorf("%w: unreadable file %q", core.ErrValidation, header.Filename))
				return
			}
			files = append(files, ingest.File{Name: header.Filename, Data: data})
		}
	}
	if len(files) == 0 {
		respondError(w, fmt.Errorf("%w: no files uploaded", core.ErrValidation))
		return
	}

	supplied := make(models.Metadata)
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			supplied[key] = values[0]
		}
	}

	if err := h.ingestor.AddDocuments(r.Context(), collection, files, supplied); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}

type plainTextRequest struct {
	Filename string          `json:"filename"`
	Text     string          `json:"text"`
	Metadata models.Metadata `json:"metadata"`
}

// UploadText ingests raw text under a logical filename, using the inline
// chunking profile.
func (h *DocumentHandler) UploadText(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var body plainTextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, fmt.Errorf("%w: invalid body", core.ErrValidation))
		return
	}
	if body.Filename == "" || body.Text == "" {
		respondError(w, fmt.Errorf("%w: filename and text are required", core.ErrValidation))
		return
	}

	if err := h.ingestor.AddPlainText(r.Context(), collection, body.Filename, body.Text, body.Metadata); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}

// Delete removes every chunk of the named document. Unknown filenames
// succeed silently.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	filename := chi.URLParam(r, "filename")

	if err := h.ingestor.DeleteDocument(r.Context(), collection, filename); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nil)
}
