package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/ingest"
	"github.com/markdave123-py/kbase/internal/models"
	"github.com/markdave123-py/kbase/internal/services"
)

// stubStore backs the handlers with a single in-memory collection.
type stubStore struct {
	mu      sync.Mutex
	name    string
	records map[string]models.ChunkRecord
}

func newStubStore(name string) *stubStore {
	return &stubStore{name: name, records: make(map[string]models.ChunkRecord)}
}

func (s *stubStore) CreateCollection(_ context.Context, name string, _ models.Metadata) error {
	s.name = name
	return nil
}

func (s *stubStore) GetCollection(_ context.Context, name string) (core.VectorCollection, error) {
	if name != s.name {
		return nil, fmt.Errorf("%w: collection %q", core.ErrNotFound, name)
	}
	return (*stubCollection)(s), nil
}

func (s *stubStore) DeleteCollection(_ context.Context, name string) error {
	if name == s.name {
		s.name = ""
	}
	return nil
}

func (s *stubStore) ListCollections(_ context.Context) ([]models.KbCollection, error) {
	if s.name == "" {
		return nil, nil
	}
	return []models.KbCollection{{Name: s.name}}, nil
}

func (s *stubStore) Close() error { return nil }

type stubCollection stubStore

func (c *stubCollection) Name() string { return c.name }

func (c *stubCollection) Add(_ context.Context, batch *models.ChunkBatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range batch.IDs {
		c.records[batch.IDs[i]] = models.ChunkRecord{
			ID:       batch.IDs[i],
			Text:     batch.Texts[i],
			Metadata: batch.Metadatas[i],
		}
	}
	return nil
}

func (c *stubCollection) Get(_ context.Context, where models.Metadata) ([]models.ChunkRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ChunkRecord
	for _, r := range c.records {
		keep := true
		for k, v := range where {
			if r.Metadata[k] != v {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *stubCollection) Query(_ context.Context, embeddings [][]float32, _ int) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]string, len(embeddings))
	for i := range embeddings {
		for _, r := range c.records {
			out[i] = append(out[i], r.Text)
		}
	}
	return out, nil
}

func (c *stubCollection) Delete(_ context.Context, ids []string, where models.Metadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.records, id)
	}
	for id, r := range c.records {
		match := len(where) > 0
		for k, v := range where {
			if r.Metadata[k] != v {
				match = false
				break
			}
		}
		if match {
			delete(c.records, id)
		}
	}
	return nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (stubEmbedder) Name() string { return "stub/embedder" }

type stubKeys struct {
	records []models.ApiKeyRecord
}

func (s *stubKeys) Find(_ context.Context) ([]models.ApiKeyRecord, error) { return s.records, nil }

func (s *stubKeys) First(_ context.Context, q models.ApiKeyQuery) (*models.ApiKeyRecord, error) {
	for _, r := range s.records {
		if q.Collection != "" && r.Collection != q.Collection {
			continue
		}
		if q.ApiKey != "" && r.ApiKey != q.ApiKey {
			continue
		}
		rec := r
		return &rec, nil
	}
	return nil, nil
}

func (s *stubKeys) Insert(_ context.Context, record models.ApiKeyRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubKeys) Delete(_ context.Context, q models.ApiKeyQuery) error {
	kept := s.records[:0]
	for _, r := range s.records {
		if r.Collection != q.Collection {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

// newTestRouter wires real services over the stubs, mirroring the server's
// route layout without middleware.
func newTestRouter(store *stubStore, keys *stubKeys) chi.Router {
	collections := services.NewCollectionService(store)
	search := services.NewSearchService(store, stubEmbedder{}, 0)
	admin := services.NewAdminService(keys)
	ingestor := ingest.NewDocumentIngestor(store, stubEmbedder{}, nil, nil, nil)

	collectionHandler := NewCollectionHandler(collections)
	documentHandler := NewDocumentHandler(ingestor)
	searchHandler := NewSearchHandler(search)
	adminHandler := NewAdminHandler(admin)

	r := chi.NewRouter()
	r.Get("/healthcheck", Health)
	r.Route("/collections", func(cr chi.Router) {
		cr.Get("/", collectionHandler.List)
		cr.Post("/", collectionHandler.Create)
		cr.Delete("/{name}", collectionHandler.Delete)
	})
	r.Route("/documents/{collection}", func(dr chi.Router) {
		dr.Get("/", documentHandler.List)
		dr.Post("/", documentHandler.Upload)
		dr.Post("/text", documentHandler.UploadText)
		dr.Get("/{document}", documentHandler.Details)
		dr.Delete("/{filename}", documentHandler.Delete)
	})
	r.Post("/search/{collection}", searchHandler.Search)
	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/", adminHandler.List)
		ar.Get("/{collection}", adminHandler.Get)
		ar.Post("/{collection}", adminHandler.Create)
		ar.Delete("/{collection}", adminHandler.Delete)
	})
	return r
}

func doRequest(t *testing.T, router chi.Router, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(newStubStore(""), &stubKeys{})
	rec := doRequest(t, router, "GET", "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCollectionEndpoint(t *testing.T) {
	store := newStubStore("")
	router := newTestRouter(store, &stubKeys{})

	body := []byte(`{"name":"Docs","description":"product docs"}`)
	rec := doRequest(t, router, "POST", "/collections", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "docs", store.name)
}

func TestCreateCollectionEndpointMissingFields(t *testing.T) {
	router := newTestRouter(newStubStore(""), &stubKeys{})
	rec := doRequest(t, router, "POST", "/collections", []byte(`{"name":"docs"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadTextEndpoint(t *testing.T) {
	store := newStubStore("docs")
	router := newTestRouter(store, &stubKeys{})

	body := []byte(`{"filename":"inline.txt","text":"hello from inline text"}`)
	rec := doRequest(t, router, "POST", "/documents/docs/text", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, store.records)
}

func TestUploadTextEndpointMissingFields(t *testing.T) {
	router := newTestRouter(newStubStore("docs"), &stubKeys{})
	rec := doRequest(t, router, "POST", "/documents/docs/text", []byte(`{"filename":"a.txt"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadEndpointMultipart(t *testing.T) {
	store := newStubStore("docs")
	router := newTestRouter(store, &stubKeys{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("uploaded file content"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("source", "upload-test"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/documents/docs/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r, ok := store.records["docs-notes.txt-0"]
	require.True(t, ok)
	assert.Equal(t, "uploaded file content", r.Text)
	assert.Equal(t, "upload-test", r.Metadata["source"])
}

func TestUploadEndpointNoFiles(t *testing.T) {
	router := newTestRouter(newStubStore("docs"), &stubKeys{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("source", "no-files"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/documents/docs/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentListAndDetailsEndpoints(t *testing.T) {
	store := newStubStore("docs")
	router := newTestRouter(store, &stubKeys{})

	body := []byte(`{"filename":"a.txt","text":"alpha content"}`)
	require.Equal(t, http.StatusOK, doRequest(t, router, "POST", "/documents/docs/text", body).Code)

	rec := doRequest(t, router, "GET", "/documents/docs/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"a.txt"}, names)

	rec = doRequest(t, router, "GET", "/documents/docs/a.txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, "GET", "/documents/docs/ghost.txt", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDocumentEndpoint(t *testing.T) {
	store := newStubStore("docs")
	router := newTestRouter(store, &stubKeys{})

	body := []byte(`{"filename":"a.txt","text":"alpha content"}`)
	require.Equal(t, http.StatusOK, doRequest(t, router, "POST", "/documents/docs/text", body).Code)

	rec := doRequest(t, router, "DELETE", "/documents/docs/a.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.records)

	// Absent document still returns Ok.
	rec = doRequest(t, router, "DELETE", "/documents/docs/ghost.txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	store := newStubStore("docs")
	router := newTestRouter(store, &stubKeys{})

	body := []byte(`{"filename":"a.txt","text":"alpha content"}`)
	require.Equal(t, http.StatusOK, doRequest(t, router, "POST", "/documents/docs/text", body).Code)

	rec := doRequest(t, router, "POST", "/search/docs", []byte(`{"text":"alpha"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"alpha content"}, resp.Results)
}

func TestSearchEndpointUnknownCollection(t *testing.T) {
	router := newTestRouter(newStubStore("docs"), &stubKeys{})
	rec := doRequest(t, router, "POST", "/search/ghost", []byte(`{"text":"alpha"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpointMissingText(t *testing.T) {
	router := newTestRouter(newStubStore("docs"), &stubKeys{})
	rec := doRequest(t, router, "POST", "/search/docs", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminKeyLifecycleEndpoints(t *testing.T) {
	keys := &stubKeys{}
	router := newTestRouter(newStubStore("docs"), keys)

	rec := doRequest(t, router, "POST", "/admin/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ApiKey string `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ApiKey)

	rec = doRequest(t, router, "GET", "/admin/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ApiKey)

	rec = doRequest(t, router, "GET", "/admin/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "docs"))

	rec = doRequest(t, router, "DELETE", "/admin/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, keys.records)
}
