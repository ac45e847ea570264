package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// memStore is an in-memory core.VectorStore for service tests.
type memStore struct {
	mu          sync.Mutex
	collections map[string]*memCollection
	listErr     error
}

func newMemStore(names ...string) *memStore {
	s := &memStore{collections: make(map[string]*memCollection)}
	for _, n := range names {
		s.collections[n] = &memCollection{name: n}
	}
	return s
}

func (s *memStore) CreateCollection(_ context.Context, name string, metadata models.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &memCollection{name: name, metadata: metadata}
	return nil
}

func (s *memStore) GetCollection(_ context.Context, name string) (core.VectorCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", core.ErrNotFound, name)
	}
	return col, nil
}

func (s *memStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *memStore) ListCollections(_ context.Context) ([]models.KbCollection, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.KbCollection
	for n, c := range s.collections {
		desc, _ := c.metadata["description"].(string)
		out = append(out, models.KbCollection{Name: n, Description: desc})
	}
	return out, nil
}

func (s *memStore) Close() error { return nil }

type memCollection struct {
	name     string
	metadata models.Metadata
	texts    []string
	queryErr error
}

func (c *memCollection) Name() string { return c.name }

func (c *memCollection) Add(_ context.Context, _ *models.ChunkBatch) error { return nil }

func (c *memCollection) Get(_ context.Context, _ models.Metadata) ([]models.ChunkRecord, error) {
	return nil, nil
}

func (c *memCollection) Query(_ context.Context, embeddings [][]float32, topK int) ([][]string, error) {
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	out := make([][]string, len(embeddings))
	for i := range embeddings {
		if len(c.texts) > topK {
			out[i] = c.texts[:topK]
		} else {
			out[i] = c.texts
		}
	}
	return out, nil
}

func (c *memCollection) Delete(_ context.Context, _ []string, _ models.Metadata) error { return nil }

// memKeyStore is an in-memory core.KeyStore.
type memKeyStore struct {
	mu      sync.Mutex
	records []models.ApiKeyRecord
	err     error
}

func (s *memKeyStore) Find(_ context.Context) ([]models.ApiKeyRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ApiKeyRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memKeyStore) First(_ context.Context, q models.ApiKeyQuery) (*models.ApiKeyRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memKeyStore) Insert(_ context.Context, record models.ApiKeyRecord) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *memKeyStore) Delete(_ context.Context, q models.ApiKeyQuery) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if q.Collection != "" && r.Collection == q.Collection {
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return nil
}

// stubEmbedder returns a fixed vector per input text.
type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func (e *stubEmbedder) Name() string { return "stub/embedder" }
