package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/kbase/internal/core"
)

// DefaultTopK bounds the nearest-neighbor result count.
const DefaultTopK = 10

// SearchService embeds a query string and retrieves the closest document
// texts from a collection.
type SearchService struct {
	store    core.VectorStore
	embedder core.EmbeddingProvider
	topK     int
}

func NewSearchService(store core.VectorStore, embedder core.EmbeddingProvider, topK int) *SearchService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &SearchService{store: store, embedder: embedder, topK: topK}
}

// Search returns the matched texts for one query. Zero matches yields an
// empty slice, not an error.
func (s *SearchService) Search(ctx context.Context, collection, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search text is required", core.ErrValidation)
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}

	col, err := s.store.GetCollection(ctx, strings.ToLower(collection))
	if err != nil {
		return nil, err
	}

	results, err := col.Query(ctx, vectors, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", core.ErrStorage, err)
	}
	if len(results) == 0 {
		return []string{}, nil
	}
	return results[0], nil
}
