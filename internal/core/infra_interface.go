package core

import (
	"context"

	"github.com/markdave123-py/kbase/internal/models"
)

// VectorStore abstracts the external vector database (Chroma, pgvector, ...)
// so higher layers never depend on a specific engine. A store is constructed
// with one embedding-function selector; every collection it creates is bound
// to that selector for its lifetime.
type VectorStore interface {
	// CreateCollection makes a new collection carrying the given metadata.
	// The caller is responsible for the idempotency check.
	CreateCollection(ctx context.Context, name string, metadata models.Metadata) error

	// GetCollection resolves an existing collection handle. It fails when the
	// collection is absent or was created under a different embedding function.
	GetCollection(ctx context.Context, name string) (VectorCollection, error)

	DeleteCollection(ctx context.Context, name string) error
	ListCollections(ctx context.Context) ([]models.KbCollection, error)

	Close() error
}

// VectorCollection is a handle to one named index.
type VectorCollection interface {
	Name() string

	// Add writes the aligned id/embedding/metadata/text tuples in one batch.
	Add(ctx context.Context, batch *models.ChunkBatch) error

	// Get returns stored records whose metadata matches every key in where.
	// A nil where returns all records. Embeddings are not included.
	Get(ctx context.Context, where models.Metadata) ([]models.ChunkRecord, error)

	// Query runs a nearest-neighbor search per query embedding and returns
	// the matched document texts, one result set per query.
	Query(ctx context.Context, embeddings [][]float32, topK int) ([][]string, error)

	// Delete removes records by id and/or metadata filter. Matching nothing
	// is not an error.
	Delete(ctx context.Context, ids []string, where models.Metadata) error
}

// EmbeddingProvider turns a batch of texts into fixed-size vectors.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Name identifies the embedding function configuration, recorded as
	// collection metadata at creation time.
	Name() string
}

// TextExtractor converts raw file bytes (PDF) into markdown text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// KeyStore persists per-collection API key records.
type KeyStore interface {
	Find(ctx context.Context) ([]models.ApiKeyRecord, error)
	First(ctx context.Context, query models.ApiKeyQuery) (*models.ApiKeyRecord, error)
	Insert(ctx context.Context, record models.ApiKeyRecord) error
	Delete(ctx context.Context, query models.ApiKeyQuery) error
}

// ObjectClient archives original uploads in object storage. It is optional;
// ingestion works without one.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
