package models

// Metadata holds the key/value tags attached to a chunk. Values are the
// JSON scalar types the vector store accepts (string, number, bool).
type Metadata map[string]any

// ChunkRecord is one stored unit in a collection: a bounded slice of a
// document's text together with its embedding and provenance tags.
type ChunkRecord struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata"`
}

// ChunkBatch is the index-aligned form a parser produces and the vector
// store consumes. All slices have equal length.
type ChunkBatch struct {
	IDs        []string
	Texts      []string
	Embeddings [][]float32
	Metadatas  []Metadata
}

// Len returns the number of records in the batch.
func (b *ChunkBatch) Len() int { return len(b.IDs) }

// KbCollection is a named, isolated index in the vector store.
type KbCollection struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Created     string `json:"created,omitempty"`
}

// ApiKeyRecord binds one active API key to a collection.
type ApiKeyRecord struct {
	Collection string `json:"collection"`
	ApiKey     string `json:"api_key"`
}

// ApiKeyQuery selects key records; zero-valued fields are ignored.
type ApiKeyQuery struct {
	Collection string
	ApiKey     string
}
