package chroma

import "github.com/markdave123-py/kbase/internal/models"

// collectionResponse is a Chroma collection as returned by the API.
type collectionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

// createCollectionRequest is the body for creating a collection.
type createCollectionRequest struct {
	Name     string          `json:"name"`
	Metadata models.Metadata `json:"metadata,omitempty"`
}

// addRequest is the body for adding records to a collection.
type addRequest struct {
	IDs        []string          `json:"ids"`
	Embeddings [][]float32       `json:"embeddings"`
	Metadatas  []models.Metadata `json:"metadatas,omitempty"`
	Documents  []string          `json:"documents,omitempty"`
}

// getRequest is the body for filtered retrieval.
type getRequest struct {
	IDs     []string        `json:"ids,omitempty"`
	Where   models.Metadata `json:"where,omitempty"`
	Include []string        `json:"include"`
}

// getResponse is the response from a get.
type getResponse struct {
	IDs       []string          `json:"ids"`
	Metadatas []models.Metadata `json:"metadatas"`
	Documents []string          `json:"documents"`
}

// queryRequest is the body for a nearest-neighbor query.
type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// queryResponse is the response from a query, one group per query embedding.
type queryResponse struct {
	IDs       [][]string `json:"ids"`
	Documents [][]string `json:"documents"`
}

// deleteRequest is the body for deleting records by id or metadata filter.
type deleteRequest struct {
	IDs   []string        `json:"ids,omitempty"`
	Where models.Metadata `json:"where,omitempty"`
}
