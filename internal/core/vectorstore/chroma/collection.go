package chroma

import (
	"context"
	"fmt"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// Collection is a handle to one Chroma collection, addressed by the id
// resolved at GetCollection time.
type Collection struct {
	client *Client
	id     string
	name   string
}

var _ core.VectorCollection = (*Collection)(nil)

func (c *Collection) Name() string { return c.name }

func (c *Collection) url(op string) string {
	return c.client.baseURL + collectionsPath + "/" + c.id + "/" + op
}

// Add writes the whole batch in one request.
func (c *Collection) Add(ctx context.Context, batch *models.ChunkBatch) error {
	if batch.Len() == 0 {
		return nil
	}
	body := addRequest{
		IDs:        batch.IDs,
		Embeddings: batch.Embeddings,
		Metadatas:  batch.Metadatas,
		Documents:  batch.Texts,
	}
	return c.client.do(ctx, "POST", c.url("add"), body, nil)
}

// Get returns records matching the metadata filter, texts and metadata
// included. A nil where returns everything.
func (c *Collection) Get(ctx context.Context, where models.Metadata) ([]models.ChunkRecord, error) {
	body := getRequest{
		Where:   where,
		Include: []string{"metadatas", "documents"},
	}
	var resp getResponse
	if err := c.client.do(ctx, "POST", c.url("get"), body, &resp); err != nil {
		return nil, err
	}

	records := make([]models.ChunkRecord, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		rec := models.ChunkRecord{ID: id}
		if i < len(resp.Documents) {
			rec.Text = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			rec.Metadata = resp.Metadatas[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// Query runs one nearest-neighbor search per query embedding and returns
// the matched texts, one result set per query.
func (c *Collection) Query(ctx context.Context, embeddings [][]float32, topK int) ([][]string, error) {
	if topK <= 0 {
		topK = 10
	}
	body := queryRequest{
		QueryEmbeddings: embeddings,
		NResults:        topK,
		Include:         []string{"documents"},
	}
	var resp queryResponse
	if err := c.client.do(ctx, "POST", c.url("query"), body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Documents) == 0 {
		return make([][]string, len(embeddings)), nil
	}
	return resp.Documents, nil
}

// Delete removes records by id and/or metadata filter.
func (c *Collection) Delete(ctx context.Context, ids []string, where models.Metadata) error {
	if len(ids) == 0 && len(where) == 0 {
		return fmt.Errorf("delete needs ids or a filter")
	}
	body := deleteRequest{IDs: ids, Where: where}
	return c.client.do(ctx, "POST", c.url("delete"), body, nil)
}
