// Package chroma implements core.VectorStore against Chroma's REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

const collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"

// Client talks to one Chroma server. All collections it creates are bound
// to the configured embedding function; GetCollection refuses collections
// recorded under a different one.
type Client struct {
	baseURL      string
	embedderName string
	httpClient   *http.Client
}

// NewClient creates a Chroma store client.
func NewClient(baseURL, embedderName string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}
	return &Client{
		baseURL:      baseURL,
		embedderName: embedderName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

var _ core.VectorStore = (*Client)(nil)

// CreateCollection creates the named collection, recording the embedding
// function alongside the caller's metadata.
func (c *Client) CreateCollection(ctx context.Context, name string, metadata models.Metadata) error {
	body := createCollectionRequest{Name: name, Metadata: metadata}
	if body.Metadata == nil {
		body.Metadata = models.Metadata{}
	}
	body.Metadata["embedding_function"] = c.embedderName

	var created collectionResponse
	return c.do(ctx, "POST", c.baseURL+collectionsPath, body, &created)
}

// GetCollection resolves a collection handle by name.
func (c *Client) GetCollection(ctx context.Context, name string) (core.VectorCollection, error) {
	var col collectionResponse
	err := c.do(ctx, "GET", c.baseURL+collectionsPath+"/"+name, nil, &col)
	if err != nil {
		return nil, err
	}

	if fn, ok := col.Metadata["embedding_function"].(string); ok && fn != c.embedderName {
		return nil, fmt.Errorf("collection %q is bound to embedding function %q, store is configured with %q", name, fn, c.embedderName)
	}
	return &Collection{client: c, id: col.ID, name: col.Name}, nil
}

// DeleteCollection destroys the collection and all its records.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, "DELETE", c.baseURL+collectionsPath+"/"+name, nil, nil)
}

// ListCollections returns every collection with its stored metadata.
func (c *Client) ListCollections(ctx context.Context) ([]models.KbCollection, error) {
	var raw []collectionResponse
	if err := c.do(ctx, "GET", c.baseURL+collectionsPath, nil, &raw); err != nil {
		return nil, err
	}

	out := make([]models.KbCollection, 0, len(raw))
	for _, col := range raw {
		kb := models.KbCollection{Name: col.Name}
		if d, ok := col.Metadata["description"].(string); ok {
			kb.Description = d
		}
		if created, ok := col.Metadata["created"].(string); ok {
			kb.Created = created
		}
		out = append(out, kb)
	}
	return out, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do sends one JSON request and decodes the response into out (when non-nil).
// A 404 maps to core.ErrNotFound so callers can branch on absence.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", core.ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
