// Package pgvector implements core.VectorStore on Postgres with the
// pgvector extension, for deployments that already run Postgres and do not
// want a separate vector engine.
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// Store keeps one row per chunk in kb_chunks and one row per collection in
// kb_collections. Collection deletion cascades to its chunks.
type Store struct {
	db           *sql.DB
	embedderName string
}

// NewStore wraps an already-connected database handle.
func NewStore(db *sql.DB, embedderName string) *Store {
	return &Store{db: db, embedderName: embedderName}
}

var _ core.VectorStore = (*Store)(nil)

// CreateCollection inserts the collection row with its immutable metadata.
func (s *Store) CreateCollection(ctx context.Context, name string, metadata models.Metadata) error {
	description, _ := metadata["description"].(string)
	created := time.Now()
	if c, ok := metadata["created"].(string); ok {
		if t, err := time.Parse(time.RFC3339, c); err == nil {
			created = t
		}
	}

	const q = `
		INSERT INTO kb_collections (name, description, embedding_function, created)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, q, name, description, s.embedderName, created)
	return err
}

// GetCollection resolves a collection handle, verifying the embedding
// function it was created under.
func (s *Store) GetCollection(ctx context.Context, name string) (core.VectorCollection, error) {
	const q = `SELECT name, embedding_function FROM kb_collections WHERE name = $1`

	var colName, fn string
	err := s.db.QueryRowContext(ctx, q, name).Scan(&colName, &fn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: collection %q", core.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if fn != s.embedderName {
		return nil, fmt.Errorf("collection %q is bound to embedding function %q, store is configured with %q", name, fn, s.embedderName)
	}
	return &Collection{db: s.db, name: colName}, nil
}

// DeleteCollection removes the collection row; chunks go with it.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kb_collections WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: collection %q", core.ErrNotFound, name)
	}
	return nil
}

// ListCollections returns every collection with description and creation time.
func (s *Store) ListCollections(ctx context.Context) ([]models.KbCollection, error) {
	const q = `SELECT name, description, created FROM kb_collections ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KbCollection
	for rows.Next() {
		var (
			kb      models.KbCollection
			created time.Time
		)
		if err := rows.Scan(&kb.Name, &kb.Description, &created); err != nil {
			return nil, err
		}
		kb.Created = created.UTC().Format(time.RFC3339)
		out = append(out, kb)
	}
	return out, rows.Err()
}

// Close is a no-op; the shared database handle is owned by the caller.
func (s *Store) Close() error { return nil }

// Collection is a handle scoped to one collection name.
type Collection struct {
	db   *sql.DB
	name string
}

var _ core.VectorCollection = (*Collection)(nil)

func (c *Collection) Name() string { return c.name }

// Add inserts all chunks in a single transaction so a document is either
// fully persisted or not at all.
func (c *Collection) Add(ctx context.Context, batch *models.ChunkBatch) error {
	if batch.Len() == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO kb_chunks (id, collection, text, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range batch.IDs {
		meta, err := json.Marshal(batch.Metadatas[i])
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		vec := pgvector.NewVector(batch.Embeddings[i])
		if _, err := stmt.ExecContext(ctx, batch.IDs[i], c.name, batch.Texts[i], vec, meta); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get returns records matching every key in where against the metadata
// column. A nil where returns all records of the collection.
func (c *Collection) Get(ctx context.Context, where models.Metadata) ([]models.ChunkRecord, error) {
	cond, args := metadataFilter(where, 1)
	q := `SELECT id, text, metadata FROM kb_chunks WHERE collection = $1` + cond

	rows, err := c.db.QueryContext(ctx, q, append([]any{c.name}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChunkRecord
	for rows.Next() {
		var (
			rec models.ChunkRecord
			raw []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Text, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Metadata); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Query runs one nearest-neighbor search per embedding.
func (c *Collection) Query(ctx context.Context, embeddings [][]float32, topK int) ([][]string, error) {
	if topK <= 0 {
		topK = 10
	}
	const q = `
		SELECT text FROM kb_chunks
		WHERE collection = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`

	results := make([][]string, 0, len(embeddings))
	for _, emb := range embeddings {
		rows, err := c.db.QueryContext(ctx, q, c.name, pgvector.NewVector(emb), topK)
		if err != nil {
			return nil, err
		}
		var texts []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				rows.Close()
				return nil, err
			}
			texts = append(texts, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		results = append(results, texts)
	}
	return results, nil
}

// Delete removes records by id and/or metadata filter.
func (c *Collection) Delete(ctx context.Context, ids []string, where models.Metadata) error {
	if len(ids) == 0 && len(where) == 0 {
		return fmt.Errorf("delete needs ids or a filter")
	}

	args := []any{c.name}
	q := `DELETE FROM kb_chunks WHERE collection = $1`
	if len(ids) > 0 {
		placeholders := make([]string, len(ids))
		for i, id := range ids {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		q += ` AND id IN (` + strings.Join(placeholders, ", ") + `)`
	}
	cond, whereArgs := metadataFilter(where, len(args))
	q += cond
	args = append(args, whereArgs...)

	_, err := c.db.ExecContext(ctx, q, args...)
	return err
}

// metadataFilter builds "AND metadata->>'k' = $n" conditions starting after
// the given placeholder offset. Values compare as text.
func metadataFilter(where models.Metadata, offset int) (string, []any) {
	if len(where) == 0 {
		return "", nil
	}
	var (
		sb   strings.Builder
		args []any
	)
	for k, v := range where {
		args = append(args, fmt.Sprintf("%v", v))
		fmt.Fprintf(&sb, " AND metadata->>'%s' = $%d", strings.ReplaceAll(k, "'", "''"), offset+len(args))
	}
	return sb.String(), args
}
