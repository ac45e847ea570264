package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// KeyStore persists per-collection API keys in Postgres.
type KeyStore struct {
	db *sql.DB
}

func NewKeyStore(db *sql.DB) *KeyStore {
	return &KeyStore{db: db}
}

var _ core.KeyStore = (*KeyStore)(nil)

// Find returns every key record.
func (s *KeyStore) Find(ctx context.Context) ([]models.ApiKeyRecord, error) {
	const q = `SELECT collection, api_key FROM api_keys ORDER BY collection`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ApiKeyRecord
	for rows.Next() {
		var rec models.ApiKeyRecord
		if err := rows.Scan(&rec.Collection, &rec.ApiKey); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// First returns the first record matching the query, or nil when absent.
// Zero-valued query fields are ignored.
func (s *KeyStore) First(ctx context.Context, query models.ApiKeyQuery) (*models.ApiKeyRecord, error) {
	where, args := keyQuery(query)
	q := `SELECT collection, api_key FROM api_keys` + where + ` LIMIT 1`

	var rec models.ApiKeyRecord
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&rec.Collection, &rec.ApiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert stores a new key record.
func (s *KeyStore) Insert(ctx context.Context, record models.ApiKeyRecord) error {
	const q = `INSERT INTO api_keys (collection, api_key) VALUES ($1, $2)`
	_, err := s.db.ExecContext(ctx, q, record.Collection, record.ApiKey)
	return err
}

// Delete removes every record matching the query.
func (s *KeyStore) Delete(ctx context.Context, query models.ApiKeyQuery) error {
	where, args := keyQuery(query)
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_keys`+where, args...)
	return err
}

func keyQuery(query models.ApiKeyQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if query.Collection != "" {
		args = append(args, query.Collection)
		conds = append(conds, fmt.Sprintf("collection = $%d", len(args)))
	}
	if query.ApiKey != "" {
		args = append(args, query.ApiKey)
		conds = append(conds, fmt.Sprintf("api_key = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
