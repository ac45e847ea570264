package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// AdminService owns API key lifecycle and validation against the key store.
type AdminService struct {
	keys core.KeyStore
}

func NewAdminService(keys core.KeyStore) *AdminService {
	return &AdminService{keys: keys}
}

// CreateKey returns the collection's key, creating it lazily on first
// request. New keys re-roll until unique across all collections.
func (s *AdminService) CreateKey(ctx context.Context, collection string) (string, error) {
	collection = strings.ToLower(collection)
	if collection == "" {
		return "", fmt.Errorf("%w: collection is required", core.ErrValidation)
	}

	existing, err := s.keys.First(ctx, models.ApiKeyQuery{Collection: collection})
	if err != nil {
		return "", fmt.Errorf("%w: key lookup: %v", core.ErrStorage, err)
	}
	if existing != nil {
		return existing.ApiKey, nil
	}

	var key string
	for {
		key = uuid.NewString()
		taken, err := s.keys.First(ctx, models.ApiKeyQuery{ApiKey: key})
		if err != nil {
			return "", fmt.Errorf("%w: key lookup: %v", core.ErrStorage, err)
		}
		if taken == nil {
			break
		}
	}

	if err := s.keys.Insert(ctx, models.ApiKeyRecord{Collection: collection, ApiKey: key}); err != nil {
		return "", fmt.Errorf("%w: key insert: %v", core.ErrStorage, err)
	}
	return key, nil
}

// GetKey returns the collection's key, or "" when none exists.
func (s *AdminService) GetKey(ctx context.Context, collection string) (string, error) {
	rec, err := s.keys.First(ctx, models.ApiKeyQuery{Collection: strings.ToLower(collection)})
	if err != nil {
		return "", fmt.Errorf("%w: key lookup: %v", core.ErrStorage, err)
	}
	if rec == nil {
		return "", nil
	}
	return rec.ApiKey, nil
}

// ListKeys returns every key record.
func (s *AdminService) ListKeys(ctx context.Context) ([]models.ApiKeyRecord, error) {
	records, err := s.keys.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: key list: %v", core.ErrStorage, err)
	}
	return records, nil
}

// DeleteKey removes the collection's key record.
func (s *AdminService) DeleteKey(ctx context.Context, collection string) error {
	if err := s.keys.Delete(ctx, models.ApiKeyQuery{Collection: strings.ToLower(collection)}); err != nil {
		return fmt.Errorf("%w: key delete: %v", core.ErrStorage, err)
	}
	return nil
}

// ValidateApiKey checks the Authorization header value against the
// collection's stored key. Both a raw key and the "Bearer <key>" form are
// accepted. A missing header or collection fails without a lookup.
func (s *AdminService) ValidateApiKey(ctx context.Context, header, collection string) (bool, error) {
	collection = strings.ToLower(collection)
	if header == "" || collection == "" {
		return false, nil
	}

	token := header
	if fields := strings.Fields(header); len(fields) > 1 {
		token = fields[1]
	}

	rec, err := s.keys.First(ctx, models.ApiKeyQuery{Collection: collection, ApiKey: token})
	if err != nil {
		return false, fmt.Errorf("%w: key lookup: %v", core.ErrStorage, err)
	}
	return rec != nil, nil
}
