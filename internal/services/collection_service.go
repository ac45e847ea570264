package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// CollectionService manages collection lifecycle in the vector store.
// Names are normalized to lowercase for storage keys.
type CollectionService struct {
	store core.VectorStore
}

func NewCollectionService(store core.VectorStore) *CollectionService {
	return &CollectionService{store: store}
}

// Create makes the collection, recording description and creation time as
// immutable metadata. Creating an existing collection is a no-op.
func (s *CollectionService) Create(ctx context.Context, kb models.KbCollection) error {
	if kb.Name == "" {
		return fmt.Errorf("%w: collection name is required", core.ErrValidation)
	}
	name := strings.ToLower(kb.Name)

	exists, err := s.exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	metadata := models.Metadata{
		"description": kb.Description,
		"created":     time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.CreateCollection(ctx, name, metadata); err != nil {
		return fmt.Errorf("%w: create collection: %v", core.ErrStorage, err)
	}
	return nil
}

// Delete destroys the collection and all its chunks. Deleting an absent
// collection is a no-op.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	name = strings.ToLower(name)

	exists, err := s.exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := s.store.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: delete collection: %v", core.ErrStorage, err)
	}
	return nil
}

// List returns every collection with its stored metadata.
func (s *CollectionService) List(ctx context.Context) ([]models.KbCollection, error) {
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %v", core.ErrStorage, err)
	}
	return collections, nil
}

// exists checks case-insensitively against the listed collections.
func (s *CollectionService) exists(ctx context.Context, name string) (bool, error) {
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: list collections: %v", core.ErrStorage, err)
	}
	for _, c := range collections {
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
