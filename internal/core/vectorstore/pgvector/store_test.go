package pgvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/kbase/internal/models"
)

func TestMetadataFilterEmpty(t *testing.T) {
	cond, args := metadataFilter(nil, 1)
	assert.Empty(t, cond)
	assert.Nil(t, args)
}

func TestMetadataFilterSingleKey(t *testing.T) {
	cond, args := metadataFilter(models.Metadata{"filename": "a.txt"}, 1)
	assert.Equal(t, " AND metadata->>'filename' = $2", cond)
	assert.Equal(t, []any{"a.txt"}, args)
}

func TestMetadataFilterPlaceholderOffset(t *testing.T) {
	cond, args := metadataFilter(models.Metadata{"filename": "a.txt"}, 3)
	assert.Equal(t, " AND metadata->>'filename' = $4", cond)
	assert.Len(t, args, 1)
}

func TestMetadataFilterMultipleKeys(t *testing.T) {
	cond, args := metadataFilter(models.Metadata{"filename": "a.txt", "heading": "Intro"}, 1)
	assert.Contains(t, cond, "metadata->>'filename'")
	assert.Contains(t, cond, "metadata->>'heading'")
	assert.Len(t, args, 2)
}

func TestMetadataFilterCoercesValuesToText(t *testing.T) {
	cond, args := metadataFilter(models.Metadata{"page": 1}, 1)
	require.Len(t, args, 1)
	assert.Equal(t, "1", args[0])
	assert.Contains(t, cond, "metadata->>'page'")
}

func TestMetadataFilterEscapesQuotes(t *testing.T) {
	cond, _ := metadataFilter(models.Metadata{"bad'key": "v"}, 1)
	assert.Contains(t, cond, "metadata->>'bad''key'")
}
