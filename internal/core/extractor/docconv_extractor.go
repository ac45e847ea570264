// Package extractor provides a local, non-LLM text extractor built on
// sajari/docconv for deployments without a multimodal model.
package extractor

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/kbase/internal/core"
)

type DocconvExtractor struct {
	useOCR bool
}

func NewDocconvExtractor(useOCR bool) *DocconvExtractor {
	return &DocconvExtractor{useOCR: useOCR}
}

var _ core.TextExtractor = (*DocconvExtractor)(nil)

// Extract converts the PDF to plain text. The output carries no markdown
// heading structure, so downstream parsing falls back to plain-text
// chunking.
func (e *DocconvExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", e.useOCR)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return res.Body, nil
}
