package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// DefaultPdfMaxBytes is the input-size ceiling of the external extractor.
// Larger files are split into page-range sub-documents first.
const DefaultPdfMaxBytes = 10 << 20

// DefaultPdfPagesPerPart is the page-range width used when splitting.
const DefaultPdfPagesPerPart = 5

// pdfParser turns PDF bytes into chunk batches. Byte-level extraction is
// delegated to the external TextExtractor; the resulting markdown reuses
// the markdown section parser.
type pdfParser struct {
	extractor    core.TextExtractor
	maxBytes     int
	pagesPerPart int
}

func newPdfParser(extractor core.TextExtractor, maxBytes, pagesPerPart int) *pdfParser {
	if maxBytes <= 0 {
		maxBytes = DefaultPdfMaxBytes
	}
	if pagesPerPart <= 0 {
		pagesPerPart = DefaultPdfPagesPerPart
	}
	return &pdfParser{extractor: extractor, maxBytes: maxBytes, pagesPerPart: pagesPerPart}
}

// parse extracts the document to markdown and sections it. Extractors that
// return unstructured text (no headings at all) fall back to plain-text
// chunking so the document still ingests.
func (p *pdfParser) parse(ctx context.Context, data []byte, filename, collection string, supplied models.Metadata, size, overlap int) (*models.ChunkBatch, error) {
	text, err := p.extractText(ctx, data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %q extracted no text", core.ErrParse, filename)
	}

	if !hasHeadings(text) {
		return parsePlainText(text, filename, collection, supplied, size, overlap)
	}
	return parseMarkdown(text, filename, collection, supplied, size, overlap)
}

// extractText runs the external extractor, splitting oversized files into
// fixed page-range sub-documents extracted independently and concatenated
// in page order. Any sub-extraction failure fails the whole document.
func (p *pdfParser) extractText(ctx context.Context, data []byte) (string, error) {
	if len(data) <= p.maxBytes {
		return p.extractor.Extract(ctx, data)
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("%w: page count: %v", core.ErrParse, err)
	}
	log.Printf("splitting %d-page pdf (%d bytes) into %d-page parts", pages, len(data), p.pagesPerPart)

	var sb strings.Builder
	for start := 1; start <= pages; start += p.pagesPerPart {
		end := start + p.pagesPerPart - 1
		if end > pages {
			end = pages
		}
		part, err := extractPageRange(data, start, end)
		if err != nil {
			return "", fmt.Errorf("%w: pages %d-%d: %v", core.ErrParse, start, end, err)
		}
		text, err := p.extractor.Extract(ctx, part)
		if err != nil {
			return "", fmt.Errorf("extract pages %d-%d: %w", start, end, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// extractPageRange builds a standalone PDF holding only pages [start, end].
func extractPageRange(data []byte, start, end int) ([]byte, error) {
	var buf bytes.Buffer
	sel := []string{fmt.Sprintf("%d-%d", start, end)}
	if err := api.Trim(bytes.NewReader(data), &buf, sel, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
