package ingest

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/models"
)

// File is one uploaded document held in memory.
type File struct {
	Name string
	Data []byte
}

// Config tunes the ingestion pipeline.
//
// ChunkSize/ChunkOverlap:         chunking profile for file ingestion.
// TextChunkSize/TextChunkOverlap: profile for inline plain-text ingestion.
// PdfMaxBytes:                    extractor input ceiling before page splitting.
// PdfPagesPerPart:                page-range width for oversized PDFs.
// ArchiveBucket:                  object-storage bucket for original uploads;
//                                 empty disables archiving.
type Config struct {
	ChunkSize        int
	ChunkOverlap     int
	TextChunkSize    int
	TextChunkOverlap int
	PdfMaxBytes      int
	PdfPagesPerPart  int
	ArchiveBucket    string
}

// DefaultConfig returns the standard profiles.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:        FileChunkSize,
		ChunkOverlap:     FileChunkOverlap,
		TextChunkSize:    TextChunkSize,
		TextChunkOverlap: TextChunkOverlap,
		PdfMaxBytes:      DefaultPdfMaxBytes,
		PdfPagesPerPart:  DefaultPdfPagesPerPart,
	}
}

// DocumentIngestor coordinates parser selection, chunking, id and metadata
// assignment, embedding generation and the storage write. It also owns
// deletion by filename and listing of known filenames.
type DocumentIngestor struct {
	store    core.VectorStore
	embedder core.EmbeddingProvider
	pdf      *pdfParser
	archive  core.ObjectClient // nil when archiving is disabled
	cfg      *Config
}

// NewDocumentIngestor wires the pipeline. archive may be nil.
func NewDocumentIngestor(store core.VectorStore, emb core.EmbeddingProvider, extractor core.TextExtractor, archive core.ObjectClient, cfg *Config) *DocumentIngestor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &DocumentIngestor{
		store:    store,
		embedder: emb,
		pdf:      newPdfParser(extractor, cfg.PdfMaxBytes, cfg.PdfPagesPerPart),
		archive:  archive,
		cfg:      cfg,
	}
}

// AddDocument parses one file, embeds all its chunks in a single provider
// call, and writes the aligned tuples in one batch. Either every chunk of
// the document is persisted or none.
func (i *DocumentIngestor) AddDocument(ctx context.Context, collection string, file File, supplied models.Metadata) error {
	collection = strings.ToLower(collection)
	filename := path.Base(file.Name)

	batch, err := i.parse(ctx, collection, filename, file.Data, supplied)
	if err != nil {
		return err
	}

	if err := i.embedAndWrite(ctx, collection, batch); err != nil {
		return err
	}

	i.archivePut(ctx, collection, filename, file.Data)
	log.Printf("ingested %q into %q (%d chunks)", filename, collection, batch.Len())
	return nil
}

// AddDocuments ingests each file concurrently. All must succeed; the first
// failure is surfaced, but documents written before it are not rolled back.
func (i *DocumentIngestor) AddDocuments(ctx context.Context, collection string, files []File, supplied models.Metadata) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			return i.AddDocument(gctx, collection, f, supplied)
		})
	}
	return g.Wait()
}

// AddPlainText ingests raw text under a logical filename, skipping the
// file-type dispatch and using the inline chunking profile.
func (i *DocumentIngestor) AddPlainText(ctx context.Context, collection, filename, text string, supplied models.Metadata) error {
	collection = strings.ToLower(collection)

	batch, err := parsePlainText(text, filename, collection, supplied, i.cfg.TextChunkSize, i.cfg.TextChunkOverlap)
	if err != nil {
		return err
	}
	return i.embedAndWrite(ctx, collection, batch)
}

// GetDocumentList returns the distinct filenames stored in the collection.
func (i *DocumentIngestor) GetDocumentList(ctx context.Context, collection string) ([]string, error) {
	col, err := i.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	records, err := col.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", core.ErrStorage, err)
	}

	seen := make(map[string]struct{})
	names := make([]string, 0, len(records))
	for _, r := range records {
		name, ok := r.Metadata["filename"].(string)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// GetDocumentDetails returns the raw stored records for one filename.
// An empty result means the document is absent.
func (i *DocumentIngestor) GetDocumentDetails(ctx context.Context, collection, filename string) ([]models.ChunkRecord, error) {
	col, err := i.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	records, err := col.Get(ctx, models.Metadata{"filename": filename})
	if err != nil {
		return nil, fmt.Errorf("%w: document details: %v", core.ErrStorage, err)
	}
	return records, nil
}

// DeleteDocument removes every chunk whose metadata matches the filename.
// Zero matches is a no-op success.
func (i *DocumentIngestor) DeleteDocument(ctx context.Context, collection, filename string) error {
	collection = strings.ToLower(collection)
	col, err := i.collection(ctx, collection)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, models.Metadata{"filename": filename}); err != nil {
		return fmt.Errorf("%w: delete document: %v", core.ErrStorage, err)
	}

	i.archiveDelete(ctx, collection, filename)
	return nil
}

// parse dispatches on the format resolved from the filename extension.
func (i *DocumentIngestor) parse(ctx context.Context, collection, filename string, data []byte, supplied models.Metadata) (*models.ChunkBatch, error) {
	size, overlap := i.cfg.ChunkSize, i.cfg.ChunkOverlap

	switch ResolveFormat(filename) {
	case FormatMarkdown:
		return parseMarkdown(string(data), filename, collection, supplied, size, overlap)
	case FormatPDF:
		return i.pdf.parse(ctx, data, filename, collection, supplied, size, overlap)
	default:
		return parsePlainText(string(data), filename, collection, supplied, size, overlap)
	}
}

// embedAndWrite embeds the whole batch in one provider call and issues a
// single add against the resolved collection.
func (i *DocumentIngestor) embedAndWrite(ctx context.Context, collection string, batch *models.ChunkBatch) error {
	vectors, err := i.embedder.EmbedTexts(ctx, batch.Texts)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	if len(vectors) != batch.Len() {
		return fmt.Errorf("%w: got %d vectors for %d chunks", core.ErrEmbedding, len(vectors), batch.Len())
	}
	batch.Embeddings = vectors

	col, err := i.collection(ctx, collection)
	if err != nil {
		return err
	}
	if err := col.Add(ctx, batch); err != nil {
		return fmt.Errorf("%w: add chunks: %v", core.ErrStorage, err)
	}
	return nil
}

func (i *DocumentIngestor) collection(ctx context.Context, name string) (core.VectorCollection, error) {
	col, err := i.store.GetCollection(ctx, strings.ToLower(name))
	if err != nil {
		return nil, err
	}
	return col, nil
}

// archivePut uploads the original bytes to object storage. Best effort:
// the chunks are already persisted, so a failed archive only logs.
func (i *DocumentIngestor) archivePut(ctx context.Context, collection, filename string, data []byte) {
	if i.archive == nil || i.cfg.ArchiveBucket == "" {
		return
	}
	key := path.Join(collection, filename)
	if _, err := i.archive.UploadFile(ctx, i.cfg.ArchiveBucket, key, data, "application/octet-stream"); err != nil {
		log.Printf("archive upload failed for %s: %v", key, err)
	}
}

func (i *DocumentIngestor) archiveDelete(ctx context.Context, collection, filename string) {
	if i.archive == nil || i.cfg.ArchiveBucket == "" {
		return
	}
	key := path.Join(collection, filename)
	if err := i.archive.DeleteFile(ctx, i.cfg.ArchiveBucket, key); err != nil {
		log.Printf("archive delete failed for %s: %v", key, err)
	}
}
