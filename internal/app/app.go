package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/markdave123-py/kbase/internal/config"
	"github.com/markdave123-py/kbase/internal/core"
	"github.com/markdave123-py/kbase/internal/core/database"
	"github.com/markdave123-py/kbase/internal/core/extractor"
	"github.com/markdave123-py/kbase/internal/core/llm"
	"github.com/markdave123-py/kbase/internal/core/objectclient"
	"github.com/markdave123-py/kbase/internal/core/vectorstore/chroma"
	"github.com/markdave123-py/kbase/internal/core/vectorstore/pgvector"
	"github.com/markdave123-py/kbase/internal/ingest"
	"github.com/markdave123-py/kbase/internal/services"
)

type App struct {
	DB       *sql.DB
	Store    core.VectorStore
	Embedder *llm.GeminiEmbedder
	Server   *Server
}

// NewApp constructs every client once at startup and injects them into the
// components that need them.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	db, err := database.Connect(appCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	store, err := newVectorStore(cfg, db, embedder.Name())
	if err != nil {
		return nil, err
	}
	log.Printf("Vector store %q ready.", cfg.VectorStore)

	textExtractor, err := newExtractor(appCtx, cfg)
	if err != nil {
		return nil, err
	}

	var archive core.ObjectClient
	if cfg.BucketName != "" {
		s3Client, err := objectclient.NewS3Client(appCtx, cfg.AwsAccessKey, cfg.AwsSecretKey, cfg.AwsRegion)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the archive client: %w", err)
		}
		archive = s3Client
	}

	ingCfg := ingest.DefaultConfig()
	ingCfg.PdfMaxBytes = cfg.PdfMaxBytes
	ingCfg.ArchiveBucket = cfg.BucketName

	ingestor := ingest.NewDocumentIngestor(store, embedder, textExtractor, archive, ingCfg)

	collectionSvc := services.NewCollectionService(store)
	searchSvc := services.NewSearchService(store, embedder, cfg.SearchTopK)
	adminSvc := services.NewAdminService(database.NewKeyStore(db))

	server := NewServer(cfg, collectionSvc, searchSvc, adminSvc, ingestor)

	return &App{DB: db, Store: store, Embedder: embedder, Server: server}, nil
}

func newVectorStore(cfg *config.Config, db *sql.DB, embedderName string) (core.VectorStore, error) {
	switch cfg.VectorStore {
	case "pgvector":
		return pgvector.NewStore(db, embedderName), nil
	case "chroma", "":
		return chroma.NewClient(cfg.ChromaURL, embedderName)
	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE %q", cfg.VectorStore)
	}
}

func newExtractor(ctx context.Context, cfg *config.Config) (core.TextExtractor, error) {
	switch cfg.PdfExtractor {
	case "docconv":
		return extractor.NewDocconvExtractor(false), nil
	case "gemini", "":
		return llm.NewGeminiExtractor(ctx, cfg.AIAPIKey, cfg.PdfModel)
	default:
		return nil, fmt.Errorf("unknown PDF_EXTRACTOR %q", cfg.PdfExtractor)
	}
}

func (a *App) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
