package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/kbase/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/kbase/internal/api/middlewares"
	"github.com/markdave123-py/kbase/internal/config"
	"github.com/markdave123-py/kbase/internal/docs"
	"github.com/markdave123-py/kbase/internal/ingest"
	"github.com/markdave123-py/kbase/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, collections *services.CollectionService, search *services.SearchService, admin *services.AdminService, ingestor *ingest.DocumentIngestor) *Server {
	collectionHandler := handlers.NewCollectionHandler(collections)
	documentHandler := handlers.NewDocumentHandler(ingestor)
	searchHandler := handlers.NewSearchHandler(search)
	adminHandler := handlers.NewAdminHandler(admin)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/healthcheck", handlers.Health)

	r.Route("/collections", func(cr chi.Router) {
		cr.Get("/", collectionHandler.List)
		cr.Post("/", collectionHandler.Create)
		cr.Delete("/{name}", collectionHandler.Delete)
	})

	r.Route("/documents/{collection}", func(dr chi.Router) {
		dr.Get("/", documentHandler.List)
		dr.Post("/", documentHandler.Upload)
		dr.Post("/text", documentHandler.UploadText)
		dr.Get("/{document}", documentHandler.Details)
		dr.Delete("/{filename}", documentHandler.Delete)
	})

	r.Route("/search/{collection}", func(sr chi.Router) {
		sr.Use(appMiddleware.ApiKeyMiddleware(admin))
		sr.Post("/", searchHandler.Search)
	})

	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/", adminHandler.List)
		ar.Get("/{collection}", adminHandler.Get)
		ar.Post("/{collection}", adminHandler.Create)
		ar.Delete("/{collection}", adminHandler.Delete)
	})

	if cfg.DocsEnabled {
		r.Get("/docs/openapi.json", docs.OpenAPI)
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
