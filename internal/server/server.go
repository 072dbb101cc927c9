// Package server exposes the HTTP API: auth, uploads, analysis and chat.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"golang.org/x/sync/semaphore"

	"legal-doc-assistant/internal/analysis"
	"legal-doc-assistant/internal/config"
	"legal-doc-assistant/internal/rag"
	"legal-doc-assistant/internal/textstore"
)

type Server struct {
	cfg      *config.Config
	db       *bun.DB
	texts    *textstore.Store
	analyzer *analysis.Extractor
	composer *rag.Composer

	// workers bounds concurrent extraction/embedding/completion work so
	// heavy requests cannot saturate the process.
	workers *semaphore.Weighted
	router  chi.Router
}

func New(cfg *config.Config, bunDB *bun.DB, texts *textstore.Store, analyzer *analysis.Extractor, composer *rag.Composer) *Server {
	s := &Server{
		cfg:      cfg,
		db:       bunDB,
		texts:    texts,
		analyzer: analyzer,
		composer: composer,
		workers:  semaphore.NewWeighted(cfg.Server.MaxWorkers),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/documents/user/{userID}", s.handleUserDocuments)
	r.Post("/documents/upload", s.handleUpload)
	r.Get("/analysis/{documentID}", s.handleAnalysis)
	r.Post("/chat/user", s.handleChat)
	return r
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down server")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Server shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("Starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runJob executes fn under the bounded worker gate, blocking while all
// workers are busy.
func (s *Server) runJob(ctx context.Context, fn func()) error {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.workers.Release(1)
	fn()
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Encoding response")
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
