// Package api exposes the HTTP surface: the streaming chat endpoint,
// session and library CRUD, document ingestion, and health probes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/eduassist/eduassist/internal/chat"
	"github.com/eduassist/eduassist/internal/knowledge"
	"github.com/eduassist/eduassist/internal/library"
	"github.com/eduassist/eduassist/internal/session"
)

// ChatRunner drives one streamed conversation.
type ChatRunner interface {
	Run(ctx context.Context, messages []chat.Message, emit chat.EmitFunc) error
}

// SessionStore is the session persistence the handlers depend on.
type SessionStore interface {
	List(ctx context.Context) ([]session.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Create(ctx context.Context, title string, messages []session.Message) (*session.Session, error)
	Update(ctx context.Context, id uuid.UUID, title string, messages []session.Message) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LibraryStore is the saved-material persistence the handlers depend on.
type LibraryStore interface {
	ListContent(ctx context.Context) ([]library.Content, error)
	SaveObjectives(ctx context.Context, p library.SaveObjectivesParams) (*library.ObjectiveSet, error)
	ListObjectives(ctx context.Context) ([]library.ObjectiveSet, error)
	DeleteObjectives(ctx context.Context, id uuid.UUID) error
}

// Ingestor feeds new documents into the knowledge base.
type Ingestor interface {
	IngestAll(ctx context.Context, docs []knowledge.SourceDocument) []knowledge.IngestResult
}

// Pinger verifies a dependency is reachable, used by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP server settings.
type Config struct {
	Addr          string
	CORSOrigins   []string
	TrustProxy    bool
	RatePerMinute int
	RateBurst     int
}

// Server wires the handlers, middleware, and lifecycle.
type Server struct {
	cfg        Config
	runner     ChatRunner
	sessions   SessionStore
	library    LibraryStore
	ingestor   Ingestor
	db         Pinger
	logger     *slog.Logger
	httpServer *http.Server
}

// New assembles the server. All dependencies are required except the
// ingestor, which may be nil when ingestion is CLI-only.
func New(cfg Config, runner ChatRunner, sessions SessionStore, lib LibraryStore, ingestor Ingestor, db Pinger, logger *slog.Logger) *Server {
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 60
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = cfg.RatePerMinute
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		sessions: sessions,
		library:  lib,
		ingestor: ingestor,
		db:       db,
		logger:   logger,
	}

	limiter := newIPLimiter(cfg.RatePerMinute, cfg.RateBurst, cfg.TrustProxy, logger)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = limiter.middleware(handler)
	handler = cors(cfg.CORSOrigins)(handler)
	handler = logging(logger)(handler)
	handler = requestID(handler)
	handler = recovery(logger)(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: chat responses stream for as long as the
		// model keeps producing.
	}

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat", s.handleChat)

	mux.HandleFunc("GET /api/v1/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /api/v1/sessions/{id}", s.handleUpdateSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("GET /api/v1/objectives", s.handleListObjectives)
	mux.HandleFunc("POST /api/v1/objectives", s.handleSaveObjectives)
	mux.HandleFunc("DELETE /api/v1/objectives/{id}", s.handleDeleteObjectives)

	mux.HandleFunc("GET /api/v1/content", s.handleListContent)

	mux.HandleFunc("POST /api/v1/ingest", s.handleIngest)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}
