// Package api exposes chat sessions and their analysis over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/reflectbot/internal/analysis"
	"github.com/MikeSquared-Agency/reflectbot/internal/conversation"
	"github.com/MikeSquared-Agency/reflectbot/internal/hermes"
	"github.com/MikeSquared-Agency/reflectbot/internal/store"
)

// SessionStore is the persistence the handlers need.
type SessionStore interface {
	CreateSession(ctx context.Context, id uuid.UUID, userID, greeting string) (*store.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*store.Session, error)
	ListSessions(ctx context.Context, userID string) ([]store.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	AddExchange(ctx context.Context, sessionID uuid.UUID, ex store.Exchange) error
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]store.ChatMessage, error)
	CountUserMessages(ctx context.Context, sessionID uuid.UUID) (int, error)
}

// Analyzer runs and explains session analyses.
type Analyzer interface {
	Analyze(ctx context.Context, sessionID uuid.UUID) (*analysis.Result, error)
	Explain(ctx context.Context, sessionID uuid.UUID, phrase string) (string, error)
}

type Options struct {
	Port           int
	APIToken       string
	AllowedOrigins []string
	AnalyzeTimeout time.Duration
}

type Deps struct {
	Store     SessionStore
	Chat      *conversation.Registry
	Analysis  Analyzer
	Publisher hermes.Publisher
	Logger    *slog.Logger
}

type Server struct {
	router *chi.Mux
	http   *http.Server
	opts   Options

	store     SessionStore
	chat      *conversation.Registry
	analysis  Analyzer
	publisher hermes.Publisher
	logger    *slog.Logger
}

func NewServer(opts Options, deps Deps) *Server {
	if opts.AnalyzeTimeout <= 0 {
		opts.AnalyzeTimeout = 180 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if deps.Publisher == nil {
		deps.Publisher = hermes.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	s := &Server{
		router:    router,
		opts:      opts,
		store:     deps.Store,
		chat:      deps.Chat,
		analysis:  deps.Analysis,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(opts.APIToken))
		r.Use(requireUser)

		r.Post("/sessions", s.createSession)
		r.Get("/sessions", s.listSessions)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/messages", s.listMessages)
			r.Post("/messages", s.postMessage)
			r.Post("/analyze", s.analyze)
			r.Post("/explain", s.explain)
		})
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
