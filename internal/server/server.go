package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/caseplan/internal/api/v1"
	"github.com/gosuda/caseplan/internal/api/ws"
	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/config"
	"github.com/gosuda/caseplan/internal/domain"
	"github.com/gosuda/caseplan/internal/notify"
	"github.com/gosuda/caseplan/internal/server/middleware"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	board      *board.Store
	repo       domain.SnapshotRepository
	wsHub      *ws.Hub // nil when Redis is not configured
	notifier   *notify.Notifier
	cfg        *config.Config
}

// New creates a Server with all routes wired.
// hub may be nil when the Redis change feed is not configured; notifier may
// be nil when Slack is not configured. Disabled integrations answer their
// routes with 501.
func New(cfg *config.Config, plan *board.Store, repo domain.SnapshotRepository, hub *ws.Hub, notifier *notify.Notifier) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router:   router,
		board:    plan,
		repo:     repo,
		wsHub:    hub,
		notifier: notifier,
		cfg:      cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Hub implements v1.EventPublisher; a typed-nil interface would dodge
	// the nil checks in the handlers, so only assign when the hub exists.
	var events v1.EventPublisher
	if hub != nil {
		events = hub
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.APIKey))
		r.Use(middleware.RateLimitByIP(context.Background(), cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

		apiConfig := huma.DefaultConfig("Caseplan API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, plan, repo, events)

		// Overdue digest: real handler when Slack is configured,
		// 501 placeholder otherwise.
		if notifier != nil {
			registerNotifyRoutes(api, plan, notifier)
		} else {
			r.Post("/notify/overdue", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotImplemented)
			})
		}
	})

	// WebSocket change feed, backed by Redis pub/sub.
	router.Route("/ws", func(r chi.Router) {
		if hub != nil {
			registerWSRoutes(r, hub)
		} else {
			r.Get("/changes", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotImplemented)
			})
		}
	})

	// Health check (unauthenticated, not rate limited).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if hub == nil {
		log.Info().Msg("redis not configured; live change feed disabled")
	}
	if notifier == nil {
		log.Info().Msg("slack not configured; overdue digest disabled")
	}

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
