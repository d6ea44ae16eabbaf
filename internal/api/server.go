// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

 - This package is the topmost Presentation layer boundary.
 - It acts as the central composition root for the HTTP transport framework (chi router).
 - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mirrorstash/mirrorstash/internal/platform/config"
	"github.com/mirrorstash/mirrorstash/internal/platform/constants"
	"github.com/mirrorstash/mirrorstash/internal/platform/middleware"
	"github.com/mirrorstash/mirrorstash/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router *chi.Mux
	log *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here and register their routes in [NewServer].
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Browsable-kind handlers.
	Scene *SceneHandler
	Image *ImageHandler
	Gallery *GalleryHandler
	Performer *PerformerHandler
	Studio *StudioHandler
	Tag *TagHandler
	Group *GroupHandler

	// Sync manages replication status, manual triggers, and instance clear.
	Sync *SyncHandler

	// Hidden manages the authenticated caller's per-entity overlay.
	Hidden *HiddenHandler

	// Prober re-checks preview generation state on demand.
	Prober *ProberHandler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	rte := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	rte.Use(middleware.RequestID)
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	rte.Use(middleware.RateLimit(ctx))
	rte.Use(middleware.PanicRecovery(log))
	rte.Use(middleware.Authenticate(verifier))
	rte.Use(middleware.CORS(cfg))
	rte.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	rte.Get("/health", h.Liveness)
	rte.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	rte.Route("/v1", func(api chi.Router) {
		api.Get("/scenes", h.Scene.List)
		api.Get("/scenes/{id}", h.Scene.ByID)
		api.Get("/scenes/{id}/clips", h.Scene.Clips)

		api.Get("/images", h.Image.List)
		api.Get("/images/{id}", h.Image.ByID)

		api.Get("/galleries", h.Gallery.List)
		api.Get("/galleries/{id}", h.Gallery.ByID)

		api.Get("/performers", h.Performer.List)
		api.Get("/performers/{id}", h.Performer.ByID)

		api.Get("/studios", h.Studio.List)
		api.Get("/studios/{id}", h.Studio.ByID)

		api.Get("/tags", h.Tag.List)
		api.Get("/tags/{id}", h.Tag.ByID)

		api.Get("/groups", h.Group.List)
		api.Get("/groups/{id}", h.Group.ByID)

		// Hide/unhide requires an authenticated caller; admin role not
		// required — enforced inside the handler via requestutil.RequiredUserID.
		api.Route("/me/hidden/{kind}/{id}", func(me chi.Router) {
			me.Post("/", h.Hidden.Hide)
			me.Delete("/", h.Hidden.Unhide)
		})

		// Sync status/control and the prober reprobe trigger are admin-only;
		// each handler double-checks via requireAdmin, but gating at the
		// router too keeps an anonymous caller from reaching the handler at
		// all.
		api.Route("/sync", func(s chi.Router) {
			s.Use(middleware.RequireRole(sec.RoleAdmin))
			s.Get("/status", h.Sync.Status)
			s.Post("/full", h.Sync.Full)
			s.Post("/incremental", h.Sync.Incremental)
			s.Post("/abort", h.Sync.Abort)
		})

		api.Route("/admin/instances/{id}/clear", func(a chi.Router) {
			a.Use(middleware.RequireRole(sec.RoleAdmin))
			a.Post("/", h.Sync.ClearInstance)
		})

		api.Route("/prober", func(p chi.Router) {
			p.Use(middleware.RequireRole(sec.RoleAdmin))
			p.Post("/reprobe", h.Prober.Reprobe)
		})
	})

	return &Server{
		router: rte,
		log: log,
		httpServer: &http.Server{
			Addr: ":" + cfg.ServerPort,
			Handler: rte,
			ReadTimeout: constants.DefaultReadTimeout,
			WriteTimeout: constants.DefaultWriteTimeout,
			IdleTimeout: constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
