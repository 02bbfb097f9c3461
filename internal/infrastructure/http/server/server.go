// Package server exposes the planning engine over HTTP. The adapter is
// deliberately thin: parse, delegate to the inbound port, encode.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/greenbite/engine/internal/infrastructure/config"
	"github.com/greenbite/engine/internal/ports/inbound"
)

// Server wraps the HTTP server and its router.
type Server struct {
	cfg     config.ServerConfig
	planner inbound.PlannerService
	logger  *zap.Logger
	http    *http.Server
}

// New builds the HTTP server with its routes mounted.
func New(cfg config.ServerConfig, planner inbound.PlannerService, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		planner: planner,
		logger:  logger.Named("http-server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Post("/", s.handleGeneratePlan)
			r.Post("/async", s.handleGeneratePlanAsync)
			r.Get("/{planID}", s.handleGetPlan)
			r.Post("/{planID}/confirm", s.handleConfirmPlan)
		})
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/{jobID}", s.handleGetJob)
		})
		r.Route("/days", func(r chi.Router) {
			r.Post("/{dayID}/confirm", s.handleConfirmDay)
			r.Get("/{dayID}/preview", s.handlePreviewDay)
		})
		r.Route("/slots", func(r chi.Router) {
			r.Post("/{slotID}/replace", s.handleReplaceSlot)
			r.Post("/{slotID}/skip", s.handleSkipSlot)
		})
	})

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the mounted router, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
