// Package server wires handlers, middleware and routes, and owns the HTTP
// server lifecycle. It is the composition root: every dependency chain —
// store, services, handlers — is assembled here, nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"painpal/internal/auth"
	"painpal/internal/companion"
	"painpal/internal/config"
	"painpal/internal/handler"
	"painpal/internal/middleware"
	"painpal/internal/repository"
	"painpal/internal/service"
)

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New assembles the full application. The store and companion client are
// created by the caller (main decides which backend and which model), the
// token service is nil in development mode.
func New(cfg *config.Config, logger *slog.Logger, store repository.Store, tokens *auth.TokenService, client companion.Client) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes(tokens, client)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(tokens *auth.TokenService, client companion.Client) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	accounts := service.NewAccountService(s.store, s.logger)
	tracker := service.NewTrackerService(s.store, s.logger)
	comp := service.NewCompanionService(s.store, client, s.logger)

	users := handler.NewUserHandler(accounts)
	tracking := handler.NewTrackerHandler(tracker)
	companionH := handler.NewCompanionHandler(comp)

	s.router.Route("/api", func(r chi.Router) {
		// Registration is the only unauthenticated endpoint: it runs on
		// every sign-in, before the caller has an account here.
		r.Post("/users", users.Register)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, s.store))

			r.Get("/users/me", users.Me)

			r.Get("/pain-logs", tracking.ListPainLogs)
			r.Post("/pain-logs", tracking.CreatePainLog)
			r.Get("/pain-logs/streak", tracking.Streak)

			r.Get("/mood-logs", tracking.ListMoodLogs)
			r.Post("/mood-logs", tracking.CreateMoodLog)

			r.Get("/interventions", tracking.ListInterventions)
			r.Post("/interventions", tracking.CreateIntervention)
			r.Get("/interventions/{id}/logs", tracking.ListInterventionLogs)
			r.Post("/interventions/{id}/logs", tracking.CreateInterventionLog)

			r.Get("/chat/messages", companionH.History)
			r.Post("/chat", companionH.Chat)

			r.Get("/summary/daily", companionH.DailySummary)
			r.Get("/summary/patterns", companionH.Patterns)
		})
	})
}

// Start runs the server until a SIGINT/SIGTERM arrives, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("storage", s.cfg.StorageBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
