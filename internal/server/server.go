// Package server wires the HTTP surface of the ACL admin service.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danishnajam/kafka/internal/core/config"
	"github.com/danishnajam/kafka/internal/health"
	"github.com/danishnajam/kafka/internal/metrics"
	"github.com/danishnajam/kafka/internal/middleware"
	"github.com/danishnajam/kafka/internal/router"
)

// Run serves until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, h *router.Handler, rr health.ReadinessReporter, prov *metrics.Provider) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID(logger))

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(rr))
	r.Get("/metrics", prov.Handler().ServeHTTP)

	r.Route("/v1/acls", func(r chi.Router) {
		r.Get("/", h.DescribeACLs())
		r.Post("/", h.CreateACLs())
		r.Post("/delete", h.DeleteACLs())
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
