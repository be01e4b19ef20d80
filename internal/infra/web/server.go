package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shelter-guard/internal/domain/model"
	"shelter-guard/internal/infra/registry"
)

// GuardStatus is the read-only view of the guard served by the admin API.
type GuardStatus interface {
	Enabled() bool
	BuildStatus() model.Status
}

type DeviceLister interface {
	Devices() []registry.Descriptor
}

// Server is the admin HTTP surface: health, metrics and guard state.
type Server struct {
	guard   GuardStatus
	devices DeviceLister
	log     *zerolog.Logger
}

func NewServer(guard GuardStatus, devices DeviceLister, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "AdminServer").Logger()
	return &Server{guard: guard, devices: devices, log: &l}
}

// Routes builds the admin router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/guard", guardHandler(s.guard))
		r.Get("/devices", devicesHandler(s.devices))
	})
	return r
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("admin server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("admin shutdown: %w", err)
		}
		s.log.Info().Msg("admin server stopped")
		return nil
	}
}
