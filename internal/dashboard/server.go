// Package dashboard serves the trip planner web UI and its JSON API.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
)

// Server hosts the dashboard on a single HTTP listener.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// IndexProvider yields the current schedule index; the loader swaps it when
// the static feed refreshes.
type IndexProvider func() *schedule.Index

// New builds the dashboard server. metricsHandler may be nil.
func New(port int, index IndexProvider, store *realtime.Store, metricsHandler http.Handler, logger *slog.Logger) *Server {
	h := &handlers{index: index, store: store, logger: logger}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/", h.indexPage)
	router.HandlerFunc(http.MethodGet, "/api/stops", h.stops)
	router.HandlerFunc(http.MethodGet, "/api/plan", h.plan)
	if metricsHandler != nil {
		router.Handler(http.MethodGet, "/metrics", metricsHandler)
	}

	return &Server{
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: securityHeaders(requestLogger(router, logger)),
		},
		logger: logger,
	}
}

// Start runs the listener until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
