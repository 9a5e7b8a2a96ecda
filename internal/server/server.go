// Package server exposes the bot's HTTP surface: the Telegram webhook route,
// a health probe, and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"validator_stats_bot/internal/logging"
	"validator_stats_bot/internal/metrics"
)

const (
	readHeaderTimeout = 2 * time.Second
	listenPrefix      = ":"
)

// Options configures the routes mounted by NewServer.
type Options struct {
	Port int
	// WebhookPath is the route Telegram posts updates to. The webhook route is
	// only mounted when both WebhookPath and Webhook are set.
	WebhookPath string
	SecretToken string
	Webhook     http.Handler
}

// Server owns the underlying HTTP server.
type Server struct {
	server *http.Server
	logger *logrus.Entry
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer constructs a server listening on opts.Port.
func NewServer(opts Options, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logging.Logger()
	}

	srv := &Server{logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	if path := strings.Trim(opts.WebhookPath, "/"); path != "" && opts.Webhook != nil {
		r.With(secretTokenMiddleware(opts.SecretToken, logger), updateLogger(logger)).
			Post("/"+path, opts.Webhook.ServeHTTP)
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf("%s%d", listenPrefix, opts.Port),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv
}

// ListenAndServe starts the server and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.WithFields(logging.Fields{
		"event": "http_listen",
		"addr":  s.server.Addr,
	}).Info("starting http server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server listen: %w", err)
	}

	s.logger.WithField("event", "http_stopped").Info("http server stopped")
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK"}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithField("event", "http_write_error").WithError(err).Error("failed to encode response")
	}
}
