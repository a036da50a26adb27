// Package api serves the reply endpoint over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"replyai/internal/domain"
	"replyai/internal/logging"
	"replyai/internal/metrics"
)

const maxBodySize = 1 << 20 // 1MB

const msgInvalidJSON = "invalid JSON body"

// DefaultShutdownTimeout bounds the drain of in-flight requests.
const DefaultShutdownTimeout = 60 * time.Second

type ServerConfig struct {
	Host            string
	Port            int
	Replies         domain.ReplyGenerator
	Metrics         *metrics.Collector // optional; serves /metrics when set
	ReplyMetrics    *metrics.Replies   // optional
	Version         string
	ProviderName    string
	ShutdownTimeout time.Duration // drain bound after ctx is cancelled; 0 = DefaultShutdownTimeout
	Logger          *slog.Logger
}

// Server exposes POST /api/generate-reply, GET /status and GET /metrics.
// Requests share no mutable state beyond the metrics collector.
type Server struct {
	host            string
	port            int
	replies         domain.ReplyGenerator
	metrics         *metrics.Collector
	replyMetrics    *metrics.Replies
	version         string
	providerName    string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	server          *http.Server
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{
		host:            cfg.Host,
		port:            cfg.Port,
		replies:         cfg.Replies,
		metrics:         cfg.Metrics,
		replyMetrics:    cfg.ReplyMetrics,
		version:         cfg.Version,
		providerName:    cfg.ProviderName,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
	}
}

// Handler returns the routed handler with request-ID and logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate-reply", s.handleGenerateReply)
	mux.HandleFunc("GET /status", s.handleStatus)
	if s.metrics != nil {
		mux.HandleFunc("GET /metrics", s.metrics.Handler())
	}
	return s.withRequestID(s.withLogging(mux))
}

// Start listens on host:port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then stops accepting
// connections and waits up to shutdownTimeout for in-flight requests.
// Request contexts are detached from ctx so a completion call in progress
// finishes during the drain.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.logger.Info("reply server started", "addr", "http://"+ln.Addr().String(), "provider", s.providerName)

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("reply server draining")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		shutdownDone <- s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if ctx.Err() != nil {
		if err := <-shutdownDone; err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	s.logger.Info("reply server stopped")
	return nil
}

func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

func (s *Server) handleGenerateReply(rw http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)

	r.Body = http.MaxBytesReader(rw, r.Body, maxBodySize)
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("rejecting request body", "err", err)
		writeJSON(rw, http.StatusBadRequest, map[string]string{"error": msgInvalidJSON})
		return
	}

	text, err := s.replies.GenerateReply(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		msg := domain.PublicMessage(domain.ErrUpstreamError)
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			status = http.StatusBadRequest
			msg = domain.PublicMessage(err)
		case errors.Is(err, domain.ErrUpstreamEmpty):
			msg = domain.PublicMessage(err)
		}
		writeJSON(rw, status, map[string]string{"error": msg})
		return
	}

	writeJSON(rw, http.StatusOK, map[string]string{"reply": text})
}

func (s *Server) handleStatus(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"provider": s.providerName,
		"time":     time.Now().Format(time.RFC3339),
	})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(v)
}
