// Package server exposes the composer to the presentation layer over a JSON
// HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/synthetix-ai/drafter/internal/composer"
	"github.com/synthetix-ai/drafter/internal/ratelimit"
	"github.com/synthetix-ai/drafter/pkg/config"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Composer composer.Client
	Logger   logger.Logger
	Config   *config.Config
}

type Server struct {
	composer composer.Client
	limiter  ratelimit.Limiter
	logger   logger.Logger
	httpSrv  *http.Server
}

func New(opts Opts) *Server {
	s := &Server{
		composer: opts.Composer,
		limiter: ratelimit.NewInMemoryLimiter(
			opts.Config.RateLimit.GeneratePerMinute,
			time.Minute,
			opts.Config.RateLimit.GenerateBurst,
		),
		logger: opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/auth", s.handleAuth)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/drafts", s.handleDrafts)
	mux.HandleFunc("PATCH /api/drafts/{platform}", s.handleEditContent)
	mux.HandleFunc("POST /api/drafts/{platform}/image", s.handleRequestImage)
	mux.HandleFunc("POST /api/drafts/{platform}/speech", s.handleRequestSpeech)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Serve starts handling HTTP requests. Blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown error", "error", err)
		}
	}()

	s.logger.Info("Starting server", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// clientKey buckets rate-limit state by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
