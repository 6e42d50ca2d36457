// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package docserver serves the embedded platform catalog and prompt library
// as a local JSON API.
package docserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pipewright/pipewright-core/httperr"
	"github.com/pipewright/pipewright-core/platforms"
	"github.com/pipewright/pipewright-core/prompts"
	"github.com/pipewright/pipewright-core/recovery"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server exposes prompts and platforms over HTTP.
type Server struct {
	catalog *platforms.Catalog
	library *prompts.Library
	logger  *slog.Logger
}

// New creates a Server over the given catalog and prompt library.
func New(catalog *platforms.Catalog, library *prompts.Library, logger *slog.Logger) (*Server, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if library == nil {
		return nil, fmt.Errorf("prompt library is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{catalog: catalog, library: library, logger: logger}, nil
}

// Handler returns the fully wired HTTP handler: routes behind panic
// recovery and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/prompts", s.handleListPrompts)
	mux.HandleFunc("GET /api/prompts/{name}", s.handleGetPrompt)
	mux.HandleFunc("GET /api/platforms", s.handleListPlatforms)
	mux.HandleFunc("GET /api/platforms/{key}", s.handleGetPlatform)

	var handler http.Handler = mux
	handler = s.logRequests(handler)
	handler = recovery.MiddlewareWithLogger(s.logger)(handler)
	return handler
}

// ListenAndServe runs the server on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("docs server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down docs server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	list := s.library.List()
	if role := r.URL.Query().Get("role"); role != "" {
		list = s.library.ByRole(role)
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.library.Get(r.PathValue("name"))
	if err != nil {
		s.writeError(w, httperr.WithCode(err, http.StatusNotFound))
		return
	}

	// The body is excluded from list responses; inline it here.
	s.writeJSON(w, http.StatusOK, struct {
		*prompts.Prompt
		Body string `json:"body"`
	}{Prompt: p, Body: p.Body})
}

func (s *Server) handleListPlatforms(w http.ResponseWriter, r *http.Request) {
	list := s.catalog.All()
	if category := r.URL.Query().Get("category"); category != "" {
		list = s.catalog.ByCategory(category)
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPlatform(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	p := s.catalog.Get(key)
	if p == nil {
		s.writeError(w, httperr.Newf(http.StatusNotFound, "platform %q not found", key))
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := httperr.Code(err)
	msg := err.Error()
	var coded *httperr.CodedError
	if errors.As(err, &coded) {
		msg = coded.Error()
	}
	s.writeJSON(w, code, map[string]string{"error": msg})
}

// logRequests logs each request after completion with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
