// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package renderserver exposes a compiled template set over HTTP.
package renderserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mustache-engine/pkg/mustache"
)

// Renderer is the subset of the template engine the server needs.
type Renderer interface {
	Render(templateName string, data interface{}) (string, error)
	TemplateNames() []string
	GetRawTemplate(templateName string) (string, error)
	ContentType() mustache.ContentType
}

// DataFunc returns the data GET requests render with.
type DataFunc func(ctx context.Context) (interface{}, error)

// Server renders templates on request.
//
// Endpoints:
//   - GET /templates - list template names
//   - GET /render/{name} - render with the data returned by the DataFunc
//   - POST /render/{name} - render with the JSON request body as data
//   - GET /debug/renders?n=20 - the most recent renders, oldest first
//   - GET /healthz - health check
type Server struct {
	addr     string
	renderer Renderer
	data     DataFunc
	history  *history
	server   *http.Server
	logger   *slog.Logger
}

// NewServer creates a render server. data may be nil, in which case GET
// requests render without data. A nil logger falls back to slog.Default().
func NewServer(addr string, renderer Renderer, data DataFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:     addr,
		renderer: renderer,
		data:     data,
		history:  newHistory(DefaultHistorySize),
		logger:   logger.With("component", "render-server"),
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /templates", s.handleIndex)
	mux.HandleFunc("GET /render/{name...}", s.handleRender)
	mux.HandleFunc("POST /render/{name...}", s.handleRender)
	mux.HandleFunc("GET /debug/renders", s.handleHistory)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Catch-all for 404
	mux.HandleFunc("/", s.handleNotFound)
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until the context is cancelled.
// The server shuts down gracefully when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info("Starting render server", "addr", s.addr)

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Render server error", "error", err)
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Render server shutting down", "reason", ctx.Err())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("Render server stopped")
		return nil

	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.addr
}
