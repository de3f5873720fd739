// Package server exposes the written document model and the archive
// media files over HTTP for local preview.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calehart/unspool/internal/config"
)

// Server serves a previously written document model.
type Server struct {
	cfg       config.ServerConfig
	modelPath string
	mediaDirs []string
	logger    *slog.Logger
}

// New creates a preview server for the model at modelPath. Media
// requests are resolved against mediaDirs in order.
func New(cfg config.ServerConfig, modelPath string, mediaDirs []string, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		modelPath: modelPath,
		mediaDirs: mediaDirs,
		logger:    logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/health", s.handleHealth)
	r.Get("/model.json", s.handleModel)
	r.Get("/media/{name}", s.handleMedia)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if _, err := os.Stat(s.modelPath); err != nil {
		status = "model not written"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.modelPath); err != nil {
		http.Error(w, "model not written yet, run parse first", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, s.modelPath)
}

// handleMedia serves an archive media file by basename. Only bare file
// names are accepted; anything resembling a path is rejected.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "invalid media name", http.StatusBadRequest)
		return
	}

	for _, dir := range s.mediaDirs {
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			http.ServeFile(w, r, candidate)
			return
		}
	}
	http.NotFound(w, r)
}
