package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"extsort/pkg/config"
	"extsort/pkg/producer"
	"extsort/pkg/sorterrors"
	"extsort/pkg/stream"
)

const (
	contentTypeJSON        = "application/json"
	contentTypeText        = "text/plain; charset=utf-8"
	defaultHTTPPort        = "8080"
	defaultShutdownTimeout = time.Second * 5
)

type iSorter interface {
	Sort(ctx context.Context, src producer.Source, outputPath string) error
}

// Server exposes the sort pipeline over HTTP: POST a newline-delimited
// u64 stream to /api/sort and receive the sorted stream back.
type Server struct {
	sorter         iSorter
	scratchDir     string
	metricsHandler http.Handler
	httpServer     *http.Server
	readHeaderTO   time.Duration
	URL            string
	addr           string
}

// NewServer creates a new server instance. metricsHandler may be nil.
func NewServer(sorter iSorter, cfg config.ServerConfig, metricsHandler http.Handler) *Server {
	port := defaultHTTPPort
	if cfg.Port > 0 {
		port = strconv.Itoa(cfg.Port)
	}
	readHeaderTO := cfg.ReadHeaderTimeout
	if readHeaderTO <= 0 {
		readHeaderTO = time.Second
	}

	return &Server{
		sorter:         sorter,
		scratchDir:     cfg.ScratchDir,
		metricsHandler: metricsHandler,
		readHeaderTO:   readHeaderTO,
		URL:            "http://localhost:" + port,
		addr:           ":" + port,
	}
}

// Start starts the server.
func (s *Server) Start() error {
	if s.scratchDir == "" {
		return fmt.Errorf("scratch dir is not configured")
	}
	if err := os.MkdirAll(s.scratchDir, 0750); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.createRouter(),
		ReadHeaderTimeout: s.readHeaderTO,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", "addr", s.URL)
	return nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	return nil
}

// createRouter builds chi router
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	r.Post("/api/sort", s.handleSort)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

// handleSort runs the full pipeline on the request body, spilling runs
// and the result file into the scratch dir, then streams the result back.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	resultPath := filepath.Join(s.scratchDir, "result_"+uuid.NewString()+".txt")
	defer func() {
		if err := os.Remove(resultPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove result file", "path", resultPath, "error", err)
		}
	}()

	src := stream.NewLineReader(r.Body)
	if err := s.sorter.Sort(r.Context(), src, resultPath); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sorterrors.ErrInput) || errors.Is(err, sorterrors.ErrConfig) {
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, NewErrorResponse(err.Error()))
		return
	}

	result, err := os.Open(resultPath)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse("failed to open result"))
		return
	}
	defer func() {
		if cerr := result.Close(); cerr != nil {
			slog.Warn("failed to close result file", "path", resultPath, "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, result); err != nil {
		// headers are gone, all we can do is log
		slog.Warn("failed to stream sorted result", "error", err)
	}
}
