// Package server exposes the transformation catalog over HTTP.
//
// Endpoints:
//   - GET  /v1/transformations - List the catalog
//   - POST /v1/transform       - Apply one transformation, or a chain of them
//   - GET  /healthz            - Liveness check
//   - GET  /metrics            - Prometheus metrics, when configured
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"textops/dispatcher"
	"textops/logging"
	"textops/transformations"
)

// MaxRequestBodySize bounds the JSON body accepted by /v1/transform (4MB).
const MaxRequestBodySize = 4 * 1024 * 1024

type TransformRequest struct {
	ID    string   `json:"id"`
	Chain []string `json:"chain,omitempty"`
	Text  string   `json:"text"`
}

type TransformResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error          string `json:"error"`
	Transformation string `json:"transformation,omitempty"`
	Format         string `json:"format,omitempty"`
}

type CatalogEntry struct {
	ID          string `json:"id"`
	Family      string `json:"family"`
	Description string `json:"description"`
}

type Server struct {
	dispatcher *dispatcher.Dispatcher
	metrics    http.Handler
	mux        *http.ServeMux
}

// New builds a server around d. metrics may be nil, in which case /metrics is not served.
func New(d *dispatcher.Dispatcher, metrics http.Handler) *Server {
	s := &Server{
		dispatcher: d,
		metrics:    metrics,
		mux:        http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /v1/transformations", s.handleList)
	s.mux.HandleFunc("POST /v1/transform", s.handleTransform)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// Handler returns the routes wrapped in recovery and request logging.
func (s *Server) Handler() http.Handler {
	return recoverMiddleware(loggingMiddleware(s.mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.L().Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	entries := transformations.Entries()
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, CatalogEntry{ID: e.ID, Family: string(e.Family), Description: e.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	ids := req.Chain
	if req.ID != "" {
		ids = append([]string{req.ID}, ids...)
	}
	if len(ids) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "id is required"})
		return
	}

	var (
		out string
		err error
	)
	if len(ids) == 1 {
		out, err = s.dispatcher.Apply(r.Context(), ids[0], req.Text)
	} else {
		out, err = s.dispatcher.ApplyChain(r.Context(), ids, req.Text)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{Text: out})
}

func writeError(w http.ResponseWriter, err error) {
	var formatErr *transformations.FormatError
	var unknownErr *dispatcher.UnknownTransformationError
	switch {
	case errors.As(err, &formatErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:          err.Error(),
			Transformation: formatErr.Transformation,
			Format:         formatErr.Format,
		})
	case errors.As(err, &unknownErr):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Transformation: unknownErr.ID})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logging.L().Warn("failed to write response", "err", err)
	}
}
