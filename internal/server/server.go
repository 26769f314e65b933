// Package server exposes the gateway over HTTP.
//
// Endpoints:
//   - GET  /ask?q=...  - route a query
//   - POST /ask        - route a query ({"q": "..."} or {"prompt": "..."})
//   - GET  /healthz    - liveness check
//   - GET  /stats      - per-route decision aggregates
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/danielpatrickdp/rag-gateway/internal/journal"
	"github.com/danielpatrickdp/rag-gateway/internal/router"
)

// #region interfaces

// Asker answers queries. Satisfied by *router.Dispatcher.
type Asker interface {
	Ask(ctx context.Context, query string) (router.AskResponse, error)
}

// StatsSource reports journaled routing aggregates. Nil disables /stats.
type StatsSource interface {
	Stats() ([]journal.RouteStats, error)
}

// Pinger checks a collaborator's reachability. Nil skips the check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// #endregion

// #region server-struct

// Server is the gateway's HTTP front end.
type Server struct {
	asker Asker
	stats StatsSource
	rag   Pinger
	http  *http.Server
}

// New creates a server listening on addr.
func New(addr string, asker Asker, stats StatsSource) *Server {
	s := &Server{asker: asker, stats: stats}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ask", s.handleAskGet)
	mux.HandleFunc("POST /ask", s.handleAskPost)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /stats", s.handleStats)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// WithRAGPinger enables the retrieval-service reachability check on /healthz.
func (s *Server) WithRAGPinger(p Pinger) *Server {
	s.rag = p
	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	log.Printf("[SERVER] listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// #endregion

// #region ask-handlers

func (s *Server) handleAskGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.ask(w, r, query)
}

type askRequest struct {
	Q      string `json:"q"`
	Prompt string `json:"prompt"`
}

func (s *Server) handleAskPost(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := body.Q
	if query == "" {
		query = body.Prompt
	}
	s.ask(w, r, query)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request, query string) {
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}
	resp, err := s.asker.Ask(r.Context(), query)
	if err != nil {
		// The dispatcher only errors on the caller's own cancellation.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, 499, "request cancelled")
			return
		}
		log.Printf("[SERVER] ask failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// #endregion

// #region ops-handlers

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if s.rag != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.rag.Ping(ctx); err != nil {
			body["rag"] = "unreachable"
		} else {
			body["rag"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusNotFound, "journaling disabled")
		return
	}
	stats, err := s.stats.Stats()
	if err != nil {
		log.Printf("[SERVER] stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if stats == nil {
		stats = []journal.RouteStats{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": stats})
}

// #endregion

// #region json-helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// #endregion
