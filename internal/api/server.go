// Package api serves the index over a read-only JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Zuo-Peng/wca/internal/export"
	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/search"
	"github.com/Zuo-Peng/wca/internal/stats"
)

const defaultSearchLimit = 50

type Server struct {
	router    *chi.Mux
	db        *index.DB
	addr      string
	stopWords map[string]bool
	logger    *slog.Logger
}

func NewServer(addr string, db *index.DB, stopWords map[string]bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		db:        db,
		addr:      addr,
		stopWords: stopWords,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/transcripts", s.listTranscripts)
		r.Get("/transcripts/{key}/records", s.records)
		r.Get("/transcripts/{key}/stats", s.stats)
		r.Get("/search", s.search)
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTranscripts(w http.ResponseWriter, r *http.Request) {
	ts, err := s.db.ListTranscripts()
	if err != nil {
		s.internalError(w, "list transcripts", err)
		return
	}
	if ts == nil {
		ts = []index.TranscriptRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transcripts": ts, "count": len(ts)})
}

// transcriptKey resolves the {key} path parameter, which may arrive
// percent-encoded when it contains slashes.
func transcriptKey(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	if key, err := url.PathUnescape(raw); err == nil {
		return key
	}
	return raw
}

func (s *Server) records(w http.ResponseWriter, r *http.Request) {
	key := transcriptKey(r)
	recs, err := s.db.LoadRecords(key)
	if errors.Is(err, index.ErrTranscriptNotFound) {
		writeError(w, http.StatusNotFound, "transcript not found: "+key)
		return
	}
	if err != nil {
		s.internalError(w, "load records", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transcript_key": key,
		"count":          len(recs),
		"records":        export.Rows(recs),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	key := transcriptKey(r)
	recs, err := s.db.LoadRecords(key)
	if errors.Is(err, index.ErrTranscriptNotFound) {
		writeError(w, http.StatusNotFound, "transcript not found: "+key)
		return
	}
	if err != nil {
		s.internalError(w, "load records", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Build(recs, r.URL.Query().Get("user"), s.stopWords))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := defaultSearchLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		limit = n
	}

	results, err := search.Search(s.db, search.Options{
		Query:      query,
		Sender:     q.Get("sender"),
		Transcript: q.Get("transcript"),
		Limit:      limit,
	})
	if err != nil {
		s.internalError(w, "search", err)
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}
