// Package api exposes a minimal read-only HTTP status surface over the
// engine's live state: process health, the symbol table, and the latest
// cached per-symbol analytics snapshots.
package api

import (
	"compress/gzip"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"cryptoengine/cache"
	"cryptoengine/engine"
)

// Server serves process health, the symbol table, and the latest
// cached per-symbol VWAP/correlation snapshot.
type Server struct {
	eng   *engine.Engine
	cache *cache.SnapshotCache
}

// NewServer wires a Server to the live engine and the optional snapshot
// cache (which may itself wrap a nil Redis client).
func NewServer(eng *engine.Engine, snapshotCache *cache.SnapshotCache) *Server {
	return &Server{eng: eng, cache: snapshotCache}
}

// Start serves on addr until the process exits. Middleware ordering is
// gzip -> CORS -> logging.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /symbols", s.handleSymbols)
	mux.HandleFunc("GET /snapshot/{symbol}", s.handleSnapshot)

	handler := s.gzipMiddleware(s.corsMiddleware(s.loggingMiddleware(mux)))

	log.Printf("🚀 API server starting on %s", addr)
	return http.ListenAndServe(addr, handler)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":            "ok",
		"current_minute_ms": s.eng.CurrentMinuteMs(),
	})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(engine.SymbolNames)
}

// handleSnapshot returns the latest cached VWAP and correlation
// records for one symbol in a single response; either section is
// omitted if nothing has been cached for it yet.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := engine.LookupSymbol(strings.ToUpper(r.PathValue("symbol")))
	if !ok {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return
	}

	resp := struct {
		Symbol      string                     `json:"symbol"`
		Vwap        *cache.VwapSnapshot        `json:"vwap,omitempty"`
		Correlation *cache.CorrelationSnapshot `json:"correlation,omitempty"`
	}{Symbol: id.Name()}

	if snap, ok := s.cache.GetVwap(r.Context(), id.Name()); ok {
		resp.Vwap = &snap
	}
	if snap, ok := s.cache.GetCorrelation(r.Context(), id.Name()); ok {
		resp.Correlation = &snap
	}
	if resp.Vwap == nil && resp.Correlation == nil {
		http.Error(w, "no snapshot available yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	w *gzip.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) { return g.w.Write(b) }

func (s *Server) gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, w: gz}, r)
	})
}
