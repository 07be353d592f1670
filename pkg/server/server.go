// Package server exposes generated reports over HTTP for browsing and
// scraping.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Logger      *slog.Logger
	ReportsDir  string
	CORSOrigins []string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.ReportsDir == "" {
		return errors.New("reports directory is required")
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return nil
}

type Server struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Server{log: cfg.Logger, cfg: cfg}, nil
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/reports", s.handleList)
	r.Get("/reports/{name}", s.handleGet)
	return r
}

// handleList returns the endpoint names that have a generated JSON report.
func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	entries, err := os.ReadDir(s.cfg.ReportsDir)
	if err != nil {
		s.log.Error("server: failed to read reports directory", "error", err)
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"reports": names}); err != nil {
		s.log.Error("server: failed to encode report list", "error", err)
	}
}

// handleGet streams one report's JSON document.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// Report names are host names; reject anything path-like.
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		http.Error(w, "invalid report name", http.StatusBadRequest)
		return
	}

	f, err := os.Open(filepath.Join(s.cfg.ReportsDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		s.log.Error("server: failed to open report", "name", name, "error", err)
		http.Error(w, "failed to open report", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/json")
	if _, err := io.Copy(w, f); err != nil {
		s.log.Error("server: failed to stream report", "name", name, "error", err)
	}
}
