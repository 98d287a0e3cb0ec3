package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "sourcecheck/internal/httpapi/middleware"
	"sourcecheck/internal/scan"
)

// Scanner runs one full catalog scan and returns the report.
type Scanner interface {
	Scan(ctx context.Context) (*scan.Report, error)
}

// Limits configures the per-IP rate limiting of the two route groups.
type Limits struct {
	PublicRPM   int
	PublicBurst int
	AdminRPM    int
	AdminBurst  int
}

type Server struct {
	Logger  *zap.Logger
	Scanner Scanner

	mu       sync.RWMutex
	latest   *scan.Report
	latestAt time.Time
}

func NewServer(l *zap.Logger, scanner Scanner) *Server {
	return &Server{Logger: l, Scanner: scanner}
}

func (s *Server) Router(keys apimw.Keys, limits Limits) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Use(apimw.RateLimit(limits.PublicRPM, limits.PublicBurst))
		r.Get("/api/reports/latest", s.handleLatestReport)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Use(apimw.RateLimit(limits.AdminRPM, limits.AdminBurst))
		r.Post("/api/scans", s.handleRunScan)
	})

	return r
}

type reportEnvelope struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     scan.Summary `json:"summary"`
	Report      *scan.Report `json:"report"`
}

func (s *Server) handleRunScan(w http.ResponseWriter, r *http.Request) {
	started := time.Now().UTC()
	rep, err := s.Scanner.Scan(r.Context())
	if err != nil {
		s.Logger.Warn("scan_failed", zap.Error(err))
		http.Error(w, "scan failed", http.StatusBadGateway)
		return
	}

	s.mu.Lock()
	s.latest = rep
	s.latestAt = started
	s.mu.Unlock()

	sum := rep.Summary()
	s.Logger.Info("scan_done",
		zap.Int("total", sum.Total),
		zap.Int("reachable", sum.Reachable),
		zap.Int("unreachable", sum.Unreachable),
		zap.Int("malformed", sum.Malformed),
		zap.Int("timed_out", sum.TimedOut),
		zap.Duration("elapsed", time.Since(started)),
	)

	writeJSON(w, reportEnvelope{GeneratedAt: started, Summary: sum, Report: rep})
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rep, at := s.latest, s.latestAt
	s.mu.RUnlock()

	if rep == nil {
		http.Error(w, "no scan has run yet", http.StatusNotFound)
		return
	}
	writeJSON(w, reportEnvelope{GeneratedAt: at, Summary: rep.Summary(), Report: rep})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
