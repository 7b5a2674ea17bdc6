// Package api serves the run history, on-demand spiral renders and chart
// pages over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/ulam-spiral/internal/config"
	"github.com/banshee-data/ulam-spiral/internal/db"
	"github.com/banshee-data/ulam-spiral/internal/httputil"
	"github.com/banshee-data/ulam-spiral/internal/monitoring"
	"github.com/banshee-data/ulam-spiral/internal/raster"
	"github.com/banshee-data/ulam-spiral/internal/report"
	"github.com/banshee-data/ulam-spiral/internal/security"
	"github.com/banshee-data/ulam-spiral/internal/ulam"
	"github.com/banshee-data/ulam-spiral/internal/version"
)

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// PixmapContentType is the media type of P3 render responses.
const PixmapContentType = "image/x-portable-pixmap"

type Server struct {
	db       *db.DB
	cfg      *config.UlamConfig
	pipeline *ulam.Pipeline
}

// NewServer creates the API server. database may be nil, in which case the
// run history endpoints answer 503 and rendering still works.
func NewServer(database *db.DB, cfg *config.UlamConfig) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		db:       database,
		cfg:      cfg,
		pipeline: ulam.NewPipeline(nil, cfg.GetMaxSize()),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.showRun)
	mux.HandleFunc("/api/render", s.render)
	mux.HandleFunc("/api/summary", s.summary)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/version", s.showVersion)
	mux.HandleFunc("/charts/runs/{id}", s.runChart)
	return mux
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.ServiceUnavailable(w, "run history is not configured")
		return
	}

	limit, err := httputil.QueryInt(r, "limit", db.DefaultListLimit)
	if err != nil || limit < 1 {
		httputil.BadRequest(w, "Invalid 'limit' parameter")
		return
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}
	httputil.WriteJSONOK(w, runs)
}

type runResponse struct {
	*db.Run
	Rings []db.RingStat `json:"rings"`
}

// lookupRun writes the error response itself and returns ok=false when the
// run cannot be served.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*db.Run, []db.RingStat, bool) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return nil, nil, false
	}
	if s.db == nil {
		httputil.ServiceUnavailable(w, "run history is not configured")
		return nil, nil, false
	}
	run, rings, err := s.db.GetRun(r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return nil, nil, false
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve run: %v", err))
		return nil, nil, false
	}
	return run, rings, true
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	run, rings, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, runResponse{Run: run, Rings: rings})
}

func (s *Server) runChart(w http.ResponseWriter, r *http.Request) {
	run, rings, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	stats := make([]report.RingStat, len(rings))
	for i, rs := range rings {
		stats[i] = report.RingStat{Ring: rs.Ring, Cells: rs.Cells, Primes: rs.Primes}
	}
	summary := report.FromRings(run.Size, stats)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Ulam spiral %dx%d (run %s)", run.Size, run.Size, run.ID)
	if err := report.WriteRingDensityHTML(w, summary, title); err != nil {
		monitoring.Logf("failed to render chart for run %s: %v", run.ID, err)
	}
}

// computeFromQuery validates ?size= and runs the pipeline. The error response
// has already been written when it returns nil.
func (s *Server) computeFromQuery(w http.ResponseWriter, r *http.Request) *ulam.Result {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return nil
	}
	raw := r.URL.Query().Get("size")
	if raw == "" {
		httputil.BadRequest(w, "Missing 'size' parameter")
		return nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid 'size' parameter %q", raw))
		return nil
	}
	res, err := s.pipeline.Compute(size)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil
	}
	return res
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	variant, err := raster.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	res := s.computeFromQuery(w, r)
	if res == nil {
		return
	}

	w.Header().Set("Content-Type", PixmapContentType)
	name := r.URL.Query().Get("name")
	if name == "" {
		name = fmt.Sprintf("ulam-%d-%s", res.Size, variant)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.ppm", security.SanitizeFilename(name)))
	if err := raster.Encode(w, res.Grid, variant); err != nil {
		monitoring.Logf("failed to write render of size %d: %v", res.Size, err)
	}
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	res := s.computeFromQuery(w, r)
	if res == nil {
		return
	}
	httputil.WriteJSONOK(w, report.Summarize(res.Grid))
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"max_size":        s.cfg.GetMaxSize(),
		"symbolic_suffix": s.cfg.GetSymbolicSuffix(),
		"literal_suffix":  s.cfg.GetLiteralSuffix(),
		"run_history":     s.db != nil,
	})
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, version.Current())
}
