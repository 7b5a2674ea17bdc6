package api

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/ulam-spiral/internal/config"
	"github.com/banshee-data/ulam-spiral/internal/db"
	"github.com/banshee-data/ulam-spiral/internal/monitoring"
	"github.com/banshee-data/ulam-spiral/internal/raster"
	"github.com/banshee-data/ulam-spiral/internal/report"
	"github.com/banshee-data/ulam-spiral/internal/testutil"
	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

func muteLogs(t *testing.T) {
	t.Helper()
	t.Cleanup(monitoring.SetOutput(io.Discard))
}

func newTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()
	muteLogs(t)
	database, err := db.NewDB(filepath.Join(t.TempDir(), "ulam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewServer(database, nil), database
}

func recordRun(t *testing.T, database *db.DB, size int) *db.Run {
	t.Helper()
	res, err := ulam.Compute(size)
	require.NoError(t, err)
	sum := report.Summarize(res.Grid)

	rings := make([]db.RingStat, len(sum.Rings))
	for i, r := range sum.Rings {
		rings[i] = db.RingStat{Ring: r.Ring, Cells: r.Cells, Primes: r.Primes}
	}
	run := &db.Run{
		Size:            size,
		Bound:           res.Bound,
		PrimeCount:      sum.PrimeCount,
		DiagonalPrimes:  sum.DiagonalPrimes,
		MeanRingDensity: sum.MeanRingDensity,
		Artifacts:       []string{"spiral1", "spiral2"},
	}
	require.NoError(t, database.RecordRun(run, rings))
	return run
}

func TestListRuns(t *testing.T) {
	s, database := newTestServer(t)
	mux := s.ServeMux()

	rec := testutil.Serve(mux, http.MethodGet, "/api/runs")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "[]\n", rec.Body.String())

	recordRun(t, database, 3)
	recordRun(t, database, 5)

	rec = testutil.Serve(mux, http.MethodGet, "/api/runs?limit=1")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.AssertContentType(t, rec, "application/json")
	var runs []db.Run
	testutil.DecodeJSON(t, rec, &runs)
	assert.Len(t, runs, 1)

	rec = testutil.Serve(mux, http.MethodGet, "/api/runs")
	testutil.DecodeJSON(t, rec, &runs)
	assert.Len(t, runs, 2)
}

func TestListRuns_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	mux := s.ServeMux()

	for _, target := range []string{"/api/runs?limit=0", "/api/runs?limit=-1", "/api/runs?limit=ten"} {
		rec := testutil.Serve(mux, http.MethodGet, target)
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	}

	rec := testutil.Serve(mux, http.MethodPost, "/api/runs")
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestShowRun(t *testing.T) {
	s, database := newTestServer(t)
	run := recordRun(t, database, 5)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/api/runs/"+run.ID)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var body struct {
		ID         string        `json:"run_id"`
		Size       int           `json:"size"`
		PrimeCount int           `json:"prime_count"`
		Artifacts  []string      `json:"artifacts"`
		Rings      []db.RingStat `json:"rings"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, run.ID, body.ID)
	assert.Equal(t, 5, body.Size)
	assert.Equal(t, 9, body.PrimeCount)
	assert.Equal(t, []string{"spiral1", "spiral2"}, body.Artifacts)
	require.Len(t, body.Rings, 3)
	assert.Equal(t, db.RingStat{RunID: run.ID, Ring: 2, Cells: 16, Primes: 5}, body.Rings[2])
}

func TestShowRun_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	mux := s.ServeMux()

	rec := testutil.Serve(mux, http.MethodGet, "/api/runs/nope")
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
	assert.Contains(t, rec.Body.String(), "run not found")

	rec = testutil.Serve(mux, http.MethodGet, "/charts/runs/nope")
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestRunChart(t *testing.T) {
	s, database := newTestServer(t)
	run := recordRun(t, database, 11)

	rec := testutil.Serve(s.ServeMux(), http.MethodGet, "/charts/runs/"+run.ID)
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	testutil.AssertContentType(t, rec, "text/html; charset=utf-8")
	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, run.ID)
}

func TestNoDatabase(t *testing.T) {
	muteLogs(t)
	mux := NewServer(nil, nil).ServeMux()

	for _, target := range []string{"/api/runs", "/api/runs/abc", "/charts/runs/abc"} {
		rec := testutil.Serve(mux, http.MethodGet, target)
		testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
	}

	rec := testutil.Serve(mux, http.MethodGet, "/api/render?size=3")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
}

func TestRender(t *testing.T) {
	muteLogs(t)
	mux := NewServer(nil, nil).ServeMux()

	want := "P3\n3 3\n255\n" +
		"0 0 0 255 255 255 0 0 0 \n" +
		"255 255 255 255 255 255 0 0 0 \n" +
		"0 0 0 255 255 255 255 255 255 \n"

	for _, variant := range []string{"", "symbolic", "literal"} {
		rec := testutil.Serve(mux, http.MethodGet, "/api/render?size=3&variant="+variant)
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		testutil.AssertContentType(t, rec, PixmapContentType)
		assert.Equal(t, want, rec.Body.String(), "variant %q", variant)
	}
}

func TestRender_Filename(t *testing.T) {
	muteLogs(t)
	mux := NewServer(nil, nil).ServeMux()

	tests := []struct {
		target string
		want   string
	}{
		{"/api/render?size=3", "inline; filename=ulam-3-symbolic.ppm"},
		{"/api/render?size=5&variant=literal", "inline; filename=ulam-5-literal.ppm"},
		{"/api/render?size=3&name=my%20spiral", "inline; filename=my_spiral.ppm"},
		{"/api/render?size=3&name=..%2F..%2Fetc%2Fpasswd", "inline; filename=etc_passwd.ppm"},
		{"/api/render?size=3&name=%22%3B%0D%0A", "inline; filename=unknown.ppm"},
	}
	for _, tt := range tests {
		rec := testutil.Serve(mux, http.MethodGet, tt.target)
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		assert.Equal(t, tt.want, rec.Header().Get("Content-Disposition"), tt.target)
	}
}

func TestRender_DecodesToPrimeMask(t *testing.T) {
	muteLogs(t)
	rec := testutil.Serve(NewServer(nil, nil).ServeMux(), http.MethodGet, "/api/render?size=21&variant=literal")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	mask, err := raster.DecodePixels(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)

	res, err := ulam.Compute(21)
	require.NoError(t, err)
	for row := range mask {
		for col := range mask[row] {
			assert.Equal(t, res.Grid.IsPrime(row, col), mask[row][col], "(%d,%d)", row, col)
		}
	}
}

func TestRender_BadRequests(t *testing.T) {
	muteLogs(t)
	cfg := config.DefaultConfig()
	limit := 99
	cfg.MaxSize = &limit
	mux := NewServer(nil, cfg).ServeMux()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"missing size", "/api/render", "Missing 'size'"},
		{"non-numeric", "/api/render?size=big", "Invalid 'size'"},
		{"even", "/api/render?size=4", "odd"},
		{"zero", "/api/render?size=0", "out of range"},
		{"negative", "/api/render?size=-3", "out of range"},
		{"above limit", "/api/render?size=101", "out of range"},
		{"bad variant", "/api/render?size=3&variant=fancy", "unknown raster variant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(mux, http.MethodGet, tt.target)
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	rec := testutil.Serve(mux, http.MethodPost, "/api/render?size=3")
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestSummary(t *testing.T) {
	muteLogs(t)
	rec := testutil.Serve(NewServer(nil, nil).ServeMux(), http.MethodGet, "/api/summary?size=5")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var s report.Summary
	testutil.DecodeJSON(t, rec, &s)
	assert.Equal(t, 9, s.PrimeCount)
	assert.Equal(t, 5, s.DiagonalPrimes)
	assert.Len(t, s.Rings, 3)
}

func TestConfigAndVersion(t *testing.T) {
	muteLogs(t)
	mux := NewServer(nil, nil).ServeMux()

	rec := testutil.Serve(mux, http.MethodGet, "/api/config")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var cfg map[string]interface{}
	testutil.DecodeJSON(t, rec, &cfg)
	assert.Equal(t, float64(4095), cfg["max_size"])
	assert.Equal(t, false, cfg["run_history"])

	rec = testutil.Serve(mux, http.MethodGet, "/api/version")
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(monitoring.SetOutput(&buf))

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := testutil.Serve(h, http.MethodGet, "/api/render?size=3")
	testutil.AssertStatusCode(t, rec.Code, http.StatusTeapot)

	line := buf.String()
	assert.Contains(t, line, "418")
	assert.Contains(t, line, "GET")
	assert.True(t, strings.Contains(line, "/api/render?size=3"), line)
}

func TestStatusCodeColor(t *testing.T) {
	assert.Equal(t, colorBoldGreen+"200"+colorReset, statusCodeColor(200))
	assert.Equal(t, colorYellow+"304"+colorReset, statusCodeColor(304))
	assert.Equal(t, colorBoldRed+"404"+colorReset, statusCodeColor(404))
	assert.Equal(t, colorBoldRed+"500"+colorReset, statusCodeColor(500))
	assert.Equal(t, "100", statusCodeColor(100))
}
