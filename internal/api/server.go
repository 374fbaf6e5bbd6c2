package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/pitch.report/internal/config"
	"github.com/banshee-data/pitch.report/internal/db"
	"github.com/banshee-data/pitch.report/internal/intensity"
	"github.com/banshee-data/pitch.report/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Unit conversion functions
// Metric rows store speeds in km/h (zone thresholds are conventionally
// stated in km/h); ConvertSpeed takes m/s.
func convertSpeedKmh(speedKmh float64, targetUnits string) float64 {
	return units.ConvertSpeed(speedKmh/units.KmhPerMps, targetUnits)
}

// convertPlayerSpeeds applies unit conversion to the speed fields of a
// PlayerMetrics row. Distances and zone boundaries are untouched.
func convertPlayerSpeeds(m intensity.PlayerMetrics, targetUnits string) intensity.PlayerMetrics {
	m.MaxSpeedKmh = convertSpeedKmh(m.MaxSpeedKmh, targetUnits)
	m.AvgSpeedKmh = convertSpeedKmh(m.AvgSpeedKmh, targetUnits)
	m.HighestSprintSpeedKmh = convertSpeedKmh(m.HighestSprintSpeedKmh, targetUnits)
	for i := range m.Sprints {
		m.Sprints[i].PeakSpeedKmh = convertSpeedKmh(m.Sprints[i].PeakSpeedKmh, targetUnits)
	}
	return m
}

type Server struct {
	db  *db.DB
	cfg *config.AnalysisConfig
}

func NewServer(database *db.DB, cfg *config.AnalysisConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyAnalysisConfig()
	}
	return &Server{
		db:  database,
		cfg: cfg,
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

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
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
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("POST /api/runs", s.createRun)
	mux.HandleFunc("GET /api/runs", s.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.showRun)
	mux.HandleFunc("GET /api/runs/{id}/players", s.showPlayerMetrics)
	mux.HandleFunc("GET /api/runs/{id}/sprints", s.showSprints)
	mux.HandleFunc("GET /api/runs/{id}/possession", s.showPossession)
	mux.HandleFunc("GET /api/runs/{id}/charts/zones", s.zonesChart)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	s.writeJSONStatus(w, http.StatusOK, v)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}
