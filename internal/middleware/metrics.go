package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesTotal      uint64
	AnalysesHeuristic  uint64
	AnalysesAI         uint64
	AIFailures         uint64
	Fallbacks          uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// Global returns the process-wide metrics; it satisfies the analysis
// service's Recorder.
func Global() *Metrics { return globalMetrics }

func NewMetrics() *Metrics { return &Metrics{StartTime: time.Now()} }

// AnalysisRecorded counts a stored analysis by engine
func (m *Metrics) AnalysisRecorded(engine threat.Engine) {
	atomic.AddUint64(&m.AnalysesTotal, 1)
	switch engine {
	case threat.EngineAI:
		atomic.AddUint64(&m.AnalysesAI, 1)
	default:
		atomic.AddUint64(&m.AnalysesHeuristic, 1)
	}
}

// ModelFailed counts provider errors (after failover)
func (m *Metrics) ModelFailed() { atomic.AddUint64(&m.AIFailures, 1) }

// FellBack counts analyses that dropped to the heuristic path
func (m *Metrics) FellBack() { atomic.AddUint64(&m.Fallbacks, 1) }

// Uptime since the metrics were created
func (m *Metrics) Uptime() time.Duration { return time.Since(m.StartTime) }

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&m.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&m.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&m.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&m.RequestsFailed),
		"analyses_total":       atomic.LoadUint64(&m.AnalysesTotal),
		"analyses_heuristic":   atomic.LoadUint64(&m.AnalysesHeuristic),
		"analyses_ai":          atomic.LoadUint64(&m.AnalysesAI),
		"ai_failures":          atomic.LoadUint64(&m.AIFailures),
		"fallbacks":            atomic.LoadUint64(&m.Fallbacks),
		"uptime_seconds":       m.Uptime().Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&m.RequestsTotal, 1)
		atomic.AddUint64(&m.RequestsInProgress, 1)
		defer atomic.AddUint64(&m.RequestsInProgress, ^uint64(0))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status >= 200 && status < 400 {
			atomic.AddUint64(&m.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&m.RequestsFailed, 1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}

// MetricsMiddleware tracks request metrics on the global counters
func MetricsMiddleware(next http.Handler) http.Handler { return globalMetrics.Middleware(next) }

// MetricsHandler returns the global metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) { globalMetrics.Handler(w, r) }
