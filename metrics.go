package main

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/nermal1/MLB-Pitcher-Market-Value/statsapi"
)

// Metrics tracks request counters for the service
type Metrics struct {
	mu                sync.RWMutex
	requestCount      int64
	errorCount        int64
	totalResponseTime int64
	startTime         time.Time
}

type MetricsResponse struct {
	System      SystemMetrics      `json:"system"`
	Application ApplicationMetrics `json:"application"`
	Cache       *CacheMetrics      `json:"cache,omitempty"`
	Sessions    SessionMetrics     `json:"sessions"`
	Database    *DatabaseMetrics   `json:"database,omitempty"`
	Uptime      string             `json:"uptime"`
}

type SystemMetrics struct {
	GoVersion     string  `json:"go_version"`
	NumGoroutines int     `json:"num_goroutines"`
	NumCPU        int     `json:"num_cpu"`
	MemAllocMB    float64 `json:"mem_alloc_mb"`
	MemSysMB      float64 `json:"mem_sys_mb"`
	NumGC         uint32  `json:"num_gc"`
}

type ApplicationMetrics struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ErrorRate         float64 `json:"error_rate_percent"`
	AvgResponseTime   float64 `json:"avg_response_time_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type CacheMetrics struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate_percent"`
	CacheSize int     `json:"cache_size"`
}

type SessionMetrics struct {
	Active    int   `json:"active"`
	Evictions int64 `json:"evictions"`
}

type DatabaseMetrics struct {
	MaxConns     int32 `json:"max_connections"`
	AcquireCount int64 `json:"acquire_count"`
	IdleConns    int32 `json:"idle_connections"`
	TotalConns   int32 `json:"total_connections"`
}

// cacheReporter is implemented by sources that cache responses
type cacheReporter interface {
	CacheStats() statsapi.CacheStats
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Record counts one request. Responses with status 500 and above are errors.
func (m *Metrics) Record(status int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount++
	if status >= http.StatusInternalServerError {
		m.errorCount++
	}
	m.totalResponseTime += duration.Milliseconds()
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		s.metrics.Record(lrw.statusCode, time.Since(start))
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s.metrics.mu.RLock()
	requestCount := s.metrics.requestCount
	errorCount := s.metrics.errorCount
	totalResponseTime := s.metrics.totalResponseTime
	startTime := s.metrics.startTime
	s.metrics.mu.RUnlock()

	uptime := time.Since(startTime)
	uptimeSeconds := uptime.Seconds()

	var errorRate, avgResponseTime float64
	if requestCount > 0 {
		errorRate = (float64(errorCount) / float64(requestCount)) * 100
		avgResponseTime = float64(totalResponseTime) / float64(requestCount)
	}

	var requestsPerSecond float64
	if uptimeSeconds > 0 {
		requestsPerSecond = float64(requestCount) / uptimeSeconds
	}

	response := MetricsResponse{
		System: SystemMetrics{
			GoVersion:     runtime.Version(),
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			MemAllocMB:    float64(memStats.Alloc) / 1024 / 1024,
			MemSysMB:      float64(memStats.Sys) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Application: ApplicationMetrics{
			TotalRequests:     requestCount,
			TotalErrors:       errorCount,
			ErrorRate:         errorRate,
			AvgResponseTime:   avgResponseTime,
			RequestsPerSecond: requestsPerSecond,
		},
		Sessions: SessionMetrics{
			Active:    s.sessions.Len(),
			Evictions: s.sessions.Evictions(),
		},
		Uptime: formatUptime(uptime),
	}

	if cr, ok := s.source.(cacheReporter); ok {
		response.Cache = cacheMetrics(cr.CacheStats())
	} else if cr, ok := s.similarity.(cacheReporter); ok {
		response.Cache = cacheMetrics(cr.CacheStats())
	}

	if s.db != nil {
		dbStats := s.db.Stat()
		response.Database = &DatabaseMetrics{
			MaxConns:     dbStats.MaxConns(),
			AcquireCount: dbStats.AcquireCount(),
			IdleConns:    dbStats.IdleConns(),
			TotalConns:   dbStats.TotalConns(),
		}
	}

	writeJSON(w, response)
}

func cacheMetrics(stats statsapi.CacheStats) *CacheMetrics {
	var hitRate float64
	if total := stats.Hits + stats.Misses; total > 0 {
		hitRate = (float64(stats.Hits) / float64(total)) * 100
	}
	return &CacheMetrics{
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		HitRate:   hitRate,
		CacheSize: stats.Size,
	}
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
