package metrics

import (
	"sync"
	"time"
)

// PerformanceMetrics is the snapshot served by the observability API.
type PerformanceMetrics struct {
	TotalRequests         int64   `json:"total_requests"`
	SuccessfulRequests    int64   `json:"successful_requests"`
	FailedRequests        int64   `json:"failed_requests"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	ThroughputPerMinute   float64 `json:"throughput_per_minute"`
	ErrorRate             float64 `json:"error_rate"`
	CacheHitRate          float64 `json:"cache_hit_rate"`
}

// Collector accumulates request-level counters for snapshots. Prometheus
// collectors remain the export path; this exists so the API can answer
// without scraping.
type Collector struct {
	mu              sync.Mutex
	totalRequests   int64
	successRequests int64
	failedRequests  int64
	totalDurationMs int64
	recentRequests  []time.Time
	cacheHits       int64
	cacheMisses     int64
	clock           func() time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{clock: time.Now}
}

// RecordRequest folds one finished workflow into the counters.
func (c *Collector) RecordRequest(success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	if success {
		c.successRequests++
	} else {
		c.failedRequests++
	}
	c.totalDurationMs += duration.Milliseconds()

	now := c.clock()
	c.recentRequests = append(c.recentRequests, now)
	c.pruneLocked(now)
}

// RecordCacheHit counts a dependency cache hit.
func (c *Collector) RecordCacheHit() {
	CacheHits.Inc()
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// RecordCacheMiss counts a dependency cache miss.
func (c *Collector) RecordCacheMiss() {
	CacheMisses.Inc()
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

// Snapshot returns current aggregates. Throughput counts requests finished in
// the trailing minute.
func (c *Collector) Snapshot() PerformanceMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(c.clock())

	snap := PerformanceMetrics{
		TotalRequests:       c.totalRequests,
		SuccessfulRequests:  c.successRequests,
		FailedRequests:      c.failedRequests,
		ThroughputPerMinute: float64(len(c.recentRequests)),
	}
	if c.totalRequests > 0 {
		snap.AverageResponseTimeMs = float64(c.totalDurationMs) / float64(c.totalRequests)
		snap.ErrorRate = float64(c.failedRequests) / float64(c.totalRequests)
	}
	if lookups := c.cacheHits + c.cacheMisses; lookups > 0 {
		snap.CacheHitRate = float64(c.cacheHits) / float64(lookups)
	}
	return snap
}

func (c *Collector) pruneLocked(now time.Time) {
	cutoff := now.Add(-time.Minute)
	idx := 0
	for idx < len(c.recentRequests) && c.recentRequests[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		c.recentRequests = append(c.recentRequests[:0], c.recentRequests[idx:]...)
	}
}
