// Package metrics provides an in-memory, concurrent-safe view of generation
// throughput and failure distribution. Counters are intentionally ephemeral:
// persistence of provider call history is a non-goal.
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks live metrics. Scalar counters use atomics for lock-free
// updates; the per-provider and per-reason maps take a mutex.
type Collector struct {
	totalRequests  int64
	fallbacks      int64
	cacheHits      int64
	totalTokensIn  int64
	totalTokensOut int64
	activeRequests int64

	mu              sync.Mutex
	successByLabel  map[string]int64
	failuresByLabel map[string]int64
	failureReasons  map[string]int64

	startTime time.Time
}

// Stats is a point-in-time snapshot of the collector's counters, suitable
// for JSON serialisation on the stats endpoint.
type Stats struct {
	Uptime          string           `json:"uptime"`
	TotalRequests   int64            `json:"total_requests"`
	Fallbacks       int64            `json:"fallbacks"`
	CacheHits       int64            `json:"cache_hits"`
	TokensIn        int64            `json:"tokens_in"`
	TokensOut       int64            `json:"tokens_out"`
	ActiveRequests  int64            `json:"active_requests"`
	SuccessByLabel  map[string]int64 `json:"success_by_provider"`
	FailuresByLabel map[string]int64 `json:"failures_by_provider"`
	FailureReasons  map[string]int64 `json:"failure_reasons"`
}

// NewCollector creates a Collector with all counters at zero and the start
// time set to now.
func NewCollector() *Collector {
	return &Collector{
		successByLabel:  make(map[string]int64),
		failuresByLabel: make(map[string]int64),
		failureReasons:  make(map[string]int64),
		startTime:       time.Now(),
	}
}

// IncrementActive marks a generation request as in flight.
func (c *Collector) IncrementActive() {
	atomic.AddInt64(&c.activeRequests, 1)
}

// DecrementActive marks a generation request as finished, success or not.
func (c *Collector) DecrementActive() {
	atomic.AddInt64(&c.activeRequests, -1)
}

// RecordGeneration updates counters from one completed generation call.
func (c *Collector) RecordGeneration(provider string, fellBack bool, tokensIn, tokensOut int) {
	atomic.AddInt64(&c.totalRequests, 1)
	atomic.AddInt64(&c.totalTokensIn, int64(tokensIn))
	atomic.AddInt64(&c.totalTokensOut, int64(tokensOut))

	if fellBack {
		atomic.AddInt64(&c.fallbacks, 1)
		return
	}

	c.mu.Lock()
	c.successByLabel[provider]++
	c.mu.Unlock()
}

// RecordFailure counts one failed provider attempt by label and reason.
func (c *Collector) RecordFailure(provider, reason string) {
	c.mu.Lock()
	c.failuresByLabel[provider]++
	c.failureReasons[reason]++
	c.mu.Unlock()
}

// RecordCacheHit counts one generation answered from cache.
func (c *Collector) RecordCacheHit() {
	atomic.AddInt64(&c.totalRequests, 1)
	atomic.AddInt64(&c.cacheHits, 1)
}

// Stats returns a point-in-time snapshot of all metrics.
func (c *Collector) Stats() *Stats {
	c.mu.Lock()
	success := make(map[string]int64, len(c.successByLabel))
	for k, v := range c.successByLabel {
		success[k] = v
	}
	failures := make(map[string]int64, len(c.failuresByLabel))
	for k, v := range c.failuresByLabel {
		failures[k] = v
	}
	reasons := make(map[string]int64, len(c.failureReasons))
	for k, v := range c.failureReasons {
		reasons[k] = v
	}
	c.mu.Unlock()

	return &Stats{
		Uptime:          formatDuration(time.Since(c.startTime)),
		TotalRequests:   atomic.LoadInt64(&c.totalRequests),
		Fallbacks:       atomic.LoadInt64(&c.fallbacks),
		CacheHits:       atomic.LoadInt64(&c.cacheHits),
		TokensIn:        atomic.LoadInt64(&c.totalTokensIn),
		TokensOut:       atomic.LoadInt64(&c.totalTokensOut),
		ActiveRequests:  atomic.LoadInt64(&c.activeRequests),
		SuccessByLabel:  success,
		FailuresByLabel: failures,
		FailureReasons:  reasons,
	}
}

// formatDuration renders an uptime duration as "2d 3h 4m 5s".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
