// Package metrics tracks pipeline latencies and degradation counters.
package metrics

import (
	"slices"
	"sync"
	"time"
)

// LatencyTracker keeps the most recent samples in a ring buffer and computes
// percentiles on demand.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
	count   int64
}

func NewLatencyTracker(windowSize int) *LatencyTracker {
	if windowSize <= 0 {
		windowSize = 1000
	}
	return &LatencyTracker{samples: make([]time.Duration, windowSize)}
}

// Record adds a sample, overwriting the oldest once the window is full.
func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.samples[lt.next] = d
	lt.next++
	if lt.next == len(lt.samples) {
		lt.next = 0
		lt.full = true
	}
	lt.count++
}

// Stats returns percentiles over the current window.
func (lt *LatencyTracker) Stats() LatencyStats {
	lt.mu.Lock()
	n := lt.next
	if lt.full {
		n = len(lt.samples)
	}
	window := make([]time.Duration, n)
	copy(window, lt.samples[:n])
	total := lt.count
	lt.mu.Unlock()

	if n == 0 {
		return LatencyStats{}
	}

	slices.Sort(window)

	var sum time.Duration
	for _, d := range window {
		sum += d
	}

	return LatencyStats{
		Count:   total,
		Samples: n,
		Min:     window[0],
		Max:     window[n-1],
		Avg:     sum / time.Duration(n),
		P50:     percentile(window, 0.50),
		P95:     percentile(window, 0.95),
		P99:     percentile(window, 0.99),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// LatencyStats holds latency statistics.
type LatencyStats struct {
	Count   int64
	Samples int
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
}

// ToMap renders the stats in milliseconds for JSON output.
func (s LatencyStats) ToMap() map[string]any {
	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	return map[string]any{
		"count":   s.Count,
		"samples": s.Samples,
		"min_ms":  ms(s.Min),
		"max_ms":  ms(s.Max),
		"avg_ms":  ms(s.Avg),
		"p50_ms":  ms(s.P50),
		"p95_ms":  ms(s.P95),
		"p99_ms":  ms(s.P99),
	}
}
