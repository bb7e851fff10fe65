package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Pipeline collects per-operation run counts, fallback reasons, retrieval
// modes and stage latencies.
type Pipeline struct {
	mu        sync.RWMutex
	latencies map[string]*LatencyTracker
	counters  map[string]*atomic.Int64
	window    int
}

func NewPipeline(windowSize int) *Pipeline {
	return &Pipeline{
		latencies: make(map[string]*LatencyTracker),
		counters:  make(map[string]*atomic.Int64),
		window:    windowSize,
	}
}

// ObserveStage records how long a pipeline stage took.
func (p *Pipeline) ObserveStage(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.tracker(stage).Record(d)
}

// Inc increments a named counter.
func (p *Pipeline) Inc(name string) {
	if p == nil {
		return
	}
	p.counter(name).Add(1)
}

// Count returns the current value of a counter.
func (p *Pipeline) Count(name string) int64 {
	if p == nil {
		return 0
	}
	p.mu.RLock()
	c, ok := p.counters[name]
	p.mu.RUnlock()
	if !ok {
		return 0
	}
	return c.Load()
}

func (p *Pipeline) tracker(name string) *LatencyTracker {
	p.mu.RLock()
	t, ok := p.latencies[name]
	p.mu.RUnlock()
	if ok {
		return t
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok = p.latencies[name]; !ok {
		t = NewLatencyTracker(p.window)
		p.latencies[name] = t
	}
	return t
}

func (p *Pipeline) counter(name string) *atomic.Int64 {
	p.mu.RLock()
	c, ok := p.counters[name]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok = p.counters[name]; !ok {
		c = new(atomic.Int64)
		p.counters[name] = c
	}
	return c
}

// Snapshot renders all counters and latency stats.
func (p *Pipeline) Snapshot() map[string]any {
	if p == nil {
		return map[string]any{"counters": map[string]int64{}, "latencies": map[string]any{}}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	counters := make(map[string]int64, len(p.counters))
	for name, c := range p.counters {
		counters[name] = c.Load()
	}
	latencies := make(map[string]any, len(p.latencies))
	for name, t := range p.latencies {
		latencies[name] = t.Stats().ToMap()
	}

	return map[string]any{
		"counters":  counters,
		"latencies": latencies,
	}
}
