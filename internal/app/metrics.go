package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/session"
)

// Metrics tracks session activity: intents applied, effects issued and how
// long each effect took to report back.
type Metrics struct {
	intents   atomic.Uint64
	effects   atomic.Uint64
	failures  atomic.Uint64
	cancelled atomic.Uint64
	stale     atomic.Uint64

	// Effect latency
	latencyCount   atomic.Uint64
	latencyTotalNs atomic.Int64
	latencyMinNs   atomic.Int64
	latencyMaxNs   atomic.Int64

	mu      sync.Mutex
	started map[uuid.UUID]time.Time

	now       func() time.Time
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		started:   make(map[uuid.UUID]time.Time),
		now:       time.Now,
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first sample will be smaller
	m.latencyMinNs.Store(1<<63 - 1)
	return m
}

// Observe records one transition. It is a session.Observer.
func (m *Metrics) Observe(t session.Transition) {
	m.intents.Add(1)

	now := m.now()
	if len(t.Effects) > 0 {
		m.effects.Add(uint64(len(t.Effects)))
		m.mu.Lock()
		for _, e := range t.Effects {
			m.started[e.ID] = now
		}
		m.mu.Unlock()
	}

	var id uuid.UUID
	switch in := t.Intent.(type) {
	case session.FileOpened:
		id = in.Effect
	case session.FileSaved:
		id = in.Effect
	}
	if id != uuid.Nil {
		m.mu.Lock()
		start, ok := m.started[id]
		delete(m.started, id)
		m.mu.Unlock()
		if ok {
			m.recordLatency(now.Sub(start))
		}
	}

	if t.Err != nil {
		if t.Err.Kind == fileio.KindDialogClosed {
			m.cancelled.Add(1)
		} else {
			m.failures.Add(1)
		}
	}
	if t.Stale {
		m.stale.Add(1)
	}
}

func (m *Metrics) recordLatency(d time.Duration) {
	ns := d.Nanoseconds()

	m.latencyCount.Add(1)
	m.latencyTotalNs.Add(ns)

	// Update min (atomic compare-and-swap loop)
	for {
		old := m.latencyMinNs.Load()
		if ns >= old {
			break
		}
		if m.latencyMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.latencyMaxNs.Load()
		if ns <= old {
			break
		}
		if m.latencyMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.latencyCount.Load()

	var avg time.Duration
	if count > 0 {
		avg = time.Duration(m.latencyTotalNs.Load() / int64(count))
	}

	minNs := m.latencyMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	m.mu.Lock()
	inflight := len(m.started)
	m.mu.Unlock()

	return MetricsSnapshot{
		Uptime:     m.now().Sub(m.startTime),
		Intents:    m.intents.Load(),
		Effects:    m.effects.Load(),
		Failures:   m.failures.Load(),
		Cancelled:  m.cancelled.Load(),
		Stale:      m.stale.Load(),
		InFlight:   inflight,
		Completed:  count,
		AvgLatency: avg,
		MinLatency: time.Duration(minNs),
		MaxLatency: time.Duration(m.latencyMaxNs.Load()),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime     time.Duration
	Intents    uint64
	Effects    uint64
	Failures   uint64
	Cancelled  uint64
	Stale      uint64
	InFlight   int
	Completed  uint64
	AvgLatency time.Duration
	MinLatency time.Duration
	MaxLatency time.Duration
}

// Fields returns the snapshot as logger fields.
func (s MetricsSnapshot) Fields() map[string]any {
	return map[string]any{
		"uptime":      s.Uptime.Round(time.Millisecond),
		"intents":     s.Intents,
		"effects":     s.Effects,
		"failures":    s.Failures,
		"cancelled":   s.Cancelled,
		"stale":       s.Stale,
		"avg_latency": s.AvgLatency,
		"max_latency": s.MaxLatency,
	}
}
