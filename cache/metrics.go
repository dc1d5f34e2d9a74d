package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache activity per cache name. A nil *Metrics is a no-op.
type Metrics struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
	entries     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeline",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups served from memory.",
		}, []string{"cache"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeline",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that had to compute.",
		}, []string{"cache"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeline",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries dropped to stay within capacity.",
		}, []string{"cache"}),
		expirations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timeline",
			Subsystem: "cache",
			Name:      "expirations_total",
			Help:      "Entries dropped after their TTL.",
		}, []string{"cache"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "timeline",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently stored.",
		}, []string{"cache"}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.evictions, m.expirations, m.entries)
	}
	return m
}

// Hits returns the hit counter for a cache, for tests and status pages.
func (m *Metrics) Hits(name string) prometheus.Counter { return m.hits.WithLabelValues(name) }

// Misses returns the miss counter for a cache.
func (m *Metrics) Misses(name string) prometheus.Counter { return m.misses.WithLabelValues(name) }

// Evictions returns the eviction counter for a cache.
func (m *Metrics) Evictions(name string) prometheus.Counter {
	return m.evictions.WithLabelValues(name)
}

func (m *Metrics) hit(name string) {
	if m != nil {
		m.hits.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) miss(name string) {
	if m != nil {
		m.misses.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) evict(name string) {
	if m != nil {
		m.evictions.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) expire(name string) {
	if m != nil {
		m.expirations.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) size(name string, n int) {
	if m != nil {
		m.entries.WithLabelValues(name).Set(float64(n))
	}
}
