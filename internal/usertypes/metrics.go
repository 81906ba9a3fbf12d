package usertypes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache and store activity. A nil *Metrics records nothing.
type Metrics struct {
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	Fetches     *prometheus.CounterVec
	Retries     *prometheus.CounterVec
	Failures    *prometheus.CounterVec
}

// NewMetrics registers the resolver counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// CacheHits counts lookups answered from a valid cache entry
		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundshelf_usertype_cache_hits_total",
				Help: "Total number of user type lookups served from cache",
			},
			[]string{"kind"},
		),
		// CacheMisses counts lookups that had to go to the store
		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundshelf_usertype_cache_misses_total",
				Help: "Total number of user type lookups that missed the cache",
			},
			[]string{"kind"},
		),
		Fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundshelf_usertype_store_fetches_total",
				Help: "Total number of store fetch attempts",
			},
			[]string{"kind"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundshelf_usertype_retries_total",
				Help: "Total number of retried store fetches",
			},
			[]string{"kind"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundshelf_usertype_failures_total",
				Help: "Total number of failed resolutions by error code",
			},
			[]string{"kind", "code"},
		),
	}
}

func (m *Metrics) hit(kind string) {
	if m != nil {
		m.CacheHits.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) miss(kind string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) fetch(kind string) {
	if m != nil {
		m.Fetches.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) retry(kind string) {
	if m != nil {
		m.Retries.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) failure(kind, code string) {
	if m != nil {
		m.Failures.WithLabelValues(kind, code).Inc()
	}
}
