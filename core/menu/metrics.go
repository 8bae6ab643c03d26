package menu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of the menu service. A nil Registerer keeps them unregistered.
type Metrics struct {
	cacheLookups  *prometheus.CounterVec
	cacheErrors   *prometheus.CounterVec
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_cache_lookups_total",
			Help: "Sidebar menu cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		cacheErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_cache_errors_total",
			Help: "Sidebar menu cache backend failures by operation (get, set, delete).",
		}, []string{"op"}),
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_builds_total",
			Help: "Sidebar menu builds by result (ok, error).",
		}, []string{"result"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "menu_build_duration_seconds",
			Help:    "Time spent computing the badges of a sidebar menu.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
