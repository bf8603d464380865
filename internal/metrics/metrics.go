// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Swipes counts accepted clock events by kind.
	Swipes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstudy_swipes_total",
		Help: "Clock events accepted, by kind.",
	}, []string{"kind"})

	// Reconciliations counts engine runs by report kind.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstudy_reconciliations_total",
		Help: "Reconciliation report computations, by report kind.",
	}, []string{"report"})

	// CacheHits and CacheMisses track the report cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstudy_report_cache_hits_total",
		Help: "Report cache hits.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstudy_report_cache_misses_total",
		Help: "Report cache misses.",
	})

	// AutoClockOuts counts events the worker closed at the daily cutoff.
	AutoClockOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstudy_auto_clockouts_total",
		Help: "Open clock-ins closed by the auto-clock-out job.",
	})
)
