package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the analysis service.
type Metrics struct {
	AnalysesTotal    prometheus.Counter
	AnalysisFailures prometheus.Counter
	RowsConsolidated prometheus.Counter
	WarningsTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
}

// NewMetrics creates and registers the analysis metrics on the given
// registerer. Pass prometheus.DefaultRegisterer for the process registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "analyses_total",
			Help:      "Total number of consolidation analyses run.",
		}),
		AnalysisFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "analysis_failures_total",
			Help:      "Total number of analyses that returned an error.",
		}),
		RowsConsolidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "rows_consolidated_total",
			Help:      "Total number of report rows merged into unified tables.",
		}),
		WarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adpulse",
			Name:      "resolution_warnings_total",
			Help:      "Total resolution and parsing warnings by code.",
		}, []string{"code"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adpulse",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full consolidation analysis.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AnalysesTotal,
			m.AnalysisFailures,
			m.RowsConsolidated,
			m.WarningsTotal,
			m.AnalysisDuration,
		)
	}
	return m
}
