package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// threshold-resolution pipeline.
type Metrics struct {
	CurveSetsConsumed prometheus.Counter
	MatricesProduced  prometheus.Counter
	ResolveErrors     prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Resolver metrics.
	ResolveDuration prometheus.Histogram
	CellsResolved   prometheus.Counter

	// Engine-fetch metrics.
	FetchRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	FetchCache       *prometheus.CounterVec // labels: result={hit,miss}
	FetchAPIDuration prometheus.Histogram
	FetcherEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CurveSetsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_etl",
			Name:      "curve_sets_consumed_total",
			Help:      "Total curve-set messages read from the source topic.",
		}),
		MatricesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_etl",
			Name:      "matrices_produced_total",
			Help:      "Total resolved matrices written to the sink topic.",
		}),
		ResolveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_etl",
			Name:      "resolve_errors_total",
			Help:      "Total curve sets that failed threshold resolution.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-resolve-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_etl",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of resolving one curve set across all alarm levels.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		CellsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_etl",
			Name:      "cells_resolved_total",
			Help:      "Total (distance, class) cells resolved across all matrices.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_etl",
			Name:      "fetch_requests_total",
			Help:      "Engine API curve-set fetches by outcome.",
		}, []string{"outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_etl",
			Name:      "fetch_cache_total",
			Help:      "Engine fetch cache lookups by result.",
		}, []string{"result"}),
		FetchAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_etl",
			Name:      "fetch_api_duration_seconds",
			Help:      "Engine API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		FetcherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_etl",
			Name:      "fetcher_enabled",
			Help:      "1 when engine curve fetching is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.CurveSetsConsumed,
		m.MatricesProduced,
		m.ResolveErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ResolveDuration,
		m.CellsResolved,
		m.FetchRequests,
		m.FetchCache,
		m.FetchAPIDuration,
		m.FetcherEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CurveSetsConsumed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_etl", Name: "curve_sets_consumed_total"}),
		MatricesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_etl", Name: "matrices_produced_total"}),
		ResolveErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_etl", Name: "resolve_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_etl", Name: "batch_processing_duration_seconds"}),
		ResolveDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_etl", Name: "resolve_duration_seconds"}),
		CellsResolved:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_etl", Name: "cells_resolved_total"}),
		FetchRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_etl", Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchCache:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_etl", Name: "fetch_cache_total"}, []string{"result"}),
		FetchAPIDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_etl", Name: "fetch_api_duration_seconds"}),
		FetcherEnabled:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_etl", Name: "fetcher_enabled"}),
	}
}
