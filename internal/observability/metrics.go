package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// hotspot validation pipeline.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration prometheus.Histogram

	DetectionsFetched  *prometheus.CounterVec   // labels: product
	DetectionsRetained *prometheus.CounterVec   // labels: product
	FetchDuration      *prometheus.HistogramVec // labels: product

	ClustersFormed       prometheus.Histogram
	ClustersValidated    prometheus.Histogram
	PolygonsEmitted      prometheus.Counter
	DegenerateGeometries prometheus.Counter

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "runs_total",
			Help:      "Pipeline invocations by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-cluster-validate-persist run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		DetectionsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "detections_fetched_total",
			Help:      "Raw detections fetched from FIRMS by product.",
		}, []string{"product"}),
		DetectionsRetained: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "detections_retained_total",
			Help:      "Detections surviving the recency filter by product.",
		}, []string{"product"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "fetch_duration_seconds",
			Help:      "FIRMS area API request duration by product.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"product"}),
		ClustersFormed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "clusters_formed",
			Help:      "Spatial clusters formed per run, noise excluded.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		ClustersValidated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "clusters_validated",
			Help:      "Clusters surviving corroboration per run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		PolygonsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "polygons_emitted_total",
			Help:      "Validated fire polygons delivered to the sink.",
		}),
		DegenerateGeometries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "degenerate_geometries_total",
			Help:      "Emitted polygons whose hull degenerated to a point or segment.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hotspot_etl",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.DetectionsFetched,
		m.DetectionsRetained,
		m.FetchDuration,
		m.ClustersFormed,
		m.ClustersValidated,
		m.PolygonsEmitted,
		m.DegenerateGeometries,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hotspot_etl", Name: "runs_total"}, []string{"outcome"}),
		RunDuration:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hotspot_etl", Name: "run_duration_seconds"}),
		DetectionsFetched:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hotspot_etl", Name: "detections_fetched_total"}, []string{"product"}),
		DetectionsRetained:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hotspot_etl", Name: "detections_retained_total"}, []string{"product"}),
		FetchDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "hotspot_etl", Name: "fetch_duration_seconds"}, []string{"product"}),
		ClustersFormed:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hotspot_etl", Name: "clusters_formed"}),
		ClustersValidated:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hotspot_etl", Name: "clusters_validated"}),
		PolygonsEmitted:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hotspot_etl", Name: "polygons_emitted_total"}),
		DegenerateGeometries: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hotspot_etl", Name: "degenerate_geometries_total"}),
		PipelineRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hotspot_etl", Name: "pipeline_running"}),
	}
}
