// Package pipeline orchestrates one hotspot validation run: fetch, recency
// filter, cluster, corroborate, synthesize, persist.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/emberwatch/hotspot-etl-service/internal/domain"
	"github.com/emberwatch/hotspot-etl-service/internal/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves raw detections for one product.
type Fetcher interface {
	FetchDetections(ctx context.Context, product string, bbox domain.BoundingBox, dayRange int) ([]domain.Detection, error)
}

// Sink persists validated fire polygons.
type Sink interface {
	Persist(ctx context.Context, polygons []domain.FirePolygon) error
}

// Summary reports what one run did.
type Summary struct {
	RunID              string   `json:"run_id"`
	Products           []string `json:"products"`
	DetectionsFetched  int      `json:"detections_fetched"`
	DetectionsRetained int      `json:"detections_retained"`
	ClustersFormed     int      `json:"clusters_formed"`
	ClustersValidated  int      `json:"clusters_validated"`
	PolygonsEmitted    int      `json:"polygons_emitted"`
}

// Runner executes validation runs against fixed defaults, optionally
// overridden per invocation.
type Runner struct {
	fetcher  Fetcher
	sinks    []Sink
	defaults Params
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Runner with the given stages and observability.
func New(fetcher Fetcher, sinks []Sink, defaults Params, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		fetcher:  fetcher,
		sinks:    sinks,
		defaults: defaults,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed
// successfully.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no pipeline run has completed yet")
	}
	return nil
}

// TriggerRun applies per-invocation overrides to the configured defaults and
// executes one run end-to-end. Either every product is fetched, filtered, and
// fed to corroboration, or the whole run fails; partial results would bias
// corroboration counts and are never persisted.
func (r *Runner) TriggerRun(ctx context.Context, overrides Overrides) (Summary, error) {
	params, err := r.defaults.apply(overrides)
	if err != nil {
		return Summary{}, err
	}
	return r.run(ctx, params)
}

func (r *Runner) run(ctx context.Context, params Params) (Summary, error) {
	start := time.Now()
	summary := Summary{
		RunID:    uuid.NewString(),
		Products: params.Products,
	}
	logger := r.logger.With("run_id", summary.RunID)

	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	logger.Info("run started",
		"bbox", params.BoundingBox.Query(),
		"products", params.Products,
		"lookback", params.Lookback,
	)

	// Per-product fetch and recency filtering operate on disjoint data, so
	// they run concurrently; the first failure cancels the rest.
	batches := make([][]domain.Detection, len(params.Products))
	fetched := make([]int, len(params.Products))

	g, fetchCtx := errgroup.WithContext(ctx)
	for i, product := range params.Products {
		g.Go(func() error {
			raw, err := r.fetcher.FetchDetections(fetchCtx, product, params.BoundingBox, params.DayRange)
			if err != nil {
				return err
			}
			recent, err := domain.FilterRecent(product, raw, params.Lookback)
			if err != nil {
				return err
			}
			batches[i] = recent
			fetched[i] = len(raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.metrics.RunsTotal.WithLabelValues("error").Inc()
		logger.Error("run aborted", "error", err)
		return Summary{}, err
	}

	// Union in product order so label assignment is reproducible.
	var unified []domain.Detection
	for i, product := range params.Products {
		r.metrics.DetectionsFetched.WithLabelValues(product).Add(float64(fetched[i]))
		r.metrics.DetectionsRetained.WithLabelValues(product).Add(float64(len(batches[i])))
		summary.DetectionsFetched += fetched[i]
		summary.DetectionsRetained += len(batches[i])
		unified = append(unified, batches[i]...)
	}

	labels := domain.ClusterDetections(unified, params.Eps, params.MinSamples)
	summary.ClustersFormed = countClusters(labels)
	r.metrics.ClustersFormed.Observe(float64(summary.ClustersFormed))

	validated, validatedLabels := domain.FilterCorroborated(unified, labels, params.MinClusterSize, params.RequiredHighConfidence)
	summary.ClustersValidated = countClusters(validatedLabels)
	r.metrics.ClustersValidated.Observe(float64(summary.ClustersValidated))

	polygons, err := domain.SynthesizePolygons(validated, validatedLabels, logger)
	if err != nil {
		r.metrics.RunsTotal.WithLabelValues("error").Inc()
		logger.Error("run aborted", "error", err)
		return Summary{}, err
	}
	for _, p := range polygons {
		if p.Degenerate {
			r.metrics.DegenerateGeometries.Inc()
		}
	}

	for _, sink := range r.sinks {
		if err := sink.Persist(ctx, polygons); err != nil {
			r.metrics.RunsTotal.WithLabelValues("error").Inc()
			logger.Error("run aborted", "error", err)
			return Summary{}, err
		}
	}

	summary.PolygonsEmitted = len(polygons)
	r.metrics.PolygonsEmitted.Add(float64(len(polygons)))
	r.metrics.RunsTotal.WithLabelValues("success").Inc()
	r.metrics.RunDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)

	logger.Info("run completed",
		"detections_fetched", summary.DetectionsFetched,
		"detections_retained", summary.DetectionsRetained,
		"clusters_formed", summary.ClustersFormed,
		"clusters_validated", summary.ClustersValidated,
		"polygons_emitted", summary.PolygonsEmitted,
		"duration", time.Since(start),
	)
	return summary, nil
}

// countClusters counts distinct non-noise labels.
func countClusters(labels []int) int {
	seen := make(map[int]bool)
	for _, label := range labels {
		if label != domain.NoiseLabel {
			seen[label] = true
		}
	}
	return len(seen)
}
