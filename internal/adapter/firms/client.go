// Package firms fetches active-fire detections from the NASA FIRMS area CSV
// API.
package firms

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/emberwatch/hotspot-etl-service/internal/domain"
	"github.com/emberwatch/hotspot-etl-service/internal/observability"
)

// Client implements pipeline.Fetcher against the FIRMS area API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a FIRMS area API client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchDetections retrieves raw detections for one product over the given
// bounding box and day window. Any transport, HTTP, or parse failure is an
// AcquisitionError: the pipeline must never mistake a failed fetch for a
// quiet day.
func (c *Client) FetchDetections(ctx context.Context, product string, bbox domain.BoundingBox, dayRange int) ([]domain.Detection, error) {
	// FIRMS path layout: {base}/{key}/{product}/{bbox}/{days}.
	fullURL := fmt.Sprintf("%s/%s/%s/%s/%d", c.baseURL, c.apiKey, product, bbox.Query(), dayRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.AcquisitionError{Product: product, Err: fmt.Errorf("create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.AcquisitionError{Product: product, Err: fmt.Errorf("firms request: %w", err)}
	}
	defer resp.Body.Close()
	c.metrics.FetchDuration.WithLabelValues(product).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.AcquisitionError{
			Product: product,
			Err:     fmt.Errorf("firms API error: status %d: %s", resp.StatusCode, body),
		}
	}

	detections, err := parseCSV(resp.Body, product)
	if err != nil {
		return nil, &domain.AcquisitionError{Product: product, Err: err}
	}

	c.logger.Debug("fetched detections", "product", product, "count", len(detections))
	return detections, nil
}

// Columns required from the FIRMS CSV header. Each product carries extra
// columns (brightness, frp, scan, ...) that the pipeline does not use.
var requiredColumns = []string{"latitude", "longitude", "confidence", "acq_date", "acq_time"}

// parseCSV decodes FIRMS CSV rows into detections, locating the required
// columns by header name. Malformed rows fail the whole batch: a partially
// parsed batch would corrupt corroboration counts downstream.
func parseCSV(r io.Reader, product string) ([]domain.Detection, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("CSV header missing column %q", col)
		}
	}

	var detections []domain.Detection
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}

		d, err := parseRow(row, idx, product)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		detections = append(detections, d)
	}
	return detections, nil
}

func parseRow(row []string, idx map[string]int, product string) (domain.Detection, error) {
	lat, err := strconv.ParseFloat(row[idx["latitude"]], 64)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(row[idx["longitude"]], 64)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("parse longitude: %w", err)
	}
	confidence, err := domain.ParseConfidence(row[idx["confidence"]])
	if err != nil {
		return domain.Detection{}, err
	}
	acquiredAt, err := domain.ParseAcquiredAt(row[idx["acq_date"]], row[idx["acq_time"]])
	if err != nil {
		return domain.Detection{}, err
	}

	return domain.Detection{
		Lat:        lat,
		Lon:        lon,
		Confidence: confidence,
		AcquiredAt: acquiredAt,
		Product:    product,
	}, nil
}
