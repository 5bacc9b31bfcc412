package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-geom/xy"
)

// FirePolygon is the terminal artifact of a validated cluster: its convex
// hull plus a representative acquisition time. Immutable once created.
type FirePolygon struct {
	ID                 string          `json:"id"`
	RepresentativeTime time.Time       `json:"representative_time"`
	BoundaryWKT        string          `json:"boundary_wkt"`
	BoundaryGeoJSON    json.RawMessage `json:"boundary_geojson"`
	MemberCount        int             `json:"member_count"`
	Products           []string        `json:"products"`
	Degenerate         bool            `json:"degenerate,omitempty"`
	IngestedAt         time.Time       `json:"ingested_at"`
}

// SynthesizePolygons converts each surviving cluster into a FirePolygon.
// Clusters are emitted in first-appearance order of their labels. The noise
// label is skipped even if the corroboration stage somehow let it through.
//
// A hull over fewer than 3 non-collinear points degenerates to a point or
// segment; such clusters are still emitted (a corroborated 1-2 point cluster
// is a meaningful signal), logged as degenerate.
func SynthesizePolygons(detections []Detection, labels []int, logger *slog.Logger) ([]FirePolygon, error) {
	order := make([]int, 0)
	members := make(map[int][]Detection)
	for i, d := range detections {
		label := labels[i]
		if label == NoiseLabel {
			continue
		}
		if _, seen := members[label]; !seen {
			order = append(order, label)
		}
		members[label] = append(members[label], d)
	}

	polygons := make([]FirePolygon, 0, len(order))
	for _, label := range order {
		p, err := synthesizeOne(members[label])
		if err != nil {
			return nil, fmt.Errorf("synthesize cluster %d: %w", label, err)
		}
		if p.Degenerate {
			logger.Warn("degenerate cluster boundary",
				"cluster", label,
				"members", p.MemberCount,
				"boundary", p.BoundaryWKT,
			)
		}
		polygons = append(polygons, p)
	}
	return polygons, nil
}

func synthesizeOne(members []Detection) (FirePolygon, error) {
	flat := make([]float64, 0, len(members)*2)
	for _, d := range members {
		flat = append(flat, d.Lon, d.Lat)
	}

	hull := xy.ConvexHull(geom.NewMultiPointFlat(geom.XY, flat))

	boundaryWKT, err := wkt.Marshal(hull)
	if err != nil {
		return FirePolygon{}, fmt.Errorf("encode WKT: %w", err)
	}
	boundaryGeoJSON, err := geojson.Marshal(hull)
	if err != nil {
		return FirePolygon{}, fmt.Errorf("encode GeoJSON: %w", err)
	}

	_, isPolygon := hull.(*geom.Polygon)
	reprTime := representativeTime(members)

	return FirePolygon{
		ID:                 generateID(reprTime, boundaryWKT),
		RepresentativeTime: reprTime,
		BoundaryWKT:        boundaryWKT,
		BoundaryGeoJSON:    boundaryGeoJSON,
		MemberCount:        len(members),
		Products:           distinctProducts(members),
		Degenerate:         !isPolygon,
		IngestedAt:         clock.Now().UTC(),
	}, nil
}

// representativeTime returns the modal acquisition time of the cluster.
// Ties break toward the earliest timestamp so identical inputs always pick
// the same representative.
func representativeTime(members []Detection) time.Time {
	counts := make(map[time.Time]int, len(members))
	for _, d := range members {
		counts[d.AcquiredAt]++
	}

	var best time.Time
	bestCount := 0
	for _, d := range members {
		c := counts[d.AcquiredAt]
		if c > bestCount || (c == bestCount && d.AcquiredAt.Before(best)) {
			best = d.AcquiredAt
			bestCount = c
		}
	}
	return best
}

func distinctProducts(members []Detection) []string {
	seen := make(map[string]bool)
	for _, d := range members {
		seen[d.Product] = true
	}
	products := make([]string, 0, len(seen))
	for p := range seen {
		products = append(products, p)
	}
	sort.Strings(products)
	return products
}

// generateID produces a deterministic ID from the polygon's key fields.
// Reprocessing the same detections yields the same ID, enabling idempotent
// upserts downstream.
func generateID(reprTime time.Time, boundaryWKT string) string {
	input := fmt.Sprintf("%s|%s", reprTime.UTC().Format(time.RFC3339), boundaryWKT)
	hash := sha256.Sum256([]byte(input))
	return "fire-" + hex.EncodeToString(hash[:8])
}
