package domain

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func polyDet(lon, lat float64, ts time.Time) Detection {
	return Detection{Lon: lon, Lat: lat, Confidence: ConfidenceHigh, AcquiredAt: ts, Product: "VIIRS_SNPP_NRT"}
}

// hullRing decodes the polygon's GeoJSON boundary and returns its exterior
// ring coordinates.
func hullRing(t *testing.T, p FirePolygon) []geom.Coord {
	t.Helper()
	var g geom.T
	require.NoError(t, geojson.Unmarshal(p.BoundaryGeoJSON, &g))
	poly, ok := g.(*geom.Polygon)
	require.True(t, ok, "boundary is not a polygon: %s", p.BoundaryWKT)
	return poly.LinearRing(0).Coords()
}

// assertInConvexRing checks that (lon, lat) lies inside or on the convex ring.
func assertInConvexRing(t *testing.T, ring []geom.Coord, lon, lat float64) {
	t.Helper()
	const tol = 1e-12
	sign := 0
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		cross := (b[0]-a[0])*(lat-a[1]) - (b[1]-a[1])*(lon-a[0])
		switch {
		case cross > tol:
			if sign < 0 {
				t.Fatalf("point (%v, %v) outside hull", lon, lat)
			}
			sign = 1
		case cross < -tol:
			if sign > 0 {
				t.Fatalf("point (%v, %v) outside hull", lon, lat)
			}
			sign = -1
		}
	}
}

func TestSynthesizePolygons_ConvexHullContainsMembers(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	members := []Detection{
		polyDet(-120.000, 40.000, ts),
		polyDet(-120.010, 40.000, ts),
		polyDet(-120.010, 40.010, ts),
		polyDet(-120.000, 40.010, ts),
		polyDet(-120.005, 40.005, ts), // interior
		polyDet(-120.002, 40.007, ts), // interior
	}
	labels := []int{0, 0, 0, 0, 0, 0}

	polygons, err := SynthesizePolygons(members, labels, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1)

	p := polygons[0]
	assert.True(t, strings.HasPrefix(p.BoundaryWKT, "POLYGON"), "got %s", p.BoundaryWKT)
	assert.False(t, p.Degenerate)
	assert.Equal(t, 6, p.MemberCount)
	assert.Equal(t, []string{"VIIRS_SNPP_NRT"}, p.Products)

	ring := hullRing(t, p)
	for _, d := range members {
		assertInConvexRing(t, ring, d.Lon, d.Lat)
	}
}

func TestSynthesizePolygons_SinglePointDegeneratesToPoint(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	polygons, err := SynthesizePolygons([]Detection{polyDet(-120, 40, ts)}, []int{0}, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1, "degenerate clusters are still emitted")

	assert.True(t, strings.HasPrefix(polygons[0].BoundaryWKT, "POINT"), "got %s", polygons[0].BoundaryWKT)
	assert.True(t, polygons[0].Degenerate)
}

func TestSynthesizePolygons_TwoPointsDegenerateToSegment(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	members := []Detection{polyDet(-120, 40, ts), polyDet(-120.005, 40.005, ts)}

	polygons, err := SynthesizePolygons(members, []int{0, 0}, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1)

	assert.True(t, strings.HasPrefix(polygons[0].BoundaryWKT, "LINESTRING"), "got %s", polygons[0].BoundaryWKT)
	assert.True(t, polygons[0].Degenerate)
}

func TestSynthesizePolygons_SkipsNoise(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	members := []Detection{
		polyDet(-120, 40, ts),
		polyDet(-110, 35, ts), // noise slipped past corroboration
		polyDet(-120.001, 40.001, ts),
	}
	labels := []int{0, NoiseLabel, 0}

	polygons, err := SynthesizePolygons(members, labels, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1)
	assert.Equal(t, 2, polygons[0].MemberCount)
}

func TestSynthesizePolygons_RepresentativeTimeIsMode(t *testing.T) {
	modal := time.Date(2026, 8, 29, 9, 32, 0, 0, time.UTC)
	other := time.Date(2026, 8, 29, 11, 15, 0, 0, time.UTC)
	members := []Detection{
		polyDet(-120.000, 40.000, other),
		polyDet(-120.001, 40.000, modal),
		polyDet(-120.002, 40.000, modal),
	}

	polygons, err := SynthesizePolygons(members, []int{0, 0, 0}, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1)
	assert.Equal(t, modal, polygons[0].RepresentativeTime)
}

func TestSynthesizePolygons_ModeTieBreaksEarliest(t *testing.T) {
	earlier := time.Date(2026, 8, 29, 9, 32, 0, 0, time.UTC)
	later := time.Date(2026, 8, 29, 11, 15, 0, 0, time.UTC)
	members := []Detection{
		polyDet(-120.000, 40.000, later),
		polyDet(-120.001, 40.000, earlier),
		polyDet(-120.002, 40.000, later),
		polyDet(-120.003, 40.000, earlier),
	}

	polygons, err := SynthesizePolygons(members, []int{0, 0, 0, 0}, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1)
	assert.Equal(t, earlier, polygons[0].RepresentativeTime)
}

func TestSynthesizePolygons_DeterministicIDs(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	members := []Detection{
		polyDet(-120.000, 40.000, ts),
		polyDet(-120.010, 40.000, ts),
		polyDet(-120.005, 40.010, ts),
	}
	labels := []int{0, 0, 0}

	first, err := SynthesizePolygons(members, labels, discardLogger())
	require.NoError(t, err)
	second, err := SynthesizePolygons(members, labels, discardLogger())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "same cluster must produce the same record ID")
	assert.True(t, strings.HasPrefix(first[0].ID, "fire-"))
}

func TestSynthesizePolygons_IngestedAtFromClock(t *testing.T) {
	frozen := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	polygons, err := SynthesizePolygons([]Detection{polyDet(-120, 40, ts)}, []int{0}, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 1)
	assert.Equal(t, frozen, polygons[0].IngestedAt)
}

func TestSynthesizePolygons_EmitsClustersInFirstAppearanceOrder(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	members := []Detection{
		polyDet(-120, 40, ts),
		polyDet(-110, 35, ts),
		polyDet(-120.001, 40, ts),
		polyDet(-110.001, 35, ts),
	}
	labels := []int{7, 3, 7, 3}

	polygons, err := SynthesizePolygons(members, labels, discardLogger())
	require.NoError(t, err)
	require.Len(t, polygons, 2)

	// Label 7 appears first in the input, so its polygon comes first.
	ring := polygons[0].BoundaryWKT
	assert.Contains(t, ring, "-120")
	assert.Contains(t, polygons[1].BoundaryWKT, "-110")
}
