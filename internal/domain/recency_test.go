package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detAt(ts time.Time) Detection {
	return Detection{Lon: -120, Lat: 40, Confidence: ConfidenceNominal, AcquiredAt: ts, Product: "VIIRS_SNPP_NRT"}
}

func TestFilterRecent_KeepsOnlyWindow(t *testing.T) {
	latest := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	batch := []Detection{
		detAt(latest.Add(-36 * time.Hour)), // outside
		detAt(latest),
		detAt(latest.Add(-25 * time.Hour)), // outside
		detAt(latest.Add(-23 * time.Hour)),
		detAt(latest.Add(-1 * time.Hour)),
	}

	recent, err := FilterRecent("VIIRS_SNPP_NRT", batch, 24*time.Hour)
	require.NoError(t, err)

	require.Len(t, recent, 3)
	cutoff := latest.Add(-24 * time.Hour)
	for _, d := range recent {
		assert.False(t, d.AcquiredAt.Before(cutoff), "detection at %v outside window", d.AcquiredAt)
	}
}

func TestFilterRecent_WindowBoundaryInclusive(t *testing.T) {
	latest := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	boundary := latest.Add(-24 * time.Hour)
	batch := []Detection{detAt(latest), detAt(boundary)}

	recent, err := FilterRecent("VIIRS_SNPP_NRT", batch, 24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, recent, 2, "detection exactly at latest-lookback must be retained")
}

func TestFilterRecent_SortsAscending(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	batch := []Detection{
		detAt(base),
		detAt(base.Add(-2 * time.Hour)),
		detAt(base.Add(-1 * time.Hour)),
	}

	recent, err := FilterRecent("VIIRS_SNPP_NRT", batch, 24*time.Hour)
	require.NoError(t, err)

	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].AcquiredAt.Before(recent[i-1].AcquiredAt), "result not sorted at %d", i)
	}
}

func TestFilterRecent_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	batch := []Detection{detAt(base), detAt(base.Add(-48 * time.Hour))}

	_, err := FilterRecent("VIIRS_SNPP_NRT", batch, 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, base, batch[0].AcquiredAt)
	assert.Equal(t, base.Add(-48*time.Hour), batch[1].AcquiredAt)
}

func TestFilterRecent_EmptyBatch(t *testing.T) {
	_, err := FilterRecent("VIIRS_NOAA20_NRT", nil, 24*time.Hour)
	require.Error(t, err)

	var emptyErr *EmptyBatchError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "VIIRS_NOAA20_NRT", emptyErr.Product)
}
