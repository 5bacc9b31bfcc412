package domain

import (
	"sort"
	"time"
)

// FilterRecent restricts a product batch to detections acquired within
// lookback of the batch's most recent observation. The result is a new slice
// sorted by acquisition time ascending; the input is not modified. An empty
// batch is an EmptyBatchError.
func FilterRecent(product string, batch []Detection, lookback time.Duration) ([]Detection, error) {
	if len(batch) == 0 {
		return nil, &EmptyBatchError{Product: product}
	}

	latest := batch[0].AcquiredAt
	for _, d := range batch[1:] {
		if d.AcquiredAt.After(latest) {
			latest = d.AcquiredAt
		}
	}
	cutoff := latest.Add(-lookback)

	recent := make([]Detection, 0, len(batch))
	for _, d := range batch {
		if !d.AcquiredAt.Before(cutoff) {
			recent = append(recent, d)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AcquiredAt.Before(recent[j].AcquiredAt)
	})
	return recent, nil
}
