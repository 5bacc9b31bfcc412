package domain

import "fmt"

// AcquisitionError reports a failed detection fetch for one product. Any
// acquisition failure aborts the whole run: proceeding with a missing product
// would silently bias cross-product corroboration counts.
type AcquisitionError struct {
	Product string
	Err     error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s detections: %v", e.Product, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// EmptyBatchError reports a product batch with zero detections, which leaves
// the recency window undefined. Surfaced rather than treated as "no fires"
// because it almost always indicates an upstream fetch problem.
type EmptyBatchError struct {
	Product string
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("empty detection batch for product %s", e.Product)
}
