package domain

// Default corroboration thresholds, matching the upstream detection model.
const (
	DefaultMinClusterSize         = 25
	DefaultRequiredHighConfidence = 1
)

// FilterCorroborated keeps only detections whose cluster passes both
// corroboration tests:
//
//  1. the cluster has at least minClusterSize members, and
//  2. its high-confidence members span at least requiredHighConfidence
//     distinct source products.
//
// A cluster failing either test is dropped whole; noise is never kept.
// Returns the surviving detections and their labels in input order.
func FilterCorroborated(detections []Detection, labels []int, minClusterSize, requiredHighConfidence int) ([]Detection, []int) {
	sizes := make(map[int]int)
	highConfProducts := make(map[int]map[string]bool)

	for i, d := range detections {
		label := labels[i]
		if label == NoiseLabel {
			continue
		}
		sizes[label]++
		if d.Confidence != ConfidenceHigh {
			continue
		}
		if highConfProducts[label] == nil {
			highConfProducts[label] = make(map[string]bool)
		}
		highConfProducts[label][d.Product] = true
	}

	valid := make(map[int]bool)
	for label, size := range sizes {
		if size < minClusterSize {
			continue
		}
		if len(highConfProducts[label]) < requiredHighConfidence {
			continue
		}
		valid[label] = true
	}

	keptDetections := make([]Detection, 0, len(detections))
	keptLabels := make([]int, 0, len(labels))
	for i, d := range detections {
		if !valid[labels[i]] {
			continue
		}
		keptDetections = append(keptDetections, d)
		keptLabels = append(keptLabels, labels[i])
	}
	return keptDetections, keptLabels
}
