package domain

// NoiseLabel marks detections that belong to no cluster. Noise never reaches
// corroboration or polygon synthesis.
const NoiseLabel = -1

// Default DBSCAN parameters, tuned for regional-scale VIIRS hotspot density.
// Eps is in raw coordinate degrees; see the package doc for the high-latitude
// caveat.
const (
	DefaultEps        = 0.01
	DefaultMinSamples = 1
)

// ClusterDetections partitions detections into spatial clusters with DBSCAN
// over raw (lon, lat) degrees. It returns one label per detection, aligned
// with the input; unclustered points get NoiseLabel. A point is a core point
// when at least minSamples points (itself included) lie within eps Euclidean
// distance; clusters are the transitive closure of core points with their
// eps-neighborhoods absorbed.
//
// Labels are assigned in scan order, so a fixed input ordering yields fixed
// labels. Callers comparing runs should still compare memberships, not label
// values.
func ClusterDetections(detections []Detection, eps float64, minSamples int) []int {
	n := len(detections)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = NoiseLabel
	}
	if n == 0 {
		return labels
	}

	epsSq := eps * eps
	visited := make([]bool, n)
	next := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := neighborsWithin(detections, i, epsSq)
		if len(neighbors) < minSamples {
			continue // stays noise unless absorbed by a later cluster
		}

		label := next
		next++
		labels[i] = label
		expandCluster(detections, neighbors, labels, visited, label, epsSq, minSamples)
	}

	return labels
}

// expandCluster grows a cluster breadth-first from a seed neighborhood.
func expandCluster(detections []Detection, queue []int, labels []int, visited []bool, label int, epsSq float64, minSamples int) {
	for head := 0; head < len(queue); head++ {
		j := queue[head]

		// Border points previously marked noise are absorbed but not expanded.
		if labels[j] == NoiseLabel {
			labels[j] = label
		}
		if visited[j] {
			continue
		}
		visited[j] = true

		neighbors := neighborsWithin(detections, j, epsSq)
		if len(neighbors) >= minSamples {
			queue = append(queue, neighbors...)
		}
	}
}

// neighborsWithin returns indices of all detections within sqrt(epsSq) of
// detection i, including i itself, in input order.
func neighborsWithin(detections []Detection, i int, epsSq float64) []int {
	var out []int
	for j := range detections {
		dx := detections[i].Lon - detections[j].Lon
		dy := detections[i].Lat - detections[j].Lat
		if dx*dx+dy*dy <= epsSq {
			out = append(out, j)
		}
	}
	return out
}
