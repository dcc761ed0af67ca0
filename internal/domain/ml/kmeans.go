package ml

import (
	"math"
	"math/rand"
)

const (
	kmeansMaxIterations = 100
	kmeansTolerance     = 1e-6
)

// KMeans clusters rows into K groups. Initialization is k-means++ with a
// fixed seed, so a given dataset and seed always yield the same centroids.
type KMeans struct {
	K         int         `json:"k"`
	Seed      int64       `json:"seed"`
	Centroids [][]float64 `json:"centroids"`
}

// NewKMeans creates an unfitted clusterer.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{K: k, Seed: seed}
}

// Fit runs Lloyd's algorithm until convergence or the iteration cap.
func (km *KMeans) Fit(x [][]float64) error {
	if len(x) == 0 {
		return ErrNotFitted
	}
	k := km.K
	if k > len(x) {
		k = len(x)
	}

	rng := rand.New(rand.NewSource(km.Seed))
	km.Centroids = kmeansPlusPlusInit(x, k, rng)

	assign := make([]int, len(x))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		// Assignment step.
		for i, row := range x {
			assign[i] = nearestCentroid(row, km.Centroids)
		}

		// Update step.
		next := make([][]float64, k)
		counts := make([]int, k)
		dim := len(x[0])
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i, row := range x {
			c := assign[i]
			counts[c]++
			for j, v := range row {
				next[c][j] += v
			}
		}
		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				// Keep an empty cluster's centroid where it was.
				copy(next[c], km.Centroids[c])
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
				d := next[c][j] - km.Centroids[c][j]
				shift += d * d
			}
		}
		km.Centroids = next
		if shift < kmeansTolerance {
			break
		}
	}
	return nil
}

// Predict returns the index of the nearest centroid.
func (km *KMeans) Predict(row []float64) (int, error) {
	if len(km.Centroids) == 0 {
		return 0, ErrNotFitted
	}
	return nearestCentroid(row, km.Centroids), nil
}

// PredictAll labels every row.
func (km *KMeans) PredictAll(x [][]float64) ([]int, error) {
	if len(km.Centroids) == 0 {
		return nil, ErrNotFitted
	}
	labels := make([]int, len(x))
	for i, row := range x {
		labels[i] = nearestCentroid(row, km.Centroids)
	}
	return labels, nil
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		d := squaredDistance(row, centroid)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var d float64
	for j := range a {
		diff := a[j] - b[j]
		d += diff * diff
	}
	return d
}

// kmeansPlusPlusInit spreads initial centroids out proportionally to squared
// distance from the centroids chosen so far.
func kmeansPlusPlusInit(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := x[rng.Intn(len(x))]
	centroids = append(centroids, append([]float64(nil), first...))

	dists := make([]float64, len(x))
	for len(centroids) < k {
		var total float64
		for i, row := range x {
			dists[i] = squaredDistance(row, centroids[nearestCentroid(row, centroids)])
			total += dists[i]
		}
		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, append([]float64(nil), x[rng.Intn(len(x))]...))
			continue
		}
		target := rng.Float64() * total
		var cum float64
		pick := len(x) - 1
		for i, d := range dists {
			cum += d
			if cum >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), x[pick]...))
	}
	return centroids
}
