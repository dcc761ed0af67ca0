// Package ml implements the small statistical models the copilot trains
// locally: feature standardization, least-squares regression, an
// incrementally trained neural regressor, and k-means clustering.
// Everything is deterministic under a fixed seed.
package ml

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned when a model is used before Fit.
var ErrNotFitted = errors.New("model is not fitted")

// StandardScaler standardizes features to zero mean and unit variance.
// Parameters are exported so a fitted scaler can be persisted and restored.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-feature mean and population standard deviation.
// Constant features get a std of 1 so Transform leaves them centered at zero.
func (s *StandardScaler) Fit(x [][]float64) {
	if len(x) == 0 {
		s.Mean, s.Std = nil, nil
		return
	}
	nFeatures := len(x[0])
	s.Mean = make([]float64, nFeatures)
	s.Std = make([]float64, nFeatures)

	col := make([]float64, len(x))
	for j := 0; j < nFeatures; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.PopStdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out
}

// TransformRow standardizes a single feature vector.
func (s *StandardScaler) TransformRow(row []float64) []float64 {
	scaled := make([]float64, len(row))
	for j, v := range row {
		scaled[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return scaled
}

// Fitted reports whether the scaler has parameters.
func (s *StandardScaler) Fitted() bool { return len(s.Mean) > 0 }
