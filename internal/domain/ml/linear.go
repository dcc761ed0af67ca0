package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least-squares regression with intercept.
// Coefficients are exported for persistence and feature-importance ranking.
type LinearRegression struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Fit solves the least-squares problem with a minimum-norm SVD solve, so
// rank-deficient inputs (e.g. a constant feature) get zero coefficients
// instead of an error.
func (l *LinearRegression) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("invalid training shape: %d rows, %d labels", n, len(y))
	}
	p := len(x[0])

	// Design matrix with a leading intercept column.
	a := mat.NewDense(n, p+1, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), y...))

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return fmt.Errorf("solve least squares: factorization failed")
	}

	beta := mat.NewVecDense(p+1, nil)
	if rank := svd.Rank(1e-12); rank > 0 {
		svd.SolveVecTo(beta, b, rank)
	}

	l.Intercept = beta.AtVec(0)
	l.Coefficients = make([]float64, p)
	for j := 0; j < p; j++ {
		l.Coefficients[j] = beta.AtVec(j + 1)
	}
	return nil
}

// Predict evaluates the fitted model for one feature vector.
func (l *LinearRegression) Predict(row []float64) (float64, error) {
	if l.Coefficients == nil {
		return 0, ErrNotFitted
	}
	v := l.Intercept
	for j, c := range l.Coefficients {
		v += c * row[j]
	}
	return v, nil
}

// PredictAll evaluates the fitted model for every row.
func (l *LinearRegression) PredictAll(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := l.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
