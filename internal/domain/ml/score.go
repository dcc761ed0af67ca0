package ml

import "gonum.org/v1/gonum/stat"

// R2 computes the coefficient of determination of predictions against the
// true values. A constant target yields 0.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	mean := stat.Mean(yTrue, nil)

	var ssRes, ssTot float64
	for i, v := range yTrue {
		r := v - yPred[i]
		ssRes += r * r
		d := v - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// MSE computes the mean squared error of predictions.
func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var sum float64
	for i, v := range yTrue {
		d := v - yPred[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}
