package ml

import (
	"math"
	"math/rand"
)

// Layer holds the weights of one dense layer. Weights[i][j] connects input j
// to unit i.
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// MLPRegressor is a small feed-forward regressor (ReLU hidden layers, linear
// output) trained by full-batch gradient descent. Fit is warm-started: each
// call adds passes on top of the existing weights, which lets a caller train
// one epoch at a time and report progress, mirroring iterative training.
//
// Targets are standardized internally on first fit; predictions are mapped
// back to the original scale. This keeps the step size stable regardless of
// the target's magnitude.
type MLPRegressor struct {
	HiddenSizes  []int   `json:"hidden_sizes"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`

	Layers []Layer `json:"layers"`
	YMean  float64 `json:"y_mean"`
	YStd   float64 `json:"y_std"`

	initialized bool
	rng         *rand.Rand
}

// NewMLPRegressor creates an untrained regressor with the given hidden layer
// sizes and seed.
func NewMLPRegressor(hiddenSizes []int, seed int64) *MLPRegressor {
	return &MLPRegressor{
		HiddenSizes:  hiddenSizes,
		LearningRate: 0.01,
		Seed:         seed,
	}
}

func (m *MLPRegressor) initialize(nFeatures int, y []float64) {
	m.rng = rand.New(rand.NewSource(m.Seed))

	mean, std := 0.0, 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	for _, v := range y {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(y)))
	if std == 0 {
		std = 1
	}
	m.YMean, m.YStd = mean, std

	sizes := append([]int{nFeatures}, m.HiddenSizes...)
	sizes = append(sizes, 1)
	m.Layers = make([]Layer, len(sizes)-1)
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		scale := math.Sqrt(2.0 / float64(in))
		w := make([][]float64, out)
		for i := range w {
			w[i] = make([]float64, in)
			for j := range w[i] {
				w[i][j] = m.rng.NormFloat64() * scale
			}
		}
		m.Layers[l] = Layer{Weights: w, Biases: make([]float64, out)}
	}
	m.initialized = true
}

// Fit runs the given number of full passes over the training set and returns
// the training mean squared error (on the original target scale) after the
// final pass. Repeated calls continue from the current weights.
func (m *MLPRegressor) Fit(x [][]float64, y []float64, epochs int) (float64, error) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, ErrNotFitted
	}
	if !m.initialized {
		m.initialize(len(x[0]), y)
	}

	// Standardized targets.
	ys := make([]float64, len(y))
	for i, v := range y {
		ys[i] = (v - m.YMean) / m.YStd
	}

	var loss float64
	for e := 0; e < epochs; e++ {
		loss = m.pass(x, ys)
	}
	return loss * m.YStd * m.YStd, nil
}

// pass runs one full-batch gradient descent step and returns the mean squared
// error (standardized scale) over the batch before the update.
func (m *MLPRegressor) pass(x [][]float64, ys []float64) float64 {
	n := len(x)
	nLayers := len(m.Layers)

	// Accumulated gradients.
	gradW := make([][][]float64, nLayers)
	gradB := make([][]float64, nLayers)
	for l, layer := range m.Layers {
		gradW[l] = make([][]float64, len(layer.Weights))
		for i := range layer.Weights {
			gradW[l][i] = make([]float64, len(layer.Weights[i]))
		}
		gradB[l] = make([]float64, len(layer.Biases))
	}

	var loss float64
	for s := 0; s < n; s++ {
		// Forward, keeping activations per layer.
		activations := make([][]float64, nLayers+1)
		activations[0] = x[s]
		for l, layer := range m.Layers {
			out := make([]float64, len(layer.Weights))
			for i, w := range layer.Weights {
				v := layer.Biases[i]
				for j, wj := range w {
					v += wj * activations[l][j]
				}
				if l < nLayers-1 && v < 0 {
					v = 0 // ReLU on hidden layers
				}
				out[i] = v
			}
			activations[l+1] = out
		}

		pred := activations[nLayers][0]
		err := pred - ys[s]
		loss += err * err

		// Backward.
		delta := []float64{2 * err / float64(n)}
		for l := nLayers - 1; l >= 0; l-- {
			layer := m.Layers[l]
			prev := activations[l]
			nextDelta := make([]float64, len(prev))
			for i, d := range delta {
				gradB[l][i] += d
				for j := range prev {
					gradW[l][i][j] += d * prev[j]
					nextDelta[j] += d * layer.Weights[i][j]
				}
			}
			if l > 0 {
				// Gate by the ReLU derivative of the previous layer's output.
				for j := range nextDelta {
					if activations[l][j] <= 0 {
						nextDelta[j] = 0
					}
				}
			}
			delta = nextDelta
		}
	}

	for l := range m.Layers {
		for i := range m.Layers[l].Weights {
			for j := range m.Layers[l].Weights[i] {
				m.Layers[l].Weights[i][j] -= m.LearningRate * gradW[l][i][j]
			}
			m.Layers[l].Biases[i] -= m.LearningRate * gradB[l][i]
		}
	}

	return loss / float64(n)
}

// Predict evaluates the network for one feature vector on the original
// target scale.
func (m *MLPRegressor) Predict(row []float64) (float64, error) {
	if len(m.Layers) == 0 {
		return 0, ErrNotFitted
	}
	act := row
	for l, layer := range m.Layers {
		out := make([]float64, len(layer.Weights))
		for i, w := range layer.Weights {
			v := layer.Biases[i]
			for j, wj := range w {
				v += wj * act[j]
			}
			if l < len(m.Layers)-1 && v < 0 {
				v = 0
			}
			out[i] = v
		}
		act = out
	}
	return act[0]*m.YStd + m.YMean, nil
}

// PredictAll evaluates the network for every row.
func (m *MLPRegressor) PredictAll(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := m.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Restore marks weights loaded from a persisted bundle as initialized so
// further Fit calls warm-start from them.
func (m *MLPRegressor) Restore() {
	m.initialized = len(m.Layers) > 0
	m.rng = rand.New(rand.NewSource(m.Seed))
}
