package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler(t *testing.T) {
	t.Run("centers and scales features", func(t *testing.T) {
		x := [][]float64{{1, 10}, {2, 20}, {3, 30}}

		var s StandardScaler
		s.Fit(x)
		out := s.Transform(x)

		// Column means become zero.
		for j := 0; j < 2; j++ {
			var sum float64
			for i := range out {
				sum += out[i][j]
			}
			assert.InDelta(t, 0, sum, 1e-9)
		}
		assert.InDelta(t, -1.2247, out[0][0], 1e-3)
	})

	t.Run("constant features are left centered", func(t *testing.T) {
		x := [][]float64{{5}, {5}, {5}}

		var s StandardScaler
		s.Fit(x)
		out := s.Transform(x)

		for _, row := range out {
			assert.Equal(t, 0.0, row[0])
		}
	})
}

func TestLinearRegression(t *testing.T) {
	t.Run("recovers exact coefficients", func(t *testing.T) {
		// y = 3 + 2*a - b
		var x [][]float64
		var y []float64
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 50; i++ {
			a, b := rng.Float64()*10, rng.Float64()*10
			x = append(x, []float64{a, b})
			y = append(y, 3+2*a-b)
		}

		var lr LinearRegression
		require.NoError(t, lr.Fit(x, y))

		assert.InDelta(t, 3, lr.Intercept, 1e-8)
		assert.InDelta(t, 2, lr.Coefficients[0], 1e-8)
		assert.InDelta(t, -1, lr.Coefficients[1], 1e-8)

		pred, err := lr.Predict([]float64{1, 1})
		require.NoError(t, err)
		assert.InDelta(t, 4, pred, 1e-8)
	})

	t.Run("unfitted model refuses to predict", func(t *testing.T) {
		var lr LinearRegression
		_, err := lr.Predict([]float64{1})
		assert.ErrorIs(t, err, ErrNotFitted)
	})
}

func trainingData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 80; i++ {
		a, b := rng.Float64()*2-1, rng.Float64()*2-1
		x = append(x, []float64{a, b})
		y = append(y, 4*a-2*b+1)
	}
	return x, y
}

func TestMLPRegressor(t *testing.T) {
	t.Run("training is deterministic under a fixed seed", func(t *testing.T) {
		x, y := trainingData()

		m1 := NewMLPRegressor([]int{8}, 42)
		m2 := NewMLPRegressor([]int{8}, 42)
		_, err := m1.Fit(x, y, 20)
		require.NoError(t, err)
		_, err = m2.Fit(x, y, 20)
		require.NoError(t, err)

		p1, err := m1.Predict(x[0])
		require.NoError(t, err)
		p2, err := m2.Predict(x[0])
		require.NoError(t, err)
		assert.Equal(t, p1, p2)
	})

	t.Run("more epochs do not increase training loss", func(t *testing.T) {
		x, y := trainingData()

		m := NewMLPRegressor([]int{8}, 42)
		short, err := m.Fit(x, y, 10)
		require.NoError(t, err)
		long, err := m.Fit(x, y, 100)
		require.NoError(t, err)

		assert.LessOrEqual(t, long, short*1.001)
	})

	t.Run("held-out score improves with more epochs", func(t *testing.T) {
		x, y := trainingData()

		var trainX, testX [][]float64
		var trainY, testY []float64
		for i := range x {
			if i%4 == 0 {
				testX = append(testX, x[i])
				testY = append(testY, y[i])
			} else {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}

		score := func(epochs int) float64 {
			m := NewMLPRegressor([]int{8}, 42)
			_, err := m.Fit(trainX, trainY, epochs)
			require.NoError(t, err)
			preds, err := m.PredictAll(testX)
			require.NoError(t, err)
			return R2(testY, preds)
		}

		assert.GreaterOrEqual(t, score(200), score(5))
	})

	t.Run("warm start matches a single longer run", func(t *testing.T) {
		x, y := trainingData()

		a := NewMLPRegressor([]int{8}, 42)
		for i := 0; i < 30; i++ {
			_, err := a.Fit(x, y, 1)
			require.NoError(t, err)
		}

		b := NewMLPRegressor([]int{8}, 42)
		_, err := b.Fit(x, y, 30)
		require.NoError(t, err)

		pa, err := a.Predict(x[3])
		require.NoError(t, err)
		pb, err := b.Predict(x[3])
		require.NoError(t, err)
		assert.InDelta(t, pb, pa, 1e-12)
	})

	t.Run("learns an approximately linear target", func(t *testing.T) {
		x, y := trainingData()

		m := NewMLPRegressor([]int{16, 8}, 42)
		_, err := m.Fit(x, y, 200)
		require.NoError(t, err)

		preds, err := m.PredictAll(x)
		require.NoError(t, err)
		assert.Greater(t, R2(y, preds), 0.8)
	})
}

func TestKMeans(t *testing.T) {
	t.Run("separates two obvious groups", func(t *testing.T) {
		x := [][]float64{
			{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1},
			{10, 10}, {10.1, 10}, {10, 10.1}, {10.1, 10.1},
		}

		km := NewKMeans(2, 42)
		require.NoError(t, km.Fit(x))

		labels, err := km.PredictAll(x)
		require.NoError(t, err)

		first := labels[0]
		for i := 1; i < 4; i++ {
			assert.Equal(t, first, labels[i])
		}
		for i := 4; i < 8; i++ {
			assert.NotEqual(t, first, labels[i])
		}
	})

	t.Run("k is clamped to the row count", func(t *testing.T) {
		km := NewKMeans(8, 42)
		require.NoError(t, km.Fit([][]float64{{1}, {2}}))
		assert.Len(t, km.Centroids, 2)
	})

	t.Run("deterministic under a fixed seed", func(t *testing.T) {
		x := [][]float64{{1, 2}, {8, 9}, {1.5, 2.5}, {8.5, 9.5}, {0.5, 1.5}}

		a := NewKMeans(2, 42)
		b := NewKMeans(2, 42)
		require.NoError(t, a.Fit(x))
		require.NoError(t, b.Fit(x))
		assert.Equal(t, a.Centroids, b.Centroids)
	})
}

func TestR2(t *testing.T) {
	t.Run("perfect predictions score one", func(t *testing.T) {
		y := []float64{1, 2, 3}
		assert.Equal(t, 1.0, R2(y, y))
	})

	t.Run("constant target scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, R2([]float64{5, 5, 5}, []float64{5, 5, 5}))
	})

	t.Run("mean predictor scores zero", func(t *testing.T) {
		y := []float64{1, 2, 3}
		assert.InDelta(t, 0, R2(y, []float64{2, 2, 2}), 1e-12)
	})
}
