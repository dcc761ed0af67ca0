package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/ml"
)

const (
	MinEpochs   = 5
	MaxEpochs   = 200
	MinClusters = 2
	MaxClusters = 8

	trainSeed    = 42
	testFraction = 0.2
	topCoefCount = 5
	hiddenLayer1 = 64
	hiddenLayer2 = 32
)

var (
	ErrTargetNotNumeric    = errors.New("target column must be numeric")
	ErrNoNumericPredictors = errors.New("no usable feature columns besides the target")
	ErrNotEnoughRows       = errors.New("not enough rows to split into train and test sets")
)

// TrainingConfig are the user-tunable knobs of a training run.
type TrainingConfig struct {
	Epochs   int `json:"epochs"`
	Clusters int `json:"clusters"`
}

// Validate clamps nothing: out-of-range values are rejected so callers see
// exactly what was wrong with the request.
func (c TrainingConfig) Validate() error {
	if c.Epochs < MinEpochs || c.Epochs > MaxEpochs {
		return fmt.Errorf("epochs must be between %d and %d, got %d", MinEpochs, MaxEpochs, c.Epochs)
	}
	if c.Clusters < MinClusters || c.Clusters > MaxClusters {
		return fmt.Errorf("clusters must be between %d and %d, got %d", MinClusters, MaxClusters, c.Clusters)
	}
	return nil
}

// ProgressFunc is invoked after every completed epoch.
type ProgressFunc func(done, total int)

// TrainingResult summarizes a finished run for the caller.
type TrainingResult struct {
	NetR2       float64  `json:"net_r2"`
	LinearR2    float64  `json:"linear_r2"`
	TopFeatures []string `json:"top_features"`
	TrainRows   int      `json:"train_rows"`
	TestRows    int      `json:"test_rows"`
}

type insightRecorder interface {
	Append(title, content string) error
}

// Trainer runs the end-to-end training pipeline and persists the resulting
// bundle. Nothing is written unless the whole pipeline succeeds, so a failed
// run can never leave a half-trained bundle behind.
type Trainer struct {
	bundlePath string
	memory     insightRecorder
	logger     *slog.Logger
}

// NewTrainer creates a trainer that persists bundles at bundlePath and records
// an insight about each successful run.
func NewTrainer(bundlePath string, mem insightRecorder, logger *slog.Logger) *Trainer {
	return &Trainer{bundlePath: bundlePath, memory: mem, logger: logger}
}

// BundlePath exposes where the trainer persists its bundle.
func (tr *Trainer) BundlePath() string { return tr.bundlePath }

// Train runs the full pipeline: encode features, split, scale, fit the neural
// regressor epoch by epoch, fit the linear baseline and the clusterer, score
// both regressors on the held-out rows, persist the bundle, and record the
// top linear coefficients as an insight.
func (tr *Trainer) Train(ctx context.Context, t *dataset.Table, target string, cfg TrainingConfig, onEpoch ProgressFunc) (*Bundle, *TrainingResult, error) {
	ctx, span := otel.Tracer("model").Start(ctx, "Trainer.Train")
	defer span.End()
	span.SetAttributes(
		attribute.String("target", target),
		attribute.Int("epochs", cfg.Epochs),
		attribute.Int("clusters", cfg.Clusters),
	)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	idx := t.ColumnIndex(target)
	if idx < 0 {
		return nil, nil, fmt.Errorf("target column %q not found", target)
	}
	target = t.Columns()[idx].Name
	if t.Columns()[idx].Kind != dataset.KindNumeric {
		return nil, nil, ErrTargetNotNumeric
	}

	frame := Encode(t, target)
	if len(frame.Columns) == 0 {
		return nil, nil, ErrNoNumericPredictors
	}

	y := make([]float64, t.NumRows())
	for r := range y {
		y[r], _ = t.Float(r, idx)
	}

	xTrain, yTrain, xTest, yTest := split(frame.Matrix, y, testFraction, trainSeed)
	if len(xTrain) == 0 || len(xTest) == 0 {
		return nil, nil, ErrNotEnoughRows
	}

	scaler := &ml.StandardScaler{}
	scaler.Fit(xTrain)
	xTrainS := scaler.Transform(xTrain)
	xTestS := scaler.Transform(xTest)

	start := time.Now()
	net := ml.NewMLPRegressor([]int{hiddenLayer1, hiddenLayer2}, trainSeed)
	for e := 0; e < cfg.Epochs; e++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if _, err := net.Fit(xTrainS, yTrain, 1); err != nil {
			return nil, nil, fmt.Errorf("fit neural regressor: %w", err)
		}
		if onEpoch != nil {
			onEpoch(e+1, cfg.Epochs)
		}
	}

	linear := &ml.LinearRegression{}
	if err := linear.Fit(xTrainS, yTrain); err != nil {
		return nil, nil, fmt.Errorf("fit linear baseline: %w", err)
	}

	km := ml.NewKMeans(cfg.Clusters, trainSeed)
	if err := km.Fit(scaler.Transform(frame.Matrix)); err != nil {
		return nil, nil, fmt.Errorf("fit clusterer: %w", err)
	}

	netPred, err := net.PredictAll(xTestS)
	if err != nil {
		return nil, nil, err
	}
	linPred, err := linear.PredictAll(xTestS)
	if err != nil {
		return nil, nil, err
	}

	bundle := &Bundle{
		SchemaVersion:  SchemaVersion,
		TargetColumn:   target,
		FeatureColumns: frame.Columns,
		Scaler:         scaler,
		Linear:         linear,
		Net:            net,
		KMeans:         km,
		Epochs:         cfg.Epochs,
		Clusters:       cfg.Clusters,
		TrainRows:      len(xTrain),
		TestRows:       len(xTest),
		NetR2:          ml.R2(yTest, netPred),
		LinearR2:       ml.R2(yTest, linPred),
		TrainedAt:      time.Now().UTC(),
	}

	if err := SaveBundle(tr.bundlePath, bundle); err != nil {
		return nil, nil, err
	}

	top := topFeatures(frame.Columns, linear.Coefficients, topCoefCount)
	result := &TrainingResult{
		NetR2:       bundle.NetR2,
		LinearR2:    bundle.LinearR2,
		TopFeatures: top,
		TrainRows:   bundle.TrainRows,
		TestRows:    bundle.TestRows,
	}

	if err := tr.memory.Append("Top model features", strings.Join(top, ", ")); err != nil {
		tr.logger.Warn("failed to record training insight", slog.Any("error", err))
	}

	tr.logger.Info("training complete",
		slog.String("target", target),
		slog.Int("features", len(frame.Columns)),
		slog.Int("train_rows", bundle.TrainRows),
		slog.Int("test_rows", bundle.TestRows),
		slog.Float64("net_r2", bundle.NetR2),
		slog.Float64("linear_r2", bundle.LinearR2),
		slog.Duration("took", time.Since(start)),
	)

	return bundle, result, nil
}

// split shuffles row indices with a fixed seed and carves off the tail as the
// test set.
func split(x [][]float64, y []float64, frac float64, seed int64) (xTrain [][]float64, yTrain []float64, xTest [][]float64, yTest []float64) {
	n := len(x)
	nTest := int(math.Ceil(float64(n) * frac))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	for i, p := range perm {
		if i < n-nTest {
			xTrain = append(xTrain, x[p])
			yTrain = append(yTrain, y[p])
		} else {
			xTest = append(xTest, x[p])
			yTest = append(yTest, y[p])
		}
	}
	return xTrain, yTrain, xTest, yTest
}

// topFeatures ranks features by absolute linear coefficient, largest first.
func topFeatures(names []string, coefs []float64, k int) []string {
	type ranked struct {
		name string
		abs  float64
		coef float64
	}
	rs := make([]ranked, len(names))
	for i, name := range names {
		rs[i] = ranked{name: name, abs: math.Abs(coefs[i]), coef: coefs[i]}
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].abs > rs[j].abs })

	if k > len(rs) {
		k = len(rs)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = fmt.Sprintf("%s (%.3f)", rs[i].name, rs[i].coef)
	}
	return out
}
