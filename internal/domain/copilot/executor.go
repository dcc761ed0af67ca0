package copilot

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/model"
)

// HelpText is returned when a query matches no intent.
const HelpText = `I couldn't match that to anything I know. Try one of:
  - "show me a summary"
  - "top 5 Product by Revenue"
  - "total revenue by region"
  - "predict revenue quantity=10 price=99.5"`

// ResultTable is a small displayable table.
type ResultTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Result is the outcome of executing one intent. Warning carries soft
// failures (missing column, stale bundle) instead of an error: the query as
// a whole still succeeds.
type Result struct {
	Intent   string       `json:"intent"`
	Text     string       `json:"text,omitempty"`
	Table    *ResultTable `json:"table,omitempty"`
	ChartPNG []byte       `json:"chart_png,omitempty"`
	Warning  string       `json:"warning,omitempty"`
}

type chartRenderer interface {
	Bar(title, xLabel, yLabel string, labels []string, values []float64) ([]byte, error)
}

type insightRecorder interface {
	Append(title, content string) error
}

// Executor runs parsed intents against the dataset and model bundle.
type Executor struct {
	bundlePath string
	memory     insightRecorder
	charts     chartRenderer
	logger     *slog.Logger
}

// NewExecutor wires an executor to the bundle path, insight memory and chart
// renderer.
func NewExecutor(bundlePath string, mem insightRecorder, charts chartRenderer, logger *slog.Logger) *Executor {
	return &Executor{bundlePath: bundlePath, memory: mem, charts: charts, logger: logger}
}

// Execute runs every matched intent independently and collects the results.
// With no intents it returns the help text and records nothing.
func (e *Executor) Execute(query string, t *dataset.Table, intents []Intent) []Result {
	if len(intents) == 0 {
		return []Result{{Intent: "help", Text: HelpText}}
	}

	results := make([]Result, 0, len(intents))
	for _, in := range intents {
		var res Result
		switch in.Kind {
		case IntentSummary:
			res = e.execSummary(t)
		case IntentTopN:
			res = e.execTopN(t, in)
		case IntentAggregate:
			res = e.execAggregate(t, in)
		case IntentPredict:
			res = e.execPredict(t, query, in)
		case IntentCluster:
			res = e.execCluster(t)
		}
		res.Intent = in.Kind.String()
		results = append(results, res)
	}
	return results
}

func (e *Executor) execSummary(t *dataset.Table) Result {
	text := dataset.Summarize(t)
	e.record("Dataset summary", "Viewed the dataset summary")
	return Result{Text: text}
}

func (e *Executor) execTopN(t *dataset.Table, in Intent) Result {
	groups := groupSum(t, in.CategoryColumn, in.ValueColumn)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].total.GreaterThan(groups[j].total)
	})
	if in.N < len(groups) {
		groups = groups[:in.N]
	}

	res := Result{Table: groupsTable(groups, in.CategoryColumn, in.ValueColumn)}
	e.attachChart(&res,
		fmt.Sprintf("Top %d %s by %s", in.N, in.CategoryColumn, in.ValueColumn),
		in.CategoryColumn, in.ValueColumn, groups)

	e.record("Top-N query",
		fmt.Sprintf("Top %d %s by %s", in.N, in.CategoryColumn, in.ValueColumn))
	return res
}

// execAggregate sums the value column per category group. The sum applies to
// "average" queries too; see aggregateAlwaysSums in the tests.
func (e *Executor) execAggregate(t *dataset.Table, in Intent) Result {
	groups := groupSum(t, in.CategoryColumn, in.ValueColumn)

	res := Result{Table: groupsTable(groups, in.CategoryColumn, in.ValueColumn)}
	e.attachChart(&res,
		fmt.Sprintf("%s by %s", in.ValueColumn, in.CategoryColumn),
		in.CategoryColumn, in.ValueColumn, groups)

	e.record("Aggregate query",
		fmt.Sprintf("%s grouped by %s", in.ValueColumn, in.CategoryColumn))
	return res
}

func (e *Executor) execPredict(t *dataset.Table, query string, in Intent) Result {
	bundle, err := model.LoadBundle(e.bundlePath)
	if err != nil {
		return Result{Warning: fmt.Sprintf("cannot predict: %v", err)}
	}
	if err := bundle.CompatibleWith(t); err != nil {
		return Result{Warning: fmt.Sprintf("model is stale for this dataset: %v", err)}
	}

	row := make([]float64, len(bundle.FeatureColumns))
	for i, col := range bundle.FeatureColumns {
		prefix, _, _ := strings.Cut(col, "_")
		for name, v := range in.Features {
			if strings.EqualFold(name, prefix) {
				row[i] = v
				break
			}
		}
	}

	pred, err := bundle.Net.Predict(bundle.Scaler.TransformRow(row))
	if err != nil {
		return Result{Warning: fmt.Sprintf("prediction failed: %v", err)}
	}

	text := fmt.Sprintf("Predicted %s: %.2f", bundle.TargetColumn, pred)
	e.record("Prediction", fmt.Sprintf("%s -> %.2f", query, pred))
	return Result{Text: text}
}

func (e *Executor) execCluster(t *dataset.Table) Result {
	bundle, err := model.LoadBundle(e.bundlePath)
	if err != nil {
		return Result{Warning: fmt.Sprintf("cannot cluster: %v", err)}
	}
	if err := bundle.CompatibleWith(t); err != nil {
		return Result{Warning: fmt.Sprintf("model is stale for this dataset: %v", err)}
	}

	// Re-derive the feature frame from the live dataset and align it to the
	// columns the clusterer was fit on; columns the dataset lost are zeros.
	frame := model.Encode(t, bundle.TargetColumn)
	matrix := frame.Reindex(bundle.FeatureColumns)
	labels, err := bundle.KMeans.PredictAll(bundle.Scaler.Transform(matrix))
	if err != nil {
		return Result{Warning: fmt.Sprintf("clustering failed: %v", err)}
	}

	targetIdx := t.ColumnIndex(bundle.TargetColumn)
	totals := make([]decimal.Decimal, len(bundle.KMeans.Centroids))
	for r, label := range labels {
		if v, ok := t.Float(r, targetIdx); ok {
			totals[label] = totals[label].Add(decimal.NewFromFloat(v))
		}
	}

	focus, lowest := 0, totals[0]
	for c, total := range totals {
		if total.LessThan(lowest) {
			focus, lowest = c, total
		}
	}

	table := &ResultTable{Columns: []string{"Cluster", "Total " + bundle.TargetColumn}}
	labelsOut := make([]string, len(totals))
	valuesOut := make([]float64, len(totals))
	for c, total := range totals {
		name := fmt.Sprintf("Cluster %d", c)
		table.Rows = append(table.Rows, []string{name, total.String()})
		labelsOut[c] = name
		valuesOut[c], _ = total.Float64()
	}

	res := Result{
		Text: fmt.Sprintf("Recommended focus: cluster %d (lowest total %s: %s)",
			focus, bundle.TargetColumn, lowest.String()),
		Table: table,
	}
	if png, err := e.charts.Bar("Cluster totals", "Cluster", bundle.TargetColumn, labelsOut, valuesOut); err != nil {
		e.logger.Warn("chart render failed", slog.Any("error", err))
	} else {
		res.ChartPNG = png
	}

	e.record("Focus recommendation",
		fmt.Sprintf("Cluster %d has the lowest total %s", focus, bundle.TargetColumn))
	return res
}

func (e *Executor) record(title, content string) {
	if err := e.memory.Append(title, content); err != nil {
		e.logger.Warn("failed to record insight", slog.Any("error", err))
	}
}

func (e *Executor) attachChart(res *Result, title, xLabel, yLabel string, groups []group) {
	labels := make([]string, len(groups))
	values := make([]float64, len(groups))
	for i, g := range groups {
		labels[i] = g.key
		values[i], _ = g.total.Float64()
	}
	png, err := e.charts.Bar(title, xLabel, yLabel, labels, values)
	if err != nil {
		e.logger.Warn("chart render failed", slog.Any("error", err))
		return
	}
	res.ChartPNG = png
}

// group is one category value with its decimal-exact sum.
type group struct {
	key   string
	total decimal.Decimal
}

// groupSum sums the value column per distinct category value, preserving
// first-encounter group order. Decimal arithmetic keeps currency-style sums
// exact.
func groupSum(t *dataset.Table, categoryCol, valueCol string) []group {
	catIdx := t.ColumnIndex(categoryCol)
	valIdx := t.ColumnIndex(valueCol)
	if catIdx < 0 || valIdx < 0 {
		return nil
	}

	index := make(map[string]int)
	var groups []group
	for r := 0; r < t.NumRows(); r++ {
		key := t.Value(r, catIdx)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		if v, ok := t.Float(r, valIdx); ok {
			groups[i].total = groups[i].total.Add(decimal.NewFromFloat(v))
		}
	}
	return groups
}

func groupsTable(groups []group, categoryCol, valueCol string) *ResultTable {
	table := &ResultTable{Columns: []string{categoryCol, valueCol}}
	for _, g := range groups {
		table.Rows = append(table.Rows, []string{g.key, g.total.String()})
	}
	return table
}
