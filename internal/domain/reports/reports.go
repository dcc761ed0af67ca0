// Package reports computes the fixed dashboard reports: the per-region sales
// summary and the quick trend heuristic.
package reports

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// ErrColumnsNotFound is returned when a report's expected columns are absent.
var ErrColumnsNotFound = errors.New("expected report columns not found in dataset")

// RegionRow is one region's aggregated figures.
type RegionRow struct {
	Region   string  `json:"region" csv:"region"`
	Quantity float64 `json:"quantity,omitempty" csv:"quantity"`
	Sales    float64 `json:"sales" csv:"sales"`
}

// Summary is the per-region sales report.
type Summary struct {
	RegionColumn string      `json:"region_column"`
	Rows         []RegionRow `json:"rows"`
}

// Trend is the outcome of the trend heuristic.
type Trend struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
	Detail    string `json:"detail"`
}

// Service computes reports over the active dataset.
type Service struct {
	logger *slog.Logger
}

// NewService creates the reports service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// resolve tries a prefix match first and falls back to fuzzy matching, so
// headers like "Sales Region" still satisfy the fixed reports.
func resolve(reg *dataset.Registry, phrase string) (string, bool) {
	if col, ok := reg.Resolve(phrase, dataset.ResolvePrefixFirst); ok {
		return col, true
	}
	return reg.Resolve(phrase, dataset.ResolveFuzzy)
}

// SalesSummary aggregates per region: quantity and quantity*price revenue
// when both columns exist, otherwise the sum of a sales-like column.
func (s *Service) SalesSummary(t *dataset.Table, reg *dataset.Registry) (*Summary, error) {
	regionCol, ok := resolve(reg, "Region")
	if !ok {
		return nil, ErrColumnsNotFound
	}
	regionIdx := t.ColumnIndex(regionCol)

	qtyCol, hasQty := resolve(reg, "Quantity")
	priceCol, hasPrice := resolve(reg, "Price")

	type totals struct {
		qty   decimal.Decimal
		sales decimal.Decimal
	}
	byRegion := make(map[string]*totals)
	var order []string
	get := func(region string) *totals {
		if tt, ok := byRegion[region]; ok {
			return tt
		}
		tt := &totals{}
		byRegion[region] = tt
		order = append(order, region)
		return tt
	}

	switch {
	case hasQty && hasPrice:
		qi, pi := t.ColumnIndex(qtyCol), t.ColumnIndex(priceCol)
		for r := 0; r < t.NumRows(); r++ {
			region := t.Value(r, regionIdx)
			if region == "" {
				continue
			}
			tt := get(region)
			q, okQ := t.Float(r, qi)
			p, okP := t.Float(r, pi)
			if okQ {
				tt.qty = tt.qty.Add(decimal.NewFromFloat(q))
			}
			if okQ && okP {
				tt.sales = tt.sales.Add(decimal.NewFromFloat(q).Mul(decimal.NewFromFloat(p)))
			}
		}

	default:
		salesCol, ok := resolve(reg, "Sales")
		if !ok {
			salesCol, ok = resolve(reg, "Revenue")
		}
		if !ok {
			return nil, ErrColumnsNotFound
		}
		si := t.ColumnIndex(salesCol)
		for r := 0; r < t.NumRows(); r++ {
			region := t.Value(r, regionIdx)
			if region == "" {
				continue
			}
			if v, ok := t.Float(r, si); ok {
				tt := get(region)
				tt.sales = tt.sales.Add(decimal.NewFromFloat(v))
			}
		}
	}

	summary := &Summary{RegionColumn: regionCol}
	for _, region := range order {
		tt := byRegion[region]
		qty, _ := tt.qty.Float64()
		sales, _ := tt.sales.Float64()
		summary.Rows = append(summary.Rows, RegionRow{Region: region, Quantity: qty, Sales: sales})
	}
	return summary, nil
}

// PredictTrend applies the quick heuristic: an up trend when mean quantity
// exceeds 50, or when mean sales exceed the median.
func (s *Service) PredictTrend(t *dataset.Table, reg *dataset.Registry) (*Trend, error) {
	if col, ok := resolve(reg, "Quantity"); ok {
		values := columnValues(t, col)
		if len(values) > 0 {
			m := mean(values)
			dir := "DOWN"
			if m > 50 {
				dir = "UP"
			}
			return &Trend{
				Column:    col,
				Direction: dir,
				Detail:    "mean quantity vs threshold 50",
			}, nil
		}
	}

	for _, cand := range []string{"Sales", "Revenue"} {
		col, ok := resolve(reg, cand)
		if !ok {
			continue
		}
		values := columnValues(t, col)
		if len(values) == 0 {
			continue
		}
		dir := "DOWN"
		if mean(values) > median(values) {
			dir = "UP"
		}
		return &Trend{Column: col, Direction: dir, Detail: "mean vs median"}, nil
	}

	return nil, ErrColumnsNotFound
}

func columnValues(t *dataset.Table, col string) []float64 {
	idx := t.ColumnIndex(col)
	if idx < 0 || t.Columns()[idx].Kind != dataset.KindNumeric {
		return nil
	}
	var out []float64
	for r := 0; r < t.NumRows(); r++ {
		if v, ok := t.Float(r, idx); ok {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
