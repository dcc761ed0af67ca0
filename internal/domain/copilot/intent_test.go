package copilot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

func queryTable() (*dataset.Table, *dataset.Registry) {
	t := dataset.New(
		[]string{"Region", "Product", "Revenue", "Quantity"},
		[][]string{
			{"North", "Widget", "100", "2"},
			{"South", "Gadget", "200", "3"},
		},
	)
	return t, dataset.NewRegistry(t)
}

func kinds(intents []Intent) []IntentKind {
	out := make([]IntentKind, len(intents))
	for i, in := range intents {
		out[i] = in.Kind
	}
	return out
}

func TestParser_Parse(t *testing.T) {
	p := NewParser()
	table, reg := queryTable()

	t.Run("summary and overview keywords", func(t *testing.T) {
		for _, q := range []string{"show me a summary", "give me an overview"} {
			intents := p.Parse(q, table, reg, false)
			assert.Equal(t, []IntentKind{IntentSummary}, kinds(intents), "query %q", q)
		}
	})

	t.Run("top-N resolves category by prefix and value exactly", func(t *testing.T) {
		intents := p.Parse("top 3 reg by revenue", table, reg, false)
		require.Len(t, intents, 1)

		in := intents[0]
		assert.Equal(t, IntentTopN, in.Kind)
		assert.Equal(t, 3, in.N)
		assert.Equal(t, "Region", in.CategoryColumn)
		assert.Equal(t, "Revenue", in.ValueColumn)
	})

	t.Run("top-N with an unresolvable value column is dropped", func(t *testing.T) {
		intents := p.Parse("top 3 region by profit", table, reg, false)
		assert.Empty(t, intents)
	})

	t.Run("top-N value column must match exactly, not by prefix", func(t *testing.T) {
		intents := p.Parse("top 3 region by rev", table, reg, false)
		assert.Empty(t, intents)
	})

	t.Run("total aggregates every resolving candidate with the first numeric column", func(t *testing.T) {
		intents := p.Parse("total sales please", table, reg, false)
		require.Len(t, intents, 2)

		for _, in := range intents {
			assert.Equal(t, IntentAggregate, in.Kind)
			assert.Equal(t, "Revenue", in.ValueColumn)
		}
		assert.Equal(t, "Region", intents[0].CategoryColumn)
		assert.Equal(t, "Product", intents[1].CategoryColumn)
	})

	t.Run("all three candidate categories fire when present", func(t *testing.T) {
		full := dataset.New(
			[]string{"Region", "Product", "Stage", "Revenue"},
			[][]string{{"North", "Widget", "Closed", "100"}},
		)
		intents := p.Parse("total", full, dataset.NewRegistry(full), false)
		require.Len(t, intents, 3)

		var categories []string
		for _, in := range intents {
			assert.Equal(t, IntentAggregate, in.Kind)
			assert.Equal(t, "Revenue", in.ValueColumn)
			categories = append(categories, in.CategoryColumn)
		}
		assert.Equal(t, []string{"Region", "Product", "Stage"}, categories)
	})

	t.Run("average fires the same aggregates as total", func(t *testing.T) {
		a := p.Parse("average revenue by region", table, reg, false)
		b := p.Parse("total revenue by region", table, reg, false)
		require.Len(t, a, 2)
		require.Len(t, b, 2)
		assert.Equal(t, a, b)
	})

	t.Run("aggregate still fires on product alone when no region column exists", func(t *testing.T) {
		noRegion := dataset.New(
			[]string{"Product", "Revenue"},
			[][]string{{"Widget", "100"}},
		)
		intents := p.Parse("total", noRegion, dataset.NewRegistry(noRegion), false)
		require.Len(t, intents, 1)
		assert.Equal(t, "Product", intents[0].CategoryColumn)
	})

	t.Run("aggregate is dropped without numeric columns", func(t *testing.T) {
		textOnly := dataset.New([]string{"Region"}, [][]string{{"North"}})
		intents := p.Parse("total", textOnly, dataset.NewRegistry(textOnly), false)
		assert.Empty(t, intents)
	})

	t.Run("predict requires a trained bundle", func(t *testing.T) {
		assert.Empty(t, p.Parse("predict revenue", table, reg, false))

		intents := p.Parse("predict revenue quantity=4", table, reg, true)
		require.Len(t, intents, 1)
		assert.Equal(t, IntentPredict, intents[0].Kind)
		assert.Equal(t, map[string]float64{"quantity": 4}, intents[0].Features)
	})

	t.Run("cluster keywords require a trained bundle", func(t *testing.T) {
		for _, q := range []string{"cluster the data", "where should we focus", "recommend something", "what can we improve"} {
			assert.Empty(t, p.Parse(q, table, reg, false), "query %q", q)

			intents := p.Parse(q, table, reg, true)
			require.Len(t, intents, 1, "query %q", q)
			assert.Equal(t, IntentCluster, intents[0].Kind)
		}
	})

	t.Run("one query can fire several intents", func(t *testing.T) {
		intents := p.Parse("summary and total", table, reg, false)
		assert.Equal(t, []IntentKind{IntentSummary, IntentAggregate, IntentAggregate}, kinds(intents))
	})

	t.Run("unmatched query yields no intents", func(t *testing.T) {
		assert.Empty(t, p.Parse("hello there", table, reg, true))
	})
}

func TestExtractPairs(t *testing.T) {
	t.Run("equals pairs first, then space pairs", func(t *testing.T) {
		pairs := extractPairs("predict revenue quantity=4 price 99.5")
		assert.Equal(t, map[string]float64{"quantity": 4, "price": 99.5}, pairs)
	})

	t.Run("equals pairs win over later space pairs for the same name", func(t *testing.T) {
		pairs := extractPairs("quantity=4 quantity 9")
		assert.Equal(t, 4.0, pairs["quantity"])
	})

	t.Run("no pairs in plain text", func(t *testing.T) {
		assert.Empty(t, extractPairs("predict the future"))
	})
}
