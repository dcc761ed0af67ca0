// Package copilot implements the chat-style query surface: free-text queries
// are parsed into intents and executed against the active dataset and the
// trained model bundle.
package copilot

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// IntentKind identifies one of the five query intents.
type IntentKind int

const (
	IntentSummary IntentKind = iota
	IntentTopN
	IntentAggregate
	IntentPredict
	IntentCluster
)

func (k IntentKind) String() string {
	switch k {
	case IntentSummary:
		return "summary"
	case IntentTopN:
		return "top_n"
	case IntentAggregate:
		return "aggregate"
	case IntentPredict:
		return "predict"
	case IntentCluster:
		return "cluster"
	}
	return "unknown"
}

// Intent is one matched query intent with its extracted parameters.
type Intent struct {
	Kind IntentKind

	// TopN parameters, resolved against the dataset.
	N              int
	CategoryColumn string
	ValueColumn    string

	// Predict parameters: raw name/value pairs pulled from the query text.
	Features map[string]float64
}

// Keyword dictionary scanned with one Aho-Corasick pass per query. Indices
// line up with the kw* constants below.
var keywords = []string{
	"summary", "overview",
	"total", "average",
	"predict",
	"cluster", "focus", "recommend", "improve",
}

const (
	kwSummary = iota
	kwOverview
	kwTotal
	kwAverage
	kwPredict
	kwCluster
	kwFocus
	kwRecommend
	kwImprove
)

var (
	topNPattern   = regexp.MustCompile(`top\s+(\d+)\s+([a-z_ ]+?)\s+by\s+([a-z_ ]+)`)
	pairEqPattern = regexp.MustCompile(`([a-z_]+)\s*=\s*([0-9.]+)`)
	pairSpPattern = regexp.MustCompile(`([a-z_]+)\s+([0-9]+(?:\.[0-9]+)?)`)
	aggCandidates = []string{"Region", "Product", "Stage"}
)

// Parser classifies free-text queries. Pattern checks are non-exclusive:
// every rule runs, so one query can produce several intents.
type Parser struct {
	matcher *ahocorasick.Matcher
}

// NewParser builds the keyword matcher once; Parse reuses it per query.
func NewParser() *Parser {
	return &Parser{matcher: ahocorasick.NewStringMatcher(keywords)}
}

// Parse returns every intent matched by the query, in a fixed check order:
// summary, top-N, aggregate, predict, cluster. Predict and cluster only fire
// when a trained bundle exists. Intents whose parameters fail to resolve
// against the dataset are silently dropped.
func (p *Parser) Parse(query string, t *dataset.Table, reg *dataset.Registry, bundleExists bool) []Intent {
	text := strings.ToLower(strings.TrimSpace(query))
	hits := make(map[int]bool)
	for _, h := range p.matcher.Match([]byte(text)) {
		hits[h] = true
	}

	var intents []Intent

	if hits[kwSummary] || hits[kwOverview] {
		intents = append(intents, Intent{Kind: IntentSummary})
	}

	if in, ok := parseTopN(text, reg); ok {
		intents = append(intents, in)
	}

	if hits[kwTotal] || hits[kwAverage] {
		intents = append(intents, parseAggregate(t, reg)...)
	}

	if hits[kwPredict] && bundleExists {
		intents = append(intents, Intent{Kind: IntentPredict, Features: extractPairs(text)})
	}

	if (hits[kwCluster] || hits[kwFocus] || hits[kwRecommend] || hits[kwImprove]) && bundleExists {
		intents = append(intents, Intent{Kind: IntentCluster})
	}

	return intents
}

// parseTopN matches "top <n> <category phrase> by <value phrase>". The
// category phrase resolves prefix-first against column names; the value
// phrase must resolve exactly. Either failure drops the intent.
func parseTopN(text string, reg *dataset.Registry) (Intent, bool) {
	m := topNPattern.FindStringSubmatch(text)
	if m == nil {
		return Intent{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Intent{}, false
	}

	category, ok := reg.Resolve(m[2], dataset.ResolvePrefixFirst)
	if !ok {
		return Intent{}, false
	}
	value, ok := reg.Resolve(m[3], dataset.ResolveExact)
	if !ok {
		return Intent{}, false
	}

	return Intent{
		Kind:           IntentTopN,
		N:              n,
		CategoryColumn: category,
		ValueColumn:    value,
	}, true
}

// parseAggregate emits one aggregate per candidate category (Region, Product,
// Stage) that prefix-resolves to a column, each paired with the first numeric
// column. Both "total" and "average" queries sum; see the aggregate executor.
func parseAggregate(t *dataset.Table, reg *dataset.Registry) []Intent {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return nil
	}
	var intents []Intent
	for _, cand := range aggCandidates {
		if col, ok := reg.Resolve(cand, dataset.ResolvePrefixFirst); ok {
			intents = append(intents, Intent{
				Kind:           IntentAggregate,
				CategoryColumn: col,
				ValueColumn:    numeric[0],
			})
		}
	}
	return intents
}

// extractPairs pulls name/value pairs out of the query text: an explicit
// "name=number" pass first, then a looser "name number" pass for names not
// already captured.
func extractPairs(text string) map[string]float64 {
	pairs := make(map[string]float64)
	for _, m := range pairEqPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			pairs[m[1]] = v
		}
	}
	for _, m := range pairSpPattern.FindAllStringSubmatch(text, -1) {
		if _, taken := pairs[m[1]]; taken {
			continue
		}
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			pairs[m[1]] = v
		}
	}
	return pairs
}
