package dataset

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ResolvePolicy selects how a free-text phrase is matched against column names.
type ResolvePolicy int

const (
	// ResolveExact requires a case-insensitive exact name match.
	ResolveExact ResolvePolicy = iota
	// ResolvePrefixFirst picks the first column (in column order) whose name
	// starts with the phrase. Ambiguity between columns sharing a prefix is
	// resolved by column order.
	ResolvePrefixFirst
	// ResolveFuzzy falls back to fuzzy rank matching when nothing else fits,
	// picking the closest column name.
	ResolveFuzzy
)

// Registry is a column-name lookup built once per dataset load. It keeps the
// resolution rules out of the query text handling so they stay testable.
type Registry struct {
	names []string
}

// NewRegistry builds a registry over the table's columns.
func NewRegistry(t *Table) *Registry {
	return &Registry{names: t.ColumnNames()}
}

// Resolve maps a phrase to a column name under the given policy. The phrase
// is canonicalized the same way headers are. Returns false when no column
// matches.
func (r *Registry) Resolve(phrase string, policy ResolvePolicy) (string, bool) {
	phrase = CanonicalName(phrase)
	if phrase == "" {
		return "", false
	}

	switch policy {
	case ResolveExact:
		for _, n := range r.names {
			if strings.EqualFold(n, phrase) {
				return n, true
			}
		}

	case ResolvePrefixFirst:
		lower := strings.ToLower(phrase)
		for _, n := range r.names {
			if strings.HasPrefix(strings.ToLower(n), lower) {
				return n, true
			}
		}

	case ResolveFuzzy:
		ranks := fuzzy.RankFindFold(phrase, r.names)
		if len(ranks) == 0 {
			return "", false
		}
		best := ranks[0]
		for _, rk := range ranks[1:] {
			if rk.Distance < best.Distance {
				best = rk
			}
		}
		return best.Target, true
	}

	return "", false
}

// Names returns the registered column names in column order.
func (r *Registry) Names() []string { return r.names }
