package memory

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// SearchIndex provides full-text search over recorded insights using an
// in-memory Bleve index. It is rebuilt from the document on startup and kept
// current on append, so the document file stays the source of truth.
type SearchIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create insight index: %w", err)
	}
	return &SearchIndex{index: idx}, nil
}

// Rebuild replaces the index contents with the document's insights.
func (si *SearchIndex) Rebuild(doc Document) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for i, e := range doc.Insights {
		if err := batch.Index(entryID(i, e), e); err != nil {
			return err
		}
	}
	if err := idx.Batch(batch); err != nil {
		return err
	}

	old := si.index
	si.index = idx
	if old != nil {
		old.Close()
	}
	return nil
}

// Search returns up to limit insights matching the query, best first.
// Matches run over title and content.
func (si *SearchIndex) Search(query string, limit int, doc Document) ([]Entry, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := si.index.Search(req)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Entry, len(doc.Insights))
	for i, e := range doc.Insights {
		byID[entryID(i, e)] = e
	}

	var out []Entry
	for _, hit := range res.Hits {
		if e, ok := byID[hit.ID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func entryID(i int, e Entry) string {
	return fmt.Sprintf("%s#%d", e.Timestamp, i)
}
