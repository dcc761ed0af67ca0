// Package session holds the explicit application state: the active dataset
// and its column registry. State is created at startup and mutated only by
// the dataset upload, archive-load and clear operations.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// ErrNoDataset is returned when an operation needs a dataset and none is loaded.
var ErrNoDataset = errors.New("no dataset loaded")

// Snapshot is a consistent read of the active dataset.
type Snapshot struct {
	Table      *dataset.Table
	Registry   *dataset.Registry
	Name       string
	UploadedAt time.Time
}

// State owns the active dataset. Tables are immutable, so a Snapshot stays
// valid even if another upload replaces the active dataset afterwards.
type State struct {
	mu         sync.RWMutex
	table      *dataset.Table
	registry   *dataset.Registry
	name       string
	uploadedAt time.Time
}

// NewState creates an empty session state.
func NewState() *State { return &State{} }

// SetDataset replaces the active dataset and rebuilds its column registry.
func (s *State) SetDataset(name string, t *dataset.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.registry = dataset.NewRegistry(t)
	s.name = name
	s.uploadedAt = time.Now().UTC()
}

// Clear drops the active dataset.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
	s.registry = nil
	s.name = ""
	s.uploadedAt = time.Time{}
}

// Dataset returns a snapshot of the active dataset, or ErrNoDataset.
func (s *State) Dataset() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return Snapshot{}, ErrNoDataset
	}
	return Snapshot{
		Table:      s.table,
		Registry:   s.registry,
		Name:       s.name,
		UploadedAt: s.uploadedAt,
	}, nil
}

// HasDataset reports whether a dataset is loaded.
func (s *State) HasDataset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}
