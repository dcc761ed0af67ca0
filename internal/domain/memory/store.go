// Package memory persists the copilot's insight history: a capped,
// newest-first list of timestamped notes stored as one JSON document.
package memory

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxEntries caps the stored insight list; the oldest entries are evicted.
const MaxEntries = 50

// Entry is a single recorded insight.
type Entry struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Document is the on-disk shape of the memory file.
type Document struct {
	Insights []Entry `json:"insights"`
}

// Store reads and writes the memory document. Reads never fail: a missing or
// malformed file degrades to an empty document. Writes go through a temp
// file and rename so a crash mid-write cannot corrupt the document.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger, now: time.Now}
}

// Load reads the current document. On any read or decode failure it returns
// an empty document and logs the cause.
func (s *Store) Load() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("memory file unreadable, starting empty", slog.Any("error", err))
		}
		return Document{Insights: []Entry{}}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("memory file malformed, starting empty", slog.Any("error", err))
		return Document{Insights: []Entry{}}
	}
	if doc.Insights == nil {
		doc.Insights = []Entry{}
	}
	return doc
}

// Save overwrites the document atomically.
func (s *Store) Save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Append records a new insight: the entry is prepended with the current UTC
// time, the list is truncated to MaxEntries, and the document is saved.
func (s *Store) Append(title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.Load()
	entry := Entry{
		Title:     title,
		Content:   content,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05Z"),
	}
	doc.Insights = append([]Entry{entry}, doc.Insights...)
	if len(doc.Insights) > MaxEntries {
		doc.Insights = doc.Insights[:MaxEntries]
	}
	return s.Save(doc)
}

// Clear resets the document to empty.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Save(Document{Insights: []Entry{}})
}

// Compact re-applies the entry cap to the stored document. It exists for the
// maintenance job: a document edited or imported out-of-band may exceed the
// cap until the next Append.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.Load()
	if len(doc.Insights) <= MaxEntries {
		return nil
	}
	doc.Insights = doc.Insights[:MaxEntries]
	return s.Save(doc)
}
