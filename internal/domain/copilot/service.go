package copilot

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/memory"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/model"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/metrics"
)

// QueryResponse is the full outcome of one copilot query.
type QueryResponse struct {
	Query   string   `json:"query"`
	Matched bool     `json:"matched"`
	Results []Result `json:"results"`
}

// Service ties the parser, executor, trainer and memory together behind the
// copilot API. All state it touches lives in the session, the memory file and
// the bundle file.
type Service struct {
	state    *session.State
	parser   *Parser
	executor *Executor
	trainer  *model.Trainer
	memory   *memory.Store
	search   *memory.SearchIndex
	logger   *slog.Logger
}

// NewService wires the copilot service. The search index is seeded from the
// current memory document.
func NewService(state *session.State, executor *Executor, trainer *model.Trainer, mem *memory.Store, search *memory.SearchIndex, logger *slog.Logger) *Service {
	s := &Service{
		state:    state,
		parser:   NewParser(),
		executor: executor,
		trainer:  trainer,
		memory:   mem,
		search:   search,
		logger:   logger,
	}
	if err := search.Rebuild(mem.Load()); err != nil {
		logger.Warn("failed to seed insight index", slog.Any("error", err))
	}
	return s
}

// Query parses and executes one free-text query against the active dataset.
func (s *Service) Query(ctx context.Context, query string) (*QueryResponse, error) {
	_, span := otel.Tracer("copilot").Start(ctx, "Service.Query")
	defer span.End()

	snap, err := s.state.Dataset()
	if err != nil {
		return nil, err
	}

	bundleExists := model.BundleExists(s.trainer.BundlePath())
	intents := s.parser.Parse(query, snap.Table, snap.Registry, bundleExists)
	span.SetAttributes(attribute.Int("intents", len(intents)))

	results := s.executor.Execute(query, snap.Table, intents)
	for _, r := range results {
		metrics.CopilotQueries.WithLabelValues(r.Intent).Inc()
	}

	// Executed intents append insights; refresh the search index to match.
	if len(intents) > 0 {
		if err := s.search.Rebuild(s.memory.Load()); err != nil {
			s.logger.Warn("failed to refresh insight index", slog.Any("error", err))
		}
	}

	s.logger.Info("copilot query",
		slog.String("query", query),
		slog.Int("intents", len(intents)),
	)
	return &QueryResponse{Query: query, Matched: len(intents) > 0, Results: results}, nil
}

// Train runs a training pipeline against the active dataset.
func (s *Service) Train(ctx context.Context, target string, cfg model.TrainingConfig, onEpoch model.ProgressFunc) (*model.TrainingResult, error) {
	snap, err := s.state.Dataset()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	_, result, err := s.trainer.Train(ctx, snap.Table, target, cfg, onEpoch)
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TrainingRuns.WithLabelValues("ok").Inc()

	if err := s.search.Rebuild(s.memory.Load()); err != nil {
		s.logger.Warn("failed to refresh insight index", slog.Any("error", err))
	}
	return result, nil
}

// Memory returns recorded insights, optionally filtered by a full-text query.
func (s *Service) Memory(query string, limit int) ([]memory.Entry, error) {
	doc := s.memory.Load()
	if query == "" {
		return doc.Insights, nil
	}
	return s.search.Search(query, limit, doc)
}

// ClearMemory wipes all recorded insights.
func (s *Service) ClearMemory() error {
	if err := s.memory.Clear(); err != nil {
		return err
	}
	return s.search.Rebuild(memory.Document{})
}
