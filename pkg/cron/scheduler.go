// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/memory"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/model"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
)

// Scheduler manages background maintenance jobs using robfig/cron.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	memory     *memory.Store
	state      *session.State
	bundlePath string
	logger     *slog.Logger
}

// NewScheduler creates a new job scheduler. spec is a standard 5-field cron
// expression controlling when maintenance runs.
func NewScheduler(spec string, mem *memory.Store, state *session.State, bundlePath string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:       c,
		spec:       spec,
		memory:     mem,
		state:      state,
		bundlePath: bundlePath,
		logger:     logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runMaintenance); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("spec", s.spec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers maintenance (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.runMaintenance()
}

// runMaintenance compacts the memory document and audits the model bundle
// against the currently loaded dataset.
func (s *Scheduler) runMaintenance() {
	s.logger.Info("starting nightly maintenance")

	if err := s.memory.Compact(); err != nil {
		s.logger.Error("memory compaction failed", slog.Any("error", err))
	}

	s.auditBundle()

	s.logger.Info("nightly maintenance completed")
}

// auditBundle logs a warning when the persisted bundle can no longer score
// the active dataset. The bundle is left in place; retraining is a user
// decision.
func (s *Scheduler) auditBundle() {
	bundle, err := model.LoadBundle(s.bundlePath)
	if err != nil {
		if !errors.Is(err, model.ErrNoBundle) {
			s.logger.Warn("bundle audit: unreadable bundle", slog.Any("error", err))
		}
		return
	}

	snap, err := s.state.Dataset()
	if err != nil {
		return
	}

	if err := bundle.CompatibleWith(snap.Table); err != nil {
		s.logger.Warn("bundle audit: model is stale for the active dataset",
			slog.String("target", bundle.TargetColumn),
			slog.Any("error", err),
		)
	}
}
