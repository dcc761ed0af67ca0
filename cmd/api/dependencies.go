package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/archive"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/auth"
	authhandler "github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/auth/handler"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/chart"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/copilot"
	copilothandler "github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/copilot/handler"
	datasethandler "github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset/handler"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/memory"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/model"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/reports"
	reportshandler "github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/reports/handler"
	"github.com/12402940/Regional-Sales-Website-AI-based/internal/session"
	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/config"
	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/cron"
	"github.com/12402940/Regional-Sales-Website-AI-based/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Stores
	State       *session.State
	UserStore   *auth.Store
	Archive     *archive.Store
	Memory      *memory.Store
	SearchIndex *memory.SearchIndex
	Uploads     storage.Storage

	// Services
	TokenManager   *auth.TokenManager
	AuthService    *auth.Service
	Trainer        *model.Trainer
	CopilotService *copilot.Service
	ReportsService *reports.Service
	Scheduler      *cron.Scheduler

	// Handlers
	AuthHandler    *authhandler.AuthHandler
	DatasetHandler *datasethandler.DatasetHandler
	CopilotHandler *copilothandler.CopilotHandler
	ReportsHandler *reportshandler.ReportsHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStores(ctx); err != nil {
		return nil, fmt.Errorf("failed to init stores: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initStores opens the databases, the memory document and upload storage.
func (d *Dependencies) initStores(ctx context.Context) error {
	if err := os.MkdirAll(d.Config.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	d.State = session.NewState()

	userStore, err := auth.OpenStore(ctx, d.Config.Auth.UserDBPath)
	if err != nil {
		return err
	}
	d.UserStore = userStore

	var seedCSV []byte
	if path := d.Config.Storage.SeedCSVPath; path != "" {
		seedCSV, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read seed csv: %w", err)
		}
	}
	arch, err := archive.Open(ctx, d.Config.Storage.ArchivePath, seedCSV, d.Logger)
	if err != nil {
		return err
	}
	d.Archive = arch

	d.Memory = memory.NewStore(d.Config.Storage.MemoryPath, d.Logger)
	d.SearchIndex, err = memory.NewSearchIndex()
	if err != nil {
		return err
	}

	d.Uploads, err = storage.NewLocalStorage(d.Config.Storage.UploadDir)
	if err != nil {
		return err
	}

	d.Logger.Info("stores initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	if d.Config.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	d.TokenManager = auth.NewTokenManager(d.Config.Auth.JWTSecret, d.Config.Auth.AccessTokenTTL)
	d.AuthService = auth.NewService(d.UserStore, d.TokenManager, d.Logger)

	d.Trainer = model.NewTrainer(d.Config.Storage.BundlePath, d.Memory, d.Logger)

	charts := chart.NewRenderer()
	executor := copilot.NewExecutor(d.Config.Storage.BundlePath, d.Memory, charts, d.Logger)
	d.CopilotService = copilot.NewService(d.State, executor, d.Trainer, d.Memory, d.SearchIndex, d.Logger)

	d.ReportsService = reports.NewService(d.Logger)

	d.Scheduler = cron.NewScheduler(
		d.Config.Observability.CronSpec,
		d.Memory,
		d.State,
		d.Config.Storage.BundlePath,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.AuthHandler = authhandler.NewAuthHandler(d.AuthService, d.Logger)
	d.DatasetHandler = datasethandler.NewDatasetHandler(d.State, d.Uploads, d.Archive, d.Logger)
	d.CopilotHandler = copilothandler.NewCopilotHandler(d.CopilotService, d.Logger)
	d.ReportsHandler = reportshandler.NewReportsHandler(d.ReportsService, d.State, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.UserStore != nil {
		d.UserStore.Close()
	}
	if d.Archive != nil {
		d.Archive.Close()
	}
	d.Logger.Info("cleanup completed")
}
