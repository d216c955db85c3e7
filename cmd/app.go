package cmd

import (
	"context"
	"fmt"

	"record-sync/core/config"
	"record-sync/core/database"
	"record-sync/core/history"
	"record-sync/core/logger"
	"record-sync/core/reconcile"
	"record-sync/core/remote"
	"record-sync/core/storage"
	"record-sync/feature/records"

	"go.uber.org/zap"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *records.Service
}

// newApp loads the configuration and wires the records service. The workbook
// archive and the sync history are optional: when unavailable the service
// runs without them.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := cfg.Remote.Validate(); err != nil {
		return nil, err
	}

	client := remote.NewClient(cfg.Remote, l)
	engine := reconcile.NewEngine(client, cfg.Remote.PageSize, l)

	var archive *storage.Archive
	if cfg.Storage.Enabled {
		sc, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a := storage.NewArchive(sc, cfg.Storage.Bucket)
		if err := a.EnsureBucket(ctx); err != nil {
			l.Warn("Workbook archive unavailable", zap.Error(err))
		} else {
			archive = a
		}
	}

	var runs *history.Repository
	if cfg.Database.Enabled {
		if db, err := database.Connect(cfg.Database); err != nil {
			l.Warn("Optional database connection failed", zap.Error(err))
		} else {
			repo := history.NewRepository(db)
			if err := repo.Prepare(ctx, cfg.Database.AutoMigrate); err != nil {
				l.Warn("Sync history unavailable", zap.Error(err))
			} else {
				runs = repo
			}
		}
	}

	return &app{
		cfg:     cfg,
		logger:  l,
		service: records.NewService(engine, records.DefaultRegistry(), archive, runs, l),
	}, nil
}
