package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"record-sync/core/history"
	"record-sync/core/reconcile"
	"record-sync/core/storage"

	"go.uber.org/zap"
)

// LatestKey selects the most recent archived import.
const LatestKey = "latest"

var (
	// ErrHistoryDisabled is returned when runs are requested without a history database.
	ErrHistoryDisabled = errors.New("sync history is disabled")
	// ErrArchiveDisabled is returned when the workbook archive is used without storage.
	ErrArchiveDisabled = errors.New("workbook archive is disabled")
)

// Service runs imports and exports of the registered entities. The archive
// and the run history are optional.
type Service struct {
	engine   *reconcile.Engine
	registry *Registry
	archive  *storage.Archive
	runs     *history.Repository
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a records service. archive and runs may be nil.
func NewService(engine *reconcile.Engine, registry *Registry, archive *storage.Archive, runs *history.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:   engine,
		registry: registry,
		archive:  archive,
		runs:     runs,
		logger:   logger,
		now:      time.Now,
	}
}

// Entities returns the registered entity kinds.
func (s *Service) Entities() []*reconcile.Entity {
	return s.registry.List()
}

// Entity returns the entity called name.
func (s *Service) Entity(name string) (*reconcile.Entity, error) {
	return s.registry.Get(name)
}

// ImportRequest is one workbook to sync.
type ImportRequest struct {
	Entity string
	Data   []byte

	// Source describes where the workbook came from, e.g. a file name.
	Source string

	DryRun  bool
	Confirm func(plan *reconcile.Plan) bool

	// Archive keeps a copy of the workbook in storage before mutations are sent.
	Archive bool
}

// ImportResult reports a finished import.
type ImportResult struct {
	Summary    *reconcile.Summary `json:"summary"`
	RunID      string             `json:"run_id,omitempty"`
	ArchiveKey string             `json:"archive_key,omitempty"`
}

// Import syncs a workbook into the remote store and records the run.
// A failed bulk phase still yields a result, returned with the error.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	entity, err := s.registry.Get(req.Entity)
	if err != nil {
		return nil, err
	}

	started := s.now()
	l := s.logger.With(zap.String("entity", entity.Name), zap.String("source", req.Source))

	summary, syncErr := s.engine.Sync(ctx, entity, req.Data, reconcile.Options{
		DryRun:  req.DryRun,
		Confirm: req.Confirm,
	})
	if summary == nil {
		return nil, syncErr
	}

	result := &ImportResult{Summary: summary}
	// Dry runs are recorded but only applied workbooks are archived
	applied := !summary.DryRun && !summary.Aborted
	if applied && req.Archive && s.archive != nil {
		key := storage.ObjectKey(entity.Name, storage.KindImport, started)
		if err := s.archive.Put(ctx, key, req.Data); err != nil {
			l.Warn("Failed to archive workbook", zap.Error(err))
		} else {
			result.ArchiveKey = key
		}
	}

	if !summary.Aborted {
		if runID, err := s.record(ctx, summary, req.Source, result.ArchiveKey, started); err != nil {
			l.Warn("Failed to record sync run", zap.Error(err))
		} else {
			result.RunID = runID
		}
	}

	l.Info("Import finished",
		zap.Bool("dry_run", summary.DryRun),
		zap.Bool("aborted", summary.Aborted),
		zap.Int("removed", summary.Removed),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)

	return result, syncErr
}

func (s *Service) record(ctx context.Context, summary *reconcile.Summary, source, archiveKey string, started time.Time) (string, error) {
	if s.runs == nil {
		return "", nil
	}
	run, err := history.NewRun(summary, source, started, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to encode run: %w", err)
	}
	run.ArchiveKey = archiveKey
	if err := s.runs.Save(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ExportResult is a generated workbook.
type ExportResult struct {
	Data       []byte
	FileName   string
	ArchiveKey string
}

// Export writes the current records of an entity into a workbook, optionally
// keeping a copy in storage.
func (s *Service) Export(ctx context.Context, name string, archive bool) (*ExportResult, error) {
	entity, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if archive && s.archive == nil {
		return nil, ErrArchiveDisabled
	}

	data, err := s.engine.Export(ctx, entity)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Data: data, FileName: entity.FileName}
	if result.FileName == "" {
		result.FileName = entity.Name + ".xlsx"
	}

	if archive {
		key := storage.ObjectKey(entity.Name, storage.KindExport, s.now())
		if err := s.archive.Put(ctx, key, data); err != nil {
			return nil, err
		}
		result.ArchiveKey = key
	}

	return result, nil
}

// Archived reads an archived import of an entity. key may be LatestKey.
// It returns the workbook and the resolved key.
func (s *Service) Archived(ctx context.Context, name, key string) ([]byte, string, error) {
	entity, err := s.registry.Get(name)
	if err != nil {
		return nil, "", err
	}
	if s.archive == nil {
		return nil, "", ErrArchiveDisabled
	}

	if key == "" || key == LatestKey {
		if key, err = s.archive.Latest(ctx, entity.Name, storage.KindImport); err != nil {
			return nil, "", err
		}
	}

	data, err := s.archive.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, key, nil
}

// Runs lists the latest recorded runs of an entity, newest first.
func (s *Service) Runs(ctx context.Context, name string, limit int) ([]history.View, error) {
	entity, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}

	runs, err := s.runs.List(ctx, entity.Name, limit)
	if err != nil {
		return nil, err
	}

	views := make([]history.View, 0, len(runs))
	for _, r := range runs {
		v, err := r.View()
		if err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", r.ID, err)
		}
		views = append(views, v)
	}
	return views, nil
}
