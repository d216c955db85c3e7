package history

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"record-sync/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DefaultLimit caps List when no limit is given.
const DefaultLimit = 20

// Repository persists sync runs.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Prepare migrates the schema when autoMigrate is set, and verifies it otherwise.
func (r *Repository) Prepare(ctx context.Context, autoMigrate bool) error {
	if autoMigrate {
		return r.Migrate(ctx)
	}
	return r.Verify(ctx)
}

// Migrate creates or alters the sync_runs table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Run{}); err != nil {
		return fmt.Errorf("failed to migrate sync_runs: %w", err)
	}
	return nil
}

// Verify checks that sync_runs holds every column of Run.
func (r *Repository) Verify(ctx context.Context) error {
	s, err := schema.Parse(&Run{}, &sync.Map{}, r.db.NamingStrategy)
	if err != nil {
		return fmt.Errorf("failed to parse run schema: %w", err)
	}

	actual, err := database.GetTableColumns(r.db.WithContext(ctx), s.Table)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(actual))
	for _, c := range actual {
		present[c.Field] = struct{}{}
	}

	var missing []string
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		if _, ok := present[strings.ToLower(f.DBName)]; !ok {
			missing = append(missing, f.DBName)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", s.Table, strings.Join(missing, ", "))
	}
	return nil
}

// Save stores run.
func (r *Repository) Save(ctx context.Context, run *Run) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the latest runs of entity, newest first.
func (r *Repository) List(ctx context.Context, entity string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var runs []Run
	err := r.db.WithContext(ctx).
		Where("entity = ?", entity).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs of %s: %w", entity, err)
	}
	return runs, nil
}
