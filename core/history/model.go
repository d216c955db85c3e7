package history

import (
	"encoding/json"
	"time"

	"record-sync/core/reconcile"

	"github.com/google/uuid"
)

// Run is the audit record of one sync run.
type Run struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Entity     string    `gorm:"column:entity;type:varchar(64);index" json:"entity"`
	Source     string    `gorm:"column:source;type:varchar(255)" json:"source"`
	ArchiveKey string    `gorm:"column:archive_key;type:varchar(255)" json:"archive_key,omitempty"`
	DryRun     bool      `gorm:"column:dry_run" json:"dry_run"`
	Aborted    bool      `gorm:"column:aborted" json:"aborted"`
	Removed    int       `gorm:"column:removed" json:"removed"`
	Created    int       `gorm:"column:created" json:"created"`
	Updated    int       `gorm:"column:updated" json:"updated"`
	Failed     int       `gorm:"column:failed" json:"failed"`
	Unchanged  int       `gorm:"column:unchanged" json:"unchanged"`
	FailedRows string    `gorm:"column:failed_rows;type:text" json:"-"`
	Errors     string    `gorm:"column:errors;type:text" json:"-"`
	StartedAt  time.Time `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt time.Time `gorm:"column:finished_at" json:"finished_at"`
}

// TableName overrides the default table name.
func (Run) TableName() string {
	return "sync_runs"
}

// NewRun records summary as a run of entity read from source.
func NewRun(s *reconcile.Summary, source string, startedAt, finishedAt time.Time) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		Entity:     s.Entity,
		Source:     source,
		DryRun:     s.DryRun,
		Aborted:    s.Aborted,
		Removed:    s.Removed,
		Created:    s.Created,
		Updated:    s.Updated,
		Failed:     s.Failed,
		Unchanged:  s.Unchanged,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
	}

	if len(s.FailedRows) > 0 {
		b, err := json.Marshal(s.FailedRows)
		if err != nil {
			return nil, err
		}
		run.FailedRows = string(b)
	}
	if len(s.Errors) > 0 {
		b, err := json.Marshal(s.Errors)
		if err != nil {
			return nil, err
		}
		run.Errors = string(b)
	}

	return run, nil
}

// View is the decoded form of a run for API and CLI output.
type View struct {
	Run
	FailedRows []reconcile.SheetRows    `json:"failed_rows,omitempty"`
	Errors     []reconcile.PhaseFailure `json:"errors,omitempty"`
}

// View decodes the stored failure details.
func (r Run) View() (View, error) {
	v := View{Run: r}
	if r.FailedRows != "" {
		if err := json.Unmarshal([]byte(r.FailedRows), &v.FailedRows); err != nil {
			return View{}, err
		}
	}
	if r.Errors != "" {
		if err := json.Unmarshal([]byte(r.Errors), &v.Errors); err != nil {
			return View{}, err
		}
	}
	return v, nil
}
