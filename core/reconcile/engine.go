package reconcile

import (
	"bytes"
	"context"
	"fmt"

	"record-sync/core/utils"
	"record-sync/core/workbook"

	"go.uber.org/zap"
)

// Options controls a sync run.
type Options struct {
	// DryRun computes the plan without sending any mutation.
	DryRun bool

	// Confirm, when set, is asked before mutations are sent. Returning false aborts the run.
	Confirm func(plan *Plan) bool
}

// Engine runs sync and export flows against a remote store.
type Engine struct {
	store    Store
	pageSize int
	logger   *zap.Logger
}

// NewEngine creates an engine. pageSize is clamped to the query API limits.
func NewEngine(store Store, pageSize int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		pageSize: clampPageSize(pageSize),
		logger:   logger,
	}
}

// Plan resolves lookups, fetches the current set, extracts wb and classifies.
// Any query failure aborts before a plan exists.
func (e *Engine) Plan(ctx context.Context, entity *Entity, wb *workbook.Workbook) (*Plan, error) {
	lookups, err := ResolveLookups(ctx, e.store, entity.Columns, e.pageSize)
	if err != nil {
		return nil, err
	}

	current, err := FetchAll(ctx, e.store, entity.Current, entity.Columns, e.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current %s: %w", entity.Name, err)
	}

	incoming := Extract(wb, entity.Columns)

	plan, err := Classify(entity.Columns, current, incoming, lookups)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Sync planned",
		zap.String("entity", entity.Name),
		zap.Int("current", len(current)),
		zap.Int("incoming", len(incoming)),
		zap.Int("to_remove", len(plan.ToRemove)),
		zap.Int("to_create", len(plan.ToCreate)),
		zap.Int("to_update", len(plan.ToUpdate)),
		zap.Int("failed_to_map", len(plan.FailedToMap)),
		zap.Int("unchanged", plan.Unchanged),
	)
	for _, rec := range plan.Superseded {
		id, _ := rec.ID()
		fields := []zap.Field{zap.String("entity", entity.Name), zap.String("id", id)}
		if p := rec.Provenance(); p != nil {
			fields = append(fields, zap.String("sheet", p.Sheet), zap.Int("row", p.Row))
		}
		e.logger.Warn("Duplicate id, row replaced by a later row", fields...)
	}

	return plan, nil
}

// LoadSchema fetches the field metadata of entity.
func (e *Engine) LoadSchema(ctx context.Context, entity *Entity) (Schema, error) {
	schema := Schema{Fields: make(map[string]string)}

	for page, err := range Pages(ctx, e.store, entity.Schema, e.pageSize) {
		if err != nil {
			return Schema{}, fmt.Errorf("failed to load %s schema: %w", entity.Name, err)
		}
		for _, row := range page.Rows {
			name := utils.ToString(row["name"])
			id := utils.ToString(row["id"])
			if name != "" && id != "" {
				schema.Fields[name] = id
			}
			if schema.ID == "" {
				schema.ID = utils.ToString(row["udoMetaId"])
			}
		}
	}

	if len(schema.Fields) == 0 {
		return Schema{}, fmt.Errorf("failed to load %s schema: %w", entity.Name, ErrEmptySchema)
	}
	return schema, nil
}

// Apply sends plan to the store. Field metadata is loaded only when records
// are created or updated; a failure there aborts before any mutation.
func (e *Engine) Apply(ctx context.Context, entity *Entity, plan *Plan) (*Outcome, error) {
	var schema Schema
	if len(plan.ToCreate) > 0 || len(plan.ToUpdate) > 0 {
		var err error
		if schema, err = e.LoadSchema(ctx, entity); err != nil {
			return nil, err
		}
	}

	return NewExecutor(e.store, entity, schema, e.logger).Apply(ctx, plan)
}

// Sync imports a workbook: parse, plan, apply unless opts.DryRun, summarize.
// When bulk phases fail the summary is returned together with the joined error.
func (e *Engine) Sync(ctx context.Context, entity *Entity, data []byte, opts Options) (*Summary, error) {
	wb, err := workbook.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	plan, err := e.Plan(ctx, entity, wb)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		s := Summarize(plan, nil)
		s.Entity = entity.Name
		return &s, nil
	}

	if opts.Confirm != nil && plan.HasMutations() && !opts.Confirm(plan) {
		s := Summarize(plan, nil)
		s.Entity = entity.Name
		s.Aborted = true
		return &s, nil
	}

	outcome, applyErr := e.Apply(ctx, entity, plan)
	if outcome == nil {
		return nil, applyErr
	}

	s := Summarize(plan, outcome)
	s.Entity = entity.Name
	return &s, applyErr
}

// Export writes the current set of entity into a workbook. With SplitBy set
// every distinct value gets its own sheet in first-seen order.
func (e *Engine) Export(ctx context.Context, entity *Entity) ([]byte, error) {
	records, err := FetchAll(ctx, e.store, entity.Current, entity.Columns, e.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current %s: %w", entity.Name, err)
	}

	sheets := exportSheets(entity, records)
	e.logger.Info("Export built",
		zap.String("entity", entity.Name),
		zap.Int("records", len(records)),
		zap.Int("sheets", len(sheets)),
	)

	return workbook.Build(sheets)
}

func exportSheets(entity *Entity, records []Record) []workbook.SheetData {
	defaultName := entity.SheetName
	if defaultName == "" {
		defaultName = entity.Name
	}
	header := entity.Columns.Titles()

	if entity.SplitBy == "" || len(records) == 0 {
		sheet := workbook.SheetData{Name: defaultName, Header: header}
		for _, rec := range records {
			sheet.Rows = append(sheet.Rows, exportRow(rec, entity.Columns))
		}
		return []workbook.SheetData{sheet}
	}

	var sheets []workbook.SheetData
	index := make(map[string]int)
	for _, rec := range records {
		name, ok := rec.Get(entity.SplitBy)
		if !ok {
			name = defaultName
		}
		i, seen := index[name]
		if !seen {
			i = len(sheets)
			index[name] = i
			sheets = append(sheets, workbook.SheetData{Name: name, Header: header})
		}
		sheets[i].Rows = append(sheets[i].Rows, exportRow(rec, entity.Columns))
	}
	return sheets
}

func exportRow(rec Record, columns Columns) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i], _ = rec.Get(c.Key)
	}
	return row
}
