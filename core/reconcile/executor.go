package reconcile

import (
	"context"
	"errors"

	"record-sync/core/remote"

	"go.uber.org/zap"
)

// Outcome reports which bulk phases were applied.
type Outcome struct {
	// Updated, Created and Removed count records sent by phases that succeeded.
	Updated int
	Created int
	Removed int

	// Errors holds one entry per rejected phase, in execution order.
	Errors []*BulkOperationError
}

// Err joins the phase errors, or returns nil when every phase succeeded.
func (o *Outcome) Err() error {
	errs := make([]error, len(o.Errors))
	for i, e := range o.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Executor applies a plan to one collection through batched requests.
type Executor struct {
	store      BulkStore
	collection remote.Collection
	columns    Columns
	schema     Schema
	logger     *zap.Logger
}

// NewExecutor creates an executor for entity using the given field metadata.
func NewExecutor(store BulkStore, entity *Entity, schema Schema, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		store:      store,
		collection: entity.Collection,
		columns:    entity.Columns,
		schema:     schema,
		logger:     logger,
	}
}

// Apply issues the update, create and delete requests in that order, each
// only when its set is non-empty. Every phase runs regardless of earlier
// failures; nothing is retried or rolled back. The returned error joins the
// *BulkOperationError of each failed phase.
func (e *Executor) Apply(ctx context.Context, plan *Plan) (*Outcome, error) {
	out := &Outcome{}

	if n := len(plan.ToUpdate); n > 0 {
		items := make([]remote.UpdateItem, 0, n)
		for _, rec := range plan.ToUpdate {
			id, _ := rec.ID()
			items = append(items, remote.UpdateItem{ID: id, UdfValues: e.payload(rec)})
		}
		if e.run(PhaseUpdate, n, out, e.store.BulkUpdate(ctx, e.collection, items)) {
			out.Updated = n
		}
	}

	if n := len(plan.ToCreate); n > 0 {
		values := make([][]remote.UdfValue, 0, n)
		for _, rec := range plan.ToCreate {
			values = append(values, e.payload(rec))
		}
		if e.run(PhaseCreate, n, out, e.store.BulkCreate(ctx, e.collection, e.schema.ID, values)) {
			out.Created = n
		}
	}

	if n := len(plan.ToRemove); n > 0 {
		ids := make([]string, 0, n)
		for _, rec := range plan.ToRemove {
			id, _ := rec.ID()
			ids = append(ids, id)
		}
		if e.run(PhaseDelete, n, out, e.store.BulkDelete(ctx, e.collection, ids)) {
			out.Removed = n
		}
	}

	return out, out.Err()
}

// run records the result of one phase and reports whether it succeeded.
func (e *Executor) run(phase Phase, n int, out *Outcome, err error) bool {
	if err != nil {
		e.logger.Error("Bulk phase failed",
			zap.String("phase", string(phase)),
			zap.Int("records", n),
			zap.Error(err),
		)
		out.Errors = append(out.Errors, &BulkOperationError{
			Phase:  phase,
			Status: remote.StatusCode(err),
			Err:    err,
		})
		return false
	}

	e.logger.Info("Bulk phase applied",
		zap.String("phase", string(phase)),
		zap.Int("records", n),
	)
	return true
}

// payload lists the values of rec that have a schema field, in column order.
// Absent values and columns without a field are omitted.
func (e *Executor) payload(rec Record) []remote.UdfValue {
	values := make([]remote.UdfValue, 0, len(e.columns))
	for _, c := range e.columns {
		fieldID, ok := e.schema.Fields[c.Key]
		if !ok {
			continue
		}
		v, present := rec.Get(c.Key)
		if !present {
			continue
		}
		values = append(values, remote.UdfValue{Meta: remote.MetaRef{ID: fieldID}, Value: v})
	}
	return values
}
