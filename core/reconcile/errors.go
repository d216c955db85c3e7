package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingLookup is returned when a foreign-key column has no lookup to resolve against.
	ErrMissingLookup = errors.New("missing lookup for foreign-key column")

	// ErrUnknownEntity is returned for an entity name that is not registered.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrEmptySchema is returned when the store reports no field metadata for an entity.
	ErrEmptySchema = errors.New("schema has no fields")
)

// QueryError reports a failed remote query. It aborts the run before any mutation.
type QueryError struct {
	Query  string
	Status int
	Err    error
}

func (e *QueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote query failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Phase names a bulk operation.
type Phase string

const (
	PhaseUpdate Phase = "update"
	PhaseCreate Phase = "create"
	PhaseDelete Phase = "delete"
)

// BulkOperationError reports a rejected bulk phase. Other phases are unaffected.
type BulkOperationError struct {
	Phase  Phase
	Status int
	Err    error
}

func (e *BulkOperationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bulk %s failed with status %d: %v", e.Phase, e.Status, e.Err)
	}
	return fmt.Sprintf("bulk %s failed: %v", e.Phase, e.Err)
}

func (e *BulkOperationError) Unwrap() error {
	return e.Err
}

// MappingFailure is an incoming record whose foreign keys did not all resolve.
// Record keeps the raw display values.
type MappingFailure struct {
	Record  Record
	Columns []string
}

func (f MappingFailure) String() string {
	loc := "unknown row"
	if p := f.Record.Provenance(); p != nil {
		loc = fmt.Sprintf("%s:%d", p.Sheet, p.Row)
	}
	return fmt.Sprintf("%s: unresolved %s", loc, strings.Join(f.Columns, ", "))
}
