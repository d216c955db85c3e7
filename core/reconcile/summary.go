package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// SheetRows lists row numbers of one sheet.
type SheetRows struct {
	Sheet string `json:"sheet"`
	Rows  []int  `json:"rows"`
}

// PhaseFailure is a rejected bulk phase in report form.
type PhaseFailure struct {
	Phase   Phase  `json:"phase"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// Summary is the operator report of one sync run.
type Summary struct {
	Entity    string `json:"entity"`
	DryRun    bool   `json:"dry_run"`
	Aborted   bool   `json:"aborted,omitempty"`
	Removed   int    `json:"removed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Failed    int    `json:"failed"`
	Unchanged int    `json:"unchanged"`

	// FailedRows lists rows with unresolved foreign keys, sheets in first-seen order.
	FailedRows []SheetRows `json:"failed_rows,omitempty"`

	// Superseded lists duplicate-id rows replaced by a later row.
	Superseded []SheetRows `json:"superseded,omitempty"`

	// Errors lists the bulk phases that were rejected.
	Errors []PhaseFailure `json:"errors,omitempty"`
}

// Summarize reports plan and outcome. A nil outcome is a dry run: the counts
// are what would be sent. Otherwise only phases that succeeded are counted.
func Summarize(plan *Plan, outcome *Outcome) Summary {
	s := Summary{
		Failed:     len(plan.FailedToMap),
		Unchanged:  plan.Unchanged,
		Superseded: groupRows(plan.Superseded),
	}

	failed := make([]Record, len(plan.FailedToMap))
	for i, f := range plan.FailedToMap {
		failed[i] = f.Record
	}
	s.FailedRows = groupRows(failed)

	if outcome == nil {
		s.DryRun = true
		s.Removed = len(plan.ToRemove)
		s.Created = len(plan.ToCreate)
		s.Updated = len(plan.ToUpdate)
		return s
	}

	s.Removed = outcome.Removed
	s.Created = outcome.Created
	s.Updated = outcome.Updated
	for _, e := range outcome.Errors {
		s.Errors = append(s.Errors, PhaseFailure{
			Phase:   e.Phase,
			Status:  e.Status,
			Message: e.Err.Error(),
		})
	}
	return s
}

func groupRows(records []Record) []SheetRows {
	var groups []SheetRows
	index := make(map[string]int)
	for _, rec := range records {
		p := rec.Provenance()
		if p == nil {
			continue
		}
		i, ok := index[p.Sheet]
		if !ok {
			i = len(groups)
			index[p.Sheet] = i
			groups = append(groups, SheetRows{Sheet: p.Sheet})
		}
		groups[i].Rows = append(groups[i].Rows, p.Row)
	}
	return groups
}

// OK reports whether every bulk phase succeeded.
func (s Summary) OK() bool {
	return len(s.Errors) == 0
}

// String renders the report shown to operators at the end of a run.
func (s Summary) String() string {
	var b strings.Builder

	switch {
	case s.Aborted:
		b.WriteString("Sync aborted, nothing was sent. Planned records ")
	case s.DryRun:
		b.WriteString("Dry run, nothing was sent. Planned records ")
	default:
		b.WriteString("Records ")
	}
	fmt.Fprintf(&b, "removed: %d, created: %d, updated: %d, failed: %d.", s.Removed, s.Created, s.Updated, s.Failed)

	if len(s.FailedRows) > 0 {
		b.WriteString("\n\nFailed rows:")
		writeRows(&b, s.FailedRows)
	}
	if len(s.Superseded) > 0 {
		b.WriteString("\n\nDuplicate ids, rows replaced by a later row:")
		writeRows(&b, s.Superseded)
	}
	if len(s.Errors) > 0 {
		b.WriteString("\n\nRejected operations:")
		for _, e := range s.Errors {
			if e.Status != 0 {
				fmt.Fprintf(&b, "\n%s (status %d): %s", e.Phase, e.Status, e.Message)
			} else {
				fmt.Fprintf(&b, "\n%s: %s", e.Phase, e.Message)
			}
		}
	}

	return b.String()
}

func writeRows(b *strings.Builder, groups []SheetRows) {
	for _, g := range groups {
		rows := make([]string, len(g.Rows))
		for i, r := range g.Rows {
			rows[i] = strconv.Itoa(r)
		}
		fmt.Fprintf(b, "\n%s: %s", g.Sheet, strings.Join(rows, ", "))
	}
}
