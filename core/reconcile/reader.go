package reconcile

import (
	"context"
	"iter"
	"strings"

	"record-sync/core/remote"
	"record-sync/core/utils"
)

// clampPageSize keeps size within what the query API serves. Zero means the maximum.
func clampPageSize(size int) int {
	if size <= 0 || size > remote.MaxPageSize {
		return remote.MaxPageSize
	}
	return size
}

func newQueryError(q remote.Query, err error) *QueryError {
	return &QueryError{Query: q.Statement, Status: remote.StatusCode(err), Err: err}
}

// Pages returns a lazy sequence over the pages of query. Every range starts
// at page 1 and requests the next page only after the previous one arrived.
// The sequence ends when the reported current page reaches the last page, or
// after yielding a *QueryError for a failed page.
func Pages(ctx context.Context, q Querier, query remote.Query, pageSize int) iter.Seq2[*remote.Page, error] {
	size := clampPageSize(pageSize)

	return func(yield func(*remote.Page, error) bool) {
		for page := 1; ; page++ {
			p, err := q.Query(ctx, query, page, size)
			if err != nil {
				yield(nil, newQueryError(query, err))
				return
			}
			if !yield(p, nil) {
				return
			}
			// An empty page ends the scan even if the reported bounds disagree
			if p.CurrentPage >= p.LastPage || len(p.Rows) == 0 {
				return
			}
		}
	}
}

// FetchAll reads every page of query into records, keeping only the declared
// columns in arrival order. Any failed page aborts with no partial result.
func FetchAll(ctx context.Context, q Querier, query remote.Query, columns Columns, pageSize int) ([]Record, error) {
	var records []Record
	for page, err := range Pages(ctx, q, query, pageSize) {
		if err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			records = append(records, recordFromRow(row, columns))
		}
	}
	return records, nil
}

// recordFromRow trims values the way workbook cells are trimmed, so both
// sides compare on the same terms. Blank values are absent.
func recordFromRow(row remote.Row, columns Columns) Record {
	values := make(map[string]string, len(columns))
	for _, c := range columns {
		if s, ok := utils.ToOptionalString(row[c.Key]); ok {
			values[c.Key] = strings.TrimSpace(s)
		}
	}
	return NewRecord(values, nil)
}
