package reconcile

import (
	"context"
	"fmt"
	"strings"

	"record-sync/core/remote"
	"record-sync/core/utils"
)

// BuildLookup runs the reference query once and maps display names to ids.
// Names and ids are trimmed. Rows without a name or id are skipped; a
// repeated name keeps its last id.
func BuildLookup(ctx context.Context, q Querier, ref *Reference, pageSize int) (Lookup, error) {
	if ref == nil {
		return nil, fmt.Errorf("nil reference")
	}

	lookup := make(Lookup)
	nameField, idField := ref.nameField(), ref.idField()

	for page, err := range Pages(ctx, q, ref.Query, pageSize) {
		if err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			name := strings.TrimSpace(utils.ToString(row[nameField]))
			id := strings.TrimSpace(utils.ToString(row[idField]))
			if name == "" || id == "" {
				continue
			}
			lookup[name] = id
		}
	}

	return lookup, nil
}

// ResolveLookups builds one lookup per foreign-key column, keyed by column key.
// Columns sharing an identical reference query share one remote scan.
func ResolveLookups(ctx context.Context, q Querier, columns Columns, pageSize int) (map[string]Lookup, error) {
	lookups := make(map[string]Lookup)
	byQuery := make(map[referenceKey]Lookup)

	for _, c := range columns.ForeignKeys() {
		ref := c.Reference
		key := referenceKey{query: ref.Query, name: ref.nameField(), id: ref.idField()}
		if l, ok := byQuery[key]; ok {
			lookups[c.Key] = l
			continue
		}

		l, err := BuildLookup(ctx, q, ref, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s for column %s: %w", ref.Name, c.Key, err)
		}
		byQuery[key] = l
		lookups[c.Key] = l
	}

	return lookups, nil
}

type referenceKey struct {
	query    remote.Query
	name, id string
}
