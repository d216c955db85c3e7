package reconcile

import "fmt"

// Plan is the classification of an incoming record set against the current one.
type Plan struct {
	// ToCreate holds incoming records unknown to the store, foreign keys resolved to ids.
	ToCreate []Record `json:"-"`

	// ToUpdate holds changed incoming records, foreign keys resolved to ids.
	ToUpdate []Record `json:"-"`

	// ToRemove holds current records whose id no longer appears in the incoming set.
	ToRemove []Record `json:"-"`

	// FailedToMap holds incoming records with at least one unresolved foreign key.
	FailedToMap []MappingFailure `json:"-"`

	// Superseded holds earlier rows that a later row with the same id replaced.
	Superseded []Record `json:"-"`

	// Unchanged counts incoming records equal to their current counterpart.
	Unchanged int `json:"unchanged"`
}

// HasMutations reports whether applying the plan would send any bulk request.
func (p *Plan) HasMutations() bool {
	return len(p.ToCreate) > 0 || len(p.ToUpdate) > 0 || len(p.ToRemove) > 0
}

// Classify computes the creates, updates and removals that turn current into
// incoming. Foreign keys of created and updated records are remapped through
// lookups, keyed by column key. Unchanged detection compares raw values over
// every declared column, before remapping. Classify does not modify its inputs.
func Classify(columns Columns, current, incoming []Record, lookups map[string]Lookup) (*Plan, error) {
	for _, c := range columns.ForeignKeys() {
		if _, ok := lookups[c.Key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingLookup, c.Key)
		}
	}

	plan := &Plan{}
	unique, superseded := upsertByID(incoming)
	plan.Superseded = superseded

	currentByID := make(map[string]Record, len(current))
	for _, rec := range current {
		if id, ok := rec.ID(); ok {
			currentByID[id] = rec
		}
	}

	incomingIDs := make(map[string]struct{}, len(unique))
	for _, rec := range unique {
		if id, ok := rec.ID(); ok {
			incomingIDs[id] = struct{}{}
		}
	}

	for _, rec := range current {
		id, ok := rec.ID()
		if !ok {
			continue
		}
		if _, kept := incomingIDs[id]; !kept {
			plan.ToRemove = append(plan.ToRemove, rec)
		}
	}

	for _, rec := range unique {
		var existing *Record
		if id, ok := rec.ID(); ok {
			if cur, found := currentByID[id]; found {
				existing = &cur
			}
		}

		if existing != nil && rec.Equal(*existing, columns) {
			plan.Unchanged++
			continue
		}

		mapped, failed := remap(rec, columns, lookups)
		if len(failed) > 0 {
			plan.FailedToMap = append(plan.FailedToMap, MappingFailure{Record: rec, Columns: failed})
			continue
		}

		if existing != nil {
			plan.ToUpdate = append(plan.ToUpdate, mapped)
		} else {
			plan.ToCreate = append(plan.ToCreate, mapped)
		}
	}

	return plan, nil
}

// upsertByID builds a unique-by-id view of records in first-seen order.
// A later record with an already seen id replaces the earlier one, which is
// returned as superseded. Records without an id are all kept.
func upsertByID(records []Record) (unique, superseded []Record) {
	slots := make(map[string]int, len(records))
	for _, rec := range records {
		id, ok := rec.ID()
		if !ok {
			unique = append(unique, rec)
			continue
		}
		if i, seen := slots[id]; seen {
			superseded = append(superseded, unique[i])
			unique[i] = rec
			continue
		}
		slots[id] = len(unique)
		unique = append(unique, rec)
	}
	return unique, superseded
}

// remap replaces display names in foreign-key columns with ids. It returns the
// keys of columns that could not be resolved; an absent value never resolves.
func remap(rec Record, columns Columns, lookups map[string]Lookup) (Record, []string) {
	out := rec
	var failed []string
	for _, c := range columns.ForeignKeys() {
		name, ok := rec.Get(c.Key)
		if !ok {
			failed = append(failed, c.Key)
			continue
		}
		id, found := lookups[c.Key][name]
		if !found {
			failed = append(failed, c.Key)
			continue
		}
		out = out.with(c.Key, id)
	}
	return out, failed
}
