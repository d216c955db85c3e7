package reconcile

import (
	"context"
	"maps"

	"record-sync/core/remote"
)

// IDKey is the column key of the primary identifier.
const IDKey = "id"

// Reference describes how to resolve a foreign-key column: the query listing
// the referenced collection and which row fields carry the display name and id.
type Reference struct {
	// Name labels the referenced collection in logs, e.g. "business-partner".
	Name string

	// Query lists every referenced record.
	Query remote.Query

	// NameField is the row field holding the display name. Defaults to "name".
	NameField string

	// IDField is the row field holding the identifier. Defaults to "id".
	IDField string
}

func (r *Reference) nameField() string {
	if r.NameField == "" {
		return "name"
	}
	return r.NameField
}

func (r *Reference) idField() string {
	if r.IDField == "" {
		return "id"
	}
	return r.IDField
}

// Column declares one field of an entity kind.
type Column struct {
	// Key is the canonical field name used for comparison and payloads.
	Key string `json:"key"`

	// Title is the spreadsheet header text.
	Title string `json:"title"`

	// Reference marks a foreign-key column. Nil for plain columns.
	Reference *Reference `json:"-"`
}

// IsForeignKey reports whether the column value must be resolved to an id.
func (c Column) IsForeignKey() bool {
	return c.Reference != nil
}

// Columns is an ordered column set. Order fixes spreadsheet layout and comparison order.
type Columns []Column

// Keys returns the column keys in declaration order.
func (cs Columns) Keys() []string {
	keys := make([]string, len(cs))
	for i, c := range cs {
		keys[i] = c.Key
	}
	return keys
}

// Titles returns the header row in declaration order.
func (cs Columns) Titles() []string {
	titles := make([]string, len(cs))
	for i, c := range cs {
		titles[i] = c.Title
	}
	return titles
}

// ForeignKeys returns the foreign-key columns in declaration order.
func (cs Columns) ForeignKeys() Columns {
	var fks Columns
	for _, c := range cs {
		if c.IsForeignKey() {
			fks = append(fks, c)
		}
	}
	return fks
}

// Entity is the configuration of one entity kind.
type Entity struct {
	// Name is the entity identifier used by the CLI and HTTP API.
	Name string `json:"name"`

	// Description is a human readable label.
	Description string `json:"description"`

	// Columns declares the spreadsheet layout.
	Columns Columns `json:"columns"`

	// Current queries the authoritative set. Its rows carry foreign keys as display names.
	Current remote.Query `json:"-"`

	// Schema queries the field metadata needed to build bulk payloads.
	Schema remote.Query `json:"-"`

	// Collection is the bulk data API target.
	Collection remote.Collection `json:"-"`

	// SheetName names the sheet of a single-sheet export.
	SheetName string `json:"-"`

	// SplitBy, when set, exports one sheet per distinct value of this column.
	SplitBy string `json:"-"`

	// FileName is the suggested name of an exported workbook.
	FileName string `json:"-"`
}

// Provenance locates an incoming record in the source workbook.
// Row is 1-based with the header as row 1.
type Provenance struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
}

// Record is an immutable snapshot of one entity. A key missing from
// values is absent, which is distinct from any string value.
type Record struct {
	values     map[string]string
	provenance *Provenance
}

// NewRecord copies values into a record. Empty strings are stored as absent.
func NewRecord(values map[string]string, prov *Provenance) Record {
	v := make(map[string]string, len(values))
	for k, s := range values {
		if s != "" {
			v[k] = s
		}
	}
	return Record{values: v, provenance: prov}
}

// Get returns the value of key and whether it is present.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// ID returns the primary identifier and whether it is present.
func (r Record) ID() (string, bool) {
	return r.Get(IDKey)
}

// Provenance returns where the record was read from, or nil.
func (r Record) Provenance() *Provenance {
	return r.provenance
}

// Values returns a copy of the record's present values.
func (r Record) Values() map[string]string {
	return maps.Clone(r.values)
}

// with returns a copy of r with key set to value.
func (r Record) with(key, value string) Record {
	v := maps.Clone(r.values)
	if v == nil {
		v = make(map[string]string, 1)
	}
	v[key] = value
	return Record{values: v, provenance: r.provenance}
}

// Equal reports whether r and other hold the same value, or are both absent, for every column.
func (r Record) Equal(other Record, columns Columns) bool {
	for _, c := range columns {
		a, aok := r.Get(c.Key)
		b, bok := other.Get(c.Key)
		if aok != bok || a != b {
			return false
		}
	}
	return true
}

// Lookup maps display names to identifiers. Matching is exact and case-sensitive.
type Lookup map[string]string

// Schema is the remote field metadata of an entity kind.
type Schema struct {
	// ID identifies the owning schema; created records are tagged with it.
	ID string

	// Fields maps column keys to field definition ids.
	Fields map[string]string
}

// Querier runs one page of a remote query.
type Querier interface {
	Query(ctx context.Context, q remote.Query, page, pageSize int) (*remote.Page, error)
}

// BulkStore applies batched mutations to a remote collection.
type BulkStore interface {
	BulkUpdate(ctx context.Context, col remote.Collection, items []remote.UpdateItem) error
	BulkCreate(ctx context.Context, col remote.Collection, schemaID string, values [][]remote.UdfValue) error
	BulkDelete(ctx context.Context, col remote.Collection, ids []string) error
}

// Store is the complete remote record store.
type Store interface {
	Querier
	BulkStore
}
