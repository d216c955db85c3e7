package reconcile

import (
	"context"
	"sync"

	"record-sync/core/remote"

	"github.com/stretchr/testify/mock"
)

// fakeStore serves query results in pages and records bulk calls.
type fakeStore struct {
	mu sync.Mutex

	results  map[string][]remote.Row
	failPage map[string]int
	queries  []string

	updates [][]remote.UpdateItem
	creates []createCall
	deletes [][]string

	updateErr error
	createErr error
	deleteErr error
}

type createCall struct {
	schemaID string
	values   [][]remote.UdfValue
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		results:  make(map[string][]remote.Row),
		failPage: make(map[string]int),
	}
}

func (f *fakeStore) Query(ctx context.Context, q remote.Query, page, pageSize int) (*remote.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, q.Statement)
	if f.failPage[q.Statement] == page {
		return nil, &remote.StatusError{Method: "POST", Path: "/api/query/v1", StatusCode: 500, Body: "boom"}
	}

	rows := f.results[q.Statement]
	last := (len(rows) + pageSize - 1) / pageSize
	if last == 0 {
		last = 1
	}
	start := min((page-1)*pageSize, len(rows))
	end := min(start+pageSize, len(rows))

	return &remote.Page{
		Rows:        rows[start:end],
		CurrentPage: page,
		LastPage:    last,
		TotalCount:  len(rows),
	}, nil
}

func (f *fakeStore) BulkUpdate(ctx context.Context, col remote.Collection, items []remote.UpdateItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, items)
	return f.updateErr
}

func (f *fakeStore) BulkCreate(ctx context.Context, col remote.Collection, schemaID string, values [][]remote.UdfValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{schemaID: schemaID, values: values})
	return f.createErr
}

func (f *fakeStore) BulkDelete(ctx context.Context, col remote.Collection, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, ids)
	return f.deleteErr
}

func (f *fakeStore) countQueries(statement string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if q == statement {
			n++
		}
	}
	return n
}

// mockBulkStore is a testify mock of BulkStore.
type mockBulkStore struct {
	mock.Mock
}

func (m *mockBulkStore) BulkUpdate(ctx context.Context, col remote.Collection, items []remote.UpdateItem) error {
	args := m.Called(ctx, col, items)
	return args.Error(0)
}

func (m *mockBulkStore) BulkCreate(ctx context.Context, col remote.Collection, schemaID string, values [][]remote.UdfValue) error {
	args := m.Called(ctx, col, schemaID, values)
	return args.Error(0)
}

func (m *mockBulkStore) BulkDelete(ctx context.Context, col remote.Collection, ids []string) error {
	args := m.Called(ctx, col, ids)
	return args.Error(0)
}

var partnerRef = &Reference{
	Name:  "partner",
	Query: remote.Query{Statement: "SELECT partners", DTOs: "BusinessPartner.23"},
}

func testEntity() *Entity {
	return &Entity{
		Name: "rates",
		Columns: Columns{
			{Key: "id", Title: "ID"},
			{Key: "partner", Title: "Partner", Reference: partnerRef},
			{Key: "km", Title: "Rate per km"},
		},
		Current:    remote.Query{Statement: "SELECT current"},
		Schema:     remote.Query{Statement: "SELECT schema"},
		Collection: remote.Collection{Name: "UdoValue", DTOs: "UdoValue.9"},
		SheetName:  "Rates",
	}
}

// rec builds a record from key/value pairs.
func rec(kv ...string) Record {
	values := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = kv[i+1]
	}
	return NewRecord(values, nil)
}

// recAt builds a record with provenance.
func recAt(sheet string, row int, kv ...string) Record {
	r := rec(kv...)
	return NewRecord(r.Values(), &Provenance{Sheet: sheet, Row: row})
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i], _ = r.ID()
	}
	return out
}
