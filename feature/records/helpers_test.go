package records

import (
	"context"
	"sync"
	"testing"
	"time"

	"record-sync/core/database"
	"record-sync/core/history"
	"record-sync/core/reconcile"
	"record-sync/core/remote"
	"record-sync/core/storage"
	"record-sync/core/workbook"

	"github.com/stretchr/testify/require"
)

// memStore answers every query with a single page and records bulk calls.
type memStore struct {
	mu sync.Mutex

	rows     map[string][]remote.Row
	queryErr map[string]error

	updates   [][]remote.UpdateItem
	creates   [][]remote.UdfValue
	schemaIDs []string
	deletes   [][]string

	updateErr error
}

func newMemStore() *memStore {
	return &memStore{
		rows:     make(map[string][]remote.Row),
		queryErr: make(map[string]error),
	}
}

func (m *memStore) Query(ctx context.Context, q remote.Query, page, pageSize int) (*remote.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.queryErr[q.Statement]; err != nil {
		return nil, err
	}
	return &remote.Page{Rows: m.rows[q.Statement], CurrentPage: page, LastPage: 1, TotalCount: len(m.rows[q.Statement])}, nil
}

func (m *memStore) BulkUpdate(ctx context.Context, col remote.Collection, items []remote.UpdateItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, items)
	return m.updateErr
}

func (m *memStore) BulkCreate(ctx context.Context, col remote.Collection, schemaID string, values [][]remote.UdfValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaIDs = append(m.schemaIDs, schemaID)
	m.creates = append(m.creates, values...)
	return nil
}

func (m *memStore) BulkDelete(ctx context.Context, col remote.Collection, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, ids)
	return nil
}

// seededKmStore holds two suppliers and their per-km rates.
func seededKmStore() *memStore {
	entity := PriceListKm()
	store := newMemStore()
	store.rows[businessPartners().Query.Statement] = []remote.Row{
		{"id": "bp-1", "name": "Alfa"},
		{"id": "bp-2", "name": "Beta"},
	}
	store.rows[entity.Current.Statement] = []remote.Row{
		{"id": "r1", supplierKey: "Alfa", "z_f_co_km": "0.5"},
		{"id": "r2", supplierKey: "Beta", "z_f_co_km": "0.7"},
	}
	store.rows[entity.Schema.Statement] = []remote.Row{
		{"id": "f-sup", "name": supplierKey, "udoMetaId": "meta-1"},
		{"id": "f-km", "name": "z_f_co_km", "udoMetaId": "meta-1"},
	}
	return store
}

// kmWorkbook keeps r1, changes r2, adds a rate and one row with an unknown supplier.
func kmWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := workbook.Build([]workbook.SheetData{{
		Name:   "Cennik (km)",
		Header: PriceListKm().Columns.Titles(),
		Rows: [][]string{
			{"r1", "Alfa", "0.5"},
			{"r2", "Beta", "0.9"},
			{"", "Alfa", "1.1"},
			{"", "Gamma", "1"},
		},
	}})
	require.NoError(t, err)
	return data
}

func setupHistory(t *testing.T) *history.Repository {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	repo := history.NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestService(store reconcile.Store, archive *storage.Archive, runs *history.Repository) *Service {
	svc := NewService(reconcile.NewEngine(store, 0, nil), DefaultRegistry(), archive, runs, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
