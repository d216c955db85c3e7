package records

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"record-sync/core/reconcile"
	"record-sync/core/remote"
	"record-sync/core/storage"
	"record-sync/core/storage/mocks"
	"record-sync/core/workbook"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	store := seededKmStore()
	runs := setupHistory(t)
	data := kmWorkbook(t)

	key := storage.ObjectKey(EntityPriceListKm, storage.KindImport, fixedNow)
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "wb", key, mock.Anything, int64(len(data)), mock.Anything).
		Return(minio.UploadInfo{Key: key}, nil)

	svc := newTestService(store, storage.NewArchive(client, "wb"), runs)
	result, err := svc.Import(ctx, ImportRequest{
		Entity:  EntityPriceListKm,
		Data:    data,
		Source:  "km.xlsx",
		Archive: true,
	})
	require.NoError(t, err)
	client.AssertExpectations(t)

	s := result.Summary
	assert.Equal(t, 0, s.Removed)
	assert.Equal(t, 1, s.Created)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Unchanged)
	assert.Equal(t, []reconcile.SheetRows{{Sheet: "Cennik (km)", Rows: []int{5}}}, s.FailedRows)
	assert.Equal(t, key, result.ArchiveKey)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, store.updates, 1)
	assert.Equal(t, []remote.UpdateItem{{
		ID: "r2",
		UdfValues: []remote.UdfValue{
			{Meta: remote.MetaRef{ID: "f-sup"}, Value: "bp-2"},
			{Meta: remote.MetaRef{ID: "f-km"}, Value: "0.9"},
		},
	}}, store.updates[0])
	assert.Equal(t, []string{"meta-1"}, store.schemaIDs)
	assert.Equal(t, [][]remote.UdfValue{{
		{Meta: remote.MetaRef{ID: "f-sup"}, Value: "bp-1"},
		{Meta: remote.MetaRef{ID: "f-km"}, Value: "1.1"},
	}}, store.creates)
	assert.Empty(t, store.deletes)

	views, err := svc.Runs(ctx, EntityPriceListKm, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, result.RunID, views[0].ID)
	assert.Equal(t, "km.xlsx", views[0].Source)
	assert.Equal(t, key, views[0].ArchiveKey)
	assert.Equal(t, s.FailedRows, views[0].FailedRows)
}

func TestService_ImportDryRun(t *testing.T) {
	ctx := context.Background()
	store := seededKmStore()
	runs := setupHistory(t)

	// No expectations: archiving a dry run would fail the mock
	client := new(mocks.Client)
	svc := newTestService(store, storage.NewArchive(client, "wb"), runs)

	result, err := svc.Import(ctx, ImportRequest{
		Entity:  EntityPriceListKm,
		Data:    kmWorkbook(t),
		DryRun:  true,
		Archive: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Summary.DryRun)
	assert.Equal(t, 1, result.Summary.Created)
	assert.Empty(t, result.ArchiveKey)
	assert.Empty(t, store.updates)
	assert.Empty(t, store.creates)

	views, err := svc.Runs(ctx, EntityPriceListKm, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].DryRun)
}

func TestService_ImportConfirmDeclined(t *testing.T) {
	ctx := context.Background()
	store := seededKmStore()
	runs := setupHistory(t)

	// No expectations: archiving a declined workbook would fail the mock
	client := new(mocks.Client)
	svc := newTestService(store, storage.NewArchive(client, "wb"), runs)

	var asked *reconcile.Plan
	result, err := svc.Import(ctx, ImportRequest{
		Entity:  EntityPriceListKm,
		Data:    kmWorkbook(t),
		Source:  "km.xlsx",
		Archive: true,
		Confirm: func(p *reconcile.Plan) bool {
			asked = p
			return false
		},
	})
	require.NoError(t, err)

	require.NotNil(t, asked)
	assert.Len(t, asked.ToUpdate, 1)
	assert.True(t, result.Summary.Aborted)
	assert.Empty(t, result.RunID)
	assert.Empty(t, result.ArchiveKey)
	assert.Empty(t, store.updates)

	views, err := svc.Runs(ctx, EntityPriceListKm, 0)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestService_ImportInvalidWorkbookIsNotArchived(t *testing.T) {
	ctx := context.Background()
	runs := setupHistory(t)
	client := new(mocks.Client)
	svc := newTestService(seededKmStore(), storage.NewArchive(client, "wb"), runs)

	result, err := svc.Import(ctx, ImportRequest{
		Entity:  EntityPriceListKm,
		Data:    []byte("not a spreadsheet"),
		Archive: true,
	})
	assert.ErrorIs(t, err, workbook.ErrInvalidWorkbook)
	assert.Nil(t, result)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	views, err := svc.Runs(ctx, EntityPriceListKm, 0)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestService_ImportBulkFailure(t *testing.T) {
	ctx := context.Background()
	store := seededKmStore()
	store.updateErr = &remote.StatusError{Method: "PATCH", Path: "/api/data/v4/UdoValue/bulk", StatusCode: 422, Body: "bad value"}
	runs := setupHistory(t)
	svc := newTestService(store, nil, runs)

	result, err := svc.Import(ctx, ImportRequest{Entity: EntityPriceListKm, Data: kmWorkbook(t)})

	var bulkErr *reconcile.BulkOperationError
	require.ErrorAs(t, err, &bulkErr)
	assert.Equal(t, reconcile.PhaseUpdate, bulkErr.Phase)
	assert.Equal(t, 422, bulkErr.Status)

	require.NotNil(t, result)
	assert.Equal(t, 0, result.Summary.Updated)
	assert.Equal(t, 1, result.Summary.Created)
	assert.NotEmpty(t, result.RunID)

	views, err := svc.Runs(ctx, EntityPriceListKm, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Errors, 1)
	assert.Equal(t, reconcile.PhaseUpdate, views[0].Errors[0].Phase)
}

func TestService_ImportErrors(t *testing.T) {
	t.Run("unknown entity", func(t *testing.T) {
		svc := newTestService(newMemStore(), nil, nil)
		_, err := svc.Import(context.Background(), ImportRequest{Entity: "nope", Data: kmWorkbook(t)})
		assert.ErrorIs(t, err, reconcile.ErrUnknownEntity)
	})

	t.Run("query failure aborts before any mutation", func(t *testing.T) {
		store := seededKmStore()
		store.queryErr[PriceListKm().Current.Statement] = &remote.StatusError{StatusCode: 503}
		svc := newTestService(store, nil, setupHistory(t))

		result, err := svc.Import(context.Background(), ImportRequest{Entity: EntityPriceListKm, Data: kmWorkbook(t)})

		var queryErr *reconcile.QueryError
		assert.ErrorAs(t, err, &queryErr)
		assert.Nil(t, result)
		assert.Empty(t, store.updates)
		assert.Empty(t, store.creates)
		assert.Empty(t, store.deletes)
	})

	t.Run("archive failure does not block the import", func(t *testing.T) {
		store := seededKmStore()
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "wb", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("bucket gone"))
		svc := newTestService(store, storage.NewArchive(client, "wb"), nil)

		result, err := svc.Import(context.Background(), ImportRequest{Entity: EntityPriceListKm, Data: kmWorkbook(t), Archive: true})
		require.NoError(t, err)
		assert.Empty(t, result.ArchiveKey)
		assert.Len(t, store.updates, 1)
	})
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("archived", func(t *testing.T) {
		key := storage.ObjectKey(EntityPriceListKm, storage.KindExport, fixedNow)
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "wb", key, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{Key: key}, nil)
		svc := newTestService(seededKmStore(), storage.NewArchive(client, "wb"), nil)

		result, err := svc.Export(ctx, EntityPriceListKm, true)
		require.NoError(t, err)
		client.AssertExpectations(t)

		assert.Equal(t, "cennik-km.xlsx", result.FileName)
		assert.Equal(t, key, result.ArchiveKey)

		wb, err := workbook.Parse(bytes.NewReader(result.Data))
		require.NoError(t, err)
		require.Len(t, wb.Sheets, 1)
		assert.Equal(t, "Cennik (km)", wb.Sheets[0].Name)
		require.Len(t, wb.Sheets[0].Rows, 3)
		assert.Equal(t, []string{"ID", "Dodávateľ", "Cena za km"}, wb.Sheets[0].Rows[0].Cells)
		assert.Equal(t, []string{"r2", "Beta", "0.7"}, wb.Sheets[0].Rows[2].Cells)
	})

	t.Run("archive disabled", func(t *testing.T) {
		_, err := newTestService(seededKmStore(), nil, nil).Export(ctx, EntityPriceListKm, true)
		assert.ErrorIs(t, err, ErrArchiveDisabled)
	})

	t.Run("export feeds back as a no-op import", func(t *testing.T) {
		store := seededKmStore()
		svc := newTestService(store, nil, nil)

		exported, err := svc.Export(ctx, EntityPriceListKm, false)
		require.NoError(t, err)

		result, err := svc.Import(ctx, ImportRequest{Entity: EntityPriceListKm, Data: exported.Data})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Unchanged)
		assert.Empty(t, store.updates)
		assert.Empty(t, store.creates)
		assert.Empty(t, store.deletes)
	})
}

func TestService_Archived(t *testing.T) {
	ctx := context.Background()
	older := "price-list-km/imports/20260101T000000.000Z.xlsx"
	newer := "price-list-km/imports/20260301T000000.000Z.xlsx"

	newClient := func() *mocks.Client {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: newer}
		ch <- minio.ObjectInfo{Key: older}
		close(ch)
		client.On("ListObjects", mock.Anything, "wb", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))
		client.On("GetObject", mock.Anything, "wb", mock.Anything, mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte("xlsx"))), nil)
		return client
	}

	t.Run("latest", func(t *testing.T) {
		svc := newTestService(newMemStore(), storage.NewArchive(newClient(), "wb"), nil)
		data, key, err := svc.Archived(ctx, EntityPriceListKm, LatestKey)
		require.NoError(t, err)
		assert.Equal(t, newer, key)
		assert.Equal(t, "xlsx", string(data))
	})

	t.Run("explicit key", func(t *testing.T) {
		client := newClient()
		svc := newTestService(newMemStore(), storage.NewArchive(client, "wb"), nil)
		_, key, err := svc.Archived(ctx, EntityPriceListKm, older)
		require.NoError(t, err)
		assert.Equal(t, older, key)
		client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing key maps to not found", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "wb", "price-list-km/imports/gone.xlsx", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})
		svc := newTestService(newMemStore(), storage.NewArchive(client, "wb"), nil)

		_, _, err := svc.Archived(ctx, EntityPriceListKm, "price-list-km/imports/gone.xlsx")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Equal(t, fiber.StatusNotFound, statusOf(err))
	})

	t.Run("disabled", func(t *testing.T) {
		_, _, err := newTestService(newMemStore(), nil, nil).Archived(ctx, EntityPriceListKm, LatestKey)
		assert.ErrorIs(t, err, ErrArchiveDisabled)
	})
}

func TestService_RunsDisabled(t *testing.T) {
	_, err := newTestService(newMemStore(), nil, nil).Runs(context.Background(), EntityPriceList, 0)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}
