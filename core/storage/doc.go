// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so storage
// interactions can be mocked in unit tests (see core/storage/mocks). This
// works against both AWS S3 and self-hosted MinIO instances.
//
// # Archive
//
// Archive keeps a copy of every imported and exported workbook, keyed by
// entity, kind and UTC timestamp:
//
//	price-list/imports/20260304T040607.008Z.xlsx
//
// Timestamps sort lexically, so Latest picks the newest key of a listing.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	archive := storage.NewArchive(client, cfg.Storage.Bucket)
//	err = archive.EnsureBucket(ctx)
//	err = archive.Put(ctx, storage.ObjectKey("price-list", storage.KindImport, time.Now()), data)
package storage
