// Package records declares the entity kinds kept in sync with the remote
// record store and exposes them over HTTP.
//
// # Entities
//
//   - price-list: supplier prices per service call type and location,
//     exported with one sheet per supplier.
//   - price-list-km: supplier rate per kilometre.
//   - authorization-supplier: supplier master and partner passwords.
//
// Foreign-key columns (supplier, service call type) carry display names in
// the workbook and are resolved to ids before anything is sent.
//
// # Routes
//
//   - GET  /records                  entity kinds and their columns
//   - POST /records/:entity/import   multipart "file", optional "dry_run"
//   - GET  /records/:entity/export   xlsx download, "archive=true" keeps a copy
//   - GET  /records/:entity/runs     recorded sync runs, newest first
//
// The Service is shared with the CLI. Its archive and run history are
// optional and the related operations fail with ErrArchiveDisabled or
// ErrHistoryDisabled when they are not configured.
package records
