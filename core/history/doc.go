// Package history keeps an audit trail of sync runs in the history database.
//
// Every sync, dry runs included, is stored as a Run row in sync_runs with its
// counts, the failed rows per sheet and the rejected bulk phases. Failure
// details are stored as JSON text and decoded again by Run.View.
//
// Prepare either migrates the table (database.auto_migrate) or, for schemas
// managed outside the tool, verifies that every column exists.
package history
