// Package reconcile synchronizes a spreadsheet of records with a remote record store.
//
// A sync run follows one sequential flow:
//
//  1. ResolveLookups builds a display name to id map for every foreign-key column.
//  2. FetchAll pages through the authoritative current set.
//  3. Extract turns the uploaded workbook into records with sheet and row provenance.
//  4. Classify computes creates, updates and removals and sets aside rows whose
//     foreign keys do not resolve.
//  5. Executor.Apply sends one bulk update, create and delete request.
//  6. Summarize produces the operator report.
//
// Entity kinds are plain configuration: an Entity bundles the ordered Columns,
// the current-set query, the schema query and the target collection, so every
// kind shares this engine.
//
// # Duplicate ids
//
// When the workbook holds the same id more than once the last row wins. The
// replaced rows are returned in Plan.Superseded and listed in the summary.
// Rows without an id are new records and are never deduplicated.
//
// # Partial failure
//
// The three bulk phases are independent. Each runs regardless of the others,
// nothing is rolled back, and every rejected phase is reported as a
// *BulkOperationError. Query failures abort the run before any mutation.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(client, cfg.Remote.PageSize, logger)
//	summary, err := engine.Sync(ctx, entity, data, reconcile.Options{DryRun: true})
//	fmt.Println(summary)
package reconcile
