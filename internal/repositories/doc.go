// Package repositories implements SQLite persistence for the run journal.
//
// [RunRepository] records every finished sync or no-sync run in sync_runs, with the operation
// errors of the run in sync_run_errors. Runs support soft deletes via deleted_at timestamps and
// deleted records are excluded from queries by default.
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and
// timestamps. The [NextSequence] function atomically increments per-table sequence counters in
// dedicated sequence tables.
package repositories
