// Package tasks runs a sync cycle: read the FreeTube stores, diff them against the last committed
// snapshot, apply the difference to an Invidious account and commit the new snapshot.
//
// # Run
//
// [Engine.Run] executes the cycle once for a fixed [models.RunConfig]:
//
//  1. Fire [BeforeRead] hooks and read the source directory. An unreadable store aborts the run.
//  2. Load the previous snapshot. A missing or corrupt one is treated as empty.
//  3. Compute the [models.Delta] with [Diff]. Skipped categories keep their previous value.
//  4. Depending on the mode:
//     - dry-run: stop here, nothing is written anywhere
//     - no-sync: optionally write an Invidious import file, then commit
//     - sync: fire [BeforeRemote] hooks and apply the delta with a [Reconciler]
//  5. Commit the snapshot if no operation failed, then fire [AfterCommit] hooks.
//
// # Reconciliation
//
// The [Reconciler] applies categories in a fixed order: added history, added subscriptions, added
// playlists, removed history, removed subscriptions, removed playlists. Each remote call goes
// through a [retry.Policy]. Failures are recorded in the run result and never stop later
// operations.
//
// # Progress Reporting
//
// Progress is reported as [ProgressUpdate] values on an optional channel. Sends never block; a
// full channel drops the update.
package tasks
