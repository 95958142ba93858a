// Package models defines the domain entities of the invsync reconciliation engine.
//
// The package contains three categories of types:
//
// 1. Logical state: what the local FreeTube data says right now
//   - [LogicalState] : watch history, subscriptions and playlists
//   - [Playlist] : a playlist identified by its normalized title (see [NormalizeTitle])
//
// 2. Sync bookkeeping: what has already been pushed and what is left to push
//   - [Snapshot] : the last state confirmed on the remote instance
//   - [Delta] : per-category additions and removals between state and snapshot
//   - [RunResult] : the outcome of one run, including [OperationError] values
//   - [RunConfig] : immutable inputs for one run
//
// 3. Persistent entities: database-backed journal records
//   - [SyncRun] : one finished run with its counts and errors
//
// Persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
