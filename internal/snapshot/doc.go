// package snapshot persists the last successfully-synced state.
//
// The store is a single JSON document. Writes go to a temporary file in the same directory that
// is synced and renamed over the target, so a crash never leaves a torn snapshot. An unreadable
// or corrupt file loads as an empty snapshot: the next run then re-pushes everything, which the
// remote operations tolerate.
package snapshot
