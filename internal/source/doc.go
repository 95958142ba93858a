// package source reads FreeTube's local record stores into a [models.LogicalState].
//
// FreeTube keeps its data in NeDB files: newline-delimited JSON where an update appends a new
// line for the same _id and a removal appends a {"$$deleted":true} tombstone. The reader
// compacts each file the way NeDB does on load before extracting history, subscriptions and
// playlists. A malformed line is skipped and reported as a [ParseError]; a missing or unreadable
// file aborts the read with [shared.ErrSourceRead].
package source
