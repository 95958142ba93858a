package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mode is the way a run treats the remote instance and the snapshot.
type Mode string

const (
	ModeSync   Mode = "sync"    // push the delta, commit on success
	ModeDryRun Mode = "dry-run" // report only
	ModeNoSync Mode = "no-sync" // no remote calls, commit unconditionally
)

// RunConfig is the immutable input of a single run.
type RunConfig struct {
	Token             string `json:"-"`
	InstanceURL       string `json:"instance_url"`
	Insecure          bool   `json:"insecure"`
	SkipHistory       bool   `json:"skip_history"`
	SkipSubscriptions bool   `json:"skip_subscriptions"`
	SkipPlaylists     bool   `json:"skip_playlists"`
	DryRun            bool   `json:"dry_run"`
	NoSync            bool   `json:"no_sync"`
}

// Mode derives the run [Mode]. Dry-run wins over no-sync.
func (c RunConfig) Mode() Mode {
	switch {
	case c.DryRun:
		return ModeDryRun
	case c.NoSync:
		return ModeNoSync
	default:
		return ModeSync
	}
}

// RequiresToken reports whether the run will talk to the remote instance.
func (c RunConfig) RequiresToken() bool {
	return c.Mode() == ModeSync
}

// OperationError records a remote operation that failed for good in a run.
type OperationError struct {
	Op       string // Operation name, e.g. "subscribe"
	Target   string // Item the operation applied to (video id, channel id, playlist title)
	Attempts int    // Attempts made before giving up
	Err      error
}

func (e OperationError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", e.Op, e.Target, e.Attempts, e.Err)
}

func (e OperationError) Unwrap() error {
	return e.Err
}

// MarshalJSON encodes the error message as a string.
func (e OperationError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Op       string `json:"op"`
		Target   string `json:"target,omitempty"`
		Attempts int    `json:"attempts"`
		Error    string `json:"error"`
	}{e.Op, e.Target, e.Attempts, msg})
}

// ChannelRef is a subscribed channel with its display name when it could be resolved.
type ChannelRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// RunResult is the aggregated outcome of one run.
type RunResult struct {
	RunID      string           `json:"run_id"`
	Mode       Mode             `json:"mode"`
	Delta      Delta            `json:"delta"`
	Committed  bool             `json:"committed"`
	Errors     []OperationError `json:"errors"`
	Notes      []string         `json:"notes,omitempty"`
	Subscribed []ChannelRef     `json:"subscribed,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Failed reports whether any operation error was recorded.
func (r *RunResult) Failed() bool {
	return len(r.Errors) > 0
}

// AddError appends an operation error.
func (r *RunResult) AddError(e OperationError) {
	r.Errors = append(r.Errors, e)
}

// Note appends an informational, non-error message.
func (r *RunResult) Note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}
