package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncRun is the journal record of one finished run.
type SyncRun struct {
	id         string
	sequence   int
	mode       Mode
	startedAt  time.Time
	finishedAt time.Time
	committed  bool
	counts     RunCounts
	errorCount int
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// RunCounts are the per-category delta sizes of a run.
type RunCounts struct {
	AddedHistory         int `json:"added_history"`
	RemovedHistory       int `json:"removed_history"`
	AddedSubscriptions   int `json:"added_subscriptions"`
	RemovedSubscriptions int `json:"removed_subscriptions"`
	AddedPlaylists       int `json:"added_playlists"`
	RemovedPlaylists     int `json:"removed_playlists"`
}

// CountsOf summarizes a [Delta].
func CountsOf(d Delta) RunCounts {
	return RunCounts{
		AddedHistory:         len(d.AddedHistory),
		RemovedHistory:       len(d.RemovedHistory),
		AddedSubscriptions:   len(d.AddedSubscriptions),
		RemovedSubscriptions: len(d.RemovedSubscriptions),
		AddedPlaylists:       len(d.AddedPlaylists),
		RemovedPlaylists:     len(d.RemovedPlaylists),
	}
}

// NewSyncRun creates a SyncRun with timestamps set to now.
func NewSyncRun(sequence int, mode Mode, startedAt, finishedAt time.Time) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:   sequence,
		mode:       mode,
		startedAt:  startedAt,
		finishedAt: finishedAt,
		createdAt:  now,
		updatedAt:  now,
	}
}

// SyncRunFromResult builds the journal record for a finished [RunResult].
//
// The run id of the result is kept so the journal and the logs agree.
func SyncRunFromResult(r *RunResult) *SyncRun {
	run := NewSyncRun(0, r.Mode, r.StartedAt, r.FinishedAt)
	run.id = r.RunID
	run.committed = r.Committed
	run.counts = CountsOf(r.Delta)
	run.errorCount = len(r.Errors)
	return run
}

func (s *SyncRun) ID() string { return s.id }
func (s *SyncRun) Sequence() int { return s.sequence }
func (s *SyncRun) Mode() Mode { return s.mode }
func (s *SyncRun) StartedAt() time.Time { return s.startedAt }
func (s *SyncRun) FinishedAt() time.Time { return s.finishedAt }
func (s *SyncRun) Committed() bool { return s.committed }
func (s *SyncRun) Counts() RunCounts { return s.counts }
func (s *SyncRun) ErrorCount() int { return s.errorCount }
func (s *SyncRun) CreatedAt() time.Time { return s.createdAt }
func (s *SyncRun) UpdatedAt() time.Time { return s.updatedAt }
func (s *SyncRun) DeletedAt() *time.Time { return s.deletedAt }

// Duration is the wall time of the run.
func (s *SyncRun) Duration() time.Duration {
	if s.finishedAt.IsZero() {
		return 0
	}
	return s.finishedAt.Sub(s.startedAt)
}

func (s *SyncRun) SetID(id string) { s.id = id }
func (s *SyncRun) SetSequence(n int) { s.sequence = n }
func (s *SyncRun) SetCommitted(c bool) { s.committed = c }
func (s *SyncRun) SetCounts(c RunCounts) { s.counts = c }
func (s *SyncRun) SetErrorCount(n int) { s.errorCount = n }
func (s *SyncRun) SetFinishedAt(t time.Time) { s.finishedAt = t }
func (s *SyncRun) SetCreatedAt(t time.Time) { s.createdAt = t }
func (s *SyncRun) SetUpdatedAt(t time.Time) { s.updatedAt = t }
func (s *SyncRun) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// MarshalJSON exposes the journal record to `runs --json`.
func (s *SyncRun) MarshalJSON() ([]byte, error) {
	var finished *time.Time
	if !s.finishedAt.IsZero() {
		finished = &s.finishedAt
	}
	return json.Marshal(struct {
		ID         string     `json:"id"`
		Sequence   int        `json:"sequence"`
		Mode       Mode       `json:"mode"`
		StartedAt  time.Time  `json:"started_at"`
		FinishedAt *time.Time `json:"finished_at,omitempty"`
		Committed  bool       `json:"committed"`
		Counts     RunCounts  `json:"counts"`
		ErrorCount int        `json:"error_count"`
	}{s.id, s.sequence, s.mode, s.startedAt, finished, s.committed, s.counts, s.errorCount})
}

// Validate checks that the record is complete enough to persist.
func (s *SyncRun) Validate() error {
	if s.id == "" {
		return fmt.Errorf("sync run id is required")
	}
	switch s.mode {
	case ModeSync, ModeDryRun, ModeNoSync:
	default:
		return fmt.Errorf("invalid mode %q", s.mode)
	}
	if s.startedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}
	if !s.finishedAt.IsZero() && s.finishedAt.Before(s.startedAt) {
		return fmt.Errorf("finished_at precedes started_at")
	}
	if s.errorCount < 0 {
		return fmt.Errorf("error count cannot be negative")
	}
	return nil
}

// RunErrorRecord is a persisted [OperationError].
type RunErrorRecord struct {
	RunID    string `json:"run_id"`
	Op       string `json:"op"`
	Target   string `json:"target,omitempty"`
	Attempts int    `json:"attempts"`
	Message  string `json:"message"`
}

// ErrorRecords converts the errors of a result for persistence.
func ErrorRecords(r *RunResult) []RunErrorRecord {
	out := make([]RunErrorRecord, 0, len(r.Errors))
	for _, e := range r.Errors {
		msg := ""
		if e.Err != nil {
			msg = e.Err.Error()
		}
		out = append(out, RunErrorRecord{RunID: r.RunID, Op: e.Op, Target: e.Target, Attempts: e.Attempts, Message: msg})
	}
	return out
}
