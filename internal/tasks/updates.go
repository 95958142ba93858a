package tasks

import (
	"fmt"

	"github.com/desertthunder/invsync/internal/models"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ReadSource Phase = iota
	LoadSnapshot
	ComputeDiff
	PushHistory
	PushSubscriptions
	PushPlaylists
	RemoveHistory
	RemoveSubscriptions
	RemovePlaylists
	CommitSnapshot
)

func (p Phase) String() string {
	switch p {
	case ReadSource:
		return "read_source"
	case LoadSnapshot:
		return "load_snapshot"
	case ComputeDiff:
		return "compute_diff"
	case PushHistory:
		return "push_history"
	case PushSubscriptions:
		return "push_subscriptions"
	case PushPlaylists:
		return "push_playlists"
	case RemoveHistory:
		return "remove_history"
	case RemoveSubscriptions:
		return "remove_subscriptions"
	case RemovePlaylists:
		return "remove_playlists"
	case CommitSnapshot:
		return "commit_snapshot"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func readSourceUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading FreeTube data from %s...", dir),
	}
}

func loadSnapshotUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSnapshot,
		Step:    1,
		Total:   1,
		Message: "Loading last synced snapshot...",
	}
}

func diffUpdate(delta models.Delta) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeDiff,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d change(s) to apply", delta.Count()),
		Data:    delta.Clone(),
	}
}

func itemUpdate(phase Phase, step, total int, item string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, item),
	}
}

func itemFailedUpdate(phase Phase, step, total int, item string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, item, err),
	}
}

func commitUpdate(committed bool) ProgressUpdate {
	msg := "Snapshot NOT updated"
	if committed {
		msg = "Snapshot committed"
	}
	return ProgressUpdate{Phase: CommitSnapshot, Step: 1, Total: 1, Message: msg}
}
