package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/formatter"
	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/snapshot"
)

// SnapshotShow summarizes the last synced state.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	store := snapshot.NewStore(r.config.Snapshot.Path, r.logger)

	snap := models.EmptySnapshot()
	if store.Exists() {
		var err error
		if snap, err = store.Load(); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap, true)
	}

	if !store.Exists() {
		return r.writePlain("No snapshot at %s; the next sync pushes the full local state.\n", store.Path())
	}
	r.writePlain("Snapshot: %s\n", store.Path())
	return r.writePlain("%s", formatter.StateSummary(snap.State(), 0))
}

// SnapshotReset removes the snapshot under the run lock.
func (r *Runner) SnapshotReset(ctx context.Context, cmd *cli.Command) error {
	lock := snapshot.NewFileLock(r.config.Snapshot.Path)
	if err := lock.Lock(ctx, 0); err != nil {
		return err
	}
	defer lock.Unlock()

	store := snapshot.NewStore(r.config.Snapshot.Path, r.logger)
	if err := store.Reset(); err != nil {
		return err
	}

	r.logger.Info("snapshot removed", "path", store.Path())
	return r.writePlain("✓ Snapshot reset; the next sync pushes the full local state\n")
}
