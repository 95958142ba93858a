package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/formatter"
	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
	"github.com/desertthunder/invsync/internal/snapshot"
	"github.com/desertthunder/invsync/internal/source"
)

// Sync runs one cycle and prints the report.
//
// Runs that may commit hold the snapshot lock for their whole duration, so a second invocation
// against the same snapshot fails fast instead of computing a stale delta.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	rc := r.runConfig(cmd)

	exportPath := r.config.Sync.ExportPath
	if cmd.IsSet("export") {
		if !rc.NoSync {
			return fmt.Errorf("%w: --export requires --no-sync", shared.ErrInvalidArgument)
		}
		var err error
		if exportPath, err = shared.ExpandPath(cmd.String("export")); err != nil {
			return err
		}
	}

	if !rc.DryRun {
		lock := snapshot.NewFileLock(r.config.Snapshot.Path)
		if err := lock.Lock(ctx, 0); err != nil {
			return err
		}
		defer lock.Unlock()
	}

	r.logger.Info("starting run", "mode", rc.Mode(), "instance", rc.InstanceURL)

	result, err := r.execute(ctx, rc, exportPath, true)
	if err != nil {
		return err
	}
	if rc.Mode() != models.ModeDryRun {
		r.journal(result)
	}

	if cmd.Bool("json") {
		err = r.writeJSON(result, true)
	} else {
		err = r.writePlain("%s", formatter.RunReport(result, r.palette))
	}
	if err != nil {
		return err
	}

	if result.Failed() {
		return fmt.Errorf("%w: %d operation(s) failed", errRunFailed, len(result.Errors))
	}
	return nil
}

// Diff prints what the next sync would push, without touching the instance or the snapshot.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") && cmd.Bool("markdown") {
		return fmt.Errorf("%w: cannot specify both --json and --markdown", shared.ErrInvalidArgument)
	}

	rc := r.runConfig(cmd)
	rc.DryRun = true

	result, err := r.execute(ctx, rc, "", false)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(result.Delta, true)
	case cmd.Bool("markdown"):
		return r.writePlain("%s", formatter.DeltaMarkdown(result.Delta))
	default:
		return r.writePlain("%s", formatter.DeltaText(result.Delta))
	}
}

type stateView struct {
	State   models.LogicalState `json:"state"`
	Skipped []string            `json:"skipped"`
}

// State reads the FreeTube data directory and summarizes it.
func (r *Runner) State(ctx context.Context, cmd *cli.Command) error {
	if r.config.Source.Directory == "" {
		return fmt.Errorf("%w: source.directory is required", shared.ErrInvalidConfig)
	}

	res, err := source.NewReader(r.config.Source.Directory, r.logger).Read(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		view := stateView{State: res.State, Skipped: make([]string, 0, len(res.Skipped))}
		for _, pe := range res.Skipped {
			view.Skipped = append(view.Skipped, pe.Error())
		}
		return r.writeJSON(view, true)
	}

	r.writePlain("Source: %s\n", r.config.Source.Directory)
	return r.writePlain("%s", formatter.StateSummary(res.State, len(res.Skipped)))
}
