package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/formatter"
	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
)

// RunsList prints the most recent journal entries.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openJournal()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := repo.List(map[string]any{"limit": int(cmd.Int("limit"))})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if runs == nil {
			runs = []*models.SyncRun{}
		}
		return r.writeJSON(runs, true)
	}
	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet.\n")
	}
	return r.writePlain("%s", formatter.RunsTable(runs))
}

// RunsShow prints one run with its errors. The argument is a run id or a sequence number.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id or sequence number", shared.ErrMissingArgument)
	}

	repo, closeDB, err := r.openJournal()
	if err != nil {
		return err
	}
	defer closeDB()

	var run *models.SyncRun
	if seq, convErr := strconv.Atoi(id); convErr == nil {
		run, err = repo.GetBySequence(seq)
	} else {
		run, err = repo.Get(id)
	}
	if err != nil {
		return err
	}

	errs, err := repo.ListErrors(run.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Run    *models.SyncRun         `json:"run"`
			Errors []models.RunErrorRecord `json:"errors"`
		}{run, errs}, true)
	}
	return r.writePlain("%s", formatter.RunDetail(run, errs))
}
