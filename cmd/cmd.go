// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.3.0"

func init() {
	// -v is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

// command builds the root command. Global flags are inherited by every subcommand.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "invsync",
		Usage:   "Sync FreeTube history, subscriptions and playlists to an Invidious account",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Debug logging and lifecycle hook logs",
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

// selectionFlags narrow a run to some categories.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-history",
			Usage: "Leave watch history alone",
		},
		&cli.BoolFlag{
			Name:  "skip-subscriptions",
			Usage: "Leave subscriptions alone",
		},
		&cli.BoolFlag{
			Name:  "skip-playlists",
			Usage: "Leave playlists alone",
		},
	}
}

// syncCommand runs the full read, diff, reconcile and commit cycle
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Push local changes since the last successful run to the instance",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Compute and print the changes without touching the instance or the snapshot",
			},
			&cli.BoolFlag{
				Name:  "no-sync",
				Usage: "Record the local state as synced without contacting the instance",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "With --no-sync, also write the state as an Invidious import file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run result as JSON",
			},
		}, selectionFlags()...),
		Action: r.Sync,
	}
}

// diffCommand prints the pending changes
func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Show the changes the next sync would push",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the delta as JSON",
			},
			&cli.BoolFlag{
				Name:    "markdown",
				Aliases: []string{"md"},
				Usage:   "Output the delta as Markdown",
			},
		}, selectionFlags()...),
		Action: r.Diff,
	}
}

// stateCommand summarizes the local FreeTube records
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Summarize the local FreeTube state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the state as JSON",
			},
		},
		Action: r.State,
	}
}

// snapshotCommand inspects or resets the last synced state
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Inspect or reset the last synced state",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Summarize the snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the raw snapshot",
					},
				},
				Action: r.SnapshotShow,
			},
			{
				Name:   "reset",
				Usage:  "Remove the snapshot so the next sync pushes everything",
				Action: r.SnapshotReset,
			},
		},
	}
}

// runsCommand reads the run journal
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Browse the run journal",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run and its errors, by id or sequence number",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsShow,
			},
		},
	}
}

// setupCommand writes the config file and prepares the run journal.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the run journal",
		Action: r.Setup,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated calls to the Invidious API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE, e.g. to drop a playlist left behind by an aborted run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check that the configured token is accepted by the instance",
				Action: r.AuthStatus,
			},
		},
	}
}
