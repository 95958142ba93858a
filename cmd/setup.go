package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/shared"
)

// Setup writes config.toml from the template when missing, then creates the run journal and
// applies its migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", r.configPath)

		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		if err := config.ApplyEnv(); err != nil {
			return err
		}
		if err := config.Resolve(); err != nil {
			return err
		}
		r.config = config
	}

	if err := os.MkdirAll(filepath.Dir(config.Snapshot.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	r.logger.Info("initializing run journal", "path", config.Database.Path)
	db, err := shared.OpenJournal(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize run journal: %w", err)
	}
	defer db.Close()
	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ invsync is set up\n")
	r.writePlain("Config:   %s\n", r.configPath)
	r.writePlain("Snapshot: %s\n", config.Snapshot.Path)
	r.writePlain("Journal:  %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set instance.url and source.directory in %s\n", r.configPath)
	r.writePlain("2. Export INVSYNC_INSTANCE_TOKEN with a token from the instance's token manager\n")
	r.writePlain("3. Run 'invsync auth status', then 'invsync diff' to preview the first sync\n")
	return nil
}
