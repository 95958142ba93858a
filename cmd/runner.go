package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/formatter"
	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/repositories"
	"github.com/desertthunder/invsync/internal/retry"
	"github.com/desertthunder/invsync/internal/services"
	"github.com/desertthunder/invsync/internal/shared"
	"github.com/desertthunder/invsync/internal/snapshot"
	"github.com/desertthunder/invsync/internal/source"
	"github.com/desertthunder/invsync/internal/tasks"
	"github.com/desertthunder/invsync/internal/tracing"
)

// errRunFailed marks a run that finished but recorded operation errors.
var errRunFailed = errors.New("run finished with errors")

const progressBuffer = 50

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	verbose    bool
	logger     *log.Logger
	output     io.Writer
	errOutput  io.Writer
	palette    *formatter.Palette
	transport  http.RoundTripper
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	ErrOutput io.Writer // progress lines and span output
	Palette   *formatter.Palette
	Transport http.RoundTripper // base transport of the Invidious client
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Palette == nil {
		opts.Palette = formatter.DefaultPalette()
	}

	return &Runner{
		config:    opts.Config,
		logger:    opts.Logger,
		output:    opts.Output,
		errOutput: opts.ErrOutput,
		palette:   opts.Palette,
		transport: opts.Transport,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, diffCommand, stateCommand, snapshotCommand, runsCommand, setupCommand, apiCommand, authCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the config file named by --config, overlays the environment and sets the log
// level. A missing file leaves the defaults in place so `setup` can create it.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")
	r.verbose = cmd.Bool("verbose")

	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := config.ApplyEnv(); err != nil {
		return ctx, err
	}
	if err := config.Resolve(); err != nil {
		return ctx, err
	}

	level, err := shared.ParseLogLevel(config.Logging.Level)
	if err != nil {
		return ctx, err
	}
	if r.verbose {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	r.config = config
	return ctx, nil
}

// runConfig derives the per-run configuration, letting explicitly set flags override the file.
func (r *Runner) runConfig(cmd *cli.Command) models.RunConfig {
	rc := r.config.RunConfig()
	for name, dst := range map[string]*bool{
		"skip-history":       &rc.SkipHistory,
		"skip-subscriptions": &rc.SkipSubscriptions,
		"skip-playlists":     &rc.SkipPlaylists,
		"dry-run":            &rc.DryRun,
		"no-sync":            &rc.NoSync,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}
	return rc
}

// client builds the Invidious client from the instance and client settings.
func (r *Runner) client() *services.InvidiousClient {
	opts := services.OptionsFromConfig(r.config, r.logger)
	opts.Transport = r.transport
	return services.NewInvidiousClient(opts)
}

// newEngine wires an engine for one run. The returned func flushes spans and must be called once
// the run is over.
func (r *Runner) newEngine(ctx context.Context, rc models.RunConfig, exportPath string) (*tasks.Engine, func(), error) {
	if err := r.config.Validate(rc.Mode()); err != nil {
		return nil, nil, err
	}

	hooks, err := tasks.NewExecHooks(r.config.Hooks, r.logger)
	if err != nil {
		return nil, nil, err
	}
	if r.verbose {
		hooks = append(tasks.Hooks{tasks.LogHook{Logger: r.logger}}, hooks...)
	}

	tc := tracing.FromConfig(r.config.Tracing)
	tc.Output = r.errOutput
	tracer, err := tracing.New(ctx, tc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start tracing: %w", err)
	}

	var client services.Client
	if rc.Mode() == models.ModeSync {
		client = r.client()
	}

	engine := tasks.NewEngine(tasks.EngineOptions{
		Config:     rc,
		Reader:     source.NewReader(r.config.Source.Directory, r.logger),
		Store:      snapshot.NewStore(r.config.Snapshot.Path, r.logger),
		Client:     client,
		Policy:     retry.FromConfig(r.config.Retry, r.logger),
		Tracer:     tracer,
		Hooks:      hooks,
		Logger:     r.logger,
		ExportPath: exportPath,
	})

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(sctx); err != nil {
			r.logger.Warn("failed to flush spans", "err", err)
		}
	}
	return engine, shutdown, nil
}

// execute runs the engine once. Progress lines go to the error output when showProgress is set.
func (r *Runner) execute(ctx context.Context, rc models.RunConfig, exportPath string, showProgress bool) (*models.RunResult, error) {
	engine, shutdown, err := r.newEngine(ctx, rc, exportPath)
	if err != nil {
		return nil, err
	}
	defer shutdown()

	if !showProgress {
		return engine.Run(ctx, nil)
	}

	progress := make(chan tasks.ProgressUpdate, progressBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			fmt.Fprintf(r.errOutput, "%-20s %s\n", update.Phase, update.Message)
		}
	}()

	result, err := engine.Run(ctx, progress)
	close(progress)
	<-done
	return result, err
}

// journal records a finished run. Failures are logged and never fail the command.
func (r *Runner) journal(result *models.RunResult) {
	if r.config.Database.Path == "" {
		return
	}
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		r.logger.Warn("run journal unavailable", "path", r.config.Database.Path, "err", err)
		return
	}
	defer db.Close()

	run, err := repositories.NewRunRepository(db).Record(result)
	if err != nil {
		r.logger.Warn("failed to record run", "run_id", result.RunID, "err", err)
		return
	}
	r.logger.Debug("run recorded", "run_id", run.ID(), "sequence", run.Sequence())
}

// openJournal opens the run journal for reading.
func (r *Runner) openJournal() (*repositories.RunRepository, func(), error) {
	if r.config.Database.Path == "" {
		return nil, nil, fmt.Errorf("%w: database.path is required for the run journal", shared.ErrInvalidConfig)
	}
	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	return repositories.NewRunRepository(db), func() { db.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
