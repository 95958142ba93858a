package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/desertthunder/invsync/internal/formatter"
	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/retry"
	"github.com/desertthunder/invsync/internal/services"
	"github.com/desertthunder/invsync/internal/shared"
	"github.com/desertthunder/invsync/internal/source"
	"github.com/desertthunder/invsync/internal/tracing"
)

// SourceReader produces the local logical state.
type SourceReader interface {
	Dir() string
	Read(ctx context.Context) (*source.Result, error)
}

// SnapshotStore persists the last synced state between runs.
type SnapshotStore interface {
	Load() (*models.Snapshot, error)
	Commit(snap *models.Snapshot) error
}

// ExportFunc writes state to path for an out-of-band import.
type ExportFunc func(state models.LogicalState, path string) error

// EngineOptions holds the dependencies of an [Engine]. Client may be nil in dry-run and no-sync
// modes.
type EngineOptions struct {
	Config     models.RunConfig
	Reader     SourceReader
	Store      SnapshotStore
	Client     services.Client
	Policy     retry.Policy
	Tracer     *tracing.Tracer
	Hooks      Hooks
	Logger     *log.Logger
	ExportPath string     // no-sync only; empty disables the export
	Export     ExportFunc // defaults to [formatter.WriteInvidiousExport]
	Now        func() time.Time
}

// Engine runs one read, diff, reconcile and commit cycle per call to [Engine.Run].
type Engine struct {
	cfg        models.RunConfig
	reader     SourceReader
	store      SnapshotStore
	client     services.Client
	policy     retry.Policy
	tracer     *tracing.Tracer
	hooks      Hooks
	logger     *log.Logger
	exportPath string
	export     ExportFunc
	now        func() time.Time
}

// NewEngine creates an Engine. The run configuration is fixed for its lifetime.
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		cfg:        opts.Config,
		reader:     opts.Reader,
		store:      opts.Store,
		client:     opts.Client,
		policy:     opts.Policy,
		tracer:     opts.Tracer,
		hooks:      opts.Hooks,
		logger:     opts.Logger,
		exportPath: opts.ExportPath,
		export:     opts.Export,
		now:        opts.Now,
	}
	if e.tracer == nil {
		e.tracer = tracing.Noop()
	}
	if e.logger == nil {
		e.logger = shared.DiscardLogger()
	}
	if e.export == nil {
		e.export = formatter.WriteInvidiousExport
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.policy.Logger == nil {
		e.policy.Logger = e.logger
	}
	return e
}

// Config returns the run configuration.
func (e *Engine) Config() models.RunConfig {
	return e.cfg
}

// Run executes one cycle.
//
// Only a missing token in sync mode and an unreadable source abort the run with an error. Every
// other failure is recorded in the returned result, in which case the snapshot is left untouched
// and the same changes are computed again next time.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.RunResult, error) {
	if e.cfg.RequiresToken() && e.cfg.Token == "" {
		return nil, fmt.Errorf("%w: an instance token is required to sync (use --dry-run or --no-sync without one)", shared.ErrMissingCredentials)
	}
	if e.cfg.Mode() == models.ModeSync && e.client == nil {
		return nil, fmt.Errorf("%w: no remote client configured", shared.ErrMissingCredentials)
	}

	result := &models.RunResult{
		RunID:     shared.GenerateID(),
		Mode:      e.cfg.Mode(),
		Errors:    []models.OperationError{},
		StartedAt: e.now(),
	}
	logger := shared.WithLogger(e.logger, "run_id", result.RunID)

	ctx, span := e.tracer.StartRunSpan(ctx, result.RunID, result.Mode)

	hc := HookContext{RunID: result.RunID, Config: e.cfg}
	hc.Config.Token = ""

	e.hooks.fire(ctx, logger, BeforeRead, hc)

	sendProgress(progress, readSourceUpdate(e.reader.Dir()))
	src, err := e.reader.Read(ctx)
	if err != nil {
		span.EndWithError(err)
		return nil, err
	}

	sendProgress(progress, loadSnapshotUpdate())
	previous, err := e.store.Load()
	if err != nil {
		logger.Warn("previous snapshot unusable, diffing against an empty one", "err", err)
	}
	if previous == nil {
		previous = models.EmptySnapshot()
	}

	state := effectiveState(src.State, previous, e.cfg)
	delta := Diff(state, previous)
	result.Delta = delta
	hc.Delta = delta
	span.SetDelta(delta)
	sendProgress(progress, diffUpdate(delta))
	logger.Info("computed delta", "mode", result.Mode, "changes", delta.Count(), "skipped_records", len(src.Skipped))

	switch result.Mode {
	case models.ModeDryRun:
		result.FinishedAt = e.now()
		span.End(result)
		return result, nil
	case models.ModeNoSync:
		if e.exportPath != "" {
			if err := e.export(state, e.exportPath); err != nil {
				result.AddError(models.OperationError{Op: OpExport, Target: e.exportPath, Attempts: 1, Err: err})
			} else {
				logger.Info("wrote invidious export", "path", e.exportPath)
			}
		}
	case models.ModeSync:
		if !delta.IsEmpty() {
			e.hooks.fire(ctx, logger, BeforeRemote, hc)
			NewReconciler(e.client, e.policy, e.tracer, logger, progress).Reconcile(ctx, delta, result)
		}
	}

	if !result.Failed() {
		e.commit(ctx, state, result, logger)
	}
	sendProgress(progress, commitUpdate(result.Committed))

	result.FinishedAt = e.now()
	if result.Committed {
		logger.Info("run complete, snapshot committed", "changes", delta.Count())
	} else {
		logger.Warn("run finished with errors, snapshot not updated", "errors", len(result.Errors))
	}

	hc.Result = result
	e.hooks.fire(ctx, logger, AfterCommit, hc)

	span.End(result)
	return result, nil
}

func (e *Engine) commit(ctx context.Context, state models.LogicalState, result *models.RunResult, logger *log.Logger) {
	if err := e.store.Commit(models.NewSnapshot(state)); err != nil {
		logger.Error("snapshot commit failed", "err", err)
		result.AddError(models.OperationError{Op: OpCommitSnapshot, Attempts: 1, Err: err})
		return
	}
	result.Committed = true
	tracing.AddEvent(ctx, "snapshot.committed",
		attribute.Int("snapshot.history", len(state.WatchHistory)),
		attribute.Int("snapshot.subscriptions", len(state.Subscriptions)),
		attribute.Int("snapshot.playlists", len(state.Playlists)),
	)
}
