package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
)

// HookPoint is a place in a run where hooks fire.
type HookPoint string

const (
	BeforeRead   HookPoint = "before_read"   // before the local stores are read
	BeforeRemote HookPoint = "before_remote" // after the diff, before the first remote call
	AfterCommit  HookPoint = "after_commit"  // after the commit decision, whether or not it committed
)

// ParseHookPoint validates a configured point name.
func ParseHookPoint(s string) (HookPoint, error) {
	switch p := HookPoint(s); p {
	case BeforeRead, BeforeRemote, AfterCommit:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown hook point %q", shared.ErrInvalidConfig, s)
	}
}

// HookContext is the read-only view of a run handed to hooks.
type HookContext struct {
	RunID  string            `json:"run_id"`
	Config models.RunConfig  `json:"config"`
	Delta  models.Delta      `json:"delta"`
	Result *models.RunResult `json:"result,omitempty"` // set for after_commit only
}

// Hook is called at lifecycle points of a run. Errors and panics are logged and never abort the run.
type Hook interface {
	Name() string
	Run(ctx context.Context, point HookPoint, hc HookContext) error
}

// Hooks is an ordered hook list.
type Hooks []Hook

// fire runs every hook for point in order, isolating failures.
func (hs Hooks) fire(ctx context.Context, logger *log.Logger, point HookPoint, hc HookContext) {
	for _, h := range hs {
		hc := hc
		hc.Delta = hc.Delta.Clone()
		if hc.Result != nil {
			r := *hc.Result
			r.Delta = r.Delta.Clone()
			r.Errors = append([]models.OperationError(nil), r.Errors...)
			r.Notes = append([]string(nil), r.Notes...)
			hc.Result = &r
		}
		if err := runHook(ctx, h, point, hc); err != nil {
			logger.Warn("hook failed", "hook", h.Name(), "point", point, "err", err)
		}
	}
}

func runHook(ctx context.Context, h Hook, point HookPoint, hc HookContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Run(ctx, point, hc)
}

// LogHook logs each point with the delta counts.
type LogHook struct {
	Logger *log.Logger
}

func (h LogHook) Name() string { return "log" }

func (h LogHook) Run(_ context.Context, point HookPoint, hc HookContext) error {
	kv := []any{"point", point, "run_id", hc.RunID, "changes", hc.Delta.Count()}
	if hc.Result != nil {
		kv = append(kv, "committed", hc.Result.Committed, "errors", len(hc.Result.Errors))
	}
	h.Logger.Info("hook", kv...)
	return nil
}

const defaultHookTimeout = 30 * time.Second

// ExecHook runs an external command. The delta is written to its stdin as JSON and the run is
// described by INVSYNC_* environment variables.
type ExecHook struct {
	HookName string
	Command  []string
	Points   []HookPoint // empty means every point
	Timeout  time.Duration
	Logger   *log.Logger
}

// NewExecHooks builds hooks from the [[hooks]] config entries.
func NewExecHooks(cfgs []shared.HookConfig, logger *log.Logger) (Hooks, error) {
	hooks := make(Hooks, 0, len(cfgs))
	for i, c := range cfgs {
		if len(c.Command) == 0 {
			return nil, fmt.Errorf("%w: hook %d has no command", shared.ErrInvalidConfig, i)
		}
		name := c.Name
		if name == "" {
			name = c.Command[0]
		}
		h := &ExecHook{HookName: name, Command: c.Command, Timeout: c.Timeout, Logger: logger}
		for _, p := range c.Points {
			point, err := ParseHookPoint(p)
			if err != nil {
				return nil, fmt.Errorf("hook %s: %w", name, err)
			}
			h.Points = append(h.Points, point)
		}
		hooks = append(hooks, h)
	}
	return hooks, nil
}

func (h *ExecHook) Name() string { return h.HookName }

func (h *ExecHook) subscribed(point HookPoint) bool {
	if len(h.Points) == 0 {
		return true
	}
	for _, p := range h.Points {
		if p == point {
			return true
		}
	}
	return false
}

func (h *ExecHook) Run(ctx context.Context, point HookPoint, hc HookContext) error {
	if !h.subscribed(point) {
		return nil
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultHookTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(hc.Delta)
	if err != nil {
		return fmt.Errorf("encode delta: %w", err)
	}

	committed := false
	if hc.Result != nil {
		committed = hc.Result.Committed
	}

	cmd := exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		"INVSYNC_HOOK_POINT="+string(point),
		"INVSYNC_RUN_ID="+hc.RunID,
		"INVSYNC_DRY_RUN="+strconv.FormatBool(hc.Config.DryRun),
		"INVSYNC_COMMITTED="+strconv.FormatBool(committed),
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", h.Command[0], err, bytes.TrimSpace(out.Bytes()))
	}
	if h.Logger != nil && out.Len() > 0 {
		h.Logger.Debug("hook output", "hook", h.HookName, "point", point, "output", string(bytes.TrimSpace(out.Bytes())))
	}
	return nil
}
