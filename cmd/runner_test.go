package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/invsync/internal/formatter"
	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
	"github.com/desertthunder/invsync/internal/snapshot"
	tu "github.com/desertthunder/invsync/internal/testing"
)

const serverToken = "secret-token"

const testConfig = `
[instance]
url = %q
insecure = true
token = %q

[source]
directory = %q

[snapshot]
path = %q

[database]
path = %q

[retry]
max_attempts = 2
initial_backoff = "1ms"
max_backoff = "2ms"

[client]
timeout = "5s"
rate_limit = 0.0
`

type cliFixture struct {
	t          *testing.T
	server     *tu.InvidiousServer
	root       string
	configPath string
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	runner     *Runner
}

// newCLIFixture writes a FreeTube directory holding two watched videos, two subscriptions and one
// playlist, plus a config pointing at a fake instance. token is the one the config presents.
func newCLIFixture(t *testing.T, token string) *cliFixture {
	t.Helper()
	root := t.TempDir()
	server := tu.NewInvidiousServer(t, serverToken)

	dir := tu.WriteFreeTubeDir(t, filepath.Join(root, "FreeTube"), tu.FreeTubeData{
		History: []string{
			`{"videoId":"b","title":"t","_id":"h1"}`,
			`{"videoId":"c","title":"t","_id":"h2"}`,
		},
		Profiles: []string{
			`{"_id":"allChannels","name":"All Channels","subscriptions":[{"id":"c1","name":"n"},{"id":"c2","name":"n"}]}`,
		},
		Playlists: []string{
			`{"_id":"p1","playlistName":"Mix","videos":[{"videoId":"x"}]}`,
		},
	})

	configPath := filepath.Join(root, "config.toml")
	content := fmt.Sprintf(testConfig, server.Host(), token, dir,
		filepath.Join(root, "snapshot.json"), filepath.Join(root, "runs.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger:    shared.DiscardLogger(),
		Output:    out,
		ErrOutput: errOut,
		Palette:   formatter.PlainPalette(),
	})

	return &cliFixture{t: t, server: server, root: root, configPath: configPath, out: out, errOut: errOut, runner: runner}
}

func (f *cliFixture) run(args ...string) error {
	f.t.Helper()
	f.out.Reset()
	f.errOut.Reset()
	argv := append([]string{"invsync", "--config", f.configPath}, args...)
	return f.runner.command().Run(context.Background(), argv)
}

// dropInstance rewrites the config without an instance URL.
func (f *cliFixture) dropInstance() {
	f.t.Helper()
	content := strings.Replace(tu.MustReadFile(f.t, f.configPath), fmt.Sprintf("url = %q", f.server.Host()), `url = ""`, 1)
	if err := os.WriteFile(f.configPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("Failed to rewrite config: %v", err)
	}
}

func (f *cliFixture) snapshotPath() string {
	return filepath.Join(f.root, "snapshot.json")
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.DiscardLogger()
			output := &bytes.Buffer{}
			palette := formatter.PlainPalette()

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Palette: palette,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.palette != palette {
				t.Error("expected palette to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
			if runner.errOutput != os.Stderr {
				t.Error("expected error output to default to stderr")
			}
			if runner.palette == nil {
				t.Error("expected default palette to be set")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.DiscardLogger()})
		names := []string{}
		for _, c := range runner.register() {
			names = append(names, c.Name)
		}

		for _, want := range []string{"sync", "diff", "state", "snapshot", "runs", "setup", "api", "auth"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %q command, got %v", want, names)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty", func(t *testing.T) {
			buf := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: buf})
			if err := runner.writeJSON(map[string]int{"a": 1}, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != "{\n  \"a\": 1\n}\n" {
				t.Errorf("unexpected output %q", buf.String())
			}
		})

		t.Run("marshal failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			err := runner.writeJSON("x", false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("newline failure", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})
			err := runner.writeJSON("x", false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		buf := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: buf})
		runner.writePlain("a %d\n", 1)
		runner.writePlainln("b")
		if buf.String() != "a 1\n\nb\n" {
			t.Errorf("unexpected output %q", buf.String())
		}

		runner = NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writePlain("x"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestSyncCommand(t *testing.T) {
	t.Run("pushes local state and commits", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)

		if err := f.run("sync"); err != nil {
			t.Fatalf("sync failed: %v\n%s", err, f.out.String())
		}

		history := f.server.History()
		slices.Sort(history)
		if !slices.Equal(history, []string{"b", "c"}) {
			t.Errorf("expected remote history [b c], got %v", history)
		}
		subs := f.server.Subscriptions()
		slices.Sort(subs)
		if !slices.Equal(subs, []string{"c1", "c2"}) {
			t.Errorf("expected remote subscriptions [c1 c2], got %v", subs)
		}
		playlists := f.server.Playlists()
		if len(playlists) != 1 || playlists[0].Title != "Mix" || !slices.Equal(playlists[0].Videos, []string{"x"}) {
			t.Errorf("expected playlist Mix [x], got %+v", playlists)
		}

		if !strings.Contains(f.out.String(), "snapshot committed") {
			t.Errorf("expected committed report, got:\n%s", f.out.String())
		}
		if !strings.Contains(f.out.String(), "Channel c1") {
			t.Errorf("expected resolved channel names in report, got:\n%s", f.out.String())
		}
		if !strings.Contains(f.errOut.String(), "read_source") {
			t.Errorf("expected progress lines, got:\n%s", f.errOut.String())
		}
		tu.AssertFileExists(t, f.snapshotPath())
	})

	t.Run("second run has nothing to do", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)
		if err := f.run("sync"); err != nil {
			t.Fatalf("first sync failed: %v", err)
		}
		requests := len(f.server.Requests())

		if err := f.run("sync"); err != nil {
			t.Fatalf("second sync failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "No changes.") {
			t.Errorf("expected empty delta, got:\n%s", f.out.String())
		}
		if got := len(f.server.Requests()); got != requests {
			t.Errorf("expected no new requests, got %d more", got-requests)
		}
	})

	t.Run("dry run leaves instance and snapshot alone", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)

		if err := f.run("sync", "--dry-run"); err != nil {
			t.Fatalf("dry run failed: %v", err)
		}
		if len(f.server.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", f.server.Requests())
		}
		tu.AssertFileNotExists(t, f.snapshotPath())
		if !strings.Contains(f.out.String(), "dry run") {
			t.Errorf("expected dry-run report, got:\n%s", f.out.String())
		}
	})

	t.Run("failed operations keep the snapshot and exit non-zero", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)
		f.server.FailNext("POST /api/v1/auth/history/", 100)

		err := f.run("sync")
		if !errors.Is(err, errRunFailed) {
			t.Fatalf("expected errRunFailed, got %v", err)
		}
		if !strings.Contains(f.out.String(), formatter.NotCommittedMessage) {
			t.Errorf("expected not-committed message, got:\n%s", f.out.String())
		}
		tu.AssertFileNotExists(t, f.snapshotPath())
	})

	t.Run("json output", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)

		if err := f.run("sync", "--json"); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		var result models.RunResult
		if err := json.Unmarshal(f.out.Bytes(), &result); err != nil {
			t.Fatalf("expected JSON output: %v\n%s", err, f.out.String())
		}
		if !result.Committed || result.Mode != models.ModeSync || len(result.Delta.AddedHistory) != 2 {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("no-sync with export", func(t *testing.T) {
		f := newCLIFixture(t, "")
		exportPath := filepath.Join(f.root, "export.json")

		if err := f.run("sync", "--no-sync", "--export", exportPath); err != nil {
			t.Fatalf("no-sync failed: %v", err)
		}
		if len(f.server.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", f.server.Requests())
		}
		tu.AssertFileExists(t, f.snapshotPath())

		var export formatter.InvidiousExport
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, exportPath)), &export); err != nil {
			t.Fatalf("invalid export: %v", err)
		}
		if len(export.Subscriptions) != 2 || len(export.Playlists) != 1 {
			t.Errorf("unexpected export %+v", export)
		}
	})

	t.Run("local modes run without an instance", func(t *testing.T) {
		f := newCLIFixture(t, "")
		f.dropInstance()

		if err := f.run("diff"); err != nil {
			t.Fatalf("diff failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "history: +2 -0") {
			t.Errorf("unexpected diff output:\n%s", f.out.String())
		}

		if err := f.run("sync", "--dry-run"); err != nil {
			t.Fatalf("dry run failed: %v", err)
		}
		tu.AssertFileNotExists(t, f.snapshotPath())

		if err := f.run("sync", "--no-sync"); err != nil {
			t.Fatalf("no-sync failed: %v", err)
		}
		tu.AssertFileExists(t, f.snapshotPath())
		if len(f.server.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", f.server.Requests())
		}
	})

	t.Run("sync requires an instance", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)
		f.dropInstance()

		err := f.run("sync")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		tu.AssertFileNotExists(t, f.snapshotPath())
	})

	t.Run("export requires no-sync", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)
		err := f.run("sync", "--export", filepath.Join(f.root, "export.json"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		f := newCLIFixture(t, "")
		err := f.run("sync")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if len(f.server.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", f.server.Requests())
		}
	})

	t.Run("rejected token records errors", func(t *testing.T) {
		f := newCLIFixture(t, "wrong-token")
		err := f.run("sync")
		if !errors.Is(err, errRunFailed) {
			t.Fatalf("expected errRunFailed, got %v", err)
		}
		tu.AssertFileNotExists(t, f.snapshotPath())
	})

	t.Run("held lock fails fast", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)
		lock := snapshot.NewFileLock(f.snapshotPath())
		if err := lock.Lock(context.Background(), 0); err != nil {
			t.Fatalf("failed to take lock: %v", err)
		}
		defer lock.Unlock()

		err := f.run("sync")
		if !errors.Is(err, shared.ErrRunLocked) {
			t.Errorf("expected ErrRunLocked, got %v", err)
		}
		if len(f.server.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", f.server.Requests())
		}
	})

	t.Run("skip flags narrow the run", func(t *testing.T) {
		f := newCLIFixture(t, serverToken)

		if err := f.run("sync", "--skip-history", "--skip-playlists"); err != nil {
			t.Fatalf("sync failed: %v", err)
		}
		if len(f.server.History()) != 0 || len(f.server.Playlists()) != 0 {
			t.Errorf("expected only subscriptions to sync, got history %v playlists %v",
				f.server.History(), f.server.Playlists())
		}
		if len(f.server.Subscriptions()) != 2 {
			t.Errorf("expected 2 subscriptions, got %v", f.server.Subscriptions())
		}
	})
}

func TestDiffCommand(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		f := newCLIFixture(t, "")
		if err := f.run("diff"); err != nil {
			t.Fatalf("diff failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "history: +2 -0") {
			t.Errorf("unexpected diff:\n%s", f.out.String())
		}
		if len(f.server.Requests()) != 0 {
			t.Errorf("expected no requests, got %v", f.server.Requests())
		}
		tu.AssertFileNotExists(t, f.snapshotPath())
	})

	t.Run("json", func(t *testing.T) {
		f := newCLIFixture(t, "")
		if err := f.run("diff", "--json"); err != nil {
			t.Fatalf("diff failed: %v", err)
		}

		var delta models.Delta
		if err := json.Unmarshal(f.out.Bytes(), &delta); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(delta.AddedHistory) != 2 || len(delta.AddedSubscriptions) != 2 || len(delta.AddedPlaylists) != 1 {
			t.Errorf("unexpected delta %+v", delta)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		f := newCLIFixture(t, "")
		if err := f.run("diff", "--markdown"); err != nil {
			t.Fatalf("diff failed: %v", err)
		}
		if !strings.HasPrefix(f.out.String(), "# Pending changes") {
			t.Errorf("unexpected markdown:\n%s", f.out.String())
		}
	})

	t.Run("json and markdown conflict", func(t *testing.T) {
		f := newCLIFixture(t, "")
		err := f.run("diff", "--json", "--markdown")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestStateCommand(t *testing.T) {
	f := newCLIFixture(t, "")

	t.Run("summary", func(t *testing.T) {
		if err := f.run("state"); err != nil {
			t.Fatalf("state failed: %v", err)
		}
		for _, want := range []string{"Watch history: 2 videos", "Subscriptions: 2 channels", "Mix (1 videos)"} {
			if !strings.Contains(f.out.String(), want) {
				t.Errorf("expected %q in:\n%s", want, f.out.String())
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		if err := f.run("state", "--json"); err != nil {
			t.Fatalf("state failed: %v", err)
		}
		var view stateView
		if err := json.Unmarshal(f.out.Bytes(), &view); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(view.State.WatchHistory) != 2 || len(view.Skipped) != 0 {
			t.Errorf("unexpected state %+v", view)
		}
	})
}

func TestSnapshotCommands(t *testing.T) {
	f := newCLIFixture(t, serverToken)

	if err := f.run("snapshot", "show"); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "No snapshot") {
		t.Errorf("expected missing snapshot message, got:\n%s", f.out.String())
	}

	if err := f.run("sync"); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if err := f.run("snapshot", "show", "--json"); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(f.out.Bytes(), &snap); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if len(snap.WatchHistory) != 2 || len(snap.Subscriptions) != 2 || len(snap.Playlists) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if err := f.run("snapshot", "reset"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	tu.AssertFileNotExists(t, f.snapshotPath())

	if err := f.run("diff", "--json"); err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	var delta models.Delta
	if err := json.Unmarshal(f.out.Bytes(), &delta); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if len(delta.AddedHistory) != 2 {
		t.Errorf("expected full resync after reset, got %+v", delta)
	}
}

func TestRunsCommands(t *testing.T) {
	f := newCLIFixture(t, serverToken)

	if err := f.run("runs", "list"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(f.out.String(), "No runs recorded yet.") {
		t.Errorf("expected empty journal, got:\n%s", f.out.String())
	}

	if err := f.run("sync"); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if err := f.run("sync", "--dry-run"); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	t.Run("list skips dry runs", func(t *testing.T) {
		if err := f.run("runs", "list", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		var runs []map[string]any
		if err := json.Unmarshal(f.out.Bytes(), &runs); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0]["committed"] != true || runs[0]["mode"] != "sync" {
			t.Errorf("unexpected run %v", runs[0])
		}
	})

	t.Run("show by sequence", func(t *testing.T) {
		if err := f.run("runs", "show", "1"); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		for _, want := range []string{"(#1)", "Committed: true", "History:       +2 -0"} {
			if !strings.Contains(f.out.String(), want) {
				t.Errorf("expected %q in:\n%s", want, f.out.String())
			}
		}
	})

	t.Run("show unknown run", func(t *testing.T) {
		err := f.run("runs", "show", "nope")
		if !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("failed run records errors", func(t *testing.T) {
		g := newCLIFixture(t, serverToken)
		g.server.FailNext("POST /api/v1/auth/subscriptions/", 100)
		if err := g.run("sync"); !errors.Is(err, errRunFailed) {
			t.Fatalf("expected errRunFailed, got %v", err)
		}

		if err := g.run("runs", "show", "--json", "1"); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		var view struct {
			Run    map[string]any          `json:"run"`
			Errors []models.RunErrorRecord `json:"errors"`
		}
		if err := json.Unmarshal(g.out.Bytes(), &view); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if view.Run["committed"] != false || len(view.Errors) == 0 {
			t.Fatalf("unexpected run %+v", view)
		}
		if view.Errors[0].Op != "subscribe" {
			t.Errorf("expected subscribe error, got %+v", view.Errors[0])
		}
	})
}

func TestSetupCommand(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "conf", "config.toml")
	t.Setenv("INVSYNC_DATABASE_PATH", filepath.Join(root, "data", "runs.db"))
	t.Setenv("INVSYNC_SNAPSHOT_PATH", filepath.Join(root, "data", "snapshot.json"))

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.DiscardLogger(), Output: out})
	run := func() error {
		return runner.command().Run(context.Background(), []string{"invsync", "-c", configPath, "setup"})
	}

	if err := run(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, filepath.Join(root, "data", "runs.db"))
	if !strings.Contains(out.String(), "invsync is set up") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	if err := run(); err != nil {
		t.Fatalf("second setup failed: %v", err)
	}
}

func TestAPICommands(t *testing.T) {
	f := newCLIFixture(t, serverToken)

	t.Run("get", func(t *testing.T) {
		if err := f.run("api", "get", "/api/v1/auth/preferences"); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !strings.Contains(f.out.String(), `"locale": "en-US"`) {
			t.Errorf("unexpected output:\n%s", f.out.String())
		}
	})

	t.Run("get non-2xx maps to remote errors", func(t *testing.T) {
		err := f.run("api", "get", "api/v1/auth/nothing")
		if !errors.Is(err, shared.ErrRemoteNotFound) {
			t.Errorf("expected ErrRemoteNotFound, got %v", err)
		}
	})

	t.Run("post", func(t *testing.T) {
		if err := f.run("api", "post", "--data", `{"title":"Road","privacy":"private"}`, "/api/v1/auth/playlists"); err != nil {
			t.Fatalf("post failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "IVPL") {
			t.Errorf("expected playlist id in output:\n%s", f.out.String())
		}
		if len(f.server.Playlists()) != 1 {
			t.Errorf("expected playlist to be created, got %+v", f.server.Playlists())
		}
	})

	t.Run("delete", func(t *testing.T) {
		id := f.server.AddPlaylist("Leftover", "v1")
		if err := f.run("api", "delete", "/api/v1/auth/playlists/"+id); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "✓ DELETE") {
			t.Errorf("unexpected output:\n%s", f.out.String())
		}
		for _, pl := range f.server.Playlists() {
			if pl.ID == id {
				t.Errorf("expected %s to be deleted", id)
			}
		}

		err := f.run("api", "delete", "/api/v1/auth/playlists/"+id)
		if !errors.Is(err, shared.ErrRemoteNotFound) {
			t.Errorf("expected ErrRemoteNotFound for a second delete, got %v", err)
		}
	})

	t.Run("post rejects invalid JSON", func(t *testing.T) {
		err := f.run("api", "post", "--data", "{nope", "/api/v1/auth/playlists")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAuthStatus(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
		want    string
	}{
		{name: "accepted", token: serverToken, want: "✓ Authenticated"},
		{name: "rejected", token: "wrong-token", wantErr: shared.ErrRemoteAuth, want: "✗ Token rejected"},
		{name: "missing", token: "", wantErr: shared.ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCLIFixture(t, tt.token)
			err := f.run("auth", "status")

			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.want != "" && !strings.Contains(f.out.String(), tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, f.out.String())
			}
		})
	}
}
