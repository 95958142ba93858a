package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/invsync/internal/shared"
)

// writeStore writes lines into a FreeTube data directory, creating the other stores empty.
func writeStore(t *testing.T, files map[string][]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{HistoryFile, ProfilesFile, PlaylistsFile} {
		content := strings.Join(files[name], "\n")
		if content != "" {
			content += "\n"
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func read(t *testing.T, dir string) *Result {
	t.Helper()
	res, err := NewReader(dir, shared.DiscardLogger()).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	return res
}

func TestReaderHistory(t *testing.T) {
	t.Run("identical lines are deduplicated", func(t *testing.T) {
		line := `{"videoId":"abc","title":"t","_id":"h1"}`
		dir := writeStore(t, map[string][]string{HistoryFile: {line, line, line}})

		res := read(t, dir)
		if len(res.State.WatchHistory) != 1 || res.State.WatchHistory[0] != "abc" {
			t.Errorf("expected [abc], got %v", res.State.WatchHistory)
		}
	})

	t.Run("distinct records with the same video collapse", func(t *testing.T) {
		dir := writeStore(t, map[string][]string{HistoryFile: {
			`{"videoId":"a","_id":"1"}`,
			`{"videoId":"b","_id":"2"}`,
			`{"videoId":"a","_id":"3"}`,
		}})

		got := read(t, dir).State.WatchHistory
		if strings.Join(got, ",") != "a,b" {
			t.Errorf("expected [a b], got %v", got)
		}
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		dir := writeStore(t, map[string][]string{HistoryFile: {
			`{"videoId":"a","_id":"1"}`,
			`{"videoId":`,
			`not json`,
			`{"_id":"4","title":"no video"}`,
			`{"videoId":"b","_id":"5"}`,
		}})

		res := read(t, dir)
		if strings.Join(res.State.WatchHistory, ",") != "a,b" {
			t.Errorf("expected [a b], got %v", res.State.WatchHistory)
		}
		if len(res.Skipped) != 3 {
			t.Fatalf("expected 3 skipped lines, got %d", len(res.Skipped))
		}
		if res.Skipped[0].Line != 2 {
			t.Errorf("expected first skipped line to be 2, got %d", res.Skipped[0].Line)
		}
		if !errors.Is(res.Skipped[0], shared.ErrParse) {
			t.Error("expected ParseError to match shared.ErrParse")
		}
	})

	t.Run("tombstones remove records", func(t *testing.T) {
		dir := writeStore(t, map[string][]string{HistoryFile: {
			`{"videoId":"a","_id":"1"}`,
			`{"videoId":"b","_id":"2"}`,
			`{"$$deleted":true,"_id":"1"}`,
		}})

		got := read(t, dir).State.WatchHistory
		if strings.Join(got, ",") != "b" {
			t.Errorf("expected [b], got %v", got)
		}
	})
}

func TestReaderSubscriptions(t *testing.T) {
	t.Run("reads the allChannels profile", func(t *testing.T) {
		dir := writeStore(t, map[string][]string{ProfilesFile: {
			`{"name":"Music","subscriptions":[{"id":"UCm","name":"m"}],"_id":"p1"}`,
			`{"name":"All Channels","subscriptions":[{"id":"UC1","name":"one"},{"id":"UC2","name":"two"},{"id":"UC1"}],"_id":"allChannels"}`,
		}})

		got := read(t, dir).State.Subscriptions
		if strings.Join(got, ",") != "UC1,UC2" {
			t.Errorf("expected [UC1 UC2], got %v", got)
		}
	})

	t.Run("latest profile revision wins", func(t *testing.T) {
		dir := writeStore(t, map[string][]string{ProfilesFile: {
			`{"subscriptions":[{"id":"UC1"}],"_id":"allChannels"}`,
			`{"subscriptions":[{"id":"UC1"},{"id":"UC3"}],"_id":"allChannels"}`,
		}})

		got := read(t, dir).State.Subscriptions
		if strings.Join(got, ",") != "UC1,UC3" {
			t.Errorf("expected [UC1 UC3], got %v", got)
		}
	})

	t.Run("missing profile yields no subscriptions", func(t *testing.T) {
		dir := writeStore(t, map[string][]string{ProfilesFile: {
			`{"subscriptions":[{"id":"UC1"}],"_id":"other"}`,
		}})

		got := read(t, dir).State.Subscriptions
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty subscriptions, got %v", got)
		}
	})
}

func TestReaderPlaylists(t *testing.T) {
	dir := writeStore(t, map[string][]string{PlaylistsFile: {
		`{"playlistName":"Favorites","videos":[{"videoId":"f1"}],"_id":"favorites"}`,
		`{"playlistName":"Watch Later","description":"first","videos":[{"videoId":"w1"},{"videoId":"w2"}],"_id":"p1"}`,
		`{"playlistName":"Empty","videos":[],"_id":"p2"}`,
		`{"playlistName":"watch later ","description":"second","videos":[{"videoId":"w3"}],"_id":"p3"}`,
		`{"playlistName":"Mix","videos":[{"videoId":"x"}],"_id":"p4"}`,
		`{"videos":[{"videoId":"y"}],"_id":"p5"}`,
	}})

	res := read(t, dir)
	got := res.State.Playlists
	if len(got) != 2 {
		t.Fatalf("expected 2 playlists, got %d: %+v", len(got), got)
	}

	if got[0].Title != "Watch Later" || got[0].Description != "first" {
		t.Errorf("expected first Watch Later to be kept, got %+v", got[0])
	}
	if strings.Join(got[0].Videos, ",") != "w1,w2" {
		t.Errorf("expected videos in order, got %v", got[0].Videos)
	}
	if got[1].Title != "Mix" {
		t.Errorf("expected Mix second, got %q", got[1].Title)
	}
	if len(res.Skipped) != 1 {
		t.Errorf("expected the untitled playlist to be skipped, got %d", len(res.Skipped))
	}
}

func TestReaderErrors(t *testing.T) {
	t.Run("missing file is a source read error", func(t *testing.T) {
		dir := writeStore(t, nil)
		if err := os.Remove(filepath.Join(dir, ProfilesFile)); err != nil {
			t.Fatal(err)
		}

		_, err := NewReader(dir, shared.DiscardLogger()).Read(context.Background())
		if !errors.Is(err, shared.ErrSourceRead) {
			t.Errorf("expected ErrSourceRead, got %v", err)
		}
	})

	t.Run("cancelled context stops the read", func(t *testing.T) {
		dir := writeStore(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewReader(dir, shared.DiscardLogger()).Read(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCompact(t *testing.T) {
	input := strings.Join([]string{
		`{"v":1,"_id":"a"}`,
		`{"v":1,"_id":"b"}`,
		`{"v":2,"_id":"a"}`,
		`{"v":1}`,
		`{"$$deleted":true,"_id":"b"}`,
		`{"v":3,"_id":"b"}`,
		``,
	}, "\n")

	records, skipped, err := compact(context.Background(), "test.db", strings.NewReader(input))
	if err != nil {
		t.Fatalf("compact failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped lines, got %d", len(skipped))
	}

	want := []string{`{"v":2,"_id":"a"}`, `{"v":1}`, `{"v":3,"_id":"b"}`}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, w := range want {
		if string(records[i].raw) != w {
			t.Errorf("record %d = %s, want %s", i, records[i].raw, w)
		}
	}
}
