// package formatter renders deltas, run results and run history for the terminal, and writes the
// Invidious import file used by no-sync runs.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/invsync/internal/models"
)

// NotCommittedMessage is printed whenever a run leaves the snapshot untouched because of errors.
const NotCommittedMessage = "snapshot NOT updated; the same changes will be retried on the next run"

type section struct {
	sign   string
	label  string
	values []string
}

func sections(d models.Delta) []section {
	titles := func(pls []models.Playlist) []string {
		out := make([]string, len(pls))
		for i, pl := range pls {
			out[i] = fmt.Sprintf("%s (%d videos)", pl.Title, len(pl.Videos))
		}
		return out
	}
	return []section{
		{"+", "history", d.AddedHistory},
		{"-", "history", d.RemovedHistory},
		{"+", "subscriptions", d.AddedSubscriptions},
		{"-", "subscriptions", d.RemovedSubscriptions},
		{"+", "playlists", titles(d.AddedPlaylists)},
		{"-", "playlists", titles(d.RemovedPlaylists)},
	}
}

// DeltaText renders a delta as a diff-like listing, one item per line.
func DeltaText(d models.Delta) string {
	if d.IsEmpty() {
		return "No changes.\n"
	}

	var buf bytes.Buffer
	c := models.CountsOf(d)
	fmt.Fprintf(&buf, "history: +%d -%d  subscriptions: +%d -%d  playlists: +%d -%d\n",
		c.AddedHistory, c.RemovedHistory, c.AddedSubscriptions, c.RemovedSubscriptions,
		c.AddedPlaylists, c.RemovedPlaylists)

	for _, s := range sections(d) {
		for _, v := range s.values {
			fmt.Fprintf(&buf, "%s %s %s\n", s.sign, s.label, v)
		}
	}
	return buf.String()
}

// DeltaMarkdown renders a delta as a Markdown document with one section per category.
func DeltaMarkdown(d models.Delta) string {
	var buf bytes.Buffer
	buf.WriteString("# Pending changes\n\n")
	if d.IsEmpty() {
		buf.WriteString("Nothing to sync.\n")
		return buf.String()
	}

	verb := map[string]string{"+": "Added", "-": "Removed"}
	for _, s := range sections(d) {
		if len(s.values) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "## %s %s (%d)\n\n", verb[s.sign], s.label, len(s.values))
		for _, v := range s.values {
			fmt.Fprintf(&buf, "- %s\n", v)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// StateSummary describes a logical state read from the local stores.
func StateSummary(state models.LogicalState, skipped int) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Watch history: %d videos\n", len(state.WatchHistory))
	fmt.Fprintf(&buf, "Subscriptions: %d channels\n", len(state.Subscriptions))
	fmt.Fprintf(&buf, "Playlists:     %d\n", len(state.Playlists))
	for _, pl := range state.Playlists {
		fmt.Fprintf(&buf, "  - %s (%d videos)\n", pl.Title, len(pl.Videos))
	}
	if skipped > 0 {
		fmt.Fprintf(&buf, "Skipped %d malformed record(s)\n", skipped)
	}
	return buf.String()
}

// RunReport renders the outcome of a run.
func RunReport(r *models.RunResult, p *Palette) string {
	if p == nil {
		p = PlainPalette()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", p.Title(fmt.Sprintf("Run %s (%s)", r.RunID, r.Mode)))
	buf.WriteString(DeltaText(r.Delta))

	if len(r.Subscribed) > 0 {
		buf.WriteString("\nSubscribed:\n")
		for _, ch := range r.Subscribed {
			if ch.Name != "" {
				fmt.Fprintf(&buf, "  %s (%s)\n", ch.Name, ch.ID)
			} else {
				fmt.Fprintf(&buf, "  %s\n", ch.ID)
			}
		}
	}

	if len(r.Notes) > 0 {
		buf.WriteString("\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&buf, "%s\n", p.Help("note: "+n))
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&buf, "\n%s\n", p.Err(fmt.Sprintf("%d operation(s) failed:", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(&buf, "  %s\n", e.Error())
		}
	}

	buf.WriteString("\n")
	switch {
	case r.Mode == models.ModeDryRun:
		buf.WriteString(p.Warn("dry run: nothing was sent and the snapshot was not touched") + "\n")
	case r.Committed:
		buf.WriteString(p.OK("snapshot committed") + "\n")
	default:
		buf.WriteString(p.Err(NotCommittedMessage) + "\n")
	}

	if !r.FinishedAt.IsZero() && !r.StartedAt.IsZero() {
		fmt.Fprintf(&buf, "%s\n", p.Help("took "+r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()))
	}
	return buf.String()
}

// RunsTable renders journaled runs, newest first as given.
func RunsTable(runs []*models.SyncRun) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%-4s %-36s %-8s %-20s %-9s %-7s %s\n", "SEQ", "ID", "MODE", "STARTED", "COMMITTED", "ERRORS", "CHANGES")
	for _, run := range runs {
		c := run.Counts()
		changes := c.AddedHistory + c.RemovedHistory + c.AddedSubscriptions + c.RemovedSubscriptions + c.AddedPlaylists + c.RemovedPlaylists
		fmt.Fprintf(&buf, "%-4d %-36s %-8s %-20s %-9t %-7d %d\n",
			run.Sequence(), run.ID(), run.Mode(), run.StartedAt().Local().Format("2006-01-02 15:04:05"),
			run.Committed(), run.ErrorCount(), changes)
	}
	return buf.String()
}

// RunDetail renders one journaled run with its recorded errors.
func RunDetail(run *models.SyncRun, errs []models.RunErrorRecord) string {
	var buf bytes.Buffer
	c := run.Counts()
	fmt.Fprintf(&buf, "Run:       %s (#%d)\n", run.ID(), run.Sequence())
	fmt.Fprintf(&buf, "Mode:      %s\n", run.Mode())
	fmt.Fprintf(&buf, "Started:   %s\n", run.StartedAt().Local().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Duration:  %s\n", run.Duration().Round(time.Millisecond))
	fmt.Fprintf(&buf, "Committed: %t\n", run.Committed())
	fmt.Fprintf(&buf, "History:       +%d -%d\n", c.AddedHistory, c.RemovedHistory)
	fmt.Fprintf(&buf, "Subscriptions: +%d -%d\n", c.AddedSubscriptions, c.RemovedSubscriptions)
	fmt.Fprintf(&buf, "Playlists:     +%d -%d\n", c.AddedPlaylists, c.RemovedPlaylists)

	if len(errs) > 0 {
		fmt.Fprintf(&buf, "Errors (%d):\n", len(errs))
		for _, e := range errs {
			target := ""
			if e.Target != "" {
				target = " " + e.Target
			}
			fmt.Fprintf(&buf, "  %s%s after %d attempt(s): %s\n", e.Op, target, e.Attempts, strings.TrimSpace(e.Message))
		}
	}
	return buf.String()
}
