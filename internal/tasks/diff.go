package tasks

import (
	"github.com/desertthunder/invsync/internal/models"
)

// Diff computes what must change on the remote to move it from previous to current.
//
// History and subscriptions are compared by identifier. Playlists are compared by normalized
// title only: a playlist already in previous never shows up as added, even when its videos
// changed. Output order follows current for additions and previous for removals.
func Diff(current models.LogicalState, previous *models.Snapshot) models.Delta {
	if previous == nil {
		previous = models.EmptySnapshot()
	}

	addedPlaylists, removedPlaylists := diffPlaylists(current.Playlists, previous.Playlists)
	return models.Delta{
		AddedHistory:         difference(current.WatchHistory, previous.WatchHistory),
		RemovedHistory:       difference(previous.WatchHistory, current.WatchHistory),
		AddedSubscriptions:   difference(current.Subscriptions, previous.Subscriptions),
		RemovedSubscriptions: difference(previous.Subscriptions, current.Subscriptions),
		AddedPlaylists:       addedPlaylists,
		RemovedPlaylists:     removedPlaylists,
	}
}

// difference returns the members of a that are not in b, deduplicated, in the order of a.
func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, id := range b {
		exclude[id] = struct{}{}
	}

	out := []string{}
	for _, id := range a {
		if _, ok := exclude[id]; ok {
			continue
		}
		exclude[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func diffPlaylists(current, previous []models.Playlist) (added, removed []models.Playlist) {
	keys := func(pls []models.Playlist) map[string]struct{} {
		m := make(map[string]struct{}, len(pls))
		for _, pl := range pls {
			m[pl.Key()] = struct{}{}
		}
		return m
	}
	currentKeys, previousKeys := keys(current), keys(previous)

	pick := func(pls []models.Playlist, exclude map[string]struct{}) []models.Playlist {
		out := []models.Playlist{}
		for _, pl := range pls {
			k := pl.Key()
			if _, ok := exclude[k]; ok {
				continue
			}
			exclude[k] = struct{}{}
			pl.Videos = append([]string(nil), pl.Videos...)
			out = append(out, pl)
		}
		return out
	}

	return pick(current, previousKeys), pick(previous, currentKeys)
}

// effectiveState replaces skipped categories of current with their previous value, so that
// skipped categories produce no operations and carry over unchanged into the next snapshot.
func effectiveState(current models.LogicalState, previous *models.Snapshot, cfg models.RunConfig) models.LogicalState {
	prev := previous.State()
	if cfg.SkipHistory {
		current.WatchHistory = prev.WatchHistory
	}
	if cfg.SkipSubscriptions {
		current.Subscriptions = prev.Subscriptions
	}
	if cfg.SkipPlaylists {
		current.Playlists = prev.Playlists
	}
	return current
}
