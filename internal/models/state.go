package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FavoritesTitle is the normalized title of FreeTube's built-in playlist, which is never synced.
const FavoritesTitle = "favorites"

// Privacy is the visibility of a playlist on the remote instance.
type Privacy string

// PrivacyPrivate is the only privacy level invsync creates playlists with.
const PrivacyPrivate Privacy = "Private"

// Playlist represents a local playlist. Its identity is the normalized title.
type Playlist struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Privacy     Privacy  `json:"privacy"`
	Videos      []string `json:"videos"`
}

// Key returns the identity key of the playlist.
func (p Playlist) Key() string {
	return NormalizeTitle(p.Title)
}

// Syncable reports whether the playlist belongs in a [LogicalState]:
// it has at least one video and is not the favorites playlist.
func (p Playlist) Syncable() bool {
	return len(p.Videos) > 0 && p.Key() != FavoritesTitle
}

// LogicalState is the current local state derived from the FreeTube record stores.
type LogicalState struct {
	WatchHistory  []string   `json:"watch_history"`
	Subscriptions []string   `json:"subscriptions"`
	Playlists     []Playlist `json:"playlists"`
}

// NormalizeTitle trims, NFC-normalizes and case-folds a playlist title.
//
// A [cases.Caser] is stateful, so a new one is built per call.
func NormalizeTitle(title string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(title)))
}

// DedupeStrings returns ids with duplicates and empty strings removed, keeping first-seen order.
func DedupeStrings(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DedupePlaylists drops non-syncable playlists and keeps the first playlist for each normalized title.
func DedupePlaylists(playlists []Playlist) []Playlist {
	seen := make(map[string]struct{}, len(playlists))
	out := make([]Playlist, 0, len(playlists))
	for _, pl := range playlists {
		if !pl.Syncable() {
			continue
		}
		key := pl.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if pl.Privacy == "" {
			pl.Privacy = PrivacyPrivate
		}
		out = append(out, pl)
	}
	return out
}
