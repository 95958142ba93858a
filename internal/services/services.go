// package services talks to the Invidious instance the local state is mirrored onto.
package services

import (
	"context"

	"github.com/desertthunder/invsync/internal/models"
)

//go:generate mockgen -destination=../tasks/mock_client_test.go -package=tasks github.com/desertthunder/invsync/internal/services Client

// Client executes single remote operations against the authenticated account.
//
// Each method makes exactly one request. Failures wrap [shared.ErrRemoteAuth],
// [shared.ErrRemoteNotFound] or [shared.ErrRemoteTransient] so callers can classify them.
type Client interface {
	// AddHistory marks a video as watched.
	AddHistory(ctx context.Context, videoID string) error
	// RemoveHistory removes a video from the watch history. Removing an absent video succeeds.
	RemoveHistory(ctx context.Context, videoID string) error

	// Subscribe subscribes to a channel by UCID.
	Subscribe(ctx context.Context, ucid string) error
	// Unsubscribe unsubscribes from a channel. Unsubscribing twice succeeds.
	Unsubscribe(ctx context.Context, ucid string) error
	// ChannelName resolves the display name of a channel.
	ChannelName(ctx context.Context, ucid string) (string, error)

	// Playlists lists the playlists owned by the account.
	Playlists(ctx context.Context) ([]Playlist, error)
	// CreatePlaylist creates an empty playlist and returns its id. Not idempotent.
	CreatePlaylist(ctx context.Context, title string, privacy models.Privacy) (string, error)
	// AddPlaylistVideo appends a video to a playlist.
	AddPlaylistVideo(ctx context.Context, playlistID, videoID string) error
	// DeletePlaylist deletes a playlist by id.
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// Playlist is a playlist as listed by the instance.
type Playlist struct {
	ID         string `json:"playlistId"`
	Title      string `json:"title"`
	Privacy    string `json:"privacy"`
	VideoCount int    `json:"videoCount"`
}

// Key returns the normalized title used to match local playlists.
func (p Playlist) Key() string {
	return models.NormalizeTitle(p.Title)
}
