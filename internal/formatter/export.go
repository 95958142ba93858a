package formatter

import (
	"fmt"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
	"github.com/desertthunder/invsync/internal/snapshot"
)

// InvidiousExport is the document accepted by Invidious under
// Settings > Import/export > Import Invidious JSON data.
type InvidiousExport struct {
	Subscriptions []string            `json:"subscriptions"`
	WatchHistory  []string            `json:"watch_history"`
	Preferences   map[string]any      `json:"preferences"`
	Playlists     []InvidiousPlaylist `json:"playlists"`
}

// InvidiousPlaylist is one playlist entry of an [InvidiousExport].
type InvidiousPlaylist struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Privacy     string   `json:"privacy"`
	Videos      []string `json:"videos"`
}

// ToInvidiousExport converts state to the Invidious import layout. Preferences are left empty so
// an import never overwrites the account settings.
func ToInvidiousExport(state models.LogicalState) InvidiousExport {
	out := InvidiousExport{
		Subscriptions: append([]string{}, state.Subscriptions...),
		WatchHistory:  append([]string{}, state.WatchHistory...),
		Preferences:   map[string]any{},
		Playlists:     make([]InvidiousPlaylist, 0, len(state.Playlists)),
	}
	for _, pl := range state.Playlists {
		privacy := pl.Privacy
		if privacy == "" {
			privacy = models.PrivacyPrivate
		}
		out.Playlists = append(out.Playlists, InvidiousPlaylist{
			Title:       pl.Title,
			Description: pl.Description,
			Privacy:     string(privacy),
			Videos:      append([]string{}, pl.Videos...),
		})
	}
	return out
}

// WriteInvidiousExport writes state as an Invidious import file at path, atomically.
func WriteInvidiousExport(state models.LogicalState, path string) error {
	if path == "" {
		return fmt.Errorf("%w: export path", shared.ErrMissingArgument)
	}

	data, err := shared.MarshalJSON(ToInvidiousExport(state))
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := snapshot.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
