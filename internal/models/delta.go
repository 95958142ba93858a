package models

// Delta holds the per-category changes between the current state and the last snapshot.
//
// Playlists are compared by normalized title only. A playlist whose videos changed but whose
// title is already in the snapshot produces no entry here.
type Delta struct {
	AddedHistory         []string   `json:"added_history"`
	RemovedHistory       []string   `json:"removed_history"`
	AddedSubscriptions   []string   `json:"added_subscriptions"`
	RemovedSubscriptions []string   `json:"removed_subscriptions"`
	AddedPlaylists       []Playlist `json:"added_playlists"`
	RemovedPlaylists     []Playlist `json:"removed_playlists"`
}

// Count returns the total number of changed items across all categories.
func (d Delta) Count() int {
	return len(d.AddedHistory) + len(d.RemovedHistory) +
		len(d.AddedSubscriptions) + len(d.RemovedSubscriptions) +
		len(d.AddedPlaylists) + len(d.RemovedPlaylists)
}

// IsEmpty reports whether nothing needs to be pushed.
func (d Delta) IsEmpty() bool {
	return d.Count() == 0
}

// Clone returns a deep copy, used to hand hooks a read-only view.
func (d Delta) Clone() Delta {
	clonePlaylists := func(in []Playlist) []Playlist {
		out := make([]Playlist, len(in))
		for i, pl := range in {
			pl.Videos = append([]string(nil), pl.Videos...)
			out[i] = pl
		}
		return out
	}
	return Delta{
		AddedHistory:         append([]string(nil), d.AddedHistory...),
		RemovedHistory:       append([]string(nil), d.RemovedHistory...),
		AddedSubscriptions:   append([]string(nil), d.AddedSubscriptions...),
		RemovedSubscriptions: append([]string(nil), d.RemovedSubscriptions...),
		AddedPlaylists:       clonePlaylists(d.AddedPlaylists),
		RemovedPlaylists:     clonePlaylists(d.RemovedPlaylists),
	}
}
