package models

// Snapshot is the persisted form of the last successfully-synced [LogicalState].
//
// The JSON shape matches the Invidious data import format, so a snapshot file can also be
// uploaded to an instance by hand.
type Snapshot struct {
	WatchHistory  []string   `json:"watch_history"`
	Subscriptions []string   `json:"subscriptions"`
	Playlists     []Playlist `json:"playlists"`
}

// EmptySnapshot returns the snapshot used on first run or when the snapshot file is unusable.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		WatchHistory:  []string{},
		Subscriptions: []string{},
		Playlists:     []Playlist{},
	}
}

// NewSnapshot copies a [LogicalState] into a Snapshot.
func NewSnapshot(state LogicalState) *Snapshot {
	s := EmptySnapshot()
	s.WatchHistory = append(s.WatchHistory, state.WatchHistory...)
	s.Subscriptions = append(s.Subscriptions, state.Subscriptions...)
	for _, pl := range state.Playlists {
		pl.Videos = append([]string(nil), pl.Videos...)
		s.Playlists = append(s.Playlists, pl)
	}
	return s
}

// IsEmpty reports whether the snapshot records nothing.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.WatchHistory) == 0 && len(s.Subscriptions) == 0 && len(s.Playlists) == 0
}

// Normalize replaces nil slices with empty ones so the encoded file never contains null.
func (s *Snapshot) Normalize() {
	if s.WatchHistory == nil {
		s.WatchHistory = []string{}
	}
	if s.Subscriptions == nil {
		s.Subscriptions = []string{}
	}
	if s.Playlists == nil {
		s.Playlists = []Playlist{}
	}
	for i := range s.Playlists {
		if s.Playlists[i].Videos == nil {
			s.Playlists[i].Videos = []string{}
		}
	}
}

// State returns the snapshot as a [LogicalState].
func (s *Snapshot) State() LogicalState {
	if s == nil {
		return LogicalState{}
	}
	c := NewSnapshot(LogicalState{WatchHistory: s.WatchHistory, Subscriptions: s.Subscriptions, Playlists: s.Playlists})
	return LogicalState{WatchHistory: c.WatchHistory, Subscriptions: c.Subscriptions, Playlists: c.Playlists}
}
