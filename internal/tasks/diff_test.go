package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/desertthunder/invsync/internal/models"
)

func playlist(title string, videos ...string) models.Playlist {
	return models.Playlist{Title: title, Privacy: models.PrivacyPrivate, Videos: videos}
}

func TestDiff(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		previous := models.NewSnapshot(models.LogicalState{
			WatchHistory:  []string{"a", "b"},
			Subscriptions: []string{"c1"},
		})
		current := models.LogicalState{
			WatchHistory:  []string{"b", "c"},
			Subscriptions: []string{"c1", "c2"},
			Playlists:     []models.Playlist{playlist("Mix", "x")},
		}

		d := Diff(current, previous)

		assert.Equal(t, []string{"c"}, d.AddedHistory)
		assert.Equal(t, []string{"a"}, d.RemovedHistory)
		assert.Equal(t, []string{"c2"}, d.AddedSubscriptions)
		assert.Empty(t, d.RemovedSubscriptions)
		assert.Equal(t, []models.Playlist{playlist("Mix", "x")}, d.AddedPlaylists)
		assert.Empty(t, d.RemovedPlaylists)
		assert.Equal(t, 4, d.Count())
	})

	t.Run("identical state yields an empty delta", func(t *testing.T) {
		state := models.LogicalState{
			WatchHistory:  []string{"a"},
			Subscriptions: []string{"c1"},
			Playlists:     []models.Playlist{playlist("Mix", "x")},
		}

		d := Diff(state, models.NewSnapshot(state))
		assert.True(t, d.IsEmpty())
	})

	t.Run("nil previous is an empty snapshot", func(t *testing.T) {
		d := Diff(models.LogicalState{WatchHistory: []string{"a"}}, nil)
		assert.Equal(t, []string{"a"}, d.AddedHistory)
	})

	t.Run("playlists match by normalized title only", func(t *testing.T) {
		previous := models.NewSnapshot(models.LogicalState{
			Playlists: []models.Playlist{playlist("Watch Later", "a"), playlist("Gone", "g")},
		})
		current := models.LogicalState{
			Playlists: []models.Playlist{playlist("watch later ", "a", "b", "c"), playlist("New", "n")},
		}

		d := Diff(current, previous)
		assert.Equal(t, []models.Playlist{playlist("New", "n")}, d.AddedPlaylists)
		assert.Equal(t, []models.Playlist{playlist("Gone", "g")}, d.RemovedPlaylists)
	})

	t.Run("duplicates in the input are reported once", func(t *testing.T) {
		d := Diff(models.LogicalState{WatchHistory: []string{"a", "a", "b"}}, models.EmptySnapshot())
		assert.Equal(t, []string{"a", "b"}, d.AddedHistory)
	})

	t.Run("delta does not alias the input", func(t *testing.T) {
		current := models.LogicalState{Playlists: []models.Playlist{playlist("Mix", "x")}}
		d := Diff(current, nil)
		d.AddedPlaylists[0].Videos[0] = "changed"
		assert.Equal(t, "x", current.Playlists[0].Videos[0])
	})
}

func TestEffectiveState(t *testing.T) {
	previous := models.NewSnapshot(models.LogicalState{
		WatchHistory:  []string{"old"},
		Subscriptions: []string{"UCold"},
		Playlists:     []models.Playlist{playlist("Old", "o")},
	})
	current := models.LogicalState{
		WatchHistory:  []string{"new"},
		Subscriptions: []string{"UCnew"},
		Playlists:     []models.Playlist{playlist("New", "n")},
	}

	t.Run("nothing skipped", func(t *testing.T) {
		assert.Equal(t, current, effectiveState(current, previous, models.RunConfig{}))
	})

	t.Run("skipped categories keep the previous value", func(t *testing.T) {
		got := effectiveState(current, previous, models.RunConfig{SkipHistory: true, SkipPlaylists: true})

		assert.Equal(t, []string{"old"}, got.WatchHistory)
		assert.Equal(t, []string{"UCnew"}, got.Subscriptions)
		assert.Equal(t, []models.Playlist{playlist("Old", "o")}, got.Playlists)

		d := Diff(got, previous)
		assert.Empty(t, d.AddedHistory)
		assert.Empty(t, d.RemovedHistory)
		assert.Empty(t, d.AddedPlaylists)
		assert.Equal(t, []string{"UCnew"}, d.AddedSubscriptions)
	})
}
