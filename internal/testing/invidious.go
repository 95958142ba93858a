package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// InvidiousServer is an in-memory stand-in for the authenticated Invidious API v1.
type InvidiousServer struct {
	*httptest.Server

	Token string

	mu            sync.Mutex
	history       []string
	subscriptions []string
	playlists     []FakePlaylist
	requests      []string
	failures      map[string]int
	nextID        int
}

// FakePlaylist is a playlist held by an [InvidiousServer].
type FakePlaylist struct {
	ID      string   `json:"playlistId"`
	Title   string   `json:"title"`
	Privacy string   `json:"privacy"`
	Videos  []string `json:"-"`
}

// NewInvidiousServer starts a fake instance that accepts token. It is closed with the test.
func NewInvidiousServer(t *testing.T, token string) *InvidiousServer {
	t.Helper()
	s := &InvidiousServer{Token: token, failures: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Host returns the server address without scheme.
func (s *InvidiousServer) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// FailNext makes the next n requests whose "METHOD path" starts with prefix answer 503.
func (s *InvidiousServer) FailNext(prefix string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = n
}

// AddPlaylist seeds a remote playlist.
func (s *InvidiousServer) AddPlaylist(title string, videos ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPlaylist(title, "private", videos)
}

// History returns the remote watch history.
func (s *InvidiousServer) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// Subscriptions returns the remote subscriptions.
func (s *InvidiousServer) Subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.subscriptions...)
}

// Playlists returns a copy of the remote playlists.
func (s *InvidiousServer) Playlists() []FakePlaylist {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FakePlaylist, len(s.playlists))
	for i, pl := range s.playlists {
		pl.Videos = append([]string(nil), pl.Videos...)
		out[i] = pl
	}
	return out
}

// Requests returns every request received as "METHOD path".
func (s *InvidiousServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *InvidiousServer) addPlaylist(title, privacy string, videos []string) string {
	s.nextID++
	id := fmt.Sprintf("IVPL%04d", s.nextID)
	s.playlists = append(s.playlists, FakePlaylist{ID: id, Title: title, Privacy: privacy, Videos: videos})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *InvidiousServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	s.requests = append(s.requests, key)

	for prefix, n := range s.failures {
		if n > 0 && strings.HasPrefix(key, prefix) {
			s.failures[prefix] = n - 1
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable"})
			return
		}
	}

	if strings.HasPrefix(r.URL.Path, "/api/v1/channels/") {
		ucid := strings.TrimPrefix(r.URL.Path, "/api/v1/channels/")
		writeJSON(w, http.StatusOK, map[string]string{"author": "Channel " + ucid})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+s.Token {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not authorized"})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/auth/")
	switch {
	case path == "preferences" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"locale": "en-US"})

	case strings.HasPrefix(path, "history/"):
		id := strings.TrimPrefix(path, "history/")
		if r.Method == http.MethodPost {
			s.history = appendUnique(s.history, id)
		} else {
			s.history = remove(s.history, id)
		}
		w.WriteHeader(http.StatusNoContent)

	case strings.HasPrefix(path, "subscriptions/"):
		id := strings.TrimPrefix(path, "subscriptions/")
		if r.Method == http.MethodPost {
			s.subscriptions = appendUnique(s.subscriptions, id)
		} else {
			s.subscriptions = remove(s.subscriptions, id)
		}
		w.WriteHeader(http.StatusNoContent)

	case path == "playlists" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.playlists)

	case path == "playlists" && r.Method == http.MethodPost:
		var body struct {
			Title   string `json:"title"`
			Privacy string `json:"privacy"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
			return
		}
		id := s.addPlaylist(body.Title, body.Privacy, nil)
		writeJSON(w, http.StatusCreated, map[string]string{"title": body.Title, "playlistId": id})

	case strings.HasPrefix(path, "playlists/"):
		s.handlePlaylist(w, r, strings.TrimPrefix(path, "playlists/"))

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (s *InvidiousServer) handlePlaylist(w http.ResponseWriter, r *http.Request, rest string) {
	id, sub, _ := strings.Cut(rest, "/")
	idx := -1
	for i, pl := range s.playlists {
		if pl.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Playlist does not exist."})
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodDelete:
		s.playlists = append(s.playlists[:idx], s.playlists[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	case sub == "videos" && r.Method == http.MethodPost:
		var body struct {
			VideoID string `json:"videoId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.VideoID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "videoId is required"})
			return
		}
		s.playlists[idx].Videos = append(s.playlists[idx].Videos, body.VideoID)
		writeJSON(w, http.StatusCreated, map[string]string{"setVideoId": body.VideoID})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

func remove(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
