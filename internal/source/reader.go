package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/desertthunder/invsync/internal/models"
)

// Record store file names inside the FreeTube data directory.
const (
	HistoryFile   = "history.db"
	ProfilesFile  = "profiles.db"
	PlaylistsFile = "playlists.db"
)

// allChannelsProfile is the _id of the profile holding every subscription.
const allChannelsProfile = "allChannels"

// Result is the outcome of a successful read.
type Result struct {
	State   models.LogicalState
	Skipped []*ParseError
}

// Reader derives the current [models.LogicalState] from a FreeTube data directory.
type Reader struct {
	dir    string
	logger *log.Logger
}

// NewReader creates a Reader for dir.
func NewReader(dir string, logger *log.Logger) *Reader {
	return &Reader{dir: dir, logger: logger}
}

// Dir returns the data directory the reader reads from.
func (r *Reader) Dir() string {
	return r.dir
}

// Read parses all three record stores.
//
// Skipped lines are logged as warnings and returned in [Result.Skipped]. A missing or unreadable
// file fails the whole read.
func (r *Reader) Read(ctx context.Context) (*Result, error) {
	res := &Result{}

	history, err := r.load(ctx, HistoryFile, res)
	if err != nil {
		return nil, err
	}
	profiles, err := r.load(ctx, ProfilesFile, res)
	if err != nil {
		return nil, err
	}
	playlists, err := r.load(ctx, PlaylistsFile, res)
	if err != nil {
		return nil, err
	}

	res.State = models.LogicalState{
		WatchHistory:  r.watchHistory(history, res),
		Subscriptions: subscriptions(profiles),
		Playlists:     r.playlists(playlists, res),
	}

	r.logger.Debug("read local state",
		"dir", r.dir,
		"history", len(res.State.WatchHistory),
		"subscriptions", len(res.State.Subscriptions),
		"playlists", len(res.State.Playlists),
		"skipped", len(res.Skipped))

	return res, nil
}

func (r *Reader) load(ctx context.Context, name string, res *Result) ([]record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, skipped, err := compactFile(ctx, filepath.Join(r.dir, name))
	if err != nil {
		return nil, err
	}
	for _, pe := range skipped {
		r.skip(res, pe)
	}
	return records, nil
}

func (r *Reader) skip(res *Result, pe *ParseError) {
	r.logger.Warn("skipping record", "file", filepath.Base(pe.File), "line", pe.Line, "err", pe.Err)
	res.Skipped = append(res.Skipped, pe)
}

// watchHistory collects the videoId of every history record, deduplicated.
func (r *Reader) watchHistory(records []record, res *Result) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		v := gjson.GetBytes(rec.raw, "videoId")
		if v.Type != gjson.String || v.Str == "" {
			r.skip(res, &ParseError{File: filepath.Join(r.dir, HistoryFile), Line: rec.line, Err: fmt.Errorf("history record without videoId")})
			continue
		}
		ids = append(ids, v.Str)
	}
	return models.DedupeStrings(ids)
}

// subscriptions reads the channel ids of the allChannels profile. No such profile means no subscriptions.
func subscriptions(records []record) []string {
	for _, rec := range records {
		if rec.id != allChannelsProfile {
			continue
		}
		var ids []string
		gjson.GetBytes(rec.raw, "subscriptions.#.id").ForEach(func(_, v gjson.Result) bool {
			ids = append(ids, v.String())
			return true
		})
		return models.DedupeStrings(ids)
	}
	return []string{}
}

// playlists reads every playlist record and applies the exclusion and dedup rules of [models.DedupePlaylists].
func (r *Reader) playlists(records []record, res *Result) []models.Playlist {
	out := make([]models.Playlist, 0, len(records))
	for _, rec := range records {
		name := gjson.GetBytes(rec.raw, "playlistName")
		if name.Type != gjson.String {
			r.skip(res, &ParseError{File: filepath.Join(r.dir, PlaylistsFile), Line: rec.line, Err: fmt.Errorf("playlist record without playlistName")})
			continue
		}

		pl := models.Playlist{
			Title:       name.Str,
			Description: gjson.GetBytes(rec.raw, "description").String(),
			Privacy:     models.PrivacyPrivate,
		}
		gjson.GetBytes(rec.raw, "videos.#.videoId").ForEach(func(_, v gjson.Result) bool {
			if id := v.String(); id != "" {
				pl.Videos = append(pl.Videos, id)
			}
			return true
		})
		out = append(out, pl)
	}
	return models.DedupePlaylists(out)
}
