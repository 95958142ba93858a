package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/retry"
	"github.com/desertthunder/invsync/internal/services"
	"github.com/desertthunder/invsync/internal/shared"
	"github.com/desertthunder/invsync/internal/tracing"
)

// Remote operation names, as they appear in errors and spans.
const (
	OpAddHistory       = "add-history"
	OpSubscribe        = "subscribe"
	OpListPlaylists    = "list-playlists"
	OpCreatePlaylist   = "create-playlist"
	OpAddPlaylistVideo = "add-playlist-video"
	OpRemoveHistory    = "remove-history"
	OpUnsubscribe      = "unsubscribe"
	OpDeletePlaylist   = "delete-playlist"
	OpCommitSnapshot   = "commit-snapshot"
	OpExport           = "export"
	OpRun              = "run"
)

// Reconciler applies a [models.Delta] to the remote, one category at a time.
//
// Every operation goes through the retry policy. A failed operation is recorded and never
// stops later operations or categories.
type Reconciler struct {
	client   services.Client
	policy   retry.Policy
	tracer   *tracing.Tracer
	logger   *log.Logger
	progress chan<- ProgressUpdate

	// remote playlists keyed by normalized title, listed at most once per run
	remote map[string]services.Playlist
}

// NewReconciler creates a Reconciler. progress may be nil.
func NewReconciler(client services.Client, policy retry.Policy, tracer *tracing.Tracer, logger *log.Logger, progress chan<- ProgressUpdate) *Reconciler {
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &Reconciler{client: client, policy: policy, tracer: tracer, logger: logger, progress: progress}
}

// Reconcile applies delta in a fixed order and records outcomes in result:
// added history, added subscriptions, added playlists, removed history, removed
// subscriptions, removed playlists.
func (r *Reconciler) Reconcile(ctx context.Context, delta models.Delta, result *models.RunResult) {
	r.remote = nil

	steps := []func(context.Context, models.Delta, *models.RunResult){
		r.addHistory,
		r.addSubscriptions,
		r.addPlaylists,
		r.removeHistory,
		r.removeSubscriptions,
		r.removePlaylists,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.AddError(models.OperationError{Op: OpRun, Err: err})
			return
		}
		step(ctx, delta, result)
	}
}

// do runs one retried operation inside a span.
func (r *Reconciler) do(ctx context.Context, op, target string, fn func(ctx context.Context, attempt int) error) retry.Result {
	ctx, span := r.tracer.StartOperationSpan(ctx, op, target)
	res := r.policy.Do(ctx, op, fn)
	span.End(res.Attempts, res.Err)
	if res.Err != nil {
		r.logger.Error("operation failed", "op", op, "target", target, "attempts", res.Attempts, "err", res.Err)
	}
	return res
}

func record(result *models.RunResult, res retry.Result, target string) {
	result.AddError(models.OperationError{Op: res.Op, Target: target, Attempts: res.Attempts, Err: res.Err})
}

// idempotentRemoval treats not-found as success: the item is already gone.
func idempotentRemoval(err error) error {
	if errors.Is(err, shared.ErrRemoteNotFound) {
		return nil
	}
	return err
}

// bulk pushes ids as a single operation. A retry resumes from the first unconfirmed id.
func (r *Reconciler) bulk(ctx context.Context, op string, phase Phase, ids []string, call func(context.Context, string) error, result *models.RunResult) {
	if len(ids) == 0 {
		return
	}

	cursor := 0
	res := r.do(ctx, op, fmt.Sprintf("%d video(s)", len(ids)), func(ctx context.Context, _ int) error {
		for cursor < len(ids) {
			if err := call(ctx, ids[cursor]); err != nil {
				return err
			}
			cursor++
			sendProgress(r.progress, itemUpdate(phase, cursor, len(ids), ids[cursor-1]))
		}
		return nil
	})

	if !res.OK() {
		failed := ids[min(cursor, len(ids)-1)]
		sendProgress(r.progress, itemFailedUpdate(phase, cursor+1, len(ids), failed, res.Err))
		record(result, res, failed)
	}
}

func (r *Reconciler) addHistory(ctx context.Context, delta models.Delta, result *models.RunResult) {
	r.bulk(ctx, OpAddHistory, PushHistory, delta.AddedHistory, r.client.AddHistory, result)
}

func (r *Reconciler) removeHistory(ctx context.Context, delta models.Delta, result *models.RunResult) {
	r.bulk(ctx, OpRemoveHistory, RemoveHistory, delta.RemovedHistory, func(ctx context.Context, id string) error {
		return idempotentRemoval(r.client.RemoveHistory(ctx, id))
	}, result)
}

func (r *Reconciler) addSubscriptions(ctx context.Context, delta models.Delta, result *models.RunResult) {
	total := len(delta.AddedSubscriptions)
	for i, ucid := range delta.AddedSubscriptions {
		res := r.do(ctx, OpSubscribe, ucid, func(ctx context.Context, _ int) error {
			return r.client.Subscribe(ctx, ucid)
		})
		if !res.OK() {
			sendProgress(r.progress, itemFailedUpdate(PushSubscriptions, i+1, total, ucid, res.Err))
			record(result, res, ucid)
			continue
		}

		ref := models.ChannelRef{ID: ucid}
		if name, err := r.client.ChannelName(ctx, ucid); err == nil {
			ref.Name = name
		} else {
			r.logger.Debug("channel name lookup failed", "ucid", ucid, "err", err)
		}
		result.Subscribed = append(result.Subscribed, ref)

		label := ucid
		if ref.Name != "" {
			label = fmt.Sprintf("%s (%s)", ref.Name, ucid)
		}
		sendProgress(r.progress, itemUpdate(PushSubscriptions, i+1, total, label))
	}
}

func (r *Reconciler) removeSubscriptions(ctx context.Context, delta models.Delta, result *models.RunResult) {
	total := len(delta.RemovedSubscriptions)
	for i, ucid := range delta.RemovedSubscriptions {
		res := r.do(ctx, OpUnsubscribe, ucid, func(ctx context.Context, _ int) error {
			return idempotentRemoval(r.client.Unsubscribe(ctx, ucid))
		})
		if !res.OK() {
			sendProgress(r.progress, itemFailedUpdate(RemoveSubscriptions, i+1, total, ucid, res.Err))
			record(result, res, ucid)
			continue
		}
		sendProgress(r.progress, itemUpdate(RemoveSubscriptions, i+1, total, ucid))
	}
}

// listRemote fetches the remote playlists once per run.
func (r *Reconciler) listRemote(ctx context.Context, result *models.RunResult) bool {
	if r.remote != nil {
		return true
	}

	var listed []services.Playlist
	res := r.do(ctx, OpListPlaylists, "", func(ctx context.Context, _ int) error {
		var err error
		listed, err = r.client.Playlists(ctx)
		return err
	})
	if !res.OK() {
		record(result, res, "")
		return false
	}

	r.remote = make(map[string]services.Playlist, len(listed))
	for _, pl := range listed {
		if _, ok := r.remote[pl.Key()]; !ok {
			r.remote[pl.Key()] = pl
		}
	}
	return true
}

// findRemote re-lists the remote playlists and looks for key, bypassing the cached listing.
func (r *Reconciler) findRemote(ctx context.Context, key string) (services.Playlist, bool, error) {
	listed, err := r.client.Playlists(ctx)
	if err != nil {
		return services.Playlist{}, false, err
	}
	for _, pl := range listed {
		if pl.Key() == key {
			return pl, true, nil
		}
	}
	return services.Playlist{}, false, nil
}

func (r *Reconciler) addPlaylists(ctx context.Context, delta models.Delta, result *models.RunResult) {
	if len(delta.AddedPlaylists) == 0 {
		return
	}
	if !r.listRemote(ctx, result) {
		return
	}

	total := len(delta.AddedPlaylists)
	for i, pl := range delta.AddedPlaylists {
		key := pl.Key()
		if existing, ok := r.remote[key]; ok {
			result.Note("playlist %q already exists on the instance (%s), skipped", pl.Title, existing.ID)
			sendProgress(r.progress, itemUpdate(PushPlaylists, i+1, total, pl.Title+" (exists)"))
			continue
		}

		var id string
		res := r.do(ctx, OpCreatePlaylist, pl.Title, func(ctx context.Context, attempt int) error {
			if attempt > 1 {
				found, ok, err := r.findRemote(ctx, key)
				if err != nil {
					return err
				}
				if ok {
					id = found.ID
					return nil
				}
			}
			var err error
			id, err = r.client.CreatePlaylist(ctx, pl.Title, pl.Privacy)
			return err
		})
		if !res.OK() {
			sendProgress(r.progress, itemFailedUpdate(PushPlaylists, i+1, total, pl.Title, res.Err))
			record(result, res, pl.Title)
			continue
		}
		r.remote[key] = services.Playlist{ID: id, Title: pl.Title, Privacy: string(pl.Privacy)}

		if !r.fillPlaylist(ctx, pl, id, result) {
			r.discardPlaylist(ctx, pl, id, result)
			sendProgress(r.progress, itemFailedUpdate(PushPlaylists, i+1, total, pl.Title, errPlaylistIncomplete))
			continue
		}
		sendProgress(r.progress, itemUpdate(PushPlaylists, i+1, total, fmt.Sprintf("%s (%d videos)", pl.Title, len(pl.Videos))))
	}
}

var errPlaylistIncomplete = errors.New("playlist incomplete")

// fillPlaylist adds the videos of pl to the freshly created remote playlist id, stopping at
// the first video that cannot be added.
func (r *Reconciler) fillPlaylist(ctx context.Context, pl models.Playlist, id string, result *models.RunResult) bool {
	for _, videoID := range pl.Videos {
		target := pl.Title + "/" + videoID
		res := r.do(ctx, OpAddPlaylistVideo, target, func(ctx context.Context, _ int) error {
			return r.client.AddPlaylistVideo(ctx, id, videoID)
		})
		if !res.OK() {
			record(result, res, target)
			return false
		}
	}
	return true
}

// discardPlaylist deletes a playlist created in this run that could not be filled, so the next
// run creates it again instead of finding a partial copy under the same title.
func (r *Reconciler) discardPlaylist(ctx context.Context, pl models.Playlist, id string, result *models.RunResult) {
	tracing.AddEvent(ctx, "playlist.discarded", attribute.String("playlist.id", id))

	res := r.do(ctx, OpDeletePlaylist, pl.Title, func(ctx context.Context, _ int) error {
		return idempotentRemoval(r.client.DeletePlaylist(ctx, id))
	})
	if !res.OK() {
		record(result, res, pl.Title)
		result.Note("playlist %q is incomplete on the instance, remove it with: invsync api delete /api/v1/auth/playlists/%s", pl.Title, id)
		return
	}
	delete(r.remote, pl.Key())
}

func (r *Reconciler) removePlaylists(ctx context.Context, delta models.Delta, result *models.RunResult) {
	if len(delta.RemovedPlaylists) == 0 {
		return
	}
	if !r.listRemote(ctx, result) {
		return
	}

	total := len(delta.RemovedPlaylists)
	for i, pl := range delta.RemovedPlaylists {
		key := pl.Key()
		existing, ok := r.remote[key]
		if !ok {
			result.Note("playlist %q not found on the instance, nothing to delete", pl.Title)
			sendProgress(r.progress, itemUpdate(RemovePlaylists, i+1, total, pl.Title+" (absent)"))
			continue
		}

		res := r.do(ctx, OpDeletePlaylist, pl.Title, func(ctx context.Context, _ int) error {
			return idempotentRemoval(r.client.DeletePlaylist(ctx, existing.ID))
		})
		if !res.OK() {
			sendProgress(r.progress, itemFailedUpdate(RemovePlaylists, i+1, total, pl.Title, res.Err))
			record(result, res, pl.Title)
			continue
		}
		delete(r.remote, key)
		sendProgress(r.progress, itemUpdate(RemovePlaylists, i+1, total, pl.Title))
	}
}
