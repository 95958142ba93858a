// Package services implements the [Client] interface against an Invidious instance.
//
// # Invidious Client
//
// [InvidiousClient] maps each [Client] method onto one call of the authenticated API v1:
//   - history: POST and DELETE /api/v1/auth/history/{videoId}
//   - subscriptions: POST and DELETE /api/v1/auth/subscriptions/{ucid}
//   - playlists: GET and POST /api/v1/auth/playlists, POST /api/v1/auth/playlists/{id}/videos,
//     DELETE /api/v1/auth/playlists/{id}
//   - channel names: GET /api/v1/channels/{ucid}?fields=author
//
// The token is attached by an [oauth2.Transport] with a static token source. Requests are paced
// with a [rate.Limiter] and bounded by the [http.Client] timeout. The client never retries; that is
// the caller's job.
//
// # Error Handling
//
// Non-2xx responses become an [HTTPError], which unwraps to a sentinel from the shared package:
//   - [shared.ErrRemoteAuth] : 401 or 403, the token is missing, expired or lacks scopes
//   - [shared.ErrRemoteNotFound] : 404
//   - [shared.ErrRemoteTransient] : any other status
//
// Network errors and timeouts also wrap [shared.ErrRemoteTransient].
//
// # Raw Access
//
// [APIService] sends arbitrary requests through the same authenticated client, for the api command.
package services
