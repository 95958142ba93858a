// Invidious API v1 [Client] implementation
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "invsync/1.0"
	maxResponseSize  = 16 << 20
)

// InvidiousOptions configures an [InvidiousClient].
type InvidiousOptions struct {
	Instance  string  // host[:port], without scheme
	Insecure  bool    // use http instead of https
	Token     string  // API token, sent as a bearer token
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables pacing
	UserAgent string
	Transport http.RoundTripper // defaults to [http.DefaultTransport]
	Logger    *log.Logger
}

// OptionsFromConfig builds client options from the loaded configuration.
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) InvidiousOptions {
	return InvidiousOptions{
		Instance:  cfg.Instance.URL,
		Insecure:  cfg.Instance.Insecure,
		Token:     cfg.Instance.Token,
		Timeout:   cfg.Client.Timeout,
		RateLimit: cfg.Client.RateLimit,
		UserAgent: cfg.Client.UserAgent,
		Logger:    logger,
	}
}

// BaseURL returns the scheme and host requests are sent to.
func (o InvidiousOptions) BaseURL() string {
	scheme := "https"
	if o.Insecure {
		scheme = "http"
	}
	return scheme + "://" + strings.TrimSuffix(o.Instance, "/")
}

// NewHTTPClient builds an [http.Client] that authenticates every request with the token.
func NewHTTPClient(opts InvidiousOptions) *http.Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var transport http.RoundTripper = base
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}),
			Base:   base,
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// InvidiousClient implements [Client] over the Invidious REST API.
type InvidiousClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewInvidiousClient creates a client. A missing token is reported by the first request as an
// authentication failure, so callers that never reach the remote need not supply one.
func NewInvidiousClient(opts InvidiousOptions) *InvidiousClient {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &InvidiousClient{
		baseURL:    opts.BaseURL(),
		userAgent:  ua,
		httpClient: NewHTTPClient(opts),
		limiter:    limiter,
		logger:     logger,
	}
}

// BaseURL returns the instance URL the client talks to.
func (c *InvidiousClient) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the authenticated [http.Client], for raw API access.
func (c *InvidiousClient) HTTPClient() *http.Client {
	return c.httpClient
}

// doRequest sends one request and decodes a JSON response into result when it is non-nil.
func (c *InvidiousClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %w", shared.ErrRemoteTransient, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", shared.ErrRemoteTransient, err)
	}

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewHTTPError(method, path, resp.StatusCode, data)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrRemoteTransient, err)
		}
	}
	return nil
}

// AddHistory calls POST /api/v1/auth/history/{id}.
func (c *InvidiousClient) AddHistory(ctx context.Context, videoID string) error {
	return c.doRequest(ctx, http.MethodPost, "/api/v1/auth/history/"+url.PathEscape(videoID), nil, nil)
}

// RemoveHistory calls DELETE /api/v1/auth/history/{id}.
func (c *InvidiousClient) RemoveHistory(ctx context.Context, videoID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/auth/history/"+url.PathEscape(videoID), nil, nil)
}

// Subscribe calls POST /api/v1/auth/subscriptions/{ucid}.
func (c *InvidiousClient) Subscribe(ctx context.Context, ucid string) error {
	return c.doRequest(ctx, http.MethodPost, "/api/v1/auth/subscriptions/"+url.PathEscape(ucid), nil, nil)
}

// Unsubscribe calls DELETE /api/v1/auth/subscriptions/{ucid}.
func (c *InvidiousClient) Unsubscribe(ctx context.Context, ucid string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/auth/subscriptions/"+url.PathEscape(ucid), nil, nil)
}

// ChannelName calls GET /api/v1/channels/{ucid}?fields=author.
func (c *InvidiousClient) ChannelName(ctx context.Context, ucid string) (string, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/channels/"+url.PathEscape(ucid)+"?fields=author", nil, &raw); err != nil {
		return "", err
	}
	name := gjson.GetBytes(raw, "author").String()
	if name == "" {
		return "", fmt.Errorf("channel %s: response has no author", ucid)
	}
	return name, nil
}

// Playlists calls GET /api/v1/auth/playlists.
func (c *InvidiousClient) Playlists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/playlists", nil, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// CreatePlaylist calls POST /api/v1/auth/playlists.
func (c *InvidiousClient) CreatePlaylist(ctx context.Context, title string, privacy models.Privacy) (string, error) {
	if privacy == "" {
		privacy = models.PrivacyPrivate
	}
	req := map[string]string{"title": title, "privacy": strings.ToLower(string(privacy))}

	var resp struct {
		PlaylistID string `json:"playlistId"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/playlists", req, &resp); err != nil {
		return "", err
	}
	if resp.PlaylistID == "" {
		return "", fmt.Errorf("%w: create playlist %q: response has no playlistId", shared.ErrRemoteTransient, title)
	}
	return resp.PlaylistID, nil
}

// AddPlaylistVideo calls POST /api/v1/auth/playlists/{id}/videos.
func (c *InvidiousClient) AddPlaylistVideo(ctx context.Context, playlistID, videoID string) error {
	path := "/api/v1/auth/playlists/" + url.PathEscape(playlistID) + "/videos"
	return c.doRequest(ctx, http.MethodPost, path, map[string]string{"videoId": videoID}, nil)
}

// DeletePlaylist calls DELETE /api/v1/auth/playlists/{id}.
func (c *InvidiousClient) DeletePlaylist(ctx context.Context, playlistID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/auth/playlists/"+url.PathEscape(playlistID), nil, nil)
}

// VerifyToken checks the token by reading the account preferences.
func (c *InvidiousClient) VerifyToken(ctx context.Context) error {
	var prefs json.RawMessage
	return c.doRequest(ctx, http.MethodGet, "/api/v1/auth/preferences", nil, &prefs)
}

var _ Client = (*InvidiousClient)(nil)
