package avatar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"peerprep/avatar/internal/cache"
	"peerprep/avatar/internal/config"
	"peerprep/avatar/internal/models"
)

const idleURLCacheKey = "avatar:idle_video_url"

// ProviderError is an error from the video provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeAPIKey      = "invalid_api_key"
	ErrCodeServiceDown = "service_unavailable"
	ErrCodeRejected    = "clip_rejected"
	ErrCodeTimeout     = "generation_timeout"
)

// Client talks to the D-ID Clips API to produce talking-presenter videos.
// There is no official Go SDK, so this is a thin hand-rolled client over
// the documented REST surface.
type Client struct {
	cfg    *config.Config
	httpc  *http.Client
	store  cache.Store
	logger *zap.Logger
}

func NewClient(cfg *config.Config, store cache.Store, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 30 * time.Second},
		store:  store,
		logger: logger,
	}
}

// IsConfigured reports whether video generation is available. Without an
// API key every interview runs in audio-only mode.
func (c *Client) IsConfigured() bool {
	return c.cfg.AvatarConfigured()
}

// ClipState is the provider-side state of one clip.
type ClipState struct {
	Status    models.VideoJobStatus
	ResultURL string
	Error     string
}

type createClipRequest struct {
	PresenterID string     `json:"presenter_id"`
	Script      clipScript `json:"script"`
	Config      clipConfig `json:"config"`
}

type clipConfig struct {
	ResultFormat string `json:"result_format"`
}

type clipScript struct {
	Type     string `json:"type"`
	Input    string `json:"input"`
	Provider struct {
		Type    string `json:"type"`
		VoiceID string `json:"voice_id"`
	} `json:"provider"`
}

type clipResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url"`
	Error     struct {
		Kind        string `json:"kind"`
		Description string `json:"description"`
	} `json:"error"`
}

// SubmitClip asks the provider to render the given text and returns the
// clip id to poll.
func (c *Client) SubmitClip(ctx context.Context, text string) (string, error) {
	payload := createClipRequest{
		PresenterID: c.cfg.PresenterID,
		Config:      clipConfig{ResultFormat: "mp4"},
	}
	payload.Script.Type = "text"
	payload.Script.Input = text
	payload.Script.Provider.Type = "microsoft"
	payload.Script.Provider.VoiceID = c.cfg.DIDTTSVoice

	var resp clipResponse
	if err := c.do(ctx, http.MethodPost, "/clips", payload, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &ProviderError{
			Provider: "d-id",
			Code:     ErrCodeServiceDown,
			Message:  "Clip creation returned no id",
		}
	}
	return resp.ID, nil
}

// ClipStatus polls one clip and maps the provider's lifecycle onto ours.
func (c *Client) ClipStatus(ctx context.Context, clipID string) (*ClipState, error) {
	var resp clipResponse
	if err := c.do(ctx, http.MethodGet, "/clips/"+clipID, nil, &resp); err != nil {
		return nil, err
	}

	state := &ClipState{}
	switch resp.Status {
	case "done":
		state.Status = models.VideoCompleted
		state.ResultURL = resp.ResultURL
	case "error", "rejected":
		state.Status = models.VideoFailed
		state.Error = resp.Error.Description
		if state.Error == "" {
			state.Error = "clip " + resp.Status
		}
	default: // "created", "started"
		state.Status = models.VideoProcessing
	}
	return state, nil
}

// GenerateVideo submits a clip and polls until it finishes. It blocks for
// up to the configured generation timeout and returns the result URL.
// Finished clips are cached by script digest, so repeating a question does
// not spend another generation credit.
func (c *Client) GenerateVideo(ctx context.Context, text string) (string, error) {
	cacheKey := c.clipCacheKey(text)
	if url, ok := c.store.Get(ctx, cacheKey); ok {
		return url, nil
	}

	clipID, err := c.SubmitClip(ctx, text)
	if err != nil {
		return "", err
	}

	deadline := time.Now().Add(c.cfg.GenerationTimeout)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", &ProviderError{
				Provider: "d-id",
				Code:     ErrCodeTimeout,
				Message:  "Video generation canceled",
				Err:      ctx.Err(),
			}
		case <-ticker.C:
		}

		state, err := c.ClipStatus(ctx, clipID)
		if err != nil {
			return "", err
		}
		switch state.Status {
		case models.VideoCompleted:
			c.store.Set(ctx, cacheKey, state.ResultURL, time.Hour)
			return state.ResultURL, nil
		case models.VideoFailed:
			return "", &ProviderError{
				Provider: "d-id",
				Code:     ErrCodeRejected,
				Message:  state.Error,
			}
		}

		if time.Now().After(deadline) {
			return "", &ProviderError{
				Provider: "d-id",
				Code:     ErrCodeTimeout,
				Message:  fmt.Sprintf("Clip %s did not finish within %s", clipID, c.cfg.GenerationTimeout),
			}
		}
	}
}

// clipCacheKey digests the script plus everything that changes the
// rendered output.
func (c *Client) clipCacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.cfg.PresenterID + "|" + c.cfg.DIDTTSVoice + "|" + text))
	return "avatar:clip:" + hex.EncodeToString(sum[:8])
}

type presentersResponse struct {
	Presenters []struct {
		PresenterID string `json:"presenter_id"`
		IdleVideo   string `json:"idle_video"`
	} `json:"presenters"`
}

// IdleAssetURL resolves the presenter's idle loop video. The lookup hits
// the provider at most once per cache TTL; on any failure the configured
// default is used, which exists for every hosted presenter.
func (c *Client) IdleAssetURL(ctx context.Context) string {
	if url, ok := c.store.Get(ctx, idleURLCacheKey); ok {
		return url
	}
	if !c.IsConfigured() {
		return c.cfg.PresenterIdleURL
	}

	var resp presentersResponse
	if err := c.do(ctx, http.MethodGet, "/clips/presenters/"+c.cfg.PresenterID, nil, &resp); err != nil {
		c.logger.Warn("presenter lookup failed, using default idle video", zap.Error(err))
		return c.cfg.PresenterIdleURL
	}

	url := c.cfg.PresenterIdleURL
	for _, p := range resp.Presenters {
		if p.IdleVideo != "" {
			url = p.IdleVideo
			break
		}
	}
	c.store.Set(ctx, idleURLCacheKey, url, time.Hour)
	return url
}

// PresenterImageURL is the still image shown in audio-only mode.
func (c *Client) PresenterImageURL() string {
	return c.cfg.PresenterImageURL
}

// PresenterID identifies the hosted presenter used for clips.
func (c *Client) PresenterID() string {
	return c.cfg.PresenterID
}

type creditsResponse struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// Credits reports the remaining generation quota on the provider account.
func (c *Client) Credits(ctx context.Context) (remaining, total int, err error) {
	var resp creditsResponse
	if err := c.do(ctx, http.MethodGet, "/credits", nil, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Remaining, resp.Total, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &ProviderError{Provider: "d-id", Code: ErrCodeServiceDown, Message: "Failed to encode request", Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.DIDAPIURL+path, body)
	if err != nil {
		return &ProviderError{Provider: "d-id", Code: ErrCodeServiceDown, Message: "Failed to build request", Err: err}
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.DIDAPIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return &ProviderError{Provider: "d-id", Code: ErrCodeServiceDown, Message: "Video provider unreachable", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return &ProviderError{Provider: "d-id", Code: ErrCodeAPIKey, Message: "Video provider rejected credentials"}
	}
	if res.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &ProviderError{
			Provider: "d-id",
			Code:     ErrCodeServiceDown,
			Message:  fmt.Sprintf("Video provider returned %d: %s", res.StatusCode, snippet),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
