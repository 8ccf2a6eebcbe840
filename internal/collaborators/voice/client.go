// Package voice is the HTTP client for the text-to-speech service. It is
// the final consumer of the turn's response text.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "drivethru-dialogue/internal/common/errors"
	"drivethru-dialogue/internal/common/logger"
)

var ErrRenderFailed = errors.New("VOICE_RENDER_FAILED")

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Voice   string
}

type Client struct {
	config Config
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

// Render synthesizes the text and returns a reference to the audio.
// Failures come back as *apperrors.StandardError with ErrRenderFailed in
// the unwrap chain.
func (c *Client) Render(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"text":  text,
		"voice": c.config.Voice,
	})
	if err != nil {
		return "", renderError(fmt.Errorf("%w: encode request: %v", ErrRenderFailed, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/voice/render", bytes.NewReader(body))
	if err != nil {
		return "", renderError(fmt.Errorf("%w: %v", ErrRenderFailed, err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", renderError(fmt.Errorf("%w: %v", ErrRenderFailed, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", renderError(fmt.Errorf("%w: status %d", ErrRenderFailed, resp.StatusCode))
	}

	var response struct {
		AudioURL string `json:"audio_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", renderError(fmt.Errorf("%w: decode response: %v", ErrRenderFailed, err))
	}
	if response.AudioURL == "" {
		return "", renderError(fmt.Errorf("%w: empty audio reference", ErrRenderFailed))
	}
	return response.AudioURL, nil
}

func renderError(err error) *apperrors.StandardError {
	return apperrors.NewExternalServiceError("voice", err)
}
