// Package genai is the HTTP client for the NLU service: intent
// classification, menu item extraction and clarification-question
// generation. Transient failures are retried with exponential backoff; a
// timed-out call surfaces as ErrTimeout so the caller can map it to a
// SYSTEM failure.
package genai

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
	"drivethru-dialogue/internal/models"
)

var (
	ErrRequestFailed = errors.New("GENAI_REQUEST_FAILED")
	ErrTimeout       = errors.New("GENAI_TIMEOUT")
)

// Config carries the client settings, typically taken from apis.genai.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
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

// ClassifyIntent maps an utterance to an (intent, confidence) pair using
// the recent conversation and order snapshot as context. Unknown intent
// strings from the service degrade to UNKNOWN rather than failing.
func (c *Client) ClassifyIntent(ctx context.Context, utterance string, sessCtx models.SessionContext) (models.IntentType, float64, error) {
	request := map[string]interface{}{
		"utterance":      utterance,
		"history":        sessCtx.ConversationHistory,
		"order_snapshot": sessCtx.OrderSnapshot,
	}

	var response struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.post(ctx, "/api/ai/classify-intent", request, &response); err != nil {
		return models.IntentUnknown, 0, err
	}

	confidence := response.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return models.ParseIntentType(response.Intent), confidence, nil
}

// ExtractItems resolves the item mentions for an ADD_ITEM or REMOVE_ITEM
// utterance into command descriptors. An underspecified mention comes back
// with menu_item_id 0 plus ambiguity slots; that is a successful result.
func (c *Client) ExtractItems(ctx context.Context, intent models.IntentType, utterance string, sessCtx models.SessionContext) ([]models.CommandDescriptor, error) {
	request := map[string]interface{}{
		"intent":         intent.String(),
		"utterance":      utterance,
		"restaurant_id":  sessCtx.RestaurantID,
		"order_snapshot": sessCtx.OrderSnapshot,
	}

	var response struct {
		Commands []models.CommandDescriptor `json:"commands"`
	}
	if err := c.post(ctx, "/api/ai/extract-items", request, &response); err != nil {
		return nil, err
	}
	return response.Commands, nil
}

// GenerateClarification produces the follow-up question for a batch whose
// results need the customer to choose.
func (c *Client) GenerateClarification(ctx context.Context, batch *models.CommandBatchResult, sessCtx models.SessionContext) (string, error) {
	request := map[string]interface{}{
		"batch_result": batch,
		"history":      sessCtx.ConversationHistory,
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/api/ai/clarify", request, &response); err != nil {
		return "", err
	}
	return response.Text, nil
}

// post sends one JSON request with retries. The request body is rebuilt on
// every attempt since a consumed body cannot be resent. Failures come back
// as *apperrors.StandardError with ErrRequestFailed or ErrTimeout in the
// unwrap chain.
func (c *Client) post(ctx context.Context, path string, request interface{}, response interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return c.requestError(fmt.Errorf("%w: encode request: %v", ErrRequestFailed, err))
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			c.logger.Warn("retrying genai request", map[string]interface{}{
				"path":    path,
				"attempt": attempt,
				"backoff": backoff.String(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return c.timeoutError(path)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return c.requestError(fmt.Errorf("%w: %v", ErrRequestFailed, err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			// Do may have succeeded in the same instant the context died.
			if resp != nil {
				resp.Body.Close()
			}
			return c.timeoutError(path)
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		return c.requestError(fmt.Errorf("%w: %v", ErrRequestFailed, lastErr))
	}
	if resp == nil {
		return c.requestError(fmt.Errorf("%w: no successful response after retries", ErrRequestFailed))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return c.requestError(fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err))
	}
	return nil
}

func (c *Client) requestError(err error) *apperrors.StandardError {
	return apperrors.NewExternalServiceError("genai", err)
}

func (c *Client) timeoutError(path string) *apperrors.StandardError {
	return apperrors.NewTimeoutError("genai " + path).WithCause(ErrTimeout)
}
