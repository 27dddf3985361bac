// Package callback delivers task completion notices to a configured
// webhook endpoint.
package callback

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"folio-api/internal/config"
	"folio-api/internal/logging"
)

// Payload is the JSON body POSTed to the webhook
type Payload struct {
	ProcessID      string                 `json:"process_id"`
	Operation      string                 `json:"operation"`
	Status         string                 `json:"status"`
	Data           interface{}            `json:"data,omitempty"`
	Error          string                 `json:"error,omitempty"`
	ProcessingTime string                 `json:"processing_time"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// Client posts completion payloads with retries. A non-2xx response or
// transport error is retried with linear backoff up to MaxRetries.
type Client struct {
	webhookURL string
	secret     string
	maxRetries int
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient creates a webhook client from configuration
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.Callback.WebhookURL == "" {
		return nil, fmt.Errorf("callback webhook URL is not configured")
	}

	return &Client{
		webhookURL: cfg.Callback.WebhookURL,
		secret:     cfg.Callback.Secret,
		maxRetries: cfg.Callback.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Callback.Timeout},
		logger:     logging.GetGlobalLogger().WithField("component", "callback"),
	}, nil
}

// Send delivers one payload, retrying on failure
func (c *Client) Send(ctx context.Context, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode callback payload: %w", err)
	}

	var lastErr error
	attempts := c.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.post(ctx, body); err != nil {
			lastErr = err
			c.logger.Warn("Callback delivery failed", map[string]interface{}{
				"process_id": payload.ProcessID,
				"attempt":    attempt,
				"error":      err.Error(),
			})

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}

		c.logger.Info("Callback delivered", map[string]interface{}{
			"process_id": payload.ProcessID,
			"status":     payload.Status,
			"attempt":    attempt,
		})
		return nil
	}

	return fmt.Errorf("callback delivery failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-Folio-Signature", Sign(c.secret, body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 signature the receiver verifies
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
