// Package whisper implements the text extraction client for the LLMWhisperer
// v2 document API. A document is submitted, its processing status polled, and
// the extracted plain text retrieved once the service reports completion.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"invox/internal/config"
	"invox/internal/domain"
	"invox/internal/retry"
)

// Client talks to the LLMWhisperer whisper/whisper-status/whisper-retrieve
// endpoints. It implements port.TextExtractor.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	maxPolls     int
	policy       retry.Policy
	client       *http.Client
}

// NewClient creates a Client from the OCR config.
func NewClient(cfg *config.OCRConfig) *Client {
	return NewClientWithEndpoint(cfg, cfg.BaseURL)
}

// NewClientWithEndpoint creates a Client pointing at a custom base URL (for testing).
func NewClientWithEndpoint(cfg *config.OCRConfig, baseURL string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 2 * time.Second
	}
	maxPolls := cfg.MaxPolls
	if maxPolls == 0 {
		maxPolls = 150
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   time.Second,
			MaxDelay:    15 * time.Second,
			Jitter:      true,
		},
		client: &http.Client{Timeout: timeout},
	}
}

// Extract submits the file, waits for processing to finish, and returns the
// extracted text. Empty output is an error since no structuring step can
// succeed on empty input.
func (c *Client) Extract(ctx context.Context, file *domain.UploadedFile) (string, error) {
	hash, err := c.submit(ctx, file.Data)
	if err != nil {
		return "", err
	}
	log.Printf("whisper.Extract: document %s submitted (%d bytes, hash %s)", file.Filename, len(file.Data), hash)

	if err := c.waitProcessed(ctx, hash); err != nil {
		return "", err
	}

	text, err := c.retrieve(ctx, hash)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("whisper hash %s: %w", hash, domain.ErrEmptyExtraction)
	}
	log.Printf("whisper.Extract: retrieved %d characters for %s", len(text), file.Filename)
	return text, nil
}

func (c *Client) submit(ctx context.Context, data []byte) (string, error) {
	submitURL := c.baseURL + "/whisper?" + url.Values{
		"mode":        {"form"},
		"output_mode": {"layout_preserving"},
	}.Encode()

	var hash string
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating submit request: %w", err)
		}
		req.Header.Set("unstract-key", c.apiKey)
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.Transient(fmt.Errorf("submitting document: %v: %w", err, domain.ErrUpstreamUnavailable))
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(fmt.Errorf("reading submit response: %v: %w", err, domain.ErrUpstreamUnavailable))
		}

		if resp.StatusCode != http.StatusAccepted {
			return classifyStatus(resp.StatusCode, "submit", body)
		}

		var parsed struct {
			WhisperHash string `json:"whisper_hash"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil || parsed.WhisperHash == "" {
			return fmt.Errorf("submit response missing whisper_hash: %w", domain.ErrUpstreamRejected)
		}
		hash = parsed.WhisperHash
		return nil
	})
	return hash, err
}

// waitProcessed polls whisper-status until the document is processed or the
// poll budget runs out. A "processing" or "accepted" status keeps polling;
// any other status is a permanent upstream failure.
func (c *Client) waitProcessed(ctx context.Context, hash string) error {
	statusURL := c.baseURL + "/whisper-status?" + url.Values{"whisper_hash": {hash}}.Encode()

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		status, err := c.checkStatus(ctx, statusURL)
		if err != nil {
			return err
		}

		switch status {
		case "processed":
			return nil
		case "processing", "accepted":
			if attempt%10 == 0 {
				log.Printf("whisper.waitProcessed: hash %s still %s (poll %d/%d)", hash, status, attempt+1, c.maxPolls)
			}
		default:
			return fmt.Errorf("unexpected whisper status %q: %w", status, domain.ErrUpstreamRejected)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("document not processed after %d polls: %w", c.maxPolls, domain.ErrUpstreamTimeout)
}

func (c *Client) checkStatus(ctx context.Context, statusURL string) (string, error) {
	var status string
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return fmt.Errorf("creating status request: %w", err)
		}
		req.Header.Set("unstract-key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.Transient(fmt.Errorf("checking status: %v: %w", err, domain.ErrUpstreamUnavailable))
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(fmt.Errorf("reading status response: %v: %w", err, domain.ErrUpstreamUnavailable))
		}
		if resp.StatusCode != http.StatusOK {
			return classifyStatus(resp.StatusCode, "status", body)
		}

		var parsed struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("status response not parseable: %w", domain.ErrUpstreamRejected)
		}
		status = parsed.Status
		return nil
	})
	return status, err
}

func (c *Client) retrieve(ctx context.Context, hash string) (string, error) {
	retrieveURL := c.baseURL + "/whisper-retrieve?" + url.Values{"whisper_hash": {hash}}.Encode()

	var text string
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, retrieveURL, nil)
		if err != nil {
			return fmt.Errorf("creating retrieve request: %w", err)
		}
		req.Header.Set("unstract-key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.Transient(fmt.Errorf("retrieving text: %v: %w", err, domain.ErrUpstreamUnavailable))
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(fmt.Errorf("reading retrieve response: %v: %w", err, domain.ErrUpstreamUnavailable))
		}
		if resp.StatusCode != http.StatusOK {
			return classifyStatus(resp.StatusCode, "retrieve", body)
		}
		text = string(body)
		return nil
	})
	return text, err
}

// classifyStatus maps a non-success HTTP status to the error taxonomy:
// 5xx and 429 are transient, everything else is a permanent rejection.
func classifyStatus(status int, op string, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	if status >= 500 || status == http.StatusTooManyRequests {
		return retry.Transient(fmt.Errorf("whisper %s returned %d (%s): %w", op, status, detail, domain.ErrUpstreamUnavailable))
	}
	return fmt.Errorf("whisper %s returned %d (%s): %w", op, status, detail, domain.ErrUpstreamRejected)
}
