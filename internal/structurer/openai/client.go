// Package openai implements port.InvoiceStructurer using the OpenAI Chat
// Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"invox/internal/config"
	"invox/internal/domain"
	"invox/internal/retry"
	"invox/internal/structurer"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client sends extracted invoice text to the model and returns the candidate
// JSON payload. It implements port.InvoiceStructurer.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	policy   retry.Policy
	client   *http.Client
}

// NewClient creates a Client from the LLM config.
func NewClient(cfg *config.LLMConfig) *Client {
	return NewClientWithEndpoint(cfg, apiURL)
}

// NewClientWithEndpoint creates a Client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.LLMConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Jitter:      true,
		},
		client: &http.Client{Timeout: timeout},
	}
}

// Structure asks the model to convert rawText into the invoice JSON shape.
// The returned payload is parsed only far enough to confirm it is a JSON
// object; field validation belongs to the normalizer.
func (c *Client) Structure(ctx context.Context, rawText string) (json.RawMessage, error) {
	reqBody := map[string]interface{}{
		"model":       c.model,
		"temperature": 0,
		"messages": []map[string]interface{}{
			{"role": "system", "content": structurer.SystemPrompt},
			{"role": "user", "content": structurer.BuildUserPrompt(rawText)},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	log.Printf("openai.Structure: sending request (model %s, %d chars of text)", c.model, len(rawText))

	content, err := c.complete(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	cleaned := structurer.StripCodeFences(content)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("model returned non-JSON content (%s): %w", truncate(cleaned, 200), domain.ErrMalformedModelOutput)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, fmt.Errorf("model output is not a JSON object: %w", domain.ErrMalformedModelOutput)
	}

	return json.RawMessage(cleaned), nil
}

// Ping sends a trivial prompt to verify connectivity and credentials.
func (c *Client) Ping(ctx context.Context) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 10,
		"messages": []map[string]interface{}{
			{"role": "user", "content": "Say 'OK' if you can hear me"},
		},
	}
	return c.complete(ctx, reqBody)
}

// complete performs the chat-completions call under the retry policy and
// returns the first choice's content.
func (c *Client) complete(ctx context.Context, reqBody map[string]interface{}) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var content string
	err = c.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.Transient(fmt.Errorf("calling openai API: %v: %w", err, domain.ErrUpstreamTimeout))
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(fmt.Errorf("reading response: %v: %w", err, domain.ErrUpstreamUnavailable))
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to decode
		case resp.StatusCode == http.StatusTooManyRequests:
			after := structurer.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return retry.TransientAfter(
				fmt.Errorf("openai rate limited (status 429): %w", domain.ErrUpstreamUnavailable),
				time.Duration(after)*time.Second,
			)
		case resp.StatusCode >= 500:
			return retry.Transient(fmt.Errorf("openai API error (status %d): %s: %w",
				resp.StatusCode, truncate(string(respBody), 200), domain.ErrUpstreamUnavailable))
		default:
			return fmt.Errorf("openai API error (status %d): %s: %w",
				resp.StatusCode, truncate(string(respBody), 200), domain.ErrUpstreamRejected)
		}

		var parsed apiResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("unmarshaling response: %v: %w", err, domain.ErrMalformedModelOutput)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("empty response from API: no choices: %w", domain.ErrMalformedModelOutput)
		}
		if parsed.Choices[0].FinishReason == "length" {
			return fmt.Errorf("output truncated (finish_reason: length): %w", domain.ErrMalformedModelOutput)
		}
		content = parsed.Choices[0].Message.Content
		return nil
	})
	return content, err
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
