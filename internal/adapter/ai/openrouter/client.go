// Package openrouter implements the LLM provider port against an
// OpenAI-compatible chat completions API.
package openrouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/pkoukk/tiktoken-go"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

const providerName = "openrouter"

// Client talks to an OpenAI-compatible chat completions endpoint with
// exponential backoff and prompt-size clamping.
type Client struct {
	cfg config.Config
	hc  *http.Client
	enc *tiktoken.Tiktoken
}

// New constructs a chat client. The tokenizer load is best effort; without it
// prompts are clamped by rune count instead of token count.
func New(cfg config.Config) *Client {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Warn("openrouter: tokenizer unavailable, clamping by runes", slog.Any("error", err))
		enc = nil
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.LLMTimeout},
		enc: enc,
	}
}

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// clampPrompt truncates a prompt to the configured token budget.
func (c *Client) clampPrompt(prompt string) string {
	limit := c.cfg.LLMMaxPromptTokens
	if limit <= 0 {
		return prompt
	}
	if c.enc == nil {
		// Rough fallback: ~4 runes per token.
		runes := []rune(prompt)
		if len(runes) > limit*4 {
			return string(runes[:limit*4])
		}
		return prompt
	}
	tokens := c.enc.Encode(prompt, nil, nil)
	if len(tokens) <= limit {
		return prompt
	}
	slog.Warn("openrouter: prompt clamped",
		slog.Int("tokens", len(tokens)), slog.Int("limit", limit))
	return c.enc.Decode(tokens[:limit])
}

// chatJSON sends one system+user exchange and returns the raw message content.
// 429 and 5xx are retried under backoff; other 4xx are permanent.
func (c *Client) chatJSON(ctx domain.Context, operation, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.cfg.LLMAPIKey == "" {
		return "", fmt.Errorf("%w: LLM_API_KEY missing", domain.ErrInvalidArgument)
	}
	payload := map[string]any{
		"model":       c.cfg.LLMModel,
		"temperature": 0.2,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": c.clampPrompt(userPrompt)},
		},
	}
	b, _ := json.Marshal(payload)

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	op := func() error {
		start := time.Now()
		// Recreate the request each attempt to avoid reusing a consumed body.
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.LLMBaseURL+"/chat/completions", bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.ObserveAIRequest(providerName, operation, start)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("ai provider rate limited",
				slog.String("provider", providerName), slog.String("op", operation))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			slog.Warn("ai provider 4xx",
				slog.String("provider", providerName), slog.String("op", operation),
				slog.Int("status", resp.StatusCode), slog.String("body", snippet(bodyBytes)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			slog.Error("ai provider non-2xx",
				slog.String("provider", providerName), slog.String("op", operation),
				slog.Int("status", resp.StatusCode), slog.String("body", snippet(bodyBytes)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			return err
		}
		return nil
	}

	bo := backoff.WithContext(c.backoffConfig(), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if errors.Is(err, ctx.Err()) && ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrUpstreamTimeout, operation, err)
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, operation, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: empty choices", domain.ErrProviderFailure, operation)
	}
	return out.Choices[0].Message.Content, nil
}

func snippet(b []byte) string {
	if len(b) > 512 {
		b = b[:512]
	}
	return string(b)
}

// extractJSON strips code fences and surrounding prose from a model reply so
// the JSON object inside can be decoded.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// decodeInto parses a model reply into v, tolerating fenced or prefixed JSON.
func decodeInto(operation, reply string, v any) error {
	if err := json.Unmarshal([]byte(extractJSON(reply)), v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrSchemaInvalid, operation, err)
	}
	return nil
}
