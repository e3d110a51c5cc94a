// Package openai implements the embedding port against the OpenAI embeddings API.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Service calls the embeddings endpoint and computes similarity locally.
type Service struct {
	cfg config.Config
	hc  *http.Client
}

var _ domain.EmbeddingService = (*Service)(nil)

// New constructs an embedding service.
func New(cfg config.Config) *Service {
	return &Service{cfg: cfg, hc: &http.Client{Timeout: cfg.EmbeddingTimeout}}
}

// Embed returns the vector for one text.
func (s *Service) Embed(ctx domain.Context, text string) ([]float32, error) {
	if s.cfg.OpenAIAPIKey == "" || s.cfg.EmbeddingsModel == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrInvalidArgument)
	}
	body, _ := json.Marshal(map[string]any{
		"model": s.cfg.EmbeddingsModel,
		"input": []string{text},
	})

	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	op := func() error {
		start := time.Now()
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.OpenAIBaseURL+"/embeddings", bytes.NewReader(body))
		r.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := s.hc.Do(r)
		observability.ObserveAIRequest("openai", "embed", start)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("embeddings rate limited", slog.String("provider", "openai"))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("embed status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}
		return json.Unmarshal(raw, &out)
	}

	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := s.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return nil, fmt.Errorf("%w: embed: %v", domain.ErrProviderFailure, err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: embed: empty data", domain.ErrProviderFailure)
	}
	vec := make([]float32, len(out.Data[0].Embedding))
	for i, v := range out.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// CosineSimilarity returns the cosine of two vectors clamped to [0,1].
// Mismatched or zero vectors score 0.
func (s *Service) CosineSimilarity(a, b []float32) float64 {
	return Cosine(a, b)
}

// Cosine is the shared cosine computation. Negative similarity is floored to
// zero; text embeddings rarely go below it and the scoring scale starts at 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}
