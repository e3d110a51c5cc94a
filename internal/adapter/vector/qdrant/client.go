// Package qdrant implements the exemplar vector index against the Qdrant
// HTTP API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Client is a minimal Qdrant HTTP client scoped to one collection of planned
// questions.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	vectorSize int
	httpClient *http.Client
}

var _ domain.VectorIndex = (*Client)(nil)

// New constructs a Qdrant client for the question collection.
func New(baseURL, apiKey, collection string, vectorSize int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
		vectorSize: vectorSize,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// EnsureCollection creates the question collection if it does not exist.
func (c *Client) EnsureCollection(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection), nil)
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	payload := map[string]any{
		"vectors": map[string]any{"size": c.vectorSize, "distance": "Cosine"},
	}
	b, _ := json.Marshal(payload)
	req, _ = http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection), bytes.NewReader(b))
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	resp, err = c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant ensure create status %d", resp.StatusCode)
	}
	return nil
}

// UpsertQuestion stores one planned question with its metadata payload so it
// can later serve as a generation exemplar.
func (c *Client) UpsertQuestion(ctx domain.Context, q domain.Question) error {
	if len(q.Embedding) == 0 {
		return fmt.Errorf("%w: question %s has no embedding", domain.ErrInvalidArgument, q.ID)
	}
	body := map[string]any{
		"points": []map[string]any{{
			"id":     q.ID,
			"vector": q.Embedding,
			"payload": map[string]any{
				"text":       q.Text,
				"type":       string(q.Type),
				"difficulty": string(q.Difficulty),
				"skills":     q.Skills,
			},
		}},
	}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points", c.baseURL, c.collection), bytes.NewReader(b))
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("op=qdrant.upsert: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("op=qdrant.upsert: status %d", resp.StatusCode)
	}
	return nil
}

// FindSimilarQuestions returns the top-k stored questions nearest to the
// vector, narrowed by the metadata filter.
func (c *Client) FindSimilarQuestions(ctx domain.Context, vector []float32, topK int, f domain.ExemplarFilter) ([]domain.Exemplar, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if must := filterClauses(f); len(must) > 0 {
		body["filter"] = map[string]any{"must": must}
	}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection), bytes.NewReader(b))
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=qdrant.search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("op=qdrant.search: status %d", resp.StatusCode)
	}

	var out struct {
		Result []struct {
			ID      any     `json:"id"`
			Score   float64 `json:"score"`
			Payload struct {
				Text string `json:"text"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("op=qdrant.search: decode: %w", err)
	}
	exemplars := make([]domain.Exemplar, 0, len(out.Result))
	for _, r := range out.Result {
		exemplars = append(exemplars, domain.Exemplar{
			QuestionID: fmt.Sprintf("%v", r.ID),
			Text:       r.Payload.Text,
			Score:      r.Score,
		})
	}
	return exemplars, nil
}

func filterClauses(f domain.ExemplarFilter) []map[string]any {
	var must []map[string]any
	if f.Skill != "" {
		must = append(must, map[string]any{"key": "skills", "match": map[string]any{"value": f.Skill}})
	}
	if f.Type != "" {
		must = append(must, map[string]any{"key": "type", "match": map[string]any{"value": string(f.Type)}})
	}
	if f.Difficulty != "" {
		must = append(must, map[string]any{"key": "difficulty", "match": map[string]any{"value": string(f.Difficulty)}})
	}
	return must
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
}
