package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		LLMAPIKey:                "test-key",
		LLMBaseURL:               baseURL,
		LLMModel:                 "test-model",
		LLMTimeout:               2 * time.Second,
		AIBackoffMaxElapsedTime:  500 * time.Millisecond,
		AIBackoffInitialInterval: 10 * time.Millisecond,
		AIBackoffMaxInterval:     50 * time.Millisecond,
		AIBackoffMultiplier:      1.5,
	}
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
}

func TestEvaluateAnswer_ParsesStructuredReply(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		chatReply(t, w, `{"score": 72, "completeness": 0.6, "relevance": 0.9, "sentiment": "neutral", "strengths": ["clear"], "weaknesses": ["shallow"], "improvement_suggestions": ["mention the call stack"], "reasoning": "Covers the basics."}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.EvaluateAnswer(context.Background(), domain.EvaluateAnswerInput{
		QuestionText: "Explain recursion.",
		AnswerText:   "It calls itself.",
		IdealAnswer:  "Base case, call stack, termination.",
	})
	require.NoError(t, err)
	assert.Equal(t, 72.0, got.Score)
	assert.Equal(t, 0.6, got.Completeness)
	assert.Equal(t, []string{"clear"}, got.Strengths)
	assert.Equal(t, "Covers the basics.", got.Reasoning)
}

func TestChatJSON_RetriesOnRateLimit(t *testing.T) {
	t.Parallel()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatReply(t, w, `{"question": "What is a goroutine?"}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.GenerateQuestion(context.Background(), domain.GenerateQuestionInput{Skill: "Go"})
	require.NoError(t, err)
	assert.Equal(t, "What is a goroutine?", got)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(2))
}

func TestChatJSON_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.GenerateQuestion(context.Background(), domain.GenerateQuestionInput{Skill: "Go"})
	require.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestChatJSON_MissingAPIKey(t *testing.T) {
	t.Parallel()
	cfg := testConfig("http://localhost:0")
	cfg.LLMAPIKey = ""
	c := New(cfg)
	_, err := c.GenerateQuestion(context.Background(), domain.GenerateQuestionInput{Skill: "Go"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGenerateQuestion_FencedJSONReply(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(t, w, "Here you go:\n```json\n{\"question\": \"How does a map grow?\"}\n```")
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.GenerateQuestion(context.Background(), domain.GenerateQuestionInput{Skill: "Go"})
	require.NoError(t, err)
	assert.Equal(t, "How does a map grow?", got)
}

func TestDetectConceptGaps_UnparseableReply(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(t, w, "I think the candidate missed several things.")
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.DetectConceptGaps(context.Background(), domain.GapDetectionInput{})
	require.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure! Here it is: {\"a\":1} Hope that helps.", `{"a":1}`},
		{"[1,2,3]", "[1,2,3]"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, extractJSON(c.in), "input %q", c.in)
	}
}
