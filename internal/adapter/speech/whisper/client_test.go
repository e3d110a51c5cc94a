package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

func TestTranscribe_ParsesVerboseResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "answer.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"text": "Recursion is when a function calls itself. It needs a base case.",
			"duration": 6.0,
			"segments": [{"avg_logprob": -0.2, "no_speech_prob": 0.01}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	got, err := c.Transcribe(context.Background(), []byte("RIFFfakewav"), "en")
	require.NoError(t, err)

	assert.Contains(t, got.Text, "base case")
	assert.InDelta(t, 6.0, got.DurationSeconds, 1e-9)
	// 12 words over 6 seconds.
	assert.InDelta(t, 120.0, got.VoiceMetrics.SpeakingRateWPM, 1e-6)
	assert.InDelta(t, 84.0, got.VoiceMetrics.Confidence, 1e-6)
	assert.Greater(t, got.VoiceMetrics.Intonation, 60.0)
}

func TestTranscribe_FillersLowerFluency(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text": "um like basically it just works", "duration": 3.0}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	got, err := c.Transcribe(context.Background(), []byte("audio"), "")
	require.NoError(t, err)
	assert.Less(t, got.VoiceMetrics.Fluency, 100.0)
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	t.Parallel()
	c := New("http://localhost:0", time.Second)
	_, err := c.Transcribe(context.Background(), nil, "en")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTranscribe_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Transcribe(context.Background(), []byte("audio"), "en")
	require.ErrorIs(t, err, domain.ErrProviderFailure)
}
