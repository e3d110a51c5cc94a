package kokoro

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

func TestSynthesize_WrapsPCMInWav(t *testing.T) {
	t.Parallel()
	pcm := make([]byte, 3200) // 100 ms at 16 kHz mono 16-bit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "kokoro", body["model"])
		assert.Equal(t, "What is a goroutine?", body["input"])
		assert.Equal(t, "af_sky", body["voice"])
		assert.Equal(t, "pcm", body["response_format"])
		assert.InDelta(t, 1.1, body["speed"].(float64), 1e-9)
		_, _ = w.Write(pcm)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	wav, err := c.Synthesize(context.Background(), "What is a goroutine?", domain.SynthesisOptions{Voice: "af_sky", Speed: 1.1})
	require.NoError(t, err)

	require.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestSynthesize_EmptyTextIsNoop(t *testing.T) {
	t.Parallel()
	c := New("http://localhost:0", time.Second)
	wav, err := c.Synthesize(context.Background(), "", domain.SynthesisOptions{})
	require.NoError(t, err)
	assert.Nil(t, wav)
}

func TestSynthesize_DefaultsSpeed(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.InDelta(t, 1.0, body["speed"].(float64), 1e-9)
		_, _ = w.Write([]byte{0, 0})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Synthesize(context.Background(), "hi", domain.SynthesisOptions{Voice: "af_sky"})
	require.NoError(t, err)
}

func TestSynthesize_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Synthesize(context.Background(), "hi", domain.SynthesisOptions{})
	require.ErrorIs(t, err, domain.ErrProviderFailure)
}
