// Package kokoro implements text-to-speech against a Kokoro-compatible
// speech endpoint and wraps the PCM result in a WAV container.
package kokoro

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

const (
	sampleRate    = 16000
	channels      = 1
	bitsPerSample = 16
)

// Client renders question text as speech.
type Client struct {
	url string
	hc  *http.Client
}

var _ domain.TextToSpeech = (*Client)(nil)

// New constructs a synthesis client.
func New(url string, timeout time.Duration) *Client {
	return &Client{url: url, hc: &http.Client{Timeout: timeout}}
}

type synthesisRequest struct {
	Model          string  `json:"model,omitempty"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize returns 16 kHz mono 16-bit WAV audio for the text.
func (c *Client) Synthesize(ctx domain.Context, text string, opts domain.SynthesisOptions) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1.0
	}
	body, err := json.Marshal(synthesisRequest{
		Model:          "kokoro",
		Input:          text,
		Voice:          opts.Voice,
		ResponseFormat: "pcm",
		Speed:          speed,
	})
	if err != nil {
		return nil, fmt.Errorf("op=tts.marshal: %w", err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("op=tts.request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	observability.ObserveAIRequest("kokoro", "synthesize", start)
	if err != nil {
		return nil, fmt.Errorf("%w: tts: %v", domain.ErrProviderFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: tts status %d: %s", domain.ErrProviderFailure, resp.StatusCode, string(errBody))
	}
	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: tts read: %v", domain.ErrProviderFailure, err)
	}
	return pcmToWav(pcm), nil
}

// pcmToWav prepends the 44-byte RIFF header for 16 kHz mono 16-bit PCM.
func pcmToWav(pcm []byte) []byte {
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)
	dataSize := uint32(len(pcm))

	buf := make([]byte, 0, 44+len(pcm))
	w := bytes.NewBuffer(buf)
	w.WriteString("RIFF")
	_ = binary.Write(w, binary.LittleEndian, 36+dataSize)
	w.WriteString("WAVE")
	w.WriteString("fmt ")
	_ = binary.Write(w, binary.LittleEndian, uint32(16))
	_ = binary.Write(w, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(w, binary.LittleEndian, uint16(channels))
	_ = binary.Write(w, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(w, binary.LittleEndian, byteRate)
	_ = binary.Write(w, binary.LittleEndian, blockAlign)
	_ = binary.Write(w, binary.LittleEndian, uint16(bitsPerSample))
	w.WriteString("data")
	_ = binary.Write(w, binary.LittleEndian, dataSize)
	w.Write(pcm)
	return w.Bytes()
}
