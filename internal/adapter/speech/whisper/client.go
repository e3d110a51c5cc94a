// Package whisper implements speech-to-text against a Whisper-compatible
// transcription endpoint and derives voice-quality metrics from the result.
package whisper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Client posts WAV audio as multipart form data, the OpenAI transcription shape.
type Client struct {
	url string
	hc  *http.Client
}

var _ domain.SpeechToText = (*Client)(nil)

// New constructs a transcription client.
func New(url string, timeout time.Duration) *Client {
	return &Client{url: url, hc: &http.Client{Timeout: timeout}}
}

type verboseResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		AvgLogprob float64 `json:"avg_logprob"`
		NoSpeech   float64 `json:"no_speech_prob"`
	} `json:"segments"`
}

// Transcribe sends one complete answer recording and returns the transcript
// with derived voice metrics.
func (c *Client) Transcribe(ctx domain.Context, audio []byte, language string) (domain.Transcription, error) {
	tracer := otel.Tracer("adapter.whisper")
	ctx, span := tracer.Start(ctx, "whisper.Transcribe")
	defer span.End()

	if len(audio) == 0 {
		return domain.Transcription{}, fmt.Errorf("%w: empty audio", domain.ErrInvalidArgument)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "answer.wav")
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("op=stt.form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return domain.Transcription{}, fmt.Errorf("op=stt.form: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return domain.Transcription{}, fmt.Errorf("op=stt.form: %w", err)
		}
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return domain.Transcription{}, fmt.Errorf("op=stt.form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.Transcription{}, fmt.Errorf("op=stt.form: %w", err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("op=stt.request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.hc.Do(req)
	observability.ObserveAIRequest("whisper", "transcribe", start)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("%w: stt: %v", domain.ErrProviderFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Transcription{}, fmt.Errorf("%w: stt status %d: %s", domain.ErrProviderFailure, resp.StatusCode, string(body))
	}
	var out verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Transcription{}, fmt.Errorf("%w: stt decode: %v", domain.ErrSchemaInvalid, err)
	}

	return domain.Transcription{
		Text:            strings.TrimSpace(out.Text),
		DurationSeconds: out.Duration,
		VoiceMetrics:    deriveMetrics(out),
	}, nil
}

// Filler words counted against fluency.
var fillers = map[string]struct{}{
	"um": {}, "uh": {}, "like": {}, "basically": {}, "actually": {}, "literally": {},
}

// deriveMetrics turns transcription statistics into 0..100 voice scores.
// Heuristic by design: confidence tracks segment log probability, fluency the
// filler-word ratio, intonation the sentence-length variety.
func deriveMetrics(r verboseResponse) domain.VoiceMetrics {
	words := strings.Fields(strings.ToLower(r.Text))

	var wpm float64
	if r.Duration > 0 {
		wpm = float64(len(words)) / r.Duration * 60
	}

	fillerCount := 0
	for _, w := range words {
		if _, ok := fillers[strings.Trim(w, ".,!?")]; ok {
			fillerCount++
		}
	}
	fluency := 100.0
	if len(words) > 0 {
		fluency = clamp(100 - 400*float64(fillerCount)/float64(len(words)))
	}

	confidence := 70.0
	if len(r.Segments) > 0 {
		var sum float64
		for _, seg := range r.Segments {
			sum += seg.AvgLogprob
		}
		avg := sum / float64(len(r.Segments))
		// avg_logprob of 0 is perfect, around -1 is poor.
		confidence = clamp(100 + avg*80)
	}

	sentences := strings.FieldsFunc(r.Text, func(c rune) bool {
		return c == '.' || c == '!' || c == '?'
	})
	intonation := 60.0
	if len(sentences) > 1 {
		intonation = clamp(60 + 10*float64(len(sentences)-1))
	}

	return domain.VoiceMetrics{
		Intonation:      intonation,
		Fluency:         fluency,
		Confidence:      confidence,
		SpeakingRateWPM: wpm,
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
