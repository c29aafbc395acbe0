package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/AbokiLearn/disappility/internal/audio"
)

// WhisperConfig configures the local whisper-server HTTP backend.
type WhisperConfig struct {
	Endpoint string
	Model    string
	Language string
	UseGPU   bool
	Timeout  time.Duration
}

// WhisperClient posts phrase audio as a WAV upload to a whisper-compatible
// inference server and reads back {"text": ...}. No retries: a recognition
// failure is fatal for the session.
type WhisperClient struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

// NewWhisperClient validates config and builds the HTTP backend.
func NewWhisperClient(cfg WhisperConfig) (*WhisperClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("whisper endpoint is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &WhisperClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Transcribe uploads the phrase audio and returns the recognized text.
func (c *WhisperClient) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	wavData, err := audio.WAVBytes(audio.EncodePCM16(samples), sampleRate)
	if err != nil {
		return "", fmt.Errorf("encode phrase audio: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "phrase.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}

	fields := map[string]string{
		"response_format": "json",
	}
	if c.cfg.Model != "" {
		fields["model"] = c.cfg.Model
	}
	if c.cfg.Language != "" {
		fields["language"] = c.cfg.Language
	}
	if c.cfg.UseGPU {
		fields["device"] = "gpu"
	} else {
		fields["device"] = "cpu"
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("write form field %q: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post transcription request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	return strings.TrimSpace(decoded.Text), nil
}
