package recognizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AbokiLearn/disappility/internal/audio"
)

// OpenAIConfig configures the hosted Whisper API backend.
type OpenAIConfig struct {
	APIKey   string
	Model    string
	Language string
}

// OpenAIClient transcribes phrase audio through the OpenAI audio API.
type OpenAIClient struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAIClient validates config and builds the hosted backend.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is empty; set OPENAI_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = openai.Whisper1
	}
	return &OpenAIClient{cfg: cfg, client: openai.NewClient(cfg.APIKey)}, nil
}

// Transcribe uploads the phrase audio and returns the recognized text.
func (c *OpenAIClient) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	wavData, err := audio.WAVBytes(audio.EncodePCM16(samples), sampleRate)
	if err != nil {
		return "", fmt.Errorf("encode phrase audio: %w", err)
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.Model,
		FilePath: "phrase.wav",
		Reader:   bytes.NewReader(wavData),
		Language: c.cfg.Language,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
