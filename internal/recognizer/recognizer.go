// Package recognizer abstracts the external speech-to-text engine and its
// concrete backends.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoBackend indicates recognizer wiring is missing.
var ErrNoBackend = errors.New("no speech recognition backend configured")

// Transcriber is the blocking external recognition contract. Implementations
// may be slow; the engine loop calls this synchronously and treats any error
// as fatal for the session.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error)
}

// TranscribeFunc adapts a function to the Transcriber interface.
type TranscribeFunc func(ctx context.Context, samples []float32, sampleRate int) (string, error)

func (f TranscribeFunc) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	return f(ctx, samples, sampleRate)
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Endpoint string
	Model    string
	Language string
	UseGPU   bool
	Timeout  time.Duration
	APIKey   string
}

// New builds the configured backend.
func New(opts Options) (Transcriber, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "whisper":
		return NewWhisperClient(WhisperConfig{
			Endpoint: opts.Endpoint,
			Model:    opts.Model,
			Language: opts.Language,
			UseGPU:   opts.UseGPU,
			Timeout:  opts.Timeout,
		})
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:   opts.APIKey,
			Model:    opts.Model,
			Language: opts.Language,
		})
	case "":
		return nil, ErrNoBackend
	default:
		return nil, fmt.Errorf("unknown recognizer backend %q", opts.Backend)
	}
}
