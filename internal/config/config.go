// Package config resolves, parses, validates, and defaults disappility
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fully materialized runtime configuration.
type Config struct {
	Audio      AudioConfig      `yaml:"audio"`
	Engine     EngineConfig     `yaml:"engine"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Command    CommandConfig    `yaml:"command"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AudioConfig controls input-source selection and capture cadence.
type AudioConfig struct {
	Input           string  `yaml:"input"`
	Fallback        string  `yaml:"fallback"`
	SampleRate      int     `yaml:"sample_rate"`
	RecordInterval  float64 `yaml:"record_interval"`  // seconds per chunk
	EnergyThreshold int     `yaml:"energy_threshold"` // int16 RMS silence gate
}

// EngineConfig controls phrase segmentation and loop pacing.
type EngineConfig struct {
	PhraseTimeout float64 `yaml:"phrase_timeout"` // seconds
	IdleWait      float64 `yaml:"idle_wait"`      // seconds
}

// RecognizerConfig selects and tunes the speech-to-text backend.
type RecognizerConfig struct {
	Backend  string  `yaml:"backend"`
	Endpoint string  `yaml:"endpoint"`
	Model    string  `yaml:"model"`
	Language string  `yaml:"language"`
	Timeout  float64 `yaml:"timeout"` // seconds
	UseGPU   bool    `yaml:"use_gpu"`
}

// CommandConfig controls trigger-phrase detection.
type CommandConfig struct {
	WakeWord       string `yaml:"wake_word"`
	AckWord        string `yaml:"ack_word"`
	MaxAccumulator int    `yaml:"max_accumulator"` // runes; 0 = unbounded
}

// TranscriptConfig controls transcript persistence and rendering.
type TranscriptConfig struct {
	Dir                 string `yaml:"dir"`
	CapitalizeSentences bool   `yaml:"capitalize_sentences"`
}

// MetricsConfig controls the optional Prometheus exposition listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig controls runtime log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Input:           "default",
			Fallback:        "default",
			SampleRate:      16000,
			RecordInterval:  2,
			EnergyThreshold: 1000,
		},
		Engine: EngineConfig{
			PhraseTimeout: 4,
			IdleWait:      0.25,
		},
		Recognizer: RecognizerConfig{
			Backend:  "whisper",
			Endpoint: "http://127.0.0.1:9000/inference",
			Model:    "small",
			Language: "en",
			Timeout:  30,
		},
		Command: CommandConfig{
			WakeWord:       "hanna",
			AckWord:        "thanks",
			MaxAccumulator: 8192,
		},
		Transcript: TranscriptConfig{
			Dir:                 "",
			CapitalizeSentences: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9102",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Loaded captures resolved config path, parsed values, and whether a file existed.
type Loaded struct {
	Path    string
	Config  Config
	Exists  bool
	Warning string
}

// Load resolves, reads, parses, and validates the runtime configuration.
// A missing file is not an error; defaults apply with a warning.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	cfg := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Loaded{
				Path:    resolvedPath,
				Config:  cfg,
				Warning: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return Loaded{}, fmt.Errorf("validate config %q: %w", resolvedPath, err)
	}

	return Loaded{Path: resolvedPath, Config: cfg, Exists: true}, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Recognizer.Validate(); err != nil {
		return fmt.Errorf("recognizer: %w", err)
	}
	if err := c.Command.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}
	if a.RecordInterval <= 0 {
		return fmt.Errorf("record_interval must be positive, got %g", a.RecordInterval)
	}
	if a.EnergyThreshold < 0 {
		return fmt.Errorf("energy_threshold must not be negative, got %d", a.EnergyThreshold)
	}
	return nil
}

func (e *EngineConfig) Validate() error {
	if e.PhraseTimeout <= 0 {
		return fmt.Errorf("phrase_timeout must be positive, got %g", e.PhraseTimeout)
	}
	if e.IdleWait <= 0 {
		return fmt.Errorf("idle_wait must be positive, got %g", e.IdleWait)
	}
	return nil
}

func (r *RecognizerConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Backend)) {
	case "whisper":
		if strings.TrimSpace(r.Endpoint) == "" {
			return errors.New("endpoint cannot be empty for the whisper backend")
		}
	case "openai":
	default:
		return fmt.Errorf("backend must be \"whisper\" or \"openai\", got %q", r.Backend)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %g", r.Timeout)
	}
	return nil
}

func (c *CommandConfig) Validate() error {
	if strings.TrimSpace(c.WakeWord) == "" {
		return errors.New("wake_word cannot be empty")
	}
	if strings.TrimSpace(c.AckWord) == "" {
		return errors.New("ack_word cannot be empty")
	}
	if c.MaxAccumulator < 0 {
		return fmt.Errorf("max_accumulator must not be negative, got %d", c.MaxAccumulator)
	}
	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled && strings.TrimSpace(m.Addr) == "" {
		return errors.New("addr cannot be empty when metrics are enabled")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("level must be one of debug/info/warn/error, got %q", l.Level)
	}
}

// RecordIntervalDuration returns the capture chunk cadence.
func (a *AudioConfig) RecordIntervalDuration() time.Duration {
	return time.Duration(a.RecordInterval * float64(time.Second))
}

// ChunkBytes returns one record interval worth of s16le mono PCM.
func (a *AudioConfig) ChunkBytes() int {
	return int(a.RecordInterval * float64(a.SampleRate) * 2)
}

// PhraseTimeoutDuration returns the silence gap that closes a phrase.
func (e *EngineConfig) PhraseTimeoutDuration() time.Duration {
	return time.Duration(e.PhraseTimeout * float64(time.Second))
}

// IdleWaitDuration returns the empty-queue sleep interval.
func (e *EngineConfig) IdleWaitDuration() time.Duration {
	return time.Duration(e.IdleWait * float64(time.Second))
}

// TimeoutDuration returns the recognizer HTTP timeout.
func (r *RecognizerConfig) TimeoutDuration() time.Duration {
	return time.Duration(r.Timeout * float64(time.Second))
}
