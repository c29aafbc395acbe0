// Package session wires capture, engine, persistence, and IPC control for one
// listen run.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/AbokiLearn/disappility/internal/audio"
	"github.com/AbokiLearn/disappility/internal/command"
	"github.com/AbokiLearn/disappility/internal/config"
	"github.com/AbokiLearn/disappility/internal/engine"
	"github.com/AbokiLearn/disappility/internal/fsm"
	"github.com/AbokiLearn/disappility/internal/ipc"
	"github.com/AbokiLearn/disappility/internal/metrics"
	"github.com/AbokiLearn/disappility/internal/recognizer"
	"github.com/AbokiLearn/disappility/internal/transcript"
	"github.com/AbokiLearn/disappility/internal/vad"
)

// Result is the complete lifecycle output of one Run invocation.
type Result struct {
	SessionID      string
	AudioDevice    string
	BytesCaptured  int64
	SilentChunks   int64
	Transcript     string
	TranscriptPath string
	Engine         engine.Result
	Err            error
}

// Controller orchestrates one owner session and serves its IPC commands.
type Controller struct {
	cfg    config.Config
	logger *slog.Logger
	fs     afero.Fs
	out    io.Writer

	mu     sync.Mutex
	eng    *engine.Engine
	cancel context.CancelFunc
}

// NewController builds a session controller. fs and out may be nil; they
// default to the OS filesystem and a silent event stream.
func NewController(cfg config.Config, logger *slog.Logger, fs afero.Fs, out io.Writer) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Controller{cfg: cfg, logger: logger, fs: fs, out: out}
}

// Run executes one capture-to-transcript session from setup to completion.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{SessionID: uuid.NewString()}
	logger := c.logger.With("session_id", result.SessionID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.setControl(nil, cancel)

	selection, err := audio.SelectDevice(runCtx, c.cfg.Audio.Input, c.cfg.Audio.Fallback)
	if err != nil {
		result.Err = fmt.Errorf("select audio device: %w", err)
		return result
	}
	if selection.Warning != "" {
		logger.Warn("audio device fallback", "warning", selection.Warning)
	}
	result.AudioDevice = selection.Device.ID

	transcriber, err := recognizer.New(recognizer.Options{
		Backend:  c.cfg.Recognizer.Backend,
		Endpoint: c.cfg.Recognizer.Endpoint,
		Model:    c.cfg.Recognizer.Model,
		Language: c.cfg.Recognizer.Language,
		UseGPU:   c.cfg.Recognizer.UseGPU,
		Timeout:  c.cfg.Recognizer.TimeoutDuration(),
		APIKey:   config.APIKey(),
	})
	if err != nil {
		result.Err = fmt.Errorf("build recognizer: %w", err)
		return result
	}

	trigger, err := command.NewTrigger(c.cfg.Command.WakeWord, c.cfg.Command.AckWord)
	if err != nil {
		result.Err = fmt.Errorf("compile trigger pattern: %w", err)
		return result
	}

	capture, err := audio.StartCapture(runCtx, audio.CaptureOptions{
		Device:     selection.Device,
		SampleRate: c.cfg.Audio.SampleRate,
		ChunkBytes: c.cfg.Audio.ChunkBytes(),
		Gate:       vad.NewGate(c.cfg.Audio.EnergyThreshold),
	})
	if err != nil {
		result.Err = fmt.Errorf("start audio capture: %w", err)
		return result
	}
	defer capture.Close()

	var engineMetrics *metrics.Metrics
	if c.cfg.Metrics.Enabled {
		engineMetrics = metrics.New()
		go func() {
			if serveErr := engineMetrics.Serve(runCtx, c.cfg.Metrics.Addr); serveErr != nil {
				logger.Error("metrics listener failed", "error", serveErr.Error())
			}
		}()
	}

	queue := audio.NewQueue()
	eng, err := engine.New(
		engine.Config{
			SampleRate:    c.cfg.Audio.SampleRate,
			PhraseTimeout: c.cfg.Engine.PhraseTimeoutDuration(),
			IdleWait:      c.cfg.Engine.IdleWaitDuration(),
		},
		engine.Deps{
			Queue:       queue,
			Transcriber: transcriber,
			Extractor:   command.NewExtractor(trigger, c.cfg.Command.MaxAccumulator),
			Emitter:     engine.NewEmitter(c.out),
			Metrics:     engineMetrics,
			Logger:      logger,
		},
	)
	if err != nil {
		result.Err = fmt.Errorf("build engine: %w", err)
		return result
	}
	c.setControl(eng, cancel)

	logger.Info("session start",
		"audio_device", selection.Device.ID,
		"recognizer", c.cfg.Recognizer.Backend,
		"record_interval", c.cfg.Audio.RecordIntervalDuration().String(),
	)

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for chunk := range capture.Chunks() {
			queue.Push(chunk)
		}
	}()

	result.Engine = eng.Run(runCtx)

	_ = capture.Stop()
	<-pumpDone
	result.BytesCaptured = capture.BytesCaptured()
	result.SilentChunks = capture.SilentChunks()

	// The partial transcript is persisted even when recognition failed.
	c.persist(eng.Transcript(), &result, logger)
	c.logResult(logger, result)
	return result
}

// persist writes the rendered transcript and records its path on the result.
func (c *Controller) persist(tr *transcript.Transcript, result *Result, logger *slog.Logger) {
	rendered := tr.Render(transcript.Options{
		CapitalizeSentences: c.cfg.Transcript.CapitalizeSentences,
	})
	result.Transcript = rendered

	writer := NewWriter(c.fs, c.cfg.Transcript.Dir)
	path, err := writer.Persist(rendered)
	if err != nil {
		logger.Error("persist transcript failed", "error", err.Error())
		if result.Err == nil {
			result.Err = err
		}
		return
	}
	result.TranscriptPath = path
}

// Handle serves IPC commands for the active owner session.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		state, lines, commands := c.status()
		return ipc.Response{OK: true, State: string(state), Message: "status", Lines: lines, Commands: commands}
	case "stop":
		state, _, _ := c.status()
		if !c.requestStop() {
			return ipc.Response{OK: false, State: string(state), Error: "no active session"}
		}
		return ipc.Response{OK: true, State: string(state), Message: "stop requested"}
	default:
		state, _, _ := c.status()
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// status snapshots engine state for IPC; idle before the engine exists.
func (c *Controller) status() (fsm.State, int, int) {
	c.mu.Lock()
	eng := c.eng
	c.mu.Unlock()

	if eng == nil {
		return fsm.StateIdle, 0, 0
	}
	return eng.Status()
}

// requestStop cancels the running session; reports whether one was active.
func (c *Controller) requestStop() bool {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// setControl publishes the engine and cancel hook for IPC access.
func (c *Controller) setControl(eng *engine.Engine, cancel context.CancelFunc) {
	c.mu.Lock()
	c.eng = eng
	c.cancel = cancel
	c.mu.Unlock()
}

// logResult emits the structured end-of-session summary.
func (c *Controller) logResult(logger *slog.Logger, result Result) {
	fields := []any{
		"state", result.Engine.State,
		"cancelled", result.Engine.Cancelled,
		"started_at", result.Engine.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.Engine.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.Engine.FinishedAt.Sub(result.Engine.StartedAt).Milliseconds(),
		"audio_device", result.AudioDevice,
		"bytes_captured", result.BytesCaptured,
		"silent_chunks", result.SilentChunks,
		"lines", len(result.Engine.Lines),
		"commands", len(result.Engine.Commands),
		"transcript_path", result.TranscriptPath,
	}

	if result.Engine.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Engine.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}
