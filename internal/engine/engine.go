// Package engine drives the drain -> segment -> transcribe -> assemble ->
// extract cycle for one listening session.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/AbokiLearn/disappility/internal/audio"
	"github.com/AbokiLearn/disappility/internal/command"
	"github.com/AbokiLearn/disappility/internal/fsm"
	"github.com/AbokiLearn/disappility/internal/metrics"
	"github.com/AbokiLearn/disappility/internal/recognizer"
	"github.com/AbokiLearn/disappility/internal/segment"
	"github.com/AbokiLearn/disappility/internal/transcript"
)

// Config carries the engine's tunables.
type Config struct {
	SampleRate    int
	PhraseTimeout time.Duration
	IdleWait      time.Duration
}

// Deps are the collaborators the engine drives. Queue, Transcriber, and
// Extractor are required; Emitter, Metrics, and Logger may be nil.
type Deps struct {
	Queue       *audio.Queue
	Transcriber recognizer.Transcriber
	Extractor   *command.Extractor
	Emitter     *Emitter
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Result is the complete outcome of one Run invocation.
type Result struct {
	State      fsm.State
	Lines      []string
	Commands   []string
	Chunks     int
	Phrases    int
	Cancelled  bool
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Engine owns all per-session mutable state. It is single-threaded: only Run
// touches the segmenter, phrase buffer, transcript, and extractor. Status is
// safe to call concurrently.
type Engine struct {
	cfg  Config
	deps Deps

	segmenter  *segment.Segmenter
	buffer     *segment.PhraseBuffer
	transcript *transcript.Transcript

	// now is injectable for deterministic segmentation tests.
	now func() time.Time

	mu       sync.RWMutex
	state    fsm.State
	commands int
}

// New builds an engine for one session.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Queue == nil {
		return nil, fmt.Errorf("engine requires a capture queue")
	}
	if deps.Transcriber == nil {
		return nil, fmt.Errorf("engine requires a transcriber")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("engine requires a command extractor")
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		cfg:        cfg,
		deps:       deps,
		segmenter:  segment.NewSegmenter(cfg.PhraseTimeout),
		buffer:     segment.NewPhraseBuffer(cfg.SampleRate),
		transcript: transcript.New(),
		now:        time.Now,
		state:      fsm.StateIdle,
	}, nil
}

// Status returns a concurrent-safe snapshot for IPC status queries.
func (e *Engine) Status() (state fsm.State, lines int, commands int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.transcript.Len(), e.commands
}

// Transcript exposes the assembled transcript for persistence after Run.
func (e *Engine) Transcript() *transcript.Transcript {
	return e.transcript
}

// Run executes the engine loop until ctx cancellation or a fatal recognition
// error. The in-flight iteration always completes before the loop exits.
func (e *Engine) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}

	if err := e.transition(fsm.EventStart); err != nil {
		return e.finish(result, err)
	}

	e.deps.Emitter.Ready()
	e.deps.Logger.Info("engine ready",
		"phrase_timeout", e.cfg.PhraseTimeout.String(),
		"idle_wait", e.cfg.IdleWait.String(),
	)

	for {
		if ctx.Err() != nil {
			result.Cancelled = true
			_ = e.transition(fsm.EventStop)
			return e.finish(result, nil)
		}

		chunks := e.deps.Queue.DrainAll()
		if len(chunks) == 0 {
			if !e.idleWait(ctx) {
				result.Cancelled = true
				_ = e.transition(fsm.EventStop)
				return e.finish(result, nil)
			}
			continue
		}

		if err := e.iterate(ctx, chunks, &result); err != nil {
			if ctx.Err() != nil {
				// A recognition call torn down by cancellation is shutdown,
				// not failure.
				result.Cancelled = true
				_ = e.transition(fsm.EventStop)
				return e.finish(result, nil)
			}
			_ = e.transition(fsm.EventFail)
			return e.finish(result, err)
		}
	}
}

// iterate processes one non-empty drain end to end.
func (e *Engine) iterate(ctx context.Context, chunks [][]byte, result *Result) error {
	now := e.now()
	result.Chunks += len(chunks)
	e.deps.Metrics.IncChunksDrained(len(chunks))

	boundary := e.segmenter.Observe(now)
	if boundary {
		result.Phrases++
		e.deps.Metrics.IncPhraseClosed()
		e.buffer.Reset()
	}
	e.buffer.Append(chunks...)

	if err := e.transition(fsm.EventAudio); err != nil {
		return err
	}

	samples := audio.DecodePCM16(e.buffer.Bytes())

	started := time.Now()
	text, err := e.deps.Transcriber.Transcribe(ctx, samples, e.cfg.SampleRate)
	e.deps.Metrics.ObserveRecognition(time.Since(started), err)
	if err != nil {
		return fmt.Errorf("transcribe phrase: %w", err)
	}

	// Status reads the transcript concurrently; commits take the write lock.
	e.mu.Lock()
	e.transcript.Commit(text, boundary)
	e.mu.Unlock()

	if payload, matched := e.deps.Extractor.Feed(text); matched {
		e.mu.Lock()
		e.commands++
		e.mu.Unlock()
		result.Commands = append(result.Commands, payload)
		e.deps.Metrics.IncCommandDetected()
		e.deps.Emitter.Command(payload)
		e.deps.Logger.Info("command detected", "payload", payload)
	}

	e.deps.Logger.Debug("drain processed",
		"chunks", len(chunks),
		"boundary", boundary,
		"phrase_bytes", e.buffer.Len(),
		"recognition_ms", time.Since(started).Milliseconds(),
	)

	return e.transition(fsm.EventTranscribed)
}

// idleWait sleeps one idle interval; returns false when ctx was cancelled.
func (e *Engine) idleWait(ctx context.Context) bool {
	timer := time.NewTimer(e.cfg.IdleWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// transition applies one FSM event to the engine state.
func (e *Engine) transition(event fsm.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fsm.Transition(e.state, event)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// finish stamps the result with final state and transcript lines.
func (e *Engine) finish(result Result, err error) Result {
	e.mu.RLock()
	result.State = e.state
	e.mu.RUnlock()
	result.Err = err
	result.Lines = e.transcript.Lines()
	result.FinishedAt = time.Now()
	return result
}
