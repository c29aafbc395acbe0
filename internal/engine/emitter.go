package engine

import (
	"fmt"
	"io"
	"sync"
)

// Event tags are a stable contract: downstream consumers pattern-match these
// literals on the output stream.
const (
	readyTag   = "[READY]"
	commandTag = "[USERSAYS]"
)

// Emitter writes machine-readable event lines for downstream consumers.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter wraps an output stream. A nil writer silences all events.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Ready signals that setup finished and the engine is about to listen.
func (e *Emitter) Ready() {
	e.emit(readyTag)
}

// Command signals one extracted command payload.
func (e *Emitter) Command(payload string) {
	e.emit(commandTag + " " + payload)
}

func (e *Emitter) emit(line string) {
	if e == nil || e.w == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.w, line)
}
