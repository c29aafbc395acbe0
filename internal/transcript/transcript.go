// Package transcript owns the ordered sequence of committed transcript lines.
package transcript

import "strings"

// Transcript is the append/extend-only line sequence for one session. The last
// line is open until a phrase boundary freezes it; earlier lines are immutable.
type Transcript struct {
	lines []string
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Commit records one recognizer result. When phraseComplete is true the text
// starts a brand-new line; otherwise it replaces the open line, because the
// recognizer re-transcribed the whole accumulated phrase rather than a delta.
func (t *Transcript) Commit(text string, phraseComplete bool) {
	if phraseComplete || len(t.lines) == 0 {
		t.lines = append(t.lines, text)
		return
	}
	t.lines[len(t.lines)-1] = text
}

// Lines returns a copy of all committed lines in chronological order.
func (t *Transcript) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Len reports the number of committed lines.
func (t *Transcript) Len() int {
	return len(t.lines)
}

// String renders the full session transcript, lines joined by line breaks.
func (t *Transcript) String() string {
	return strings.Join(t.lines, "\n")
}

// Render produces the persistable transcript with optional normalization.
func (t *Transcript) Render(opts Options) string {
	if !opts.CapitalizeSentences {
		return t.String()
	}
	rendered := make([]string, len(t.lines))
	for i, line := range t.lines {
		rendered[i] = capitalizeSentences(line)
	}
	return strings.Join(rendered, "\n")
}

// Options controls transcript rendering behavior.
type Options struct {
	CapitalizeSentences bool
}
