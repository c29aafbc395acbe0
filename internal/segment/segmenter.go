// Package segment decides phrase boundaries from inter-chunk timing and owns
// the raw-audio buffer of the open phrase.
package segment

import "time"

// Segmenter tracks the arrival time of the last non-empty drain and signals a
// phrase boundary when the gap exceeds the configured timeout.
type Segmenter struct {
	timeout time.Duration
	last    time.Time
	seen    bool
}

// NewSegmenter builds a segmenter with the given phrase timeout.
func NewSegmenter(timeout time.Duration) *Segmenter {
	return &Segmenter{timeout: timeout}
}

// Observe records one non-empty drain at now and reports whether the previous
// phrase is complete. The very first observation never signals a boundary.
func (s *Segmenter) Observe(now time.Time) bool {
	boundary := s.seen && now.Sub(s.last) > s.timeout
	s.last = now
	s.seen = true
	return boundary
}

// Reset forgets the last observation, as if no drain had happened yet.
func (s *Segmenter) Reset() {
	s.seen = false
	s.last = time.Time{}
}

// PhraseBuffer accumulates raw PCM for the currently open phrase. It is
// cleared on a boundary and appended to otherwise; chunks are never removed
// individually.
type PhraseBuffer struct {
	data       []byte
	sampleRate int
}

// NewPhraseBuffer builds a buffer for s16le mono PCM at the given rate.
func NewPhraseBuffer(sampleRate int) *PhraseBuffer {
	return &PhraseBuffer{sampleRate: sampleRate}
}

// Append adds chunks to the open phrase in arrival order.
func (b *PhraseBuffer) Append(chunks ...[]byte) {
	for _, chunk := range chunks {
		b.data = append(b.data, chunk...)
	}
}

// Reset clears the buffer for a new phrase.
func (b *PhraseBuffer) Reset() {
	b.data = b.data[:0]
}

// Bytes returns the accumulated PCM of the open phrase.
func (b *PhraseBuffer) Bytes() []byte {
	return b.data
}

// Len reports the accumulated byte count.
func (b *PhraseBuffer) Len() int {
	return len(b.data)
}

// Duration reports the audio length of the open phrase.
func (b *PhraseBuffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	samples := len(b.data) / 2
	return time.Duration(samples) * time.Second / time.Duration(b.sampleRate)
}
