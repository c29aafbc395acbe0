// Package vad provides the RMS energy gate used to drop silent capture chunks.
package vad

import (
	"encoding/binary"
	"math"
)

// Gate classifies PCM chunks as voice or silence by RMS energy threshold.
type Gate struct {
	threshold float64

	total uint64
	voice uint64
}

// NewGate builds an energy gate. Threshold is in int16 sample units; a
// non-positive threshold passes every chunk through.
func NewGate(threshold int) *Gate {
	return &Gate{threshold: float64(threshold)}
}

// HasVoice reports whether the s16le chunk's RMS energy clears the threshold.
func (g *Gate) HasVoice(pcm []byte) bool {
	g.total++
	if g.threshold <= 0 {
		g.voice++
		return true
	}
	if RMS(pcm) >= g.threshold {
		g.voice++
		return true
	}
	return false
}

// Stats returns processed and voice-classified chunk counts.
func (g *Gate) Stats() (total, voice uint64) {
	return g.total, g.voice
}

// RMS computes the root-mean-square amplitude of little-endian int16 PCM.
// A trailing odd byte is ignored.
func RMS(pcm []byte) float64 {
	sampleCount := len(pcm) / 2
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < sampleCount*2; i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i : i+2]))
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(sampleCount))
}
