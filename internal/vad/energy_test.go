package vad

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func pcmOf(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestRMSSilenceIsZero(t *testing.T) {
	t.Parallel()

	require.Zero(t, RMS(pcmOf(0, 0, 0, 0)))
	require.Zero(t, RMS(nil))
}

func TestRMSConstantAmplitude(t *testing.T) {
	t.Parallel()

	got := RMS(pcmOf(2000, -2000, 2000, -2000))
	require.InDelta(t, 2000.0, got, 0.001)
}

func TestRMSIgnoresTrailingOddByte(t *testing.T) {
	t.Parallel()

	pcm := append(pcmOf(1000, 1000), 0x7f)
	require.InDelta(t, 1000.0, RMS(pcm), 0.001)
}

func TestGateThresholdClassification(t *testing.T) {
	t.Parallel()

	g := NewGate(1000)
	require.False(t, g.HasVoice(pcmOf(10, -10, 10, -10)))
	require.True(t, g.HasVoice(pcmOf(4000, -4000, 4000, -4000)))

	total, voice := g.Stats()
	require.Equal(t, uint64(2), total)
	require.Equal(t, uint64(1), voice)
}

func TestGateDisabledPassesEverything(t *testing.T) {
	t.Parallel()

	g := NewGate(0)
	require.True(t, g.HasVoice(pcmOf(0, 0)))
	require.True(t, g.HasVoice(nil))
}
