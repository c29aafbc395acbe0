package audio

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AbokiLearn/disappility/internal/vad"
)

func loudPCM(byteLen int) []byte {
	out := make([]byte, byteLen)
	for i := 0; i+1 < byteLen; i += 4 {
		putSample(out[i:], 8000)
		if i+3 < byteLen {
			putSample(out[i+2:], -8000)
		}
	}
	return out
}

func TestCaptureOnPCMChunkingAndStopFlushesPending(t *testing.T) {
	const chunkBytes = 640
	capture := &Capture{
		opts:   CaptureOptions{SampleRate: 16000, ChunkBytes: chunkBytes},
		chunks: make(chan []byte, 8),
		stopCh: make(chan struct{}),
	}

	input := loudPCM(chunkBytes + 110)

	n, err := capture.onPCM(input)
	require.NoError(t, err)
	require.Equal(t, len(input), n)
	require.Equal(t, int64(len(input)), capture.BytesCaptured())

	firstChunk := <-capture.Chunks()
	require.Len(t, firstChunk, chunkBytes)

	require.NoError(t, capture.Stop())

	remaining, ok := <-capture.Chunks()
	require.True(t, ok)
	require.Len(t, remaining, 110)

	_, ok = <-capture.Chunks()
	require.False(t, ok)
}

func TestCaptureOnPCMGateDropsSilentChunks(t *testing.T) {
	const chunkBytes = 64
	capture := &Capture{
		opts: CaptureOptions{
			SampleRate: 16000,
			ChunkBytes: chunkBytes,
			Gate:       vad.NewGate(1000),
		},
		chunks: make(chan []byte, 8),
		stopCh: make(chan struct{}),
	}

	silent := make([]byte, chunkBytes)
	n, err := capture.onPCM(silent)
	require.NoError(t, err)
	require.Equal(t, chunkBytes, n)
	require.Equal(t, int64(1), capture.SilentChunks())
	require.Empty(t, capture.Chunks())

	loud := loudPCM(chunkBytes)
	_, err = capture.onPCM(loud)
	require.NoError(t, err)
	require.Equal(t, int64(1), capture.SilentChunks())

	chunk := <-capture.Chunks()
	require.Len(t, chunk, chunkBytes)
}

func TestCaptureOnPCMReturnsEOFWhenStopped(t *testing.T) {
	capture := &Capture{
		opts:   CaptureOptions{SampleRate: 16000, ChunkBytes: 640},
		chunks: make(chan []byte, 1),
		stopCh: make(chan struct{}),
	}
	close(capture.stopCh)

	n, err := capture.onPCM([]byte{1, 2, 3})
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, int64(0), capture.BytesCaptured())
}

func TestCaptureDeviceAndCloseAlias(t *testing.T) {
	capture := &Capture{
		opts:   CaptureOptions{Device: Device{ID: "mic-1", Description: "Mic"}, SampleRate: 16000, ChunkBytes: 640},
		chunks: make(chan []byte, 1),
		stopCh: make(chan struct{}),
	}
	require.Equal(t, "mic-1", capture.Device().ID)

	capture.Close()
	_, ok := <-capture.Chunks()
	require.False(t, ok)
}

func TestStartCaptureRejectsBadOptions(t *testing.T) {
	_, err := StartCapture(context.Background(), CaptureOptions{SampleRate: 0, ChunkBytes: 640})
	require.Error(t, err)

	_, err = StartCapture(context.Background(), CaptureOptions{SampleRate: 16000, ChunkBytes: 0})
	require.Error(t, err)
}
