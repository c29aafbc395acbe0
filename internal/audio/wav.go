package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes s16le mono PCM bytes as a WAV container to ws.
func WriteWAV(ws io.WriteSeeker, pcm []byte, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	sampleCount := len(pcm) / 2
	data := make([]int, sampleCount)
	for i := 0; i < sampleCount; i++ {
		data[i] = int(int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav header: %w", err)
	}
	return nil
}

// WAVBytes renders s16le mono PCM as an in-memory WAV file.
func WAVBytes(pcm []byte, sampleRate int) ([]byte, error) {
	var buf seekBuffer
	if err := WriteWAV(&buf, pcm, sampleRate); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// seekBuffer adapts a byte slice to io.WriteSeeker so the WAV encoder can
// backfill the header without touching the filesystem.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("unsupported whence %d", whence)
	}
	if next < 0 {
		return 0, errors.New("seek before start of buffer")
	}
	b.pos = int(next)
	return next, nil
}

var _ io.WriteSeeker = (*seekBuffer)(nil)
