package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/AbokiLearn/disappility/internal/vad"
)

const fragmentSizeBytes = 640 // 20ms @ 16kHz mono s16

// CaptureOptions configures one record stream.
type CaptureOptions struct {
	Device     Device
	SampleRate int
	// ChunkBytes is the emit granularity: one record-interval worth of s16le
	// mono PCM per chunk pushed downstream.
	ChunkBytes int
	// Gate drops silent chunks before they reach the queue. Silence gaps are
	// what phrase segmentation keys off, so gated chunks are discarded, not
	// delayed. Nil disables gating.
	Gate *vad.Gate
}

// Capture streams record-interval PCM chunks from one selected Pulse source.
type Capture struct {
	opts CaptureOptions

	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan []byte
	stopCh chan struct{}

	mu      sync.Mutex
	pending []byte
	stopped bool

	inflight sync.WaitGroup
	bytes    atomic.Int64
	silent   atomic.Int64
}

// StartCapture creates and starts a mono s16le record stream.
func StartCapture(ctx context.Context, opts CaptureOptions) (*Capture, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", opts.SampleRate)
	}
	if opts.ChunkBytes <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", opts.ChunkBytes)
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("disappility"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(opts.Device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", opts.Device.ID, err)
	}

	capture := &Capture{
		opts:   opts,
		client: client,
		chunks: make(chan []byte, 128),
		stopCh: make(chan struct{}),
	}

	writer := pulse.NewWriter(writerFunc(capture.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(opts.SampleRate),
		pulse.RecordBufferFragmentSize(fragmentSizeBytes),
		pulse.RecordMediaName("disappility listener"),
	)
	if err != nil {
		capture.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	capture.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_ = capture.Stop()
	}()

	return capture, nil
}

// Device returns capture metadata for logging and diagnostics.
func (c *Capture) Device() Device {
	return c.opts.Device
}

// Chunks returns the PCM stream as record-interval byte slices.
func (c *Capture) Chunks() <-chan []byte {
	return c.chunks
}

// BytesCaptured reports total bytes accepted from Pulse.
func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// SilentChunks reports how many chunks the energy gate discarded.
func (c *Capture) SilentChunks() int64 {
	return c.silent.Load()
}

// Stop halts the stream, flushes residual PCM, and closes Chunks exactly once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	c.inflight.Wait()

	c.mu.Lock()
	pending := append([]byte(nil), c.pending...)
	c.pending = nil
	c.mu.Unlock()

	if len(pending) > 0 && c.passesGate(pending) {
		select {
		case c.chunks <- pending:
		default:
		}
	}

	close(c.chunks)
	return nil
}

// Close is a convenience alias for Stop.
func (c *Capture) Close() {
	_ = c.Stop()
}

// onPCM receives raw Pulse frames and emits ChunkBytes slices to c.chunks.
func (c *Capture) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	select {
	case <-c.stopCh:
		return 0, io.EOF
	default:
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Guard Add under the same mutex as c.stopped to avoid Add/Wait races.
	c.inflight.Add(1)

	c.pending = append(c.pending, buffer...)

	chunks := make([][]byte, 0, len(c.pending)/c.opts.ChunkBytes)
	for len(c.pending) >= c.opts.ChunkBytes {
		chunk := make([]byte, c.opts.ChunkBytes)
		copy(chunk, c.pending[:c.opts.ChunkBytes])
		c.pending = c.pending[c.opts.ChunkBytes:]
		chunks = append(chunks, chunk)
	}
	c.mu.Unlock()
	defer c.inflight.Done()

	c.bytes.Add(int64(len(buffer)))

	for _, chunk := range chunks {
		if !c.passesGate(chunk) {
			c.silent.Add(1)
			continue
		}
		select {
		case <-c.stopCh:
			return 0, io.EOF
		case c.chunks <- chunk:
		}
	}

	return len(buffer), nil
}

// passesGate applies the optional energy gate to one chunk.
func (c *Capture) passesGate(chunk []byte) bool {
	if c.opts.Gate == nil {
		return true
	}
	return c.opts.Gate.HasVoice(chunk)
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
