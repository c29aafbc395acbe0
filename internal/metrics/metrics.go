// Package metrics exposes engine counters through a private Prometheus registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all engine instrumentation. A nil *Metrics is a valid no-op
// receiver so disabled metrics cost nothing at call sites.
type Metrics struct {
	registry *prometheus.Registry

	ChunksDrained       prometheus.Counter
	Drains              prometheus.Counter
	PhrasesClosed       prometheus.Counter
	Recognitions        prometheus.Counter
	RecognitionFailures prometheus.Counter
	RecognitionSeconds  prometheus.Histogram
	CommandsDetected    prometheus.Counter
}

// New creates and registers all engine metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		registry.MustRegister(c)
		return c
	}

	m := &Metrics{
		registry:            registry,
		ChunksDrained:       factory("disappility_chunks_drained_total", "Audio chunks drained from the capture queue"),
		Drains:              factory("disappility_drains_total", "Non-empty queue drains processed by the engine"),
		PhrasesClosed:       factory("disappility_phrases_closed_total", "Phrase boundaries signaled by the segmenter"),
		Recognitions:        factory("disappility_recognitions_total", "Recognition calls issued to the transcriber"),
		RecognitionFailures: factory("disappility_recognition_failures_total", "Recognition calls that returned an error"),
		CommandsDetected:    factory("disappility_commands_detected_total", "Trigger-phrase commands extracted"),
	}

	m.RecognitionSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "disappility_recognition_duration_seconds",
		Help:    "Latency of blocking recognition calls",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	registry.MustRegister(m.RecognitionSeconds)

	return m
}

// IncChunksDrained adds n drained chunks; nil-safe.
func (m *Metrics) IncChunksDrained(n int) {
	if m == nil {
		return
	}
	m.ChunksDrained.Add(float64(n))
	m.Drains.Inc()
}

// IncPhraseClosed counts one phrase boundary; nil-safe.
func (m *Metrics) IncPhraseClosed() {
	if m == nil {
		return
	}
	m.PhrasesClosed.Inc()
}

// ObserveRecognition records one recognition call outcome; nil-safe.
func (m *Metrics) ObserveRecognition(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Recognitions.Inc()
	m.RecognitionSeconds.Observe(d.Seconds())
	if err != nil {
		m.RecognitionFailures.Inc()
	}
}

// IncCommandDetected counts one extracted command; nil-safe.
func (m *Metrics) IncCommandDetected() {
	if m == nil {
		return
	}
	m.CommandsDetected.Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a /metrics listener until ctx cancellation.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
