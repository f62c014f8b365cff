package tracekit

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// DefaultChannelCapacity is used when New is given a non-positive
// capacity.
const DefaultChannelCapacity = 1024

// Tracer creates spans, owns the sampler and the producing end of the
// reporting channel. Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order optimized for readability over memory
type Tracer struct {
	sampler       Sampler
	spans         chan *Span
	done          chan struct{}
	traceIDs      *idPool
	spanIDs       *idPool
	clock         clockz.Clock
	logger        *zap.Logger
	metrics       *Metrics
	enableBaggage bool
	idPoolOnce    sync.Once
	closeOnce     sync.Once
	closed        atomic.Bool
	dropped       atomic.Uint64
	dropLogOnce   sync.Once
}

// Option configures a Tracer at construction.
type Option func(*Tracer)

// WithClock injects the clock used for all span timestamps. Defaults to
// the real clock; inject a fake for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(t *Tracer) { t.clock = clock }
}

// WithLogger sets the operational logger. Defaults to a no-op logger; the
// tracer only logs off the hot path (first drop, close summary).
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics wires a prometheus metrics bundle into the span lifecycle.
func WithMetrics(m *Metrics) Option {
	return func(t *Tracer) { t.metrics = m }
}

// WithBaggage enables or disables baggage propagation. When disabled,
// baggage is neither inherited by children, written by Inject, nor read by
// Extract. Enabled by default.
func WithBaggage(enabled bool) Option {
	return func(t *Tracer) { t.enableBaggage = enabled }
}

// New creates a tracer and the receiver for its finished spans. capacity
// bounds the reporting channel; non-positive values fall back to
// DefaultChannelCapacity. The receiver must be drained by exactly one
// consumer at a time.
func New(sampler Sampler, capacity int, opts ...Option) (*Tracer, *SpanReceiver) {
	if sampler == nil {
		sampler = NullSampler{}
	}
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}

	t := &Tracer{
		sampler:       sampler,
		spans:         make(chan *Span, capacity),
		done:          make(chan struct{}),
		clock:         clockz.RealClock,
		logger:        zap.NewNop(),
		enableBaggage: true,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, &SpanReceiver{spans: t.spans, done: t.done}
}

// Span starts a new active span. With no references it is the root of a
// fresh trace and the sampler decides whether the trace is recorded; with
// references it joins the first reference's trace and inherits its
// sampling decision, so a trace is never partially recorded. A fresh span
// ID is generated either way.
func (t *Tracer) Span(operation string, opts ...SpanOption) *Span {
	var cfg spanConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t.ensureIDPools()

	var (
		traceID TraceID
		sampled bool
		baggage map[string]string
	)
	if len(cfg.references) == 0 {
		traceID = TraceID(t.traceIDs.get())
		sampled = t.sampler.IsSampled(operation, traceID)
	} else {
		primary := cfg.references[0].Context
		traceID = primary.TraceID()
		sampled = primary.IsSampled()
		if t.enableBaggage {
			baggage = inheritBaggage(cfg.references)
		}
	}

	start := cfg.startTime
	if start.IsZero() {
		start = t.clock.Now()
	}

	span := &Span{
		tracer:     t,
		operation:  operation,
		context:    NewSpanContext(traceID, SpanID(t.spanIDs.get()), sampled, baggage),
		references: cfg.references,
		tags:       cfg.tags,
		startTime:  start,
		onFinish:   cfg.onFinish,
	}

	if t.metrics != nil {
		t.metrics.SpansStarted.Inc()
		if sampled {
			t.metrics.SpansSampled.Inc()
		}
	}
	return span
}

// Inject writes ctx into a text carrier. Fails with ErrEncoding if the
// carrier rejects a key.
func (t *Tracer) Inject(ctx SpanContext, carrier TextMapWriter) error {
	return injectText(ctx, carrier, t.enableBaggage)
}

// Extract reads a SpanContext from a text carrier. Fails with
// ErrTraceContextNotFound when the carrier holds no tracing keys at all
// and with ErrCorruptedContext when it holds tracing keys that are
// incomplete or malformed.
func (t *Tracer) Extract(carrier TextMapReader) (SpanContext, error) {
	return extractText(carrier, t.enableBaggage)
}

// InjectBinary writes ctx to w in the binary carrier layout.
func (t *Tracer) InjectBinary(ctx SpanContext, w io.Writer) error {
	return injectBinary(ctx, w, t.enableBaggage)
}

// ExtractBinary reads a SpanContext from r. Fails with
// ErrTraceContextNotFound on empty input and ErrCorruptedContext on
// truncated or inconsistent input.
func (t *Tracer) ExtractBinary(r io.Reader) (SpanContext, error) {
	return extractBinary(r, t.enableBaggage)
}

// DroppedSpans returns the number of finished spans dropped because the
// reporting channel was full or the tracer was closed. Non-blocking.
func (t *Tracer) DroppedSpans() uint64 {
	return t.dropped.Load()
}

// Close disables the producing side of the reporting channel. The receiver
// drains whatever is already buffered and then reports exhaustion. Close
// is idempotent and safe to call concurrently with in-flight Finish calls;
// spans losing that race are dropped, never delivered twice or leaked.
// Spans started after Close still work locally but are discarded at
// finish.
func (t *Tracer) Close() {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		close(t.done)
		// Going through the same Once as Span synchronizes pool creation,
		// so the pools are safe to close here even against concurrent
		// first spans.
		t.ensureIDPools()
		t.traceIDs.close()
		t.spanIDs.close()
		t.logger.Debug("tracer closed",
			zap.Uint64("dropped_spans", t.dropped.Load()),
			zap.Int("pending_spans", len(t.spans)),
		)
	})
}

// report hands a finished span to the channel. Never blocks: a full
// channel or a closed tracer drops the span and increments the drop
// counter. Unsampled spans are discarded without counting as drops.
func (t *Tracer) report(span *Span) {
	if t.metrics != nil {
		t.metrics.SpansFinished.Inc()
	}
	if !span.context.IsSampled() {
		return
	}
	if t.closed.Load() {
		t.drop()
		return
	}
	select {
	case t.spans <- span:
	case <-t.done:
		t.drop()
	default:
		t.drop()
	}
}

func (t *Tracer) drop() {
	t.dropped.Add(1)
	if t.metrics != nil {
		t.metrics.SpansDropped.Inc()
	}
	t.dropLogOnce.Do(func() {
		t.logger.Warn("reporting channel saturated or closed, dropping finished spans",
			zap.Int("capacity", cap(t.spans)),
		)
	})
}

// now returns the tracer clock's current time.
func (t *Tracer) now() time.Time {
	return t.clock.Now()
}

// ensureIDPools initializes the ID pools on first use.
func (t *Tracer) ensureIDPools() {
	t.idPoolOnce.Do(func() {
		// Pool size scales with CPUs to balance refill throughput against
		// memory held in the pool.
		poolSize := runtime.NumCPU() * 100
		t.traceIDs = newIDPool(poolSize)
		t.spanIDs = newIDPool(poolSize)
		if t.closed.Load() {
			// The tracer was closed before the first span: stop the refill
			// goroutines, get() falls back to direct generation.
			t.traceIDs.close()
			t.spanIDs.close()
		}
	})
}

// inheritBaggage snapshots baggage from the references in order. The first
// occurrence of a key wins, so the primary reference takes precedence.
func inheritBaggage(refs []SpanReference) map[string]string {
	var baggage map[string]string
	for _, ref := range refs {
		ref.Context.ForeachBaggageItem(func(k, v string) bool {
			if _, ok := baggage[k]; !ok {
				if baggage == nil {
					baggage = make(map[string]string)
				}
				baggage[k] = v
			}
			return true
		})
	}
	return baggage
}
