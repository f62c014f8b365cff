package tracekit

import "time"

// ReferenceKind distinguishes the causal relationship a span reference
// expresses.
type ReferenceKind int

const (
	// ChildOfRef marks a strict parent-child relationship: the parent
	// depends on the child's result.
	ChildOfRef ReferenceKind = iota
	// FollowsFromRef marks a looser sequencing relationship: the parent
	// does not wait for the referenced span.
	FollowsFromRef
)

// SpanReference links a span to another span's context. A span with zero
// references is the root of a new trace.
type SpanReference struct {
	Kind    ReferenceKind
	Context SpanContext
}

// LogRecord is one timestamped set of log fields attached to a span.
type LogRecord struct {
	Timestamp time.Time
	Fields    map[string]TagValue
}

// Span is a mutable record of one unit of work. It transitions from active
// to finished exactly once; Finish hands ownership to the reporting
// channel, after which only the receiving reporter may touch it.
//
// Spans are NOT thread-safe. A span belongs to the goroutine that created
// it; mutating the same span from multiple goroutines is a caller bug.
type Span struct {
	tracer     *Tracer
	operation  string
	context    SpanContext
	references []SpanReference
	tags       map[string]TagValue
	logs       []LogRecord
	startTime  time.Time
	finishTime time.Time
	finished   bool
	onFinish   func(*Span)
}

// spanConfig collects the start options for a new span.
type spanConfig struct {
	references []SpanReference
	tags       map[string]TagValue
	startTime  time.Time
	onFinish   func(*Span)
}

// SpanOption configures a span at start time.
type SpanOption func(*spanConfig)

// ChildOf adds a parent-child reference to the given context. The first
// reference determines the new span's trace identity and sampling.
func ChildOf(ctx SpanContext) SpanOption {
	return func(c *spanConfig) {
		c.references = append(c.references, SpanReference{Kind: ChildOfRef, Context: ctx})
	}
}

// FollowsFrom adds a follows-from reference to the given context.
func FollowsFrom(ctx SpanContext) SpanOption {
	return func(c *spanConfig) {
		c.references = append(c.references, SpanReference{Kind: FollowsFromRef, Context: ctx})
	}
}

// WithTag sets a tag on the span at start time.
func WithTag(key string, value TagValue) SpanOption {
	return func(c *spanConfig) {
		if c.tags == nil {
			c.tags = make(map[string]TagValue)
		}
		c.tags[key] = value
	}
}

// WithStartTime overrides the span's start time, which otherwise is the
// tracer clock's time at the Span call.
func WithStartTime(t time.Time) SpanOption {
	return func(c *spanConfig) { c.startTime = t }
}

// OnFinish registers a callback invoked synchronously inside Finish, after
// the finish time is stamped but before the span is handed to the
// reporting channel. The span is still mutable inside the callback. It
// runs at most once.
func OnFinish(fn func(*Span)) SpanOption {
	return func(c *spanConfig) { c.onFinish = fn }
}

// OperationName returns the span's operation name.
func (s *Span) OperationName() string { return s.operation }

// Context returns the span's current context snapshot.
func (s *Span) Context() SpanContext { return s.context }

// IsSampled reports whether this span's trace is recorded. Unsampled spans
// behave normally but are discarded at Finish instead of being reported.
func (s *Span) IsSampled() bool { return s.context.IsSampled() }

// References returns the span's causal references in the order given at
// start.
func (s *Span) References() []SpanReference { return s.references }

// Tags returns the span's tag map. Callers on the reporting side may read
// it freely; the producing side must go through SetTag.
func (s *Span) Tags() map[string]TagValue { return s.tags }

// Logs returns the span's log records in append order.
func (s *Span) Logs() []LogRecord { return s.logs }

// StartTime returns when the span started.
func (s *Span) StartTime() time.Time { return s.startTime }

// FinishTime returns when the span finished, or the zero time while it is
// still active.
func (s *Span) FinishTime() time.Time { return s.finishTime }

// IsFinished reports whether Finish has completed.
func (s *Span) IsFinished() bool { return s.finished }

// SetOperationName renames the span. Fails with ErrSpanFinished on a
// finished span.
func (s *Span) SetOperationName(operation string) error {
	if s.finished {
		return ErrSpanFinished
	}
	s.operation = operation
	return nil
}

// SetTag sets a tag, overwriting any previous value for the key. Fails
// with ErrSpanFinished on a finished span.
func (s *Span) SetTag(key string, value TagValue) error {
	if s.finished {
		return ErrSpanFinished
	}
	if s.tags == nil {
		s.tags = make(map[string]TagValue)
	}
	s.tags[key] = value
	return nil
}

// Log appends a log record with the given fields, timestamped by the
// tracer clock. The map is copied. Fails with ErrSpanFinished on a
// finished span.
func (s *Span) Log(fields map[string]TagValue) error {
	if s.finished {
		return ErrSpanFinished
	}
	if len(fields) == 0 {
		return nil
	}
	copied := make(map[string]TagValue, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.logs = append(s.logs, LogRecord{Timestamp: s.tracer.now(), Fields: copied})
	return nil
}

// LogEvent appends a log record with a single "event" field.
func (s *Span) LogEvent(event string) error {
	if s.finished {
		return ErrSpanFinished
	}
	s.logs = append(s.logs, LogRecord{
		Timestamp: s.tracer.now(),
		Fields:    map[string]TagValue{"event": StringValue(event)},
	})
	return nil
}

// LogError appends an error log record with the conventional
// "event"="error" and "message" fields.
func (s *Span) LogError(err error) error {
	if s.finished {
		return ErrSpanFinished
	}
	s.logs = append(s.logs, LogRecord{
		Timestamp: s.tracer.now(),
		Fields: map[string]TagValue{
			"event":   StringValue("error"),
			"message": StringValue(err.Error()),
		},
	})
	return nil
}

// SetBaggageItem sets a baggage entry visible to this span and every
// descendant created afterwards. The span's context is replaced with a
// derived copy; previously taken snapshots and children are unaffected.
// No-op when the tracer has baggage disabled. Fails with ErrSpanFinished
// on a finished span.
func (s *Span) SetBaggageItem(key, value string) error {
	if s.finished {
		return ErrSpanFinished
	}
	if !s.tracer.enableBaggage {
		return nil
	}
	s.context = s.context.WithBaggageItem(key, value)
	return nil
}

// BaggageItem returns the baggage value for key, or "" if absent.
func (s *Span) BaggageItem(key string) string { return s.context.BaggageItem(key) }

// Child starts a ChildOf span of this span through the owning tracer.
func (s *Span) Child(operation string, opts ...SpanOption) *Span {
	merged := make([]SpanOption, 0, len(opts)+1)
	merged = append(merged, ChildOf(s.context))
	merged = append(merged, opts...)
	return s.tracer.Span(operation, merged...)
}

// Finish stamps the finish time, freezes the span and hands it to the
// reporting channel. It never blocks and never fails: if the channel is
// full or the tracer is closed the span is dropped and the tracer's drop
// counter is incremented. Calling Finish again is a no-op; the finish time
// recorded is from the first call.
func (s *Span) Finish() {
	if !s.finishTime.IsZero() {
		return
	}
	s.finishTime = s.tracer.now()
	if s.finishTime.Before(s.startTime) {
		// Clock went backwards between start and finish. Keep the
		// invariant finish >= start.
		s.finishTime = s.startTime
	}
	if s.onFinish != nil {
		fn := s.onFinish
		s.onFinish = nil
		fn(s)
	}
	s.finished = true
	s.tracer.report(s)
}
