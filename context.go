package tracekit

// TraceID identifies a trace. All spans of one trace share it.
type TraceID uint64

// SpanID identifies a single span within a trace.
type SpanID uint64

// SpanContext is the immutable, propagatable part of a span: its identity,
// the sampling decision and the baggage. A SpanContext is a value; once
// constructed it never changes. Deriving (WithBaggageItem, child creation)
// produces a new value and never mutates the original, so contexts may be
// shared freely across goroutines.
type SpanContext struct {
	traceID TraceID
	spanID  SpanID
	sampled bool
	baggage map[string]string
}

// NewSpanContext constructs a SpanContext. The baggage map is copied; the
// caller keeps ownership of the argument.
func NewSpanContext(traceID TraceID, spanID SpanID, sampled bool, baggage map[string]string) SpanContext {
	return SpanContext{
		traceID: traceID,
		spanID:  spanID,
		sampled: sampled,
		baggage: copyBaggage(baggage),
	}
}

// TraceID returns the trace identifier.
func (c SpanContext) TraceID() TraceID { return c.traceID }

// SpanID returns the span identifier.
func (c SpanContext) SpanID() SpanID { return c.spanID }

// IsSampled reports whether the trace this context belongs to is recorded.
func (c SpanContext) IsSampled() bool { return c.sampled }

// BaggageItem returns the baggage value for key, or "" if absent.
func (c SpanContext) BaggageItem(key string) string { return c.baggage[key] }

// ForeachBaggageItem calls handler for every baggage entry in unspecified
// order. Iteration stops early if handler returns false.
func (c SpanContext) ForeachBaggageItem(handler func(key, value string) bool) {
	for k, v := range c.baggage {
		if !handler(k, v) {
			return
		}
	}
}

// BaggageLen returns the number of baggage entries.
func (c SpanContext) BaggageLen() int { return len(c.baggage) }

// WithBaggageItem returns a copy of c with key set to value. The receiver
// is unchanged.
func (c SpanContext) WithBaggageItem(key, value string) SpanContext {
	baggage := make(map[string]string, len(c.baggage)+1)
	for k, v := range c.baggage {
		baggage[k] = v
	}
	baggage[key] = value
	c.baggage = baggage
	return c
}

// Equal reports whether two contexts carry the same identity, sampling
// decision and baggage.
func (c SpanContext) Equal(other SpanContext) bool {
	if c.traceID != other.traceID || c.spanID != other.spanID || c.sampled != other.sampled {
		return false
	}
	if len(c.baggage) != len(other.baggage) {
		return false
	}
	for k, v := range c.baggage {
		if ov, ok := other.baggage[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func copyBaggage(baggage map[string]string) map[string]string {
	if len(baggage) == 0 {
		return nil
	}
	out := make(map[string]string, len(baggage))
	for k, v := range baggage {
		out[k] = v
	}
	return out
}
