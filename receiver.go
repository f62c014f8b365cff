package tracekit

import "context"

// SpanReceiver is the consuming end of the reporting channel. Exactly one
// consumer may drain it at a time; a reporter iterates it and exports each
// finished span. Spans arrive in finish order per producing goroutine; no
// total order across goroutines is guaranteed.
type SpanReceiver struct {
	spans <-chan *Span
	done  <-chan struct{}
}

// Next blocks until a finished span is available and returns it. After the
// tracer closes, Next keeps returning buffered spans until the channel is
// drained and then returns (nil, false).
func (r *SpanReceiver) Next() (*Span, bool) {
	for {
		select {
		case span := <-r.spans:
			return span, true
		case <-r.done:
			// Tracer closed: drain whatever is already buffered.
			select {
			case span := <-r.spans:
				return span, true
			default:
				return nil, false
			}
		}
	}
}

// NextContext is Next with cancellation. It returns (nil, false) when ctx
// is done or the tracer is closed and drained, whichever comes first.
func (r *SpanReceiver) NextContext(ctx context.Context) (*Span, bool) {
	select {
	case span := <-r.spans:
		return span, true
	case <-r.done:
		select {
		case span := <-r.spans:
			return span, true
		default:
			return nil, false
		}
	case <-ctx.Done():
		return nil, false
	}
}

// TryNext returns a finished span without blocking, or (nil, false) if
// none is pending.
func (r *SpanReceiver) TryNext() (*Span, bool) {
	select {
	case span := <-r.spans:
		return span, true
	default:
		return nil, false
	}
}

// Chan exposes the raw channel for callers that want to select on span
// delivery alongside other events. Mixing Chan with Next on multiple
// goroutines violates the single-consumer contract.
func (r *SpanReceiver) Chan() <-chan *Span {
	return r.spans
}
