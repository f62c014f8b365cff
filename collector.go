package tracekit

import "sync"

// Collector drains a SpanReceiver in the background and buffers finished
// spans for batch export. It is a convenience for reporters that export
// periodically instead of span by span; reporters with their own loop can
// consume the receiver directly.
//
// A Collector takes the receiver's single-consumer slot: do not call Next
// on a receiver that a Collector is draining.
type Collector struct {
	receiver *SpanReceiver
	spans    []*Span
	done     chan struct{}
	mu       sync.Mutex
}

// NewCollector starts draining receiver into an internal buffer. The
// background goroutine exits when the tracer is closed and the receiver is
// exhausted; Done is closed at that point.
func NewCollector(receiver *SpanReceiver) *Collector {
	c := &Collector{
		receiver: receiver,
		spans:    make([]*Span, 0, 8),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Collector) run() {
	defer close(c.done)
	for {
		span, ok := c.receiver.Next()
		if !ok {
			return
		}
		c.mu.Lock()
		c.spans = append(c.spans, span)
		c.mu.Unlock()
	}
}

// Export returns the buffered spans and clears the internal buffer. The
// returned slice is owned by the caller.
func (c *Collector) Export() []*Span {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.spans) == 0 {
		return nil
	}

	result := c.spans

	// Shrink oversized buffers after a burst to avoid holding the peak
	// allocation forever; otherwise keep the capacity for reuse.
	if cap(c.spans) > 256 {
		c.spans = make([]*Span, 0, 32)
	} else {
		c.spans = make([]*Span, 0, cap(c.spans))
	}

	return result
}

// Count returns the number of buffered spans.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spans)
}

// Done is closed once the receiver is exhausted and every delivered span
// is buffered. After Done, a final Export observes the complete stream.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}
