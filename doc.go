// Package tracekit provides a minimal OpenTracing-style tracing core.
//
// tracekit focuses on span creation, context propagation and non-blocking
// span reporting without binding to a specific tracing backend. It's
// designed for systems that need predictable performance on the
// instrumented path: starting, mutating and finishing a span never blocks.
//
// Core Components:
//   - Tracer: creates spans, owns the sampler and the reporting channel.
//   - Span: a single timed unit of work with tags, logs and references.
//   - SpanContext: immutable identity plus baggage, propagated via carriers.
//   - Sampler: decides whether a new trace is recorded.
//   - SpanReceiver: the consuming end of the reporting channel.
//
// Basic Usage:
//
//	tracer, receiver := tracekit.New(tracekit.AllSampler{}, 1024)
//	defer tracer.Close()
//
//	// Start a root span.
//	span := tracer.Span("handle-request")
//	span.SetTag("peer.address", tracekit.StringValue("10.0.0.1:80"))
//
//	// Start a child and finish both.
//	child := span.Child("query-db")
//	child.Finish()
//	span.Finish()
//
//	// Somewhere else, a reporter drains the receiver.
//	for {
//		finished, ok := receiver.Next()
//		if !ok {
//			break
//		}
//		export(finished)
//	}
//
// Cross-process propagation uses carriers:
//
//	carrier := tracekit.TextMapCarrier{}
//	_ = tracer.Inject(span.Context(), carrier)
//	remote, err := tracer.Extract(carrier)
//
// Thread Safety:
//
// Tracer is safe for concurrent use by multiple goroutines; any number of
// spans may finish concurrently. Spans themselves are NOT thread-safe - a
// span is owned by the goroutine that created it until Finish hands it to
// the reporting channel.
//
// Backpressure:
//
// The reporting channel is bounded. When it is full, newly finished spans
// are dropped rather than blocking the caller - use Tracer.DroppedSpans()
// or the prometheus Metrics bundle to monitor drops.
//
// Resource Cleanup:
//
// Call Tracer.Close() to disable the producing side. Close is idempotent
// and safe to race with in-flight Finish calls; spans finished after close
// are silently discarded so that tracer shutdown never breaks application
// logic.
package tracekit
