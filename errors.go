package tracekit

import "errors"

var (
	// ErrInvalidArgument occurs when a constructor is given malformed
	// parameters, such as a sampling rate outside [0, 1].
	ErrInvalidArgument = errors.New("tracekit: invalid argument")

	// ErrTraceContextNotFound occurs when Extract finds no tracing data in
	// the carrier at all. This is the normal case for untraced inbound
	// requests; callers should start a new root span.
	ErrTraceContextNotFound = errors.New("tracekit: trace context not found in carrier")

	// ErrCorruptedContext occurs when Extract finds tracing data that fails
	// to parse: required keys missing, malformed values, or truncated
	// binary input. Callers should treat the request as untraced.
	ErrCorruptedContext = errors.New("tracekit: trace context corrupted in carrier")

	// ErrEncoding occurs when Inject cannot write into the carrier, for
	// example because the carrier rejects a key.
	ErrEncoding = errors.New("tracekit: cannot encode trace context into carrier")

	// ErrSpanFinished occurs when a span is mutated after Finish. The
	// mutation is rejected and the finished span is left intact.
	ErrSpanFinished = errors.New("tracekit: span already finished")
)
