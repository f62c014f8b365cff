package tracekit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments the tracer updates over the
// span lifecycle. All updates are counter increments; observing metrics
// never blocks the instrumented path.
type Metrics struct {
	SpansStarted  prometheus.Counter
	SpansSampled  prometheus.Counter
	SpansFinished prometheus.Counter
	SpansDropped  prometheus.Counter
}

// NewMetrics creates the instrument bundle and registers it on reg. Pass
// prometheus.DefaultRegisterer for the default registry. Wire the result
// into a tracer with WithMetrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SpansStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tracekit",
			Name:      "spans_started_total",
			Help:      "Total number of spans started.",
		}),
		SpansSampled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tracekit",
			Name:      "spans_sampled_total",
			Help:      "Total number of started spans whose trace is sampled.",
		}),
		SpansFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tracekit",
			Name:      "spans_finished_total",
			Help:      "Total number of spans finished.",
		}),
		SpansDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tracekit",
			Name:      "spans_dropped_total",
			Help:      "Total number of finished spans dropped because the reporting channel was full or closed.",
		}),
	}
}
