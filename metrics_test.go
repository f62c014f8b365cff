package tracekit

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsSpanLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	tracer, _ := New(AllSampler{}, 10, WithMetrics(metrics))
	defer tracer.Close()

	span := tracer.Span("test-operation")
	child := span.Child("child-operation")
	child.Finish()
	span.Finish()

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SpansStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SpansSampled))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SpansFinished))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SpansDropped))
}

func TestMetricsUnsampled(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	tracer, _ := New(NullSampler{}, 10, WithMetrics(metrics))
	defer tracer.Close()

	tracer.Span("test-operation").Finish()

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SpansStarted))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SpansSampled))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SpansFinished))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SpansDropped))
}

func TestMetricsDrops(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	tracer, _ := New(AllSampler{}, 2, WithMetrics(metrics))
	defer tracer.Close()

	// Overflow a capacity-2 channel with no consumer.
	for i := 0; i < 5; i++ {
		tracer.Span("test-operation").Finish()
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.SpansDropped))
	assert.Equal(t, uint64(3), tracer.DroppedSpans())
}
