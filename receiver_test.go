package tracekit

import (
	"context"
	"testing"
	"time"
)

func TestReceiverNextBlocks(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 10)
	defer tracer.Close()

	got := make(chan *Span, 1)
	go func() {
		span, ok := receiver.Next()
		if !ok {
			t.Error("Expected a span, got closed receiver")
		}
		got <- span
	}()

	// Give the consumer a moment to block, then produce.
	time.Sleep(5 * time.Millisecond)
	tracer.Span("test-operation").Finish()

	select {
	case span := <-got:
		if span.OperationName() != "test-operation" {
			t.Errorf("Expected 'test-operation', got %s", span.OperationName())
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not deliver the finished span")
	}
}

func TestReceiverTryNext(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 10)
	defer tracer.Close()

	if _, ok := receiver.TryNext(); ok {
		t.Error("Expected TryNext to report no pending spans")
	}

	tracer.Span("test-operation").Finish()

	if _, ok := receiver.TryNext(); !ok {
		t.Error("Expected TryNext to return the finished span")
	}
}

func TestReceiverDrainsAfterClose(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 10)

	tracer.Span("one").Finish()
	tracer.Span("two").Finish()
	tracer.Close()

	// Buffered spans survive close.
	for _, expected := range []string{"one", "two"} {
		span, ok := receiver.Next()
		if !ok {
			t.Fatalf("Expected buffered span %q after close", expected)
		}
		if span.OperationName() != expected {
			t.Errorf("Expected %q, got %q", expected, span.OperationName())
		}
	}

	// Then exhaustion, without blocking.
	if _, ok := receiver.Next(); ok {
		t.Error("Expected exhausted receiver after drain")
	}
}

func TestReceiverNextContextCancellation(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 10)
	defer tracer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := receiver.NextContext(ctx); ok {
		t.Error("Expected NextContext to give up on a cancelled context")
	}

	// With a live context it behaves like Next.
	tracer.Span("test-operation").Finish()
	span, ok := receiver.NextContext(context.Background())
	if !ok || span.OperationName() != "test-operation" {
		t.Errorf("Expected delivered span, got %v, %v", span, ok)
	}
}

func TestReceiverChan(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 10)
	defer tracer.Close()

	tracer.Span("test-operation").Finish()

	select {
	case span := <-receiver.Chan():
		if span.OperationName() != "test-operation" {
			t.Errorf("Expected 'test-operation', got %s", span.OperationName())
		}
	case <-time.After(time.Second):
		t.Fatal("Expected span on raw channel")
	}
}
