package tracekit

import (
	"fmt"
	"testing"
	"time"
)

func TestCollectorBasicCollection(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 10)
	collector := NewCollector(receiver)

	tracer.Span("one").Finish()
	tracer.Span("two").Finish()

	// Closing the tracer lets the collector drain deterministically.
	tracer.Close()
	<-collector.Done()

	if collector.Count() != 2 {
		t.Errorf("Expected 2 buffered spans, got %d", collector.Count())
	}

	spans := collector.Export()
	if len(spans) != 2 {
		t.Fatalf("Expected 2 exported spans, got %d", len(spans))
	}
	if spans[0].OperationName() != "one" || spans[1].OperationName() != "two" {
		t.Errorf("Expected finish order preserved, got %s, %s",
			spans[0].OperationName(), spans[1].OperationName())
	}

	// After export, the buffer is empty.
	if collector.Count() != 0 {
		t.Errorf("Expected 0 spans after export, got %d", collector.Count())
	}
	if spans := collector.Export(); spans != nil {
		t.Errorf("Expected nil export on empty collector, got %d spans", len(spans))
	}
}

func TestCollectorExportWhileCollecting(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 100)
	defer tracer.Close()
	collector := NewCollector(receiver)

	tracer.Span("early").Finish()

	// Wait for the background drain to pick it up.
	deadline := time.After(time.Second)
	for collector.Count() == 0 {
		select {
		case <-deadline:
			t.Fatal("Collector never buffered the finished span")
		case <-time.After(time.Millisecond):
		}
	}

	spans := collector.Export()
	if len(spans) != 1 || spans[0].OperationName() != "early" {
		t.Fatalf("Unexpected export %+v", spans)
	}

	// Collection continues after an export.
	tracer.Span("late").Finish()
	deadline = time.After(time.Second)
	for collector.Count() == 0 {
		select {
		case <-deadline:
			t.Fatal("Collector stopped draining after export")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCollectorBufferShrinksAfterBurst(t *testing.T) {
	tracer, receiver := New(AllSampler{}, 1000)
	collector := NewCollector(receiver)

	for i := 0; i < 600; i++ {
		tracer.Span(fmt.Sprintf("op-%d", i)).Finish()
	}
	tracer.Close()
	<-collector.Done()

	spans := collector.Export()
	if len(spans) != 600 {
		t.Fatalf("Expected 600 spans, got %d", len(spans))
	}

	collector.mu.Lock()
	shrunk := cap(collector.spans)
	collector.mu.Unlock()
	if shrunk > 256 {
		t.Errorf("Expected buffer shrunk after burst export, capacity still %d", shrunk)
	}
}
