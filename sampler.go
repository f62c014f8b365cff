package tracekit

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Sampler decides whether a new trace is recorded. The decision runs once
// per root span; children inherit it from their parent's context so a
// trace is either fully recorded or fully dropped.
//
// IsSampled must be a pure decision: no I/O, no blocking. It may be called
// concurrently from any number of goroutines.
type Sampler interface {
	IsSampled(operation string, traceID TraceID) bool
}

// AllSampler samples every trace.
type AllSampler struct{}

// IsSampled always returns true.
func (AllSampler) IsSampled(string, TraceID) bool { return true }

// NullSampler samples no traces.
type NullSampler struct{}

// IsSampled always returns false.
func (NullSampler) IsSampled(string, TraceID) bool { return false }

// ProbabilisticSampler samples each trace independently with a fixed
// probability. Rate 0 degenerates to NullSampler, rate 1 to AllSampler.
type ProbabilisticSampler struct {
	rate float64
}

// NewProbabilisticSampler creates a sampler with the given rate. The rate
// must be within [0, 1]; anything else, including NaN, fails with
// ErrInvalidArgument.
func NewProbabilisticSampler(rate float64) (*ProbabilisticSampler, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return nil, fmt.Errorf("%w: sampling rate %v is not within [0, 1]", ErrInvalidArgument, rate)
	}
	return &ProbabilisticSampler{rate: rate}, nil
}

// Rate returns the configured sampling probability.
func (s *ProbabilisticSampler) Rate() float64 { return s.rate }

// IsSampled draws uniformly per trace. The top-level math/rand/v2 source is
// safe for concurrent use, so no lock is taken on the caller's path.
func (s *ProbabilisticSampler) IsSampled(string, TraceID) bool {
	switch s.rate {
	case 0:
		return false
	case 1:
		return true
	}
	return rand.Float64() < s.rate
}
