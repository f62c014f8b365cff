package tracekit

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Sampler strategy names recognized by Config.
const (
	SamplerAll           = "all"
	SamplerNull          = "null"
	SamplerProbabilistic = "probabilistic"
)

// Config holds the recognized tracer options. Zero values are replaced by
// the documented defaults in Build; FromEnv fills them from the
// environment.
type Config struct {
	// Sampler selects the strategy: "all", "null" or "probabilistic".
	Sampler string `envconfig:"TRACE_SAMPLER" default:"all"`

	// SamplerRate is the probability for the probabilistic strategy.
	// Ignored by the other strategies.
	SamplerRate float64 `envconfig:"TRACE_SAMPLER_RATE" default:"1.0"`

	// ChannelCapacity bounds the reporting channel.
	ChannelCapacity int `envconfig:"TRACE_CHANNEL_CAPACITY" default:"1024"`

	// EnableBaggage controls whether baggage is propagated.
	EnableBaggage bool `envconfig:"TRACE_ENABLE_BAGGAGE" default:"true"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &cfg, nil
}

// BuildSampler constructs the sampler the configuration names.
func (c *Config) BuildSampler() (Sampler, error) {
	switch c.Sampler {
	case SamplerAll, "":
		return AllSampler{}, nil
	case SamplerNull:
		return NullSampler{}, nil
	case SamplerProbabilistic:
		return NewProbabilisticSampler(c.SamplerRate)
	default:
		return nil, fmt.Errorf("%w: unknown sampler strategy %q", ErrInvalidArgument, c.Sampler)
	}
}

// Build constructs a tracer and receiver from the configuration. Extra
// options are appended after the ones the configuration implies, so they
// win on conflict.
func (c *Config) Build(opts ...Option) (*Tracer, *SpanReceiver, error) {
	sampler, err := c.BuildSampler()
	if err != nil {
		return nil, nil, err
	}
	merged := make([]Option, 0, len(opts)+1)
	merged = append(merged, WithBaggage(c.EnableBaggage))
	merged = append(merged, opts...)
	tracer, receiver := New(sampler, c.ChannelCapacity, merged...)
	return tracer, receiver, nil
}
