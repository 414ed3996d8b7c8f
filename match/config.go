// Package match maps the colours used by an image onto a fixed palette.
//
// The pipeline is: Lab cache, k-nearest-neighbour graph over the originals,
// weighted cost matrix, Kuhn-Munkres assignment, then a seeded pairwise-swap
// refinement that protects the relative distances of neighbouring colours.
package match

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var (
	// ErrMalformedConfiguration is returned by Config.Validate.
	ErrMalformedConfiguration = errors.New("malformed configuration")

	// ErrEmptyPalette is returned when there are colours to map but no
	// usable palette entries.
	ErrEmptyPalette = errors.New("empty palette")
)

// Config holds every tunable of a mapping computation. The engine applies no
// defaults of its own.
type Config struct {
	// Alpha weighs lightness-rank deviation.
	Alpha float64 `mapstructure:"alpha" json:"alpha"`
	// Beta weighs hue deviation in degrees.
	Beta float64 `mapstructure:"beta" json:"beta"`
	// Gamma weighs chroma added to a neutral original.
	Gamma float64 `mapstructure:"gamma" json:"gamma"`
	// Delta weighs neighbour-distance distortion during refinement.
	Delta float64 `mapstructure:"delta" json:"delta"`
	// CNeutral is the chroma below which an original counts as neutral.
	CNeutral float64 `mapstructure:"c_neutral" json:"c_neutral"`
	// K bounds the number of neighbour candidates per colour.
	K int `mapstructure:"k" json:"k"`
	// Iter is the number of refinement trials.
	Iter int `mapstructure:"iter" json:"iter"`
	// Seed seeds the refinement generator when WithRand is not given.
	Seed uint64 `mapstructure:"seed" json:"seed"`
	// EpsTie is validated but not used by the matcher.
	EpsTie float64 `mapstructure:"eps_tie" json:"eps_tie"`
}

// DefaultConfig returns the values the recolor CLI starts from.
func DefaultConfig() Config {
	return Config{
		Alpha:    1.2,
		Beta:     0.15,
		Gamma:    0.08,
		Delta:    0.35,
		CNeutral: 6.0,
		K:        4,
		Iter:     2000,
		Seed:     1,
	}
}

// Validate rejects negative or NaN weights, K < 1 and Iter < 0.
func (c Config) Validate() error {
	weights := []struct {
		name string
		v    float64
	}{
		{"alpha", c.Alpha},
		{"beta", c.Beta},
		{"gamma", c.Gamma},
		{"delta", c.Delta},
		{"c_neutral", c.CNeutral},
		{"eps_tie", c.EpsTie},
	}
	for _, w := range weights {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) || w.v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrMalformedConfiguration, w.name, w.v)
		}
	}
	if c.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrMalformedConfiguration, c.K)
	}
	if c.Iter < 0 {
		return fmt.Errorf("%w: iter must not be negative, got %d", ErrMalformedConfiguration, c.Iter)
	}
	return nil
}

// Option customises a single ComputeMapping call.
type Option func(*options)

type options struct {
	rng *rand.Rand
	log logrus.FieldLogger
}

// WithRand injects the generator used by the refinement pass.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func newOptions(cfg Config, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = NewRand(cfg.Seed)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = l
	}
	o.log = o.log.WithField("component", "match")
	return o
}
