package sim

import (
	"math/rand"
	"time"

	"police/fcr/internal/dispatch"
)

// UniformResolution draws on-scene time uniformly from [Min, Max].
type UniformResolution struct {
	Min time.Duration
	Max time.Duration
	rng *rand.Rand
}

// NewUniformResolution shares rng with the caller, which must serialise draws.
func NewUniformResolution(min, max time.Duration, rng *rand.Rand) *UniformResolution {
	if max < min {
		min, max = max, min
	}
	return &UniformResolution{Min: min, Max: max, rng: rng}
}

func (u *UniformResolution) ResolutionTime(*dispatch.Incident) time.Duration {
	span := u.Max - u.Min
	if span <= 0 {
		return u.Min
	}
	return u.Min + time.Duration(u.rng.Float64()*float64(span))
}
