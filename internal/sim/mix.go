package sim

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"slices"
)

var ErrEmptyMix = errors.New("mix has no positive weights")

// Mix picks values in proportion to their weights. Values are kept in sorted
// order so a seeded source replays the same picks.
type Mix[T cmp.Ordered] struct {
	values []T
	cum    []float64
}

// NewMix drops non-positive weights.
func NewMix[T cmp.Ordered](weights map[T]float64) (*Mix[T], error) {
	keys := make([]T, 0, len(weights))
	for k, w := range weights {
		if w > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, ErrEmptyMix
	}
	slices.Sort(keys)

	m := &Mix[T]{values: keys, cum: make([]float64, len(keys))}
	total := 0.0
	for i, k := range keys {
		total += weights[k]
		m.cum[i] = total
	}
	return m, nil
}

// Uniform gives every value the same weight.
func Uniform[T cmp.Ordered](values []T) (*Mix[T], error) {
	weights := make(map[T]float64, len(values))
	for _, v := range values {
		weights[v] = 1
	}
	m, err := NewMix(weights)
	if err != nil {
		return nil, fmt.Errorf("uniform over %d values: %w", len(values), err)
	}
	return m, nil
}

// Pick draws one value.
func (m *Mix[T]) Pick(rng *rand.Rand) T {
	u := rng.Float64() * m.cum[len(m.cum)-1]
	i, _ := slices.BinarySearch(m.cum, u)
	if i == len(m.values) {
		i--
	}
	for i < len(m.values)-1 && m.cum[i] == u {
		i++
	}
	return m.values[i]
}

// Values returns the values with a positive weight.
func (m *Mix[T]) Values() []T {
	return slices.Clone(m.values)
}
