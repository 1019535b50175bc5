package simulator

import (
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

var ErrEmptyDistribution = errors.New("distribution has no choices")

// Choice pairs a value with its relative weight.
type Choice[T any] struct {
	Value  T
	Weight float32
}

// Distribution draws values according to their relative weights.
type Distribution[T any] struct {
	options []any
	weights []float32
	total   float32
}

// NewDistribution validates choices and builds a Distribution from them.
// Weights are relative; they do not need to add up to any particular total.
func NewDistribution[T any](choices ...Choice[T]) (*Distribution[T], error) {
	if len(choices) == 0 {
		return nil, ErrEmptyDistribution
	}
	d := &Distribution[T]{
		options: make([]any, len(choices)),
		weights: make([]float32, len(choices)),
	}
	for i, c := range choices {
		if c.Weight <= 0 {
			return nil, fmt.Errorf("choice %d (%v) has non-positive weight %v", i, c.Value, c.Weight)
		}
		d.options[i] = c.Value
		d.weights[i] = c.Weight
		d.total += c.Weight
	}
	return d, nil
}

// MustDistribution is like NewDistribution but panics on invalid choices.
// It is meant for package-level tables whose contents are fixed.
func MustDistribution[T any](choices ...Choice[T]) *Distribution[T] {
	d, err := NewDistribution(choices...)
	if err != nil {
		panic(err)
	}
	return d
}

// Pick draws one value using the faker's random source.
func (d *Distribution[T]) Pick(f *gofakeit.Faker) T {
	v, err := f.Weighted(d.options, d.weights)
	if err != nil {
		// options and weights are validated at construction time
		return d.options[0].(T)
	}
	return v.(T)
}

// Probability returns the share of draws expected to produce the choice at index i.
func (d *Distribution[T]) Probability(i int) float64 {
	if i < 0 || i >= len(d.weights) {
		return 0
	}
	return float64(d.weights[i]) / float64(d.total)
}

// Len returns the number of choices.
func (d *Distribution[T]) Len() int {
	return len(d.options)
}

// Value returns the value of the choice at index i.
func (d *Distribution[T]) Value(i int) T {
	return d.options[i].(T)
}
