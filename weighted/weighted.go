// Package weighted implements weighted random selection over a fixed item set
package weighted

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lixenwraith/rainfield/vmath"
)

var (
	// ErrEmpty is returned when no items are supplied
	ErrEmpty = errors.New("weighted: no items")

	// ErrZeroTotal is returned when every weight is zero
	ErrZeroTotal = errors.New("weighted: total weight is zero")
)

// Item pairs a value with its relative weight
type Item[T any] struct {
	Value  T
	Weight float64
}

// Choice selects items with probability proportional to weight
// Cumulative weights are precomputed once, Pick is O(log n)
type Choice[T any] struct {
	items      []T
	cumulative []float64
	total      float64
}

// New builds a choice from items, zero-weight items are kept but never picked
func New[T any](items []Item[T]) (*Choice[T], error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}

	c := &Choice[T]{
		items:      make([]T, len(items)),
		cumulative: make([]float64, len(items)),
	}
	for i, it := range items {
		if it.Weight < 0 {
			return nil, fmt.Errorf("weighted: negative weight %g at index %d", it.Weight, i)
		}
		c.total += it.Weight
		c.items[i] = it.Value
		c.cumulative[i] = c.total
	}
	if c.total <= 0 {
		return nil, ErrZeroTotal
	}
	return c, nil
}

// Pick draws one value using src
func (c *Choice[T]) Pick(src vmath.Source) T {
	return c.items[c.indexFor(src.Float64()*c.total)]
}

// indexFor maps a point in [0, total) to the first bucket whose cumulative weight exceeds it
func (c *Choice[T]) indexFor(point float64) int {
	i := sort.Search(len(c.cumulative), func(i int) bool {
		return c.cumulative[i] > point
	})
	if i >= len(c.items) {
		i = len(c.items) - 1
	}
	return i
}

// Len returns the number of items
func (c *Choice[T]) Len() int {
	return len(c.items)
}

// Probability returns the selection probability of item i
func (c *Choice[T]) Probability(i int) float64 {
	if i < 0 || i >= len(c.items) {
		return 0
	}
	prev := 0.0
	if i > 0 {
		prev = c.cumulative[i-1]
	}
	return (c.cumulative[i] - prev) / c.total
}
