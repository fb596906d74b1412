package weighted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rainfield/vmath"
)

// fixedSource returns a scripted sequence of Float64 values
type fixedSource struct {
	values []float64
	i      int
}

func (f *fixedSource) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func (f *fixedSource) Intn(n int) int { return 0 }

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New[string](nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = New([]Item[string]{{"a", 0}, {"b", 0}})
	assert.ErrorIs(t, err, ErrZeroTotal)

	_, err = New([]Item[string]{{"a", 1}, {"b", -1}})
	assert.Error(t, err)
}

// TestPickBoundaries checks bucket edges with a scripted source
func TestPickBoundaries(t *testing.T) {
	c, err := New([]Item[string]{{"a", 1}, {"b", 2}, {"c", 1}})
	require.NoError(t, err)

	tests := []struct {
		point float64
		want  string
	}{
		{0.0, "a"},
		{0.2499, "a"},
		{0.25, "b"},
		{0.7499, "b"},
		{0.75, "c"},
		{0.9999, "c"},
	}
	for _, tt := range tests {
		got := c.Pick(&fixedSource{values: []float64{tt.point}})
		assert.Equal(t, tt.want, got, "point %v", tt.point)
	}
}

// TestPickSkipsZeroWeight verifies zero-weight items are unreachable
func TestPickSkipsZeroWeight(t *testing.T) {
	c, err := New([]Item[int]{{1, 1}, {2, 0}, {3, 1}})
	require.NoError(t, err)

	src := vmath.NewFastRand(11)
	for i := 0; i < 5000; i++ {
		assert.NotEqual(t, 2, c.Pick(src))
	}
}

// TestPickDistribution checks observed frequencies track weights
func TestPickDistribution(t *testing.T) {
	weights := []float64{40, 20, 15, 15, 5, 2}
	items := make([]Item[int], len(weights))
	for i, w := range weights {
		items[i] = Item[int]{Value: i, Weight: w}
	}
	c, err := New(items)
	require.NoError(t, err)

	const draws = 200000
	counts := make([]int, len(weights))
	src := vmath.NewFastRand(1234)
	for i := 0; i < draws; i++ {
		counts[c.Pick(src)]++
	}

	for i := range weights {
		observed := float64(counts[i]) / draws
		assert.InDelta(t, c.Probability(i), observed, 0.01, "tier %d", i)
	}
}

func TestProbability(t *testing.T) {
	c, err := New([]Item[string]{{"x", 3}, {"y", 1}})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, c.Probability(0), 1e-12)
	assert.InDelta(t, 0.25, c.Probability(1), 1e-12)
	assert.Equal(t, 0.0, c.Probability(5))
	assert.Equal(t, 2, c.Len())
}
