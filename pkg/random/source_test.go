package random

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIntBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{name: "single value", min: 7, max: 7},
		{name: "small range", min: 0, max: 3},
		{name: "negative range", min: -10, max: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := New(1)
			seen := make(map[int]bool)
			for i := 0; i < 2000; i++ {
				v := src.NextInt(tt.min, tt.max)
				assert.GreaterOrEqual(t, v, tt.min)
				assert.LessOrEqual(t, v, tt.max)
				seen[v] = true
			}
			// every value of a small closed interval shows up
			assert.Len(t, seen, tt.max-tt.min+1)
		})
	}
}

func TestNextIntWideRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{name: "full int range", min: math.MinInt, max: math.MaxInt},
		{name: "zero to max", min: 0, max: math.MaxInt},
		{name: "minus one to max", min: -1, max: math.MaxInt},
		{name: "min to zero", min: math.MinInt, max: 0},
		{name: "near extremes", min: math.MinInt + 1, max: math.MaxInt - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := New(5)
			var below, above bool
			mid := tt.min/2 + tt.max/2
			for i := 0; i < 500; i++ {
				v := src.NextInt(tt.min, tt.max)
				assert.GreaterOrEqual(t, v, tt.min)
				assert.LessOrEqual(t, v, tt.max)
				below = below || v < mid
				above = above || v >= mid
			}
			assert.True(t, below, "no draw in the lower half")
			assert.True(t, above, "no draw in the upper half")
		})
	}
}

func TestNextIntPanicsOnInvertedRange(t *testing.T) {
	assert.Panics(t, func() { New(1).NextInt(5, 4) })
}

func TestFixedSeedIsReproducible(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.NextInt(0, 1000), b.NextInt(0, 1000))
	}
}

func TestDerive(t *testing.T) {
	first := Derive(New(99), 4)
	second := Derive(New(99), 4)

	assert.Len(t, first, 4)
	for i := range first {
		// draw from children in reverse order to show scheduling does not matter
		j := len(second) - 1 - i
		assert.Equal(t, first[j].NextInt(0, 1<<30), second[j].NextInt(0, 1<<30))
	}

	assert.NotEqual(t, first[0].Seed(), first[1].Seed())
}
