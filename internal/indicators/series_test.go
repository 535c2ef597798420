package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossSignal(t *testing.T) {
	tests := []struct {
		name     string
		fast     []float64
		slow     []float64
		expected []int
	}{
		{
			name:     "golden cross",
			fast:     []float64{1, 2, 4},
			slow:     []float64{3, 3, 3},
			expected: []int{0, 0, 1},
		},
		{
			name:     "death cross",
			fast:     []float64{4, 3, 2},
			slow:     []float64{3, 3, 3},
			expected: []int{0, 0, -1},
		},
		{
			name:     "touch then cross",
			fast:     []float64{2, 3, 4},
			slow:     []float64{3, 3, 3},
			expected: []int{0, 0, 1},
		},
		{
			name:     "first bar never signals",
			fast:     []float64{5},
			slow:     []float64{1},
			expected: []int{0},
		},
		{
			name:     "NaN yields zero",
			fast:     []float64{math.NaN(), 5, 1},
			slow:     []float64{3, 3, math.NaN()},
			expected: []int{0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CrossSignal(tt.fast, tt.slow))
		})
	}
}

func TestCrossSignal_Exclusive(t *testing.T) {
	data := generateVolatileData(200)
	fast := make([]float64, len(data))
	slow := make([]float64, len(data))
	for i, b := range data {
		fast[i] = b.Close
		slow[i] = 100
	}

	for i, s := range CrossSignal(fast, slow) {
		assert.Contains(t, []int{-1, 0, 1}, s, "bar %d", i)
	}
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 2.0, safeDiv(4, 2))
	assert.True(t, math.IsNaN(safeDiv(1, 0)))
	assert.True(t, math.IsNaN(safeDiv(1, math.NaN())))
}

func TestMaskWarmup(t *testing.T) {
	out := maskWarmup([]float64{0, 0, 3, 4}, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, []float64{3, 4}, out[2:])
}

func TestFiniteSpans(t *testing.T) {
	nan := math.NaN()
	closes := []float64{1, 2, nan, 4, 5, 6, math.Inf(1)}
	volumes := []float64{1, 1, 1, 1, nan, 1, 1}

	assert.Equal(t, []span{{0, 2}, {3, 6}}, finiteSpans(len(closes), closes))
	assert.Equal(t, []span{{0, 2}, {3, 4}, {5, 6}}, finiteSpans(len(closes), closes, volumes))
	assert.Empty(t, finiteSpans(2, []float64{nan, nan}))
	assert.Equal(t, []span{{0, 3}}, finiteSpans(3, []float64{1, 2, 3}))
}

func TestPerFiniteSpan(t *testing.T) {
	in := []float64{1, 2, 3, math.NaN(), 5, 6, math.NaN(), 8}
	var calls []span
	cols := perFiniteSpan(len(in), 2, 1, [][]float64{in}, func(lo, hi int) [][]float64 {
		calls = append(calls, span{lo, hi})
		out := make([]float64, hi-lo)
		for i := range out {
			out[i] = in[lo+i] * 10
		}
		return [][]float64{out}
	})

	// the trailing single bar is shorter than minLen and never reaches the kernel
	assert.Equal(t, []span{{0, 3}, {4, 6}}, calls)
	assert.Equal(t, []float64{10, 20, 30}, cols[0][:3])
	assert.Equal(t, []float64{50, 60}, cols[0][4:6])
	assert.True(t, math.IsNaN(cols[0][3]))
	assert.True(t, math.IsNaN(cols[0][6]))
	assert.True(t, math.IsNaN(cols[0][7]))
}
