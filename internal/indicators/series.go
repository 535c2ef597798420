package indicators

import "math"

// maskWarmup copies values and replaces everything before firstValid with NaN.
// talib fills its lookback region with zeros, which would read as real values.
func maskWarmup(values []float64, firstValid int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i < firstValid {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// span is a half-open range of bar positions
type span struct {
	lo, hi int
}

// finiteSpans returns the maximal runs of positions where every input is
// finite, in order
func finiteSpans(n int, inputs ...[]float64) []span {
	var spans []span
	start := -1
	for i := 0; i <= n; i++ {
		ok := i < n
		for _, in := range inputs {
			if !ok {
				break
			}
			ok = i < len(in) && !math.IsNaN(in[i]) && !math.IsInf(in[i], 0)
		}
		switch {
		case ok && start < 0:
			start = i
		case !ok && start >= 0:
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	return spans
}

// perFiniteSpan runs kernel on every finite span of at least minLen bars and
// writes its columns back at the span offsets. kernel gets the span bounds
// and returns outputs columns of length hi-lo. Everything outside a usable
// span is NaN, so a bad bar only blanks the windows that contain it and the
// recursive kernels start over after it.
func perFiniteSpan(n, minLen, outputs int, inputs [][]float64, kernel func(lo, hi int) [][]float64) [][]float64 {
	out := make([][]float64, outputs)
	for i := range out {
		out[i] = nanSeries(n)
	}
	for _, s := range finiteSpans(n, inputs...) {
		if s.hi-s.lo < minLen {
			continue
		}
		for c, values := range kernel(s.lo, s.hi) {
			copy(out[c][s.lo:s.hi], values)
		}
	}
	return out
}

// safeDiv divides and maps a zero or NaN denominator to NaN
func safeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}

// CrossSignal applies the golden/death cross rule to a fast and a slow line:
// +1 where fast moves from at-or-below to above slow, -1 where it moves from
// at-or-above to below, 0 elsewhere. NaN on either side yields 0 and the
// first bar is always 0.
func CrossSignal(fast, slow []float64) []int {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	out := make([]int, n)
	for i := 1; i < n; i++ {
		switch {
		case fast[i] > slow[i] && fast[i-1] <= slow[i-1]:
			out[i] = 1
		case fast[i] < slow[i] && fast[i-1] >= slow[i-1]:
			out[i] = -1
		}
	}
	return out
}
