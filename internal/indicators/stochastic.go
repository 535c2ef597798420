package indicators

import (
	"github.com/markcheno/go-talib"
)

// Stochastic is the fast stochastic oscillator: %K over window bars and %D
// as the SMA of %K over smooth bars
type Stochastic struct {
	window int
	smooth int
}

// NewStochastic creates a new Stochastic oscillator
func NewStochastic(window, smooth int) *Stochastic {
	return &Stochastic{window: window, smooth: smooth}
}

// Apply appends stoch_k and stoch_d
func (s *Stochastic) Apply(f *Frame) (*Frame, error) {
	highs, err := f.Input(ColHigh)
	if err != nil {
		return f, err
	}
	lows, err := f.Input(ColLow)
	if err != nil {
		return f, err
	}
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}

	first := s.GetRequiredPeriods() - 1
	cols := perFiniteSpan(len(closes), s.GetRequiredPeriods(), 2, [][]float64{highs, lows, closes}, func(lo, hi int) [][]float64 {
		k, d := talib.StochF(highs[lo:hi], lows[lo:hi], closes[lo:hi], s.window, s.smooth, talib.SMA)
		return [][]float64{maskWarmup(k, first), maskWarmup(d, first)}
	})

	return f.
		WithFloat(ColStochK, cols[0]).
		WithFloat(ColStochD, cols[1]), nil
}

// GetName returns the indicator name
func (s *Stochastic) GetName() string {
	return "Stochastic"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *Stochastic) GetRequiredPeriods() int {
	return s.window + s.smooth - 1
}
