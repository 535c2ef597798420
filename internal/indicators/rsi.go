package indicators

import (
	"github.com/markcheno/go-talib"
)

// RSI calculates the Relative Strength Index (Wilder smoothing)
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Apply appends the rsi column. Values before the first full period after a
// non-finite close are NaN.
func (r *RSI) Apply(f *Frame) (*Frame, error) {
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}
	cols := perFiniteSpan(len(closes), r.GetRequiredPeriods(), 1, [][]float64{closes}, func(lo, hi int) [][]float64 {
		return [][]float64{maskWarmup(talib.Rsi(closes[lo:hi], r.period), r.period)}
	})
	return f.WithFloat(ColRSI, cols[0]), nil
}

// GetName returns the indicator name
func (r *RSI) GetName() string {
	return "RSI"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (r *RSI) GetRequiredPeriods() int {
	return r.period + 1
}
