package indicators

import (
	"github.com/markcheno/go-talib"
)

// ATR represents the Average True Range indicator (Wilder smoothing)
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Apply appends the atr column
func (a *ATR) Apply(f *Frame) (*Frame, error) {
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
	cols := perFiniteSpan(len(closes), a.GetRequiredPeriods(), 1, [][]float64{highs, lows, closes}, func(lo, hi int) [][]float64 {
		return [][]float64{maskWarmup(talib.Atr(highs[lo:hi], lows[lo:hi], closes[lo:hi], a.period), a.period)}
	})
	return f.WithFloat(ColATR, cols[0]), nil
}

// GetName returns the indicator name
func (a *ATR) GetName() string {
	return "ATR"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (a *ATR) GetRequiredPeriods() int {
	return a.period + 1
}
