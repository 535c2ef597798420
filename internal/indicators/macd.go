package indicators

import (
	"github.com/markcheno/go-talib"
)

// MACD computes the MACD line, its EMA signal line and the histogram
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Apply appends macd, macd_signal_line and macd_hist
func (m *MACD) Apply(f *Frame) (*Frame, error) {
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}

	first := m.GetRequiredPeriods() - 1
	cols := perFiniteSpan(len(closes), m.GetRequiredPeriods(), 3, [][]float64{closes}, func(lo, hi int) [][]float64 {
		macdLine, signalLine, histogram := talib.Macd(closes[lo:hi], m.fastPeriod, m.slowPeriod, m.signalPeriod)
		return [][]float64{maskWarmup(macdLine, first), maskWarmup(signalLine, first), maskWarmup(histogram, first)}
	})

	return f.
		WithFloat(ColMACD, cols[0]).
		WithFloat(ColMACDSignalLine, cols[1]).
		WithFloat(ColMACDHist, cols[2]), nil
}

// GetName returns the indicator name
func (m *MACD) GetName() string {
	return "MACD"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (m *MACD) GetRequiredPeriods() int {
	slow := m.slowPeriod
	if m.fastPeriod > slow {
		slow = m.fastPeriod
	}
	return slow + m.signalPeriod - 1
}
