package indicators

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// SMA represents the Simple Moving Average of close
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Apply appends the sma_<period> column
func (s *SMA) Apply(f *Frame) (*Frame, error) {
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}
	cols := perFiniteSpan(len(closes), s.period, 1, [][]float64{closes}, func(lo, hi int) [][]float64 {
		return [][]float64{maskWarmup(talib.Sma(closes[lo:hi], s.period), s.period-1)}
	})
	return f.WithFloat(SMAColumn(s.period), cols[0]), nil
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return fmt.Sprintf("SMA%d", s.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
