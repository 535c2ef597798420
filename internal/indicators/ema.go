package indicators

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// EMA represents the Exponential Moving Average of close, seeded with the SMA
// of the first period closes
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Apply appends the ema_<period> column
func (e *EMA) Apply(f *Frame) (*Frame, error) {
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}
	cols := perFiniteSpan(len(closes), e.period, 1, [][]float64{closes}, func(lo, hi int) [][]float64 {
		return [][]float64{maskWarmup(talib.Ema(closes[lo:hi], e.period), e.period-1)}
	})
	return f.WithFloat(EMAColumn(e.period), cols[0]), nil
}

// GetName returns the indicator name
func (e *EMA) GetName() string {
	return fmt.Sprintf("EMA%d", e.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (e *EMA) GetRequiredPeriods() int {
	return e.period
}
