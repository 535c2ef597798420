package indicators

import (
	"github.com/markcheno/go-talib"
)

// VWAP is the rolling volume weighted average price of the typical price
type VWAP struct {
	window int
}

// NewVWAP creates a rolling VWAP over window bars
func NewVWAP(window int) *VWAP {
	return &VWAP{window: window}
}

// Apply appends the vwap column: sum(tp*volume) / sum(volume) over the window
func (v *VWAP) Apply(f *Frame) (*Frame, error) {
	if _, err := f.Input(ColClose); err != nil {
		return f, err
	}
	volumes, err := f.Input(ColVolume)
	if err != nil {
		return f, err
	}

	bars := f.Bars()
	weighted := make([]float64, len(bars))
	for i, b := range bars {
		weighted[i] = b.TypicalPrice() * b.Volume
	}

	cols := perFiniteSpan(len(bars), v.window, 1, [][]float64{weighted, volumes}, func(lo, hi int) [][]float64 {
		num := talib.Sum(weighted[lo:hi], v.window)
		den := talib.Sum(volumes[lo:hi], v.window)
		out := nanSeries(hi - lo)
		for i := v.window - 1; i < len(out); i++ {
			out[i] = safeDiv(num[i], den[i])
		}
		return [][]float64{out}
	})
	return f.WithFloat(ColVWAP, cols[0]), nil
}

// GetName returns the indicator name
func (v *VWAP) GetName() string {
	return "VWAP"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (v *VWAP) GetRequiredPeriods() int {
	return v.window
}
