package indicators

import (
	"fmt"

	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// VWEMA is a volume weighted exponential moving average.
//
// The seed is the volume weighted average typical price of the first period
// bars and is written to every position up to period-1. After that each value
// is tp*volume*k + prev*(1-k) with k = 2/(period+1). The recursive input is
// the volume weighted numerator, not a price, so the series drifts to a
// different scale than the seed. Consumers rely on this exact formula.
type VWEMA struct {
	period int
}

// NewVWEMA creates a new VWEMA indicator
func NewVWEMA(period int) *VWEMA {
	return &VWEMA{period: period}
}

// Apply appends the vwema_<period> column
func (v *VWEMA) Apply(f *Frame) (*Frame, error) {
	if _, err := f.Input(ColClose); err != nil {
		return f, err
	}
	if _, err := f.Input(ColVolume); err != nil {
		return f, err
	}
	return f.WithFloat(VWEMAColumn(v.period), VWEMASeries(f.Bars(), v.period)), nil
}

// GetName returns the indicator name
func (v *VWEMA) GetName() string {
	return fmt.Sprintf("VWEMA%d", v.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (v *VWEMA) GetRequiredPeriods() int {
	return v.period
}

// VWEMASeries computes the VWEMA values for bars. Shorter inputs yield all NaN.
// A bar with a non-finite price or volume is NaN and the average is seeded
// again from the bars after it. A zero-volume seed window is NaN and so is
// everything recursed from it.
func VWEMASeries(bars []types.OHLCV, period int) []float64 {
	if period < 1 {
		return nanSeries(len(bars))
	}
	tp := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		tp[i] = b.TypicalPrice()
		volumes[i] = b.Volume
	}

	cols := perFiniteSpan(len(bars), period, 1, [][]float64{tp, volumes}, func(lo, hi int) [][]float64 {
		return [][]float64{vwema(tp[lo:hi], volumes[lo:hi], period)}
	})
	return cols[0]
}

func vwema(tp, volumes []float64, period int) []float64 {
	out := make([]float64, len(tp))

	var weighted, volume float64
	for i := 0; i < period; i++ {
		weighted += tp[i] * volumes[i]
		volume += volumes[i]
	}
	seed := safeDiv(weighted, volume)
	for i := 0; i < period; i++ {
		out[i] = seed
	}

	k := 2.0 / float64(period+1)
	for i := period; i < len(tp); i++ {
		out[i] = tp[i]*volumes[i]*k + out[i-1]*(1-k)
	}
	return out
}
