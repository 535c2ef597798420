package indicators

import (
	"github.com/markcheno/go-talib"
)

// BollingerBands represents the Bollinger Bands indicator (SMA middle band,
// population standard deviation)
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// NewBollingerBands creates a new BollingerBands instance with the given period and standard deviation multiplier
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Apply appends bb_high, bb_mid, bb_low, bb_width and bb_pct.
// bb_width is the band spread as a percentage of the middle band; bb_pct is
// the position of close inside the bands (0 at the lower band, 1 at the upper).
func (bb *BollingerBands) Apply(f *Frame) (*Frame, error) {
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}

	first := bb.period - 1
	bands := perFiniteSpan(len(closes), bb.period, 3, [][]float64{closes}, func(lo, hi int) [][]float64 {
		upper, middle, lower := talib.BBands(closes[lo:hi], bb.period, bb.stdDevMultiple, bb.stdDevMultiple, talib.SMA)
		return [][]float64{maskWarmup(upper, first), maskWarmup(middle, first), maskWarmup(lower, first)}
	})
	upper, middle, lower := bands[0], bands[1], bands[2]

	width := make([]float64, len(closes))
	percent := make([]float64, len(closes))
	for i := range closes {
		width[i] = safeDiv(upper[i]-lower[i], middle[i]) * 100
		percent[i] = safeDiv(closes[i]-lower[i], upper[i]-lower[i])
	}

	return f.
		WithFloat(ColBBHigh, upper).
		WithFloat(ColBBMid, middle).
		WithFloat(ColBBLow, lower).
		WithFloat(ColBBWidth, width).
		WithFloat(ColBBPercent, percent), nil
}

// GetName returns the indicator name
func (bb *BollingerBands) GetName() string {
	return "BollingerBands"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}
