package indicators

import (
	"github.com/markcheno/go-talib"
)

// OBV represents the On-Balance Volume indicator
type OBV struct{}

// NewOBV creates a new OBV indicator
func NewOBV() *OBV {
	return &OBV{}
}

// Apply appends the obv column
func (o *OBV) Apply(f *Frame) (*Frame, error) {
	closes, err := f.Input(ColClose)
	if err != nil {
		return f, err
	}
	volumes, err := f.Input(ColVolume)
	if err != nil {
		return f, err
	}
	cols := perFiniteSpan(len(closes), 1, 1, [][]float64{closes, volumes}, func(lo, hi int) [][]float64 {
		return [][]float64{talib.Obv(closes[lo:hi], volumes[lo:hi])}
	})
	return f.WithFloat(ColOBV, cols[0]), nil
}

// GetName returns the indicator name
func (o *OBV) GetName() string {
	return "OBV"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (o *OBV) GetRequiredPeriods() int {
	return 1
}
