package smc

import (
	"math"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// BreakOfStructure marks a bar whose extreme breaks the prior window's extreme.
// Price is the breaking high for bullish events and the breaking low for bearish.
type BreakOfStructure struct {
	Timestamp time.Time `json:"timestamp"`
	Index     int       `json:"index"`
	Kind      Kind      `json:"kind"`
	Price     float64   `json:"price"`
}

// RollingExtremes returns, for each bar i >= window, the max high and min low
// over bars [i-window, i-1]. Earlier positions, and windows containing NaN, are NaN.
func RollingExtremes(bars []types.OHLCV, window int) (highs, lows []float64) {
	n := len(bars)
	highs = make([]float64, n)
	lows = make([]float64, n)
	for i := range highs {
		highs[i] = math.NaN()
		lows[i] = math.NaN()
	}
	if window < 1 || n <= window {
		return highs, lows
	}

	// monotonic deques of indices: maxQ has decreasing highs, minQ increasing lows
	var maxQ, minQ []int
	lastNaN := -1
	for i := 0; i < n; i++ {
		if i >= window {
			if lastNaN < i-window {
				highs[i] = bars[maxQ[0]].High
				lows[i] = bars[minQ[0]].Low
			}
		}

		h, l := bars[i].High, bars[i].Low
		if math.IsNaN(h) || math.IsNaN(l) {
			lastNaN = i
		} else {
			for len(maxQ) > 0 && bars[maxQ[len(maxQ)-1]].High <= h {
				maxQ = maxQ[:len(maxQ)-1]
			}
			maxQ = append(maxQ, i)
			for len(minQ) > 0 && bars[minQ[len(minQ)-1]].Low >= l {
				minQ = minQ[:len(minQ)-1]
			}
			minQ = append(minQ, i)
		}

		// evict indices that fall out of the next bar's window [i+1-window, i]
		for len(maxQ) > 0 && maxQ[0] <= i-window {
			maxQ = maxQ[1:]
		}
		for len(minQ) > 0 && minQ[0] <= i-window {
			minQ = minQ[1:]
		}
	}
	return highs, lows
}

// FindBreakOfStructure reports a bullish break where high[i] exceeds the prior
// window's max high and a bearish break where low[i] is below the prior
// window's min low. Both may fire on the same bar. Requires more than window bars.
func FindBreakOfStructure(bars []types.OHLCV, window int) []BreakOfStructure {
	if window < 1 || len(bars) <= window {
		return nil
	}
	highs, lows := RollingExtremes(bars, window)

	var events []BreakOfStructure
	for i := window; i < len(bars); i++ {
		if bars[i].High > highs[i] {
			events = append(events, BreakOfStructure{
				Timestamp: bars[i].Timestamp,
				Index:     i,
				Kind:      Bullish,
				Price:     bars[i].High,
			})
		}
		if bars[i].Low < lows[i] {
			events = append(events, BreakOfStructure{
				Timestamp: bars[i].Timestamp,
				Index:     i,
				Kind:      Bearish,
				Price:     bars[i].Low,
			})
		}
	}
	return events
}

// BOS folds break events into per-bar flags
type BOS struct {
	window int
}

// NewBOS creates the detector with the given lookback window
func NewBOS(window int) *BOS {
	return &BOS{window: window}
}

// Apply appends bullish_bos and bearish_bos, set exactly on the breaking
// bar, plus the rolling_high and rolling_low reference levels
func (d *BOS) Apply(f *indicators.Frame) (*indicators.Frame, error) {
	bars := f.Bars()
	bullish := make([]bool, len(bars))
	bearish := make([]bool, len(bars))
	for _, ev := range FindBreakOfStructure(bars, d.window) {
		if ev.Kind == Bullish {
			bullish[ev.Index] = true
		} else {
			bearish[ev.Index] = true
		}
	}
	highs, lows := RollingExtremes(bars, d.window)

	return f.
		WithFloat(indicators.ColRollingHigh, highs).
		WithFloat(indicators.ColRollingLow, lows).
		WithFlag(indicators.ColBullishBOS, bullish).
		WithFlag(indicators.ColBearishBOS, bearish), nil
}

// GetName returns the indicator name
func (d *BOS) GetName() string {
	return "BOS"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (d *BOS) GetRequiredPeriods() int {
	return 1
}
