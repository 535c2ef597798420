package smc

import (
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// FairValueGap is a three-bar price imbalance anchored at the middle bar
type FairValueGap struct {
	Timestamp time.Time `json:"timestamp"`
	Index     int       `json:"index"`
	Kind      Kind      `json:"kind"`
	Low       float64   `json:"low"`
	High      float64   `json:"high"`
	Filled    bool      `json:"filled"`
}

// FindFairValueGaps scans every interior bar i. A bullish gap exists when
// high[i-1] < low[i+1], spanning [high[i-1], low[i+1]]; a bearish gap when
// low[i-1] > high[i+1], spanning [high[i+1], low[i-1]]. Both tests run
// independently, so one bar can anchor a gap of each kind. Fewer than three
// bars yields no events.
func FindFairValueGaps(bars []types.OHLCV) (bullish, bearish []FairValueGap) {
	if len(bars) < 3 {
		return nil, nil
	}
	for i := 1; i < len(bars)-1; i++ {
		prev, next := bars[i-1], bars[i+1]
		if prev.High < next.Low {
			bullish = append(bullish, FairValueGap{
				Timestamp: bars[i].Timestamp,
				Index:     i,
				Kind:      Bullish,
				Low:       prev.High,
				High:      next.Low,
			})
		}
		if prev.Low > next.High {
			bearish = append(bearish, FairValueGap{
				Timestamp: bars[i].Timestamp,
				Index:     i,
				Kind:      Bearish,
				Low:       next.High,
				High:      prev.Low,
			})
		}
	}
	return bullish, bearish
}

// FVG folds gap anchors into rolling per-bar counts
type FVG struct {
	lookback int
}

// NewFVG creates the detector; lookback is the number of bars counted,
// current bar included
func NewFVG(lookback int) *FVG {
	if lookback < 1 {
		lookback = 1
	}
	return &FVG{lookback: lookback}
}

// Apply appends bullish_fvg_count and bearish_fvg_count: the number of
// anchors of each kind at positions max(0, i-lookback+1)..i
func (d *FVG) Apply(f *indicators.Frame) (*indicators.Frame, error) {
	bullish, bearish := FindFairValueGaps(f.Bars())
	return f.
		WithInt(indicators.ColBullishFVGCount, rollingCount(f.Len(), bullish, d.lookback)).
		WithInt(indicators.ColBearishFVGCount, rollingCount(f.Len(), bearish, d.lookback)), nil
}

// GetName returns the indicator name
func (d *FVG) GetName() string {
	return "FVG"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (d *FVG) GetRequiredPeriods() int {
	return 1
}

// rollingCount walks the sorted anchors with two pointers: head admits
// anchors at or before i, tail evicts those older than the window.
func rollingCount(n int, gaps []FairValueGap, lookback int) []int {
	out := make([]int, n)
	head, tail := 0, 0
	for i := 0; i < n; i++ {
		for head < len(gaps) && gaps[head].Index <= i {
			head++
		}
		for tail < head && gaps[tail].Index < i-lookback+1 {
			tail++
		}
		out[i] = head - tail
	}
	return out
}
