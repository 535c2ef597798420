package types

import (
	"fmt"
	"math"
	"time"
)

// OHLCV is a single candle. Bars are treated as immutable once ingested.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// TypicalPrice returns (high + low + close) / 3
func (b OHLCV) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Ticker is a 24h market summary for a symbol
type Ticker struct {
	Symbol             string
	Price              float64
	PriceChangePercent float64
	Volume             float64
	QuoteVolume        float64
	Timestamp          time.Time
}

// BarError describes an invariant violation at a specific position of a series
type BarError struct {
	Index  int
	Reason string
}

func (e *BarError) Error() string {
	return fmt.Sprintf("bar %d: %s", e.Index, e.Reason)
}

// ValidateSeries checks the bar invariants: high/low envelope, non-negative
// volume and strictly increasing timestamps. Non-finite values are not
// rejected here; they propagate as NaN through the indicator math.
func ValidateSeries(bars []OHLCV) error {
	for i, b := range bars {
		if finite(b.Open, b.High, b.Low, b.Close) {
			if b.High < math.Max(b.Open, math.Max(b.Close, b.Low)) {
				return &BarError{Index: i, Reason: "high is below open/close/low"}
			}
			if b.Low > math.Min(b.Open, math.Min(b.Close, b.High)) {
				return &BarError{Index: i, Reason: "low is above open/close/high"}
			}
		}
		if b.Volume < 0 {
			return &BarError{Index: i, Reason: "negative volume"}
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return &BarError{Index: i, Reason: "timestamp is not strictly increasing"}
		}
	}
	return nil
}

// FilterSince returns the bars whose timestamp is at or after start.
func FilterSince(bars []OHLCV, start time.Time) []OHLCV {
	out := make([]OHLCV, 0, len(bars))
	for _, b := range bars {
		if !b.Timestamp.Before(start) {
			out = append(out, b)
		}
	}
	return out
}

// ChangePercent returns the percentage change from previous to current, 0 when previous is 0
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
