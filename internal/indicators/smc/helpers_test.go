package smc

import (
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(i int, low, high float64) types.OHLCV {
	mid := (low + high) / 2
	return types.OHLCV{
		Timestamp: testStart.Add(time.Duration(i) * time.Hour),
		Open:      mid,
		High:      high,
		Low:       low,
		Close:     mid,
		Volume:    100,
	}
}

func flatBars(n int, low, high float64) []types.OHLCV {
	bars := make([]types.OHLCV, n)
	for i := range bars {
		bars[i] = bar(i, low, high)
	}
	return bars
}

// zigzagBars produces a deterministic series with frequent gaps and breaks
func zigzagBars(n int) []types.OHLCV {
	bars := make([]types.OHLCV, n)
	price := 100.0
	for i := range bars {
		switch i % 5 {
		case 0, 1:
			price += float64(i%7) + 1
		case 2:
			price -= float64(i%11) + 2
		default:
			price += float64(i%3) - 1
		}
		spread := 1 + float64(i%4)
		bars[i] = bar(i, price-spread, price+spread)
	}
	return bars
}
