package indicators

import (
	"math"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// generateRealisticData oscillates around a drifting base price
func generateRealisticData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	basePrice := 100.0
	volatility := 0.02

	for i := 0; i < count; i++ {
		change := (float64(i%7) - 3) * volatility * basePrice
		price := basePrice + change

		if i%5 == 0 {
			price *= 1.01
		} else if i%7 == 0 {
			price *= 0.99
		}
		basePrice = price

		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price * 1.005,
			Low:       price * 0.995,
			Close:     price,
			Volume:    1000.0 + float64(i%100),
		}
	}
	return data
}

// generateVolatileData alternates between large up and down swings
func generateVolatileData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	basePrice := 100.0

	for i := 0; i < count; i++ {
		change := (float64(i%2)*2 - 1) * 20.0
		price := basePrice + change

		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 5.0,
			Low:       price - 5.0,
			Close:     price,
			Volume:    1000.0,
		}
	}
	return data
}

// generateTrendData moves close by step every bar
func generateTrendData(count int, start, step float64) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		price := start + step*float64(i)
		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000.0,
		}
	}
	return data
}

// generateFlatData returns count identical bars
func generateFlatData(count int, price float64) []types.OHLCV {
	return generateTrendData(count, price, 0)
}

func finiteValues(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func nanValue() float64 {
	return math.NaN()
}
