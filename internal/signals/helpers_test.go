package signals

import (
	"math"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
	"github.com/stretchr/testify/assert"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func generateTestData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	basePrice := 100.0
	for i := 0; i < count; i++ {
		change := (float64(i%7) - 3) * 0.02 * basePrice
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

// generateGoldenCrossData declines one unit per bar and jumps at crossAt,
// so the 9 EMA crosses above the 21 EMA exactly on that bar
func generateGoldenCrossData(count, crossAt int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		price := 200.0 - float64(i)
		if i >= crossAt {
			price = 200.0 - float64(crossAt) + 100
		}
		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    1000.0,
		}
	}
	return data
}

// frameWith builds an n-bar frame carrying the given int and flag columns
func frameWith(n int, ints map[string][]int, flags map[string][]bool) *indicators.Frame {
	f := indicators.NewFrame(generateTestData(n))
	for name, v := range ints {
		f = f.WithInt(name, v)
	}
	for name, v := range flags {
		f = f.WithFlag(name, v)
	}
	return f
}

// assertFramesIdentical compares every column bit for bit, NaN included
func assertFramesIdentical(t *testing.T, a, b *indicators.Frame) {
	t.Helper()
	assert.Equal(t, a.Bars(), b.Bars())
	assert.Equal(t, a.Columns(), b.Columns())
	for _, name := range a.Columns() {
		if fa, ok := a.Float(name); ok {
			fb, _ := b.Float(name)
			for i := range fa {
				assert.Equal(t, math.Float64bits(fa[i]), math.Float64bits(fb[i]), "%s[%d]", name, i)
			}
			continue
		}
		if ia, ok := a.Int(name); ok {
			ib, _ := b.Int(name)
			assert.Equal(t, ia, ib, name)
			continue
		}
		fa, _ := a.Flag(name)
		fb, _ := b.Flag(name)
		assert.Equal(t, fa, fb, name)
	}
}
