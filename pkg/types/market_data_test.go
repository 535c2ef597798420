package types

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyBars(n int) []OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]OHLCV, n)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = OHLCV{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: p, High: p + 2, Low: p - 2, Close: p + 1, Volume: 10}
	}
	return bars
}

func TestValidateSeries(t *testing.T) {
	require.NoError(t, ValidateSeries(hourlyBars(5)))
	require.NoError(t, ValidateSeries(nil))

	tests := []struct {
		name   string
		mutate func(bars []OHLCV)
		index  int
	}{
		{"high below close", func(b []OHLCV) { b[2].High = b[2].Close - 1 }, 2},
		{"low above open", func(b []OHLCV) { b[1].Low = b[1].Open + 1 }, 1},
		{"negative volume", func(b []OHLCV) { b[3].Volume = -1 }, 3},
		{"duplicate timestamp", func(b []OHLCV) { b[4].Timestamp = b[3].Timestamp }, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := hourlyBars(5)
			tt.mutate(bars)

			err := ValidateSeries(bars)
			var barErr *BarError
			require.True(t, errors.As(err, &barErr))
			assert.Equal(t, tt.index, barErr.Index)
		})
	}

	t.Run("NaN prices pass through", func(t *testing.T) {
		bars := hourlyBars(3)
		bars[1].High = math.NaN()
		assert.NoError(t, ValidateSeries(bars))
	})
}

func TestFilterSince(t *testing.T) {
	bars := hourlyBars(10)

	got := FilterSince(bars, bars[6].Timestamp)
	require.Len(t, got, 4)
	assert.Equal(t, bars[6].Timestamp, got[0].Timestamp)

	assert.Len(t, FilterSince(bars, time.Time{}), 10)
	assert.Empty(t, FilterSince(bars, bars[9].Timestamp.Add(time.Minute)))
}

func TestChangePercent(t *testing.T) {
	assert.InDelta(t, 10.0, ChangePercent(110, 100), 1e-9)
	assert.InDelta(t, -25.0, ChangePercent(75, 100), 1e-9)
	assert.Equal(t, 0.0, ChangePercent(5, 0))
}

func TestTypicalPrice(t *testing.T) {
	assert.InDelta(t, 11.0, OHLCV{High: 12, Low: 9, Close: 12}.TypicalPrice(), 1e-9)
}
