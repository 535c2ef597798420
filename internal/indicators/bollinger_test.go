package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBollingerBands_Ordering(t *testing.T) {
	for name, data := range map[string]int{"realistic": 0, "volatile": 1} {
		t.Run(name, func(t *testing.T) {
			bars := generateRealisticData(150)
			if data == 1 {
				bars = generateVolatileData(150)
			}
			f, err := NewBollingerBands(20, 2).Apply(NewFrame(bars))
			require.NoError(t, err)

			upper, _ := f.Float(ColBBHigh)
			middle, _ := f.Float(ColBBMid)
			lower, _ := f.Float(ColBBLow)
			for i := 0; i < 19; i++ {
				assert.True(t, math.IsNaN(middle[i]))
			}
			for i := 19; i < len(bars); i++ {
				assert.LessOrEqual(t, lower[i], middle[i], "bar %d", i)
				assert.LessOrEqual(t, middle[i], upper[i], "bar %d", i)
			}
		})
	}
}

func TestBollingerBands_Values(t *testing.T) {
	f, err := NewBollingerBands(20, 2).Apply(NewFrame(generateVolatileData(40)))
	require.NoError(t, err)

	// closes alternate between 80 and 120: mean 100, population stddev 20
	mid, _ := f.FloatAt(ColBBMid, 39)
	high, _ := f.FloatAt(ColBBHigh, 39)
	low, _ := f.FloatAt(ColBBLow, 39)
	width, _ := f.FloatAt(ColBBWidth, 39)
	pct, _ := f.FloatAt(ColBBPercent, 39)

	assert.InDelta(t, 100.0, mid, 1e-9)
	assert.InDelta(t, 140.0, high, 1e-9)
	assert.InDelta(t, 60.0, low, 1e-9)
	assert.InDelta(t, 80.0, width, 1e-9)
	assert.InDelta(t, 0.75, pct, 1e-9)
}

func TestBollingerBands_FlatSeries(t *testing.T) {
	f, err := NewBollingerBands(20, 2).Apply(NewFrame(generateFlatData(25, 50)))
	require.NoError(t, err)

	width, ok := f.FloatAt(ColBBWidth, 24)
	require.True(t, ok)
	assert.Equal(t, 0.0, width)

	_, ok = f.FloatAt(ColBBPercent, 24)
	assert.False(t, ok, "percent is undefined when the bands collapse")
}
