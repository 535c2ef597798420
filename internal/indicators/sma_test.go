package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA_Values(t *testing.T) {
	f, err := NewSMA(10).Apply(NewFrame(generateTrendData(15, 100, 1)))
	require.NoError(t, err)

	values, ok := f.Float(SMAColumn(10))
	require.True(t, ok)
	assert.True(t, math.IsNaN(values[8]))
	assert.InDelta(t, 104.5, values[9], 1e-9)
	assert.InDelta(t, 109.5, values[14], 1e-9)
}

func TestEMA_Values(t *testing.T) {
	t.Run("flat series stays flat", func(t *testing.T) {
		f, err := NewEMA(9).Apply(NewFrame(generateFlatData(20, 42)))
		require.NoError(t, err)
		v, ok := f.FloatAt(EMAColumn(9), 19)
		require.True(t, ok)
		assert.InDelta(t, 42.0, v, 1e-9)
	})

	t.Run("seeded with the SMA", func(t *testing.T) {
		f, err := NewEMA(9).Apply(NewFrame(generateTrendData(12, 100, 1)))
		require.NoError(t, err)
		values, _ := f.Float(EMAColumn(9))
		assert.True(t, math.IsNaN(values[7]))
		assert.InDelta(t, 104.0, values[8], 1e-9)
		// linear trend: the EMA lags price by (period-1)/2
		assert.InDelta(t, 107.0, values[11], 1e-9)
	})

	assert.Equal(t, "EMA21", NewEMA(21).GetName())
	assert.Equal(t, "ema_21", EMAColumn(21))
}

func TestStochastic_Range(t *testing.T) {
	s := NewStochastic(14, 3)
	require.Equal(t, 16, s.GetRequiredPeriods())

	f, err := s.Apply(NewFrame(generateRealisticData(100)))
	require.NoError(t, err)

	k, _ := f.Float(ColStochK)
	d, _ := f.Float(ColStochD)
	assert.True(t, math.IsNaN(k[14]))
	for _, v := range append(finiteValues(k), finiteValues(d)...) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	assert.Len(t, finiteValues(k), 100-15)
}

func TestATR_ConstantRange(t *testing.T) {
	f, err := NewATR(14).Apply(NewFrame(generateFlatData(30, 100)))
	require.NoError(t, err)

	v, ok := f.FloatAt(ColATR, 29)
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-9)
	_, ok = f.FloatAt(ColATR, 13)
	assert.False(t, ok)
}

func TestOBV_Accumulates(t *testing.T) {
	f, err := NewOBV().Apply(NewFrame(generateTrendData(5, 100, 1)))
	require.NoError(t, err)

	values, _ := f.Float(ColOBV)
	assert.Equal(t, []float64{1000, 2000, 3000, 4000, 5000}, values)
}
