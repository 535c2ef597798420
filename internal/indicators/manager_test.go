package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingIndicator struct{}

func (panickingIndicator) Apply(*Frame) (*Frame, error) { panic("index out of range") }
func (panickingIndicator) GetName() string              { return "Panicky" }
func (panickingIndicator) GetRequiredPeriods() int      { return 1 }

type failingIndicator struct{}

func (failingIndicator) Apply(f *Frame) (*Frame, error) {
	return f.WithFloat("partial", make([]float64, f.Len())), errors.New("bad input")
}
func (failingIndicator) GetName() string         { return "Failing" }
func (failingIndicator) GetRequiredPeriods() int { return 1 }

func TestManager_Apply(t *testing.T) {
	m := NewManager(NewRSI(14), NewEMA(9))
	m.AddIndicator(NewBollingerBands(20, 2))
	require.Len(t, m.GetIndicators(), 3)

	f, outcomes := m.Apply(NewFrame(generateRealisticData(60)))
	require.Len(t, outcomes, 3)
	assert.Equal(t, 0, CountFailures(outcomes))
	assert.Equal(t, []string{"RSI", "EMA9", "BollingerBands"},
		[]string{outcomes[0].Indicator, outcomes[1].Indicator, outcomes[2].Indicator})
	assert.True(t, f.Has(ColRSI))
	assert.True(t, f.Has(EMAColumn(9)))
	assert.True(t, f.Has(ColBBMid))
}

func TestManager_DegradesPerIndicator(t *testing.T) {
	m := NewManager(NewRSI(14), panickingIndicator{}, failingIndicator{}, NewOBV())

	f, outcomes := m.Apply(NewFrame(generateRealisticData(5)))
	require.Len(t, outcomes, 4)
	assert.Equal(t, 3, CountFailures(outcomes))

	assert.Contains(t, outcomes[1].Err.Error(), "panicked")
	assert.EqualError(t, outcomes[2].Err, "bad input")
	assert.True(t, outcomes[3].OK())

	assert.False(t, f.Has(ColRSI))
	assert.False(t, f.Has("partial"), "a failing indicator must not leak columns")
	assert.True(t, f.Has(ColOBV))
}

func TestManager_MissingInput(t *testing.T) {
	bars := generateRealisticData(30)
	for i := range bars {
		bars[i].Volume = nanValue()
	}
	_, outcomes := NewManager(NewVWAP(14), NewRSI(14)).Apply(NewFrame(bars))

	var missing *MissingColumnError
	require.ErrorAs(t, outcomes[0].Err, &missing)
	assert.Equal(t, ColVolume, missing.Column)
	assert.True(t, outcomes[1].OK())
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("RSI", 3, 15)
	assert.Equal(t, "insufficient data for RSI: have 3, need 15", err.Error())
}

func TestManager_NonFiniteBarOnlyBlanksItsWindows(t *testing.T) {
	bars := generateRealisticData(120)
	bars[60].Close = math.NaN()
	battery := func() *Manager {
		return NewManager(NewRSI(14), NewEMA(9), NewMACD(12, 26, 9), NewBollingerBands(20, 2),
			NewStochastic(14, 3), NewVWAP(14), NewVWEMA(5), NewATR(14), NewSMA(20), NewOBV())
	}
	columns := []string{ColRSI, EMAColumn(9), ColMACD, ColMACDSignalLine, ColBBMid, ColBBHigh,
		ColStochK, ColStochD, ColVWAP, VWEMAColumn(5), ColATR, SMAColumn(20), ColOBV}

	var f *Frame
	var outcomes []Outcome
	require.NotPanics(t, func() { f, outcomes = battery().Apply(NewFrame(bars)) })
	assert.Equal(t, 0, CountFailures(outcomes))

	clean, _ := battery().Apply(NewFrame(generateRealisticData(120)))
	for _, col := range columns {
		_, ok := f.FloatAt(col, 60)
		assert.False(t, ok, "%s at the bad bar", col)

		got, ok := f.FloatAt(col, 59)
		require.True(t, ok, col)
		want, _ := clean.FloatAt(col, 59)
		assert.Equal(t, want, got, "%s before the bad bar", col)

		_, ok = f.FloatAt(col, 110)
		assert.True(t, ok, "%s once the windows are clean", col)
	}

	// a 20-bar band needs bars 61..80, a 14-bar vwap bars 61..74
	_, ok := f.FloatAt(ColBBMid, 79)
	assert.False(t, ok)
	_, ok = f.FloatAt(ColBBMid, 80)
	assert.True(t, ok)
	_, ok = f.FloatAt(ColVWAP, 73)
	assert.False(t, ok)
	_, ok = f.FloatAt(ColVWAP, 74)
	assert.True(t, ok)

	tail, _ := battery().Apply(NewFrame(bars[61:]))
	for _, col := range []string{ColBBMid, ColVWAP, ColRSI, ColMACD} {
		got, _ := f.FloatAt(col, 110)
		want, ok := tail.FloatAt(col, 110-61)
		require.True(t, ok, col)
		assert.InDelta(t, want, got, 1e-9, "%s restarts after the bad bar", col)
	}
}
