package signals

import (
	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
)

// Thresholds used to derive per-indicator signals
type Thresholds struct {
	RSIOversold     float64
	RSIOverbought   float64
	StochOversold   float64
	StochOverbought float64
	StrongThreshold int
}

// ThresholdsFromParams extracts the signal thresholds from indicator params
func ThresholdsFromParams(p indicators.Params) Thresholds {
	return Thresholds{
		RSIOversold:     p.RSIOversold,
		RSIOverbought:   p.RSIOverbought,
		StochOversold:   p.StochOversold,
		StochOverbought: p.StochOverbought,
		StrongThreshold: p.StrongThreshold,
	}
}

// AggregatedSignals are the columns summed into overall_signal.
// vwap_signal is derived but deliberately left out of the sum.
var AggregatedSignals = []string{
	indicators.ColRSISignal,
	indicators.ColMACDSignal,
	indicators.ColBBSignal,
	indicators.ColEMACrossSignal,
	indicators.ColStochSignal,
	indicators.ColVWEMACrossSignal,
	indicators.ColFVGSignal,
	indicators.ColBOSSignal,
	indicators.ColComboSignal,
}

// Synthesizer derives per-indicator signal columns and the overall score
type Synthesizer struct {
	thresholds Thresholds
	selection  indicators.Selection
	emaFast    string
	emaSlow    string
	vwemaFast  string
	vwemaSlow  string
}

// NewSynthesizer creates a synthesizer reading the cross pairs named by p.
// Signals of indicators outside sel are constant zero; a nil sel selects the
// default battery.
func NewSynthesizer(p indicators.Params, sel indicators.Selection) *Synthesizer {
	if sel == nil {
		sel = indicators.NewSelection()
	}
	return &Synthesizer{
		thresholds: ThresholdsFromParams(p),
		selection:  sel,
		emaFast:    indicators.EMAColumn(p.EMAShort),
		emaSlow:    indicators.EMAColumn(p.EMAMedium),
		vwemaFast:  indicators.VWEMAColumn(p.VWEMAShort),
		vwemaSlow:  indicators.VWEMAColumn(p.VWEMALong),
	}
}

// Apply appends every signal column plus overall_signal, strong_buy and
// strong_sell. A signal whose inputs are missing is a column of zeros and
// is reported in the returned outcomes.
func (s *Synthesizer) Apply(f *indicators.Frame) (*indicators.Frame, []indicators.Outcome) {
	n := f.Len()
	var outcomes []indicators.Outcome
	columns := make(map[string][]int, len(AggregatedSignals)+1)

	derive := func(t indicators.IndicatorType, name string, fn func() ([]int, error)) {
		values := make([]int, n)
		if s.selection.Has(t) {
			computed, err := fn()
			if err != nil {
				outcomes = append(outcomes, indicators.Outcome{Indicator: name, Err: err})
			} else {
				values = computed
			}
		}
		columns[name] = values
		f = f.WithInt(name, values)
	}

	derive(indicators.IndicatorTypeRSI, indicators.ColRSISignal, func() ([]int, error) { return s.rsiSignal(f) })
	derive(indicators.IndicatorTypeMACD, indicators.ColMACDSignal, func() ([]int, error) { return s.macdSignal(f) })
	derive(indicators.IndicatorTypeBollinger, indicators.ColBBSignal, func() ([]int, error) { return s.bollingerSignal(f) })
	derive(indicators.IndicatorTypeEMA, indicators.ColEMACrossSignal, func() ([]int, error) { return crossSignal(f, s.emaFast, s.emaSlow) })
	derive(indicators.IndicatorTypeStochastic, indicators.ColStochSignal, func() ([]int, error) { return s.stochasticSignal(f) })
	derive(indicators.IndicatorTypeVWAP, indicators.ColVWAPSignal, func() ([]int, error) { return s.vwapSignal(f) })
	derive(indicators.IndicatorTypeVWEMA, indicators.ColVWEMACrossSignal, func() ([]int, error) { return crossSignal(f, s.vwemaFast, s.vwemaSlow) })
	derive(indicators.IndicatorTypeFVG, indicators.ColFVGSignal, func() ([]int, error) { return fvgSignal(f) })
	derive(indicators.IndicatorTypeBOS, indicators.ColBOSSignal, func() ([]int, error) { return bosSignal(f) })
	derive(indicators.IndicatorTypeCombo, indicators.ColComboSignal, func() ([]int, error) { return comboSignal(f) })

	overall := make([]int, n)
	for _, name := range AggregatedSignals {
		for i, v := range columns[name] {
			overall[i] += v
		}
	}
	strongBuy := make([]bool, n)
	strongSell := make([]bool, n)
	for i, v := range overall {
		strongBuy[i] = v >= s.thresholds.StrongThreshold
		strongSell[i] = v <= -s.thresholds.StrongThreshold
	}

	f = f.WithInt(indicators.ColOverallSignal, overall).
		WithFlag(indicators.ColStrongBuy, strongBuy).
		WithFlag(indicators.ColStrongSell, strongSell)
	return f, outcomes
}

func (s *Synthesizer) rsiSignal(f *indicators.Frame) ([]int, error) {
	rsi, err := input(f, indicators.ColRSI)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(rsi))
	for i, v := range rsi {
		if v < s.thresholds.RSIOversold {
			out[i] = 1
		}
		if v > s.thresholds.RSIOverbought {
			out[i] = -1
		}
	}
	return out, nil
}

func (s *Synthesizer) macdSignal(f *indicators.Frame) ([]int, error) {
	return compareSignal(f, indicators.ColMACD, indicators.ColMACDSignalLine)
}

// bollingerSignal is mean reverting: below the lower band buys, above the upper sells
func (s *Synthesizer) bollingerSignal(f *indicators.Frame) ([]int, error) {
	closes, err := input(f, indicators.ColClose)
	if err != nil {
		return nil, err
	}
	lower, err := input(f, indicators.ColBBLow)
	if err != nil {
		return nil, err
	}
	upper, err := input(f, indicators.ColBBHigh)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(closes))
	for i, c := range closes {
		if c < lower[i] {
			out[i] = 1
		}
		if c > upper[i] {
			out[i] = -1
		}
	}
	return out, nil
}

func (s *Synthesizer) stochasticSignal(f *indicators.Frame) ([]int, error) {
	k, err := input(f, indicators.ColStochK)
	if err != nil {
		return nil, err
	}
	d, err := input(f, indicators.ColStochD)
	if err != nil {
		return nil, err
	}
	lo, hi := s.thresholds.StochOversold, s.thresholds.StochOverbought
	out := make([]int, len(k))
	for i := range k {
		if k[i] < lo && d[i] < lo && k[i] > d[i] {
			out[i] = 1
		}
		if k[i] > hi && d[i] > hi && k[i] < d[i] {
			out[i] = -1
		}
	}
	return out, nil
}

func (s *Synthesizer) vwapSignal(f *indicators.Frame) ([]int, error) {
	return compareSignal(f, indicators.ColClose, indicators.ColVWAP)
}

// compareSignal is +1 where a > b, -1 where a < b
func compareSignal(f *indicators.Frame, a, b string) ([]int, error) {
	left, err := input(f, a)
	if err != nil {
		return nil, err
	}
	right, err := input(f, b)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(left))
	for i := range left {
		switch {
		case left[i] > right[i]:
			out[i] = 1
		case left[i] < right[i]:
			out[i] = -1
		}
	}
	return out, nil
}

func crossSignal(f *indicators.Frame, fast, slow string) ([]int, error) {
	fastLine, err := input(f, fast)
	if err != nil {
		return nil, err
	}
	slowLine, err := input(f, slow)
	if err != nil {
		return nil, err
	}
	return indicators.CrossSignal(fastLine, slowLine), nil
}

func fvgSignal(f *indicators.Frame) ([]int, error) {
	bull, bear, err := fvgCounts(f)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(bull))
	for i := range bull {
		switch {
		case bull[i] > bear[i]:
			out[i] = 1
		case bear[i] > bull[i]:
			out[i] = -1
		}
	}
	return out, nil
}

// bosSignal evaluates bearish after bullish, so a bar with both flags is -1
func bosSignal(f *indicators.Frame) ([]int, error) {
	bull, bear, err := bosFlags(f)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(bull))
	for i := range bull {
		if bull[i] {
			out[i] = 1
		}
		if bear[i] {
			out[i] = -1
		}
	}
	return out, nil
}

// comboSignal needs an FVG in the lookback and a BOS on the bar. Bearish is
// evaluated after bullish and overrides it.
func comboSignal(f *indicators.Frame) ([]int, error) {
	bullCount, bearCount, err := fvgCounts(f)
	if err != nil {
		return nil, err
	}
	bullBOS, bearBOS, err := bosFlags(f)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(bullCount))
	for i := range out {
		if bullCount[i] > 0 && bullBOS[i] {
			out[i] = 2
		}
		if bearCount[i] > 0 && bearBOS[i] {
			out[i] = -2
		}
	}
	return out, nil
}

func fvgCounts(f *indicators.Frame) (bull, bear []int, err error) {
	bull, ok := f.Int(indicators.ColBullishFVGCount)
	if !ok {
		return nil, nil, &indicators.MissingColumnError{Column: indicators.ColBullishFVGCount}
	}
	bear, ok = f.Int(indicators.ColBearishFVGCount)
	if !ok {
		return nil, nil, &indicators.MissingColumnError{Column: indicators.ColBearishFVGCount}
	}
	return bull, bear, nil
}

func bosFlags(f *indicators.Frame) (bull, bear []bool, err error) {
	bull, ok := f.Flag(indicators.ColBullishBOS)
	if !ok {
		return nil, nil, &indicators.MissingColumnError{Column: indicators.ColBullishBOS}
	}
	bear, ok = f.Flag(indicators.ColBearishBOS)
	if !ok {
		return nil, nil, &indicators.MissingColumnError{Column: indicators.ColBearishBOS}
	}
	return bull, bear, nil
}

// input reads a float column. Unlike Frame.Input an all-NaN column is fine
// here: every comparison against NaN is false and yields a 0 signal.
func input(f *indicators.Frame, name string) ([]float64, error) {
	values, ok := f.Float(name)
	if !ok {
		return nil, &indicators.MissingColumnError{Column: name}
	}
	return values, nil
}
