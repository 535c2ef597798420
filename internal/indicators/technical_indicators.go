package indicators

import (
	"fmt"
	"strings"
)

// IndicatorType names a selectable member of the indicator battery
type IndicatorType string

const (
	IndicatorTypeRSI        IndicatorType = "rsi"
	IndicatorTypeMACD       IndicatorType = "macd"
	IndicatorTypeBollinger  IndicatorType = "bollinger"
	IndicatorTypeEMA        IndicatorType = "ema"
	IndicatorTypeStochastic IndicatorType = "stochastic"
	IndicatorTypeVWAP       IndicatorType = "vwap"
	IndicatorTypeVWEMA      IndicatorType = "vwema"
	IndicatorTypeFVG        IndicatorType = "fvg"
	IndicatorTypeBOS        IndicatorType = "bos"
	IndicatorTypeCombo      IndicatorType = "fvg_bos_combo"
	IndicatorTypeSMA        IndicatorType = "sma"
	IndicatorTypeATR        IndicatorType = "atr"
	IndicatorTypeOBV        IndicatorType = "obv"
)

// DefaultIndicators is the battery that feeds the overall signal
func DefaultIndicators() []IndicatorType {
	return []IndicatorType{
		IndicatorTypeRSI,
		IndicatorTypeMACD,
		IndicatorTypeBollinger,
		IndicatorTypeEMA,
		IndicatorTypeStochastic,
		IndicatorTypeVWAP,
		IndicatorTypeVWEMA,
		IndicatorTypeFVG,
		IndicatorTypeBOS,
		IndicatorTypeCombo,
	}
}

// GetAvailableIndicators returns every selectable indicator type
func GetAvailableIndicators() []IndicatorType {
	return append(DefaultIndicators(), IndicatorTypeSMA, IndicatorTypeATR, IndicatorTypeOBV)
}

// ParseIndicatorType parses a string into an IndicatorType
func ParseIndicatorType(s string) (IndicatorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rsi":
		return IndicatorTypeRSI, nil
	case "macd":
		return IndicatorTypeMACD, nil
	case "bollinger", "bollinger_bands", "bb":
		return IndicatorTypeBollinger, nil
	case "ema":
		return IndicatorTypeEMA, nil
	case "stochastic", "stoch":
		return IndicatorTypeStochastic, nil
	case "vwap":
		return IndicatorTypeVWAP, nil
	case "vwema":
		return IndicatorTypeVWEMA, nil
	case "fvg":
		return IndicatorTypeFVG, nil
	case "bos":
		return IndicatorTypeBOS, nil
	case "fvg_bos_combo", "combo":
		return IndicatorTypeCombo, nil
	case "sma":
		return IndicatorTypeSMA, nil
	case "atr":
		return IndicatorTypeATR, nil
	case "obv":
		return IndicatorTypeOBV, nil
	default:
		return "", fmt.Errorf("unknown indicator type: %s", s)
	}
}

// Selection is the set of indicators a pipeline run computes
type Selection map[IndicatorType]bool

// NewSelection builds a Selection; no arguments selects the default battery
func NewSelection(types ...IndicatorType) Selection {
	if len(types) == 0 {
		types = DefaultIndicators()
	}
	s := make(Selection, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}

// ParseSelection parses a comma separated list such as "rsi,macd,bb".
// An empty string selects the default battery.
func ParseSelection(list string) (Selection, error) {
	if strings.TrimSpace(list) == "" {
		return NewSelection(), nil
	}
	var types []IndicatorType
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseIndicatorType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return NewSelection(types...), nil
}

// Has reports whether t is selected
func (s Selection) Has(t IndicatorType) bool {
	return s[t]
}

// Params holds the indicator periods and signal thresholds
type Params struct {
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	BollingerWindow int
	BollingerStdDev float64

	EMAShort  int
	EMAMedium int
	EMALong   int

	StochWindow     int
	StochSmooth     int
	StochOversold   float64
	StochOverbought float64

	VWAPWindow int

	VWEMAShort int
	VWEMALong  int

	SMAShort  int
	SMAMedium int
	SMALong   int
	ATRPeriod int

	FVGLookback int
	BOSWindow   int

	StrongThreshold int
}

// DefaultParams returns the standard parameter set
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		RSIOversold:     30,
		RSIOverbought:   70,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerWindow: 20,
		BollingerStdDev: 2,
		EMAShort:        9,
		EMAMedium:       21,
		EMALong:         50,
		StochWindow:     14,
		StochSmooth:     3,
		StochOversold:   20,
		StochOverbought: 80,
		VWAPWindow:      14,
		VWEMAShort:      5,
		VWEMALong:       20,
		SMAShort:        10,
		SMAMedium:       30,
		SMALong:         100,
		ATRPeriod:       14,
		FVGLookback:     6,
		BOSWindow:       10,
		StrongThreshold: 3,
	}
}

// OscillatorIndicators builds the vectorized indicators for the selected
// types, in a fixed order. Structural detectors are built by their own package.
func OscillatorIndicators(sel Selection, p Params) []SeriesIndicator {
	var out []SeriesIndicator
	if sel.Has(IndicatorTypeRSI) {
		out = append(out, NewRSI(p.RSIPeriod))
	}
	if sel.Has(IndicatorTypeMACD) {
		out = append(out, NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal))
	}
	if sel.Has(IndicatorTypeBollinger) {
		out = append(out, NewBollingerBands(p.BollingerWindow, p.BollingerStdDev))
	}
	if sel.Has(IndicatorTypeEMA) {
		out = append(out, NewEMA(p.EMAShort), NewEMA(p.EMAMedium), NewEMA(p.EMALong))
	}
	if sel.Has(IndicatorTypeStochastic) {
		out = append(out, NewStochastic(p.StochWindow, p.StochSmooth))
	}
	if sel.Has(IndicatorTypeVWAP) {
		out = append(out, NewVWAP(p.VWAPWindow))
	}
	if sel.Has(IndicatorTypeVWEMA) {
		out = append(out, NewVWEMA(p.VWEMAShort), NewVWEMA(p.VWEMALong))
	}
	if sel.Has(IndicatorTypeSMA) {
		out = append(out, NewSMA(p.SMAShort), NewSMA(p.SMAMedium), NewSMA(p.SMALong))
	}
	if sel.Has(IndicatorTypeATR) {
		out = append(out, NewATR(p.ATRPeriod))
	}
	if sel.Has(IndicatorTypeOBV) {
		out = append(out, NewOBV())
	}
	return out
}
