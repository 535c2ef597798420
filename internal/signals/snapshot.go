package signals

import (
	"fmt"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
)

// Snapshot keys
const (
	KeyRSI        = "rsi"
	KeyMACD       = "macd"
	KeyBollinger  = "bollinger"
	KeyEMACross   = "ema_cross"
	KeyStochastic = "stochastic"
	KeyVWAP       = "vwap"
	KeyVWEMACross = "vwema_cross"
	KeyFVG        = "fvg"
	KeyBOS        = "bos"
	KeyCombo      = "fvg_bos_combo"
	KeyOverall    = "overall"
)

// SnapshotKeys lists the snapshot entries in display order
var SnapshotKeys = []string{
	KeyRSI, KeyMACD, KeyBollinger, KeyEMACross, KeyStochastic, KeyVWAP,
	KeyVWEMACross, KeyFVG, KeyBOS, KeyCombo, KeyOverall,
}

// Reading is the latest value and signal of one indicator. Value is nil when
// the indicator could not be computed; it is a float64, an int or a
// preformatted string depending on the indicator.
type Reading struct {
	Value  any `json:"value"`
	Signal int `json:"signal"`
}

// Present reports whether the reading carries a value
func (r Reading) Present() bool {
	return r.Value != nil
}

// Snapshot maps indicator names to their latest reading
type Snapshot map[string]Reading

// Overall returns the overall score, 0 when absent
func (s Snapshot) Overall() int {
	return s[KeyOverall].Signal
}

// Float returns a numeric reading as float64
func (s Snapshot) Float(key string) (float64, bool) {
	switch v := s[key].Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Text returns the reading value formatted for display, "-" when absent
func (s Snapshot) Text(key string) string {
	switch v := s[key].Value.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.2f", v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ExtractSnapshot reads the last bar of an annotated frame. An empty frame
// yields an empty snapshot.
func ExtractSnapshot(f *indicators.Frame, p indicators.Params) Snapshot {
	if f == nil || f.Len() == 0 {
		return Snapshot{}
	}
	last := f.Len() - 1
	signal := func(col string) int {
		v, _ := f.IntAt(col, last)
		return v
	}
	number := func(col string) any {
		v, ok := f.FloatAt(col, last)
		if !ok {
			return nil
		}
		return v
	}
	pair := func(format, a, b string) any {
		x, okA := f.FloatAt(a, last)
		y, okB := f.FloatAt(b, last)
		if !okA || !okB {
			return nil
		}
		return fmt.Sprintf(format, x, y)
	}

	s := Snapshot{
		KeyRSI:  {Value: number(indicators.ColRSI), Signal: signal(indicators.ColRSISignal)},
		KeyMACD: {Value: number(indicators.ColMACD), Signal: signal(indicators.ColMACDSignal)},
		KeyBollinger: {
			Value:  pair("Upper: %.2f, Lower: %.2f", indicators.ColBBHigh, indicators.ColBBLow),
			Signal: signal(indicators.ColBBSignal),
		},
		KeyEMACross: {
			Value: pair(fmt.Sprintf("EMA%d: %%.2f, EMA%d: %%.2f", p.EMAShort, p.EMAMedium),
				indicators.EMAColumn(p.EMAShort), indicators.EMAColumn(p.EMAMedium)),
			Signal: signal(indicators.ColEMACrossSignal),
		},
		KeyStochastic: {
			Value:  pair("K: %.2f, D: %.2f", indicators.ColStochK, indicators.ColStochD),
			Signal: signal(indicators.ColStochSignal),
		},
		KeyVWAP: {Value: number(indicators.ColVWAP), Signal: signal(indicators.ColVWAPSignal)},
		KeyVWEMACross: {
			Value: pair(fmt.Sprintf("VWEMA%d: %%.2f, VWEMA%d: %%.2f", p.VWEMAShort, p.VWEMALong),
				indicators.VWEMAColumn(p.VWEMAShort), indicators.VWEMAColumn(p.VWEMALong)),
			Signal: signal(indicators.ColVWEMACrossSignal),
		},
		KeyFVG:   {Value: fvgText(f, last), Signal: signal(indicators.ColFVGSignal)},
		KeyBOS:   {Value: bosText(f, last), Signal: signal(indicators.ColBOSSignal)},
		KeyCombo: {Value: comboText(f, last), Signal: signal(indicators.ColComboSignal)},
	}

	if overall, ok := f.IntAt(indicators.ColOverallSignal, last); ok {
		s[KeyOverall] = Reading{Value: overall, Signal: overall}
	} else {
		s[KeyOverall] = Reading{}
	}
	return s
}

func fvgText(f *indicators.Frame, i int) any {
	bull, okBull := f.IntAt(indicators.ColBullishFVGCount, i)
	bear, okBear := f.IntAt(indicators.ColBearishFVGCount, i)
	if !okBull || !okBear {
		return nil
	}
	return fmt.Sprintf("Bullish: %d, Bearish: %d", bull, bear)
}

func bosText(f *indicators.Frame, i int) any {
	bull, okBull := f.FlagAt(indicators.ColBullishBOS, i)
	bear, okBear := f.FlagAt(indicators.ColBearishBOS, i)
	if !okBull || !okBear {
		return nil
	}
	return fmt.Sprintf("Bullish: %s, Bearish: %s", yesNo(bull), yesNo(bear))
}

func comboText(f *indicators.Frame, i int) any {
	v, ok := f.IntAt(indicators.ColComboSignal, i)
	if !ok {
		return nil
	}
	switch v {
	case 2:
		return "Bullish FVG + Bullish BOS"
	case -2:
		return "Bearish FVG + Bearish BOS"
	}
	return "No combo signal"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
