package indicators

import "fmt"

// Base columns, always present on a Frame
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// Derived indicator columns
const (
	ColRSI            = "rsi"
	ColMACD           = "macd"
	ColMACDSignalLine = "macd_signal_line"
	ColMACDHist       = "macd_hist"
	ColBBHigh         = "bb_high"
	ColBBMid          = "bb_mid"
	ColBBLow          = "bb_low"
	ColBBWidth        = "bb_width"
	ColBBPercent      = "bb_pct"
	ColStochK         = "stoch_k"
	ColStochD         = "stoch_d"
	ColVWAP           = "vwap"
	ColATR            = "atr"
	ColOBV            = "obv"
)

// Structural detector columns
const (
	ColBullishFVGCount = "bullish_fvg_count"
	ColBearishFVGCount = "bearish_fvg_count"
	ColBullishBOS      = "bullish_bos"
	ColBearishBOS      = "bearish_bos"
	ColRollingHigh     = "rolling_high"
	ColRollingLow      = "rolling_low"
)

// Signal columns
const (
	ColRSISignal        = "rsi_signal"
	ColMACDSignal       = "macd_signal"
	ColBBSignal         = "bb_signal"
	ColEMACrossSignal   = "ema_cross_signal"
	ColStochSignal      = "stoch_signal"
	ColVWAPSignal       = "vwap_signal"
	ColVWEMACrossSignal = "vwema_cross_signal"
	ColFVGSignal        = "fvg_signal"
	ColBOSSignal        = "bos_signal"
	ColComboSignal      = "fvg_bos_combo_signal"
	ColOverallSignal    = "overall_signal"
	ColStrongBuy        = "strong_buy"
	ColStrongSell       = "strong_sell"
)

// EMAColumn names the EMA column for a period, e.g. ema_9
func EMAColumn(period int) string {
	return fmt.Sprintf("ema_%d", period)
}

// SMAColumn names the SMA column for a period
func SMAColumn(period int) string {
	return fmt.Sprintf("sma_%d", period)
}

// VWEMAColumn names the VWEMA column for a period, e.g. vwema_5
func VWEMAColumn(period int) string {
	return fmt.Sprintf("vwema_%d", period)
}
