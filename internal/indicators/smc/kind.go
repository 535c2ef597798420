// Package smc implements the structural "smart money" detectors: Fair Value
// Gaps and Break of Structure. Each detector scans the bars for discrete
// events and folds them back into per-bar columns on an indicators.Frame.
package smc

// Kind is the direction of a structural event
type Kind int

const (
	Bullish Kind = iota
	Bearish
)

func (k Kind) String() string {
	if k == Bearish {
		return "bearish"
	}
	return "bullish"
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
