package indicators

// SeriesIndicator is a pure transform that appends its own columns to a Frame.
// Apply must not modify columns owned by another indicator.
type SeriesIndicator interface {
	Apply(f *Frame) (*Frame, error)
	GetName() string
	GetRequiredPeriods() int
}

// Outcome records whether an indicator produced its columns. A failed
// outcome means the indicator's values are absent and its signal is 0.
type Outcome struct {
	Indicator string
	Err       error
}

// OK reports whether the indicator produced its columns
func (o Outcome) OK() bool {
	return o.Err == nil
}
