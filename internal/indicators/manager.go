package indicators

import (
	"fmt"
)

// Manager applies a fixed battery of indicators to a Frame in order.
// A failing indicator never aborts the run: the Frame is passed on
// unchanged and the failure is recorded in its Outcome.
type Manager struct {
	indicators []SeriesIndicator
}

// NewManager creates a new indicator manager
func NewManager(indicators ...SeriesIndicator) *Manager {
	return &Manager{indicators: indicators}
}

// AddIndicator adds an indicator to the manager
func (m *Manager) AddIndicator(indicator SeriesIndicator) {
	m.indicators = append(m.indicators, indicator)
}

// GetIndicators returns all managed indicators
func (m *Manager) GetIndicators() []SeriesIndicator {
	out := make([]SeriesIndicator, len(m.indicators))
	copy(out, m.indicators)
	return out
}

// Apply runs every indicator over f and returns the annotated Frame
// together with one Outcome per indicator, in registration order.
func (m *Manager) Apply(f *Frame) (*Frame, []Outcome) {
	outcomes := make([]Outcome, 0, len(m.indicators))
	for _, indicator := range m.indicators {
		var outcome Outcome
		f, outcome = ApplySafe(indicator, f)
		outcomes = append(outcomes, outcome)
	}
	return f, outcomes
}

// ApplySafe runs a single indicator with the insufficient-data check and
// panic recovery. On failure the input Frame is returned unchanged.
func ApplySafe(indicator SeriesIndicator, f *Frame) (out *Frame, outcome Outcome) {
	name := indicator.GetName()
	outcome.Indicator = name

	if f.Len() < indicator.GetRequiredPeriods() {
		outcome.Err = NewInsufficientDataError(name, f.Len(), indicator.GetRequiredPeriods())
		return f, outcome
	}

	defer func() {
		if r := recover(); r != nil {
			out = f
			outcome.Err = fmt.Errorf("%s: calculation panicked: %v", name, r)
		}
	}()

	next, err := indicator.Apply(f)
	if err != nil {
		outcome.Err = err
		return f, outcome
	}
	return next, outcome
}

// CountFailures returns how many outcomes carry an error
func CountFailures(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// InsufficientDataError represents an error when there's not enough data for calculation
type InsufficientDataError struct {
	Indicator string
	Available int
	Required  int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d, need %d",
		e.Indicator, e.Available, e.Required)
}

func NewInsufficientDataError(indicator string, available, required int) *InsufficientDataError {
	return &InsufficientDataError{
		Indicator: indicator,
		Available: available,
		Required:  required,
	}
}

// MissingColumnError is returned when an input column is absent or all NaN
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}
