package signals

import (
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators/smc"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// Observer receives the result of every pipeline run
type Observer interface {
	ObserveRun(result *Result, elapsed time.Duration)
}

// Result is the output of one pipeline run
type Result struct {
	Frame    *indicators.Frame
	Snapshot Snapshot
	Outcomes []indicators.Outcome

	BullishFVGs []smc.FairValueGap
	BearishFVGs []smc.FairValueGap
	BOS         []smc.BreakOfStructure
}

// Category labels the latest overall score
func (r *Result) Category(strongThreshold int) Category {
	return Categorize(r.Snapshot.Overall(), strongThreshold)
}

// Degraded returns the outcomes that carry an error
func (r *Result) Degraded() []indicators.Outcome {
	var out []indicators.Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Analyzer runs the full pipeline: indicators, structural detectors,
// signal synthesis and snapshot extraction. It holds no state between runs.
type Analyzer struct {
	params    indicators.Params
	selection indicators.Selection
	log       *logger.Logger
	observer  Observer
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithParams overrides the indicator parameters
func WithParams(p indicators.Params) Option {
	return func(a *Analyzer) { a.params = p }
}

// WithSelection restricts the indicators computed
func WithSelection(sel indicators.Selection) Option {
	return func(a *Analyzer) {
		if sel != nil {
			a.selection = sel
		}
	}
}

// WithLogger attaches a logger for degraded indicators
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithObserver attaches a run observer, typically metrics
func WithObserver(o Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// NewAnalyzer creates an analyzer with default params and the default battery
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		params:    indicators.DefaultParams(),
		selection: indicators.NewSelection(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Params returns the parameters in use
func (a *Analyzer) Params() indicators.Params {
	return a.params
}

// Manager builds the indicator manager for the configured selection
func (a *Analyzer) Manager() *indicators.Manager {
	m := indicators.NewManager(indicators.OscillatorIndicators(a.selection, a.params)...)
	if a.selection.Has(indicators.IndicatorTypeFVG) || a.selection.Has(indicators.IndicatorTypeCombo) {
		m.AddIndicator(smc.NewFVG(a.params.FVGLookback))
	}
	if a.selection.Has(indicators.IndicatorTypeBOS) || a.selection.Has(indicators.IndicatorTypeCombo) {
		m.AddIndicator(smc.NewBOS(a.params.BOSWindow))
	}
	return m
}

// Run computes the annotated series and snapshot for bars. It never fails:
// indicators that cannot be computed are reported in Result.Outcomes and
// contribute a zero signal.
func (a *Analyzer) Run(bars []types.OHLCV) *Result {
	start := time.Now()

	if err := types.ValidateSeries(bars); err != nil {
		a.log.Warning("bar series failed validation: %v", err)
	}

	frame := indicators.NewFrame(bars)
	frame, outcomes := a.Manager().Apply(frame)
	frame, signalOutcomes := NewSynthesizer(a.params, a.selection).Apply(frame)
	outcomes = append(outcomes, signalOutcomes...)

	result := &Result{
		Frame:    frame,
		Snapshot: ExtractSnapshot(frame, a.params),
		Outcomes: outcomes,
	}
	if a.selection.Has(indicators.IndicatorTypeFVG) {
		result.BullishFVGs, result.BearishFVGs = smc.FindFairValueGaps(bars)
	}
	if a.selection.Has(indicators.IndicatorTypeBOS) {
		result.BOS = smc.FindBreakOfStructure(bars, a.params.BOSWindow)
	}

	for _, o := range result.Degraded() {
		a.log.Debug("indicator %s degraded: %v", o.Indicator, o.Err)
	}
	if a.observer != nil {
		a.observer.ObserveRun(result, time.Since(start))
	}
	return result
}
