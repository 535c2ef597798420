// Package screener scans a universe of symbols through the signal pipeline
// and ranks the results.
package screener

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/monitoring"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// Config controls which symbols are scanned and how
type Config struct {
	QuoteAsset     string
	MinQuoteVolume float64
	Universe       int      // top symbols by 24h quote volume
	Symbols        []string // explicit universe; overrides the volume ranking when set
	Interval       string
	KlineLimit     int
}

// DefaultConfig returns the standard scan settings
func DefaultConfig() Config {
	return Config{
		QuoteAsset:     "USDT",
		MinQuoteVolume: 1_000_000,
		Universe:       50,
		Interval:       "1h",
		KlineLimit:     100,
	}
}

// Row is the scan result of one symbol
type Row struct {
	Symbol    string           `json:"symbol"`
	Price     float64          `json:"price"`
	Change    float64          `json:"change_24h"`
	Volume    float64          `json:"volume_24h"`
	RSI       *float64         `json:"rsi"`
	MACD      *float64         `json:"macd"`
	Bollinger string           `json:"bollinger"`
	Signals   map[string]int   `json:"signals"`
	Overall   int              `json:"overall"`
	Category  signals.Category `json:"category"`
	Snapshot  signals.Snapshot `json:"-"`
	Ticker    types.Ticker     `json:"-"`
}

// Report is the outcome of one scan
type Report struct {
	Rows      []Row         `json:"rows"`
	Scanned   int           `json:"scanned"`
	Skipped   int           `json:"skipped"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Screener runs the pipeline over a symbol universe, one symbol at a time
type Screener struct {
	provider marketdata.Provider
	analyzer *signals.Analyzer
	health   *monitoring.HealthChecker
	log      *logger.Logger
}

// New creates a screener. health may be nil.
func New(provider marketdata.Provider, analyzer *signals.Analyzer, health *monitoring.HealthChecker, log *logger.Logger) *Screener {
	if log == nil {
		log = logger.Nop()
	}
	return &Screener{
		provider: provider,
		analyzer: analyzer,
		health:   health,
		log:      log.With("component", "screener"),
	}
}

// Scan selects the universe and analyzes every symbol in it. A symbol whose
// data cannot be fetched is logged and skipped; only a failure to select the
// universe fails the scan.
func (s *Screener) Scan(ctx context.Context, cfg Config) (*Report, error) {
	started := time.Now()
	tickers, err := s.universe(ctx, cfg)
	if err != nil {
		monitoring.RecordFetchError(s.provider.GetName())
		if s.health != nil {
			s.health.RecordError(err)
		}
		return nil, fmt.Errorf("failed to select universe: %w", err)
	}
	s.log.Info("scanning %d symbols on %s", len(tickers), cfg.Interval)

	report := &Report{StartedAt: started}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Scanned++

		row, err := s.scanSymbol(ctx, ticker, cfg)
		if err != nil {
			report.Skipped++
			monitoring.RecordScan(monitoring.ScanSkipped)
			s.log.Warning("skipping %s: %v", ticker.Symbol, err)
			continue
		}
		monitoring.RecordScan(monitoring.ScanOK)
		monitoring.UpdateOverallSignal(row.Symbol, row.Overall)
		report.Rows = append(report.Rows, *row)
	}

	report.Elapsed = time.Since(started)
	s.log.Info("scan finished: %d rows, %d skipped in %s", len(report.Rows), report.Skipped, report.Elapsed)
	return report, nil
}

// Analyze fetches and analyzes a single symbol
func (s *Screener) Analyze(ctx context.Context, symbol, interval string, limit int) (*signals.Result, error) {
	bars, err := s.fetch(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Run(bars), nil
}

func (s *Screener) scanSymbol(ctx context.Context, ticker types.Ticker, cfg Config) (*Row, error) {
	result, err := s.Analyze(ctx, ticker.Symbol, cfg.Interval, cfg.KlineLimit)
	if err != nil {
		return nil, err
	}
	row := NewRow(ticker, result, s.analyzer.Params().StrongThreshold)
	return &row, nil
}

func (s *Screener) fetch(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	bars, err := s.provider.Klines(ctx, symbol, interval, limit)
	if err != nil {
		monitoring.RecordFetchError(s.provider.GetName())
		if s.health != nil {
			s.health.RecordError(err)
		}
		return nil, err
	}
	if len(bars) == 0 {
		return nil, &marketdata.EmptySeriesError{Symbol: symbol}
	}
	if s.health != nil {
		s.health.RecordFetch(symbol)
	}
	return bars, nil
}

func (s *Screener) universe(ctx context.Context, cfg Config) ([]types.Ticker, error) {
	if len(cfg.Symbols) == 0 {
		return s.provider.TopTickers(ctx, cfg.QuoteAsset, cfg.MinQuoteVolume, cfg.Universe)
	}

	all, err := s.provider.TopTickers(ctx, "", 0, 0)
	if err != nil {
		return nil, err
	}
	bySymbol := make(map[string]types.Ticker, len(all))
	for _, t := range all {
		bySymbol[t.Symbol] = t
	}
	out := make([]types.Ticker, 0, len(cfg.Symbols))
	for _, sym := range cfg.Symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if t, ok := bySymbol[sym]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, types.Ticker{Symbol: sym})
	}
	return out, nil
}

// NewRow builds a screener row from a ticker and the symbol's pipeline result
func NewRow(ticker types.Ticker, result *signals.Result, strongThreshold int) Row {
	snap := result.Snapshot
	row := Row{
		Symbol:    ticker.Symbol,
		Price:     ticker.Price,
		Change:    ticker.PriceChangePercent,
		Volume:    ticker.QuoteVolume,
		Bollinger: snap.Text(signals.KeyBollinger),
		Signals:   make(map[string]int, len(signals.SnapshotKeys)),
		Overall:   snap.Overall(),
		Category:  result.Category(strongThreshold),
		Snapshot:  snap,
		Ticker:    ticker,
	}
	if v, ok := snap.Float(signals.KeyRSI); ok {
		row.RSI = &v
	}
	if v, ok := snap.Float(signals.KeyMACD); ok {
		row.MACD = &v
	}
	for _, key := range signals.SnapshotKeys {
		if key != signals.KeyOverall {
			row.Signals[key] = snap[key].Signal
		}
	}
	if row.Price == 0 && result.Frame != nil && result.Frame.Len() > 0 {
		if last, ok := result.Frame.FloatAt(indicators.ColClose, result.Frame.Len()-1); ok {
			row.Price = last
		}
	}
	return row
}

// Filter names a row filter
type Filter string

const (
	FilterAll        Filter = "all"
	FilterBuy        Filter = "buy"
	FilterSell       Filter = "sell"
	FilterStrongBuy  Filter = "strong_buy"
	FilterStrongSell Filter = "strong_sell"
	FilterNeutral    Filter = "neutral"
)

// ParseFilter parses a filter name; empty means all
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterBuy, FilterSell, FilterStrongBuy, FilterStrongSell, FilterNeutral:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Match reports whether a row passes the filter
func (f Filter) Match(r Row) bool {
	switch f {
	case FilterBuy:
		return r.Category.IsBuy()
	case FilterSell:
		return r.Category.IsSell()
	case FilterStrongBuy:
		return r.Category == signals.CategoryStrongBuy
	case FilterStrongSell:
		return r.Category == signals.CategoryStrongSell
	case FilterNeutral:
		return r.Category == signals.CategoryNeutral
	}
	return true
}

// FilterRows returns the rows passing f
func FilterRows(rows []Row, f Filter) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortOrder names a row ordering
type SortOrder string

const (
	SortVolumeDesc SortOrder = "volume_desc"
	SortVolumeAsc  SortOrder = "volume_asc"
	SortChangeDesc SortOrder = "change_desc"
	SortChangeAsc  SortOrder = "change_asc"
)

// ParseSortOrder parses a sort order; empty means volume_desc
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortVolumeDesc, nil
	case SortVolumeDesc, SortVolumeAsc, SortChangeDesc, SortChangeAsc:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// SortRows returns a sorted copy of rows; ties keep their scan order
func SortRows(rows []Row, order SortOrder) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	var less func(a, b Row) bool
	switch order {
	case SortVolumeAsc:
		less = func(a, b Row) bool { return a.Volume < b.Volume }
	case SortChangeDesc:
		less = func(a, b Row) bool { return a.Change > b.Change }
	case SortChangeAsc:
		less = func(a, b Row) bool { return a.Change < b.Change }
	default:
		less = func(a, b Row) bool { return a.Volume > b.Volume }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
