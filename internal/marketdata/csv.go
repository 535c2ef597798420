package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// CSVColumnMapping defines the column positions of a candle file
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string // empty means unix milliseconds
}

// DefaultCSVFormat is timestamp,open,high,low,close,volume with a header row
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}

// CSVProvider serves bars from candle files laid out as
// {root}/{exchange}/{category}/{SYMBOL}/{interval minutes}/candles.csv
type CSVProvider struct {
	root     string
	exchange string
	format   CSVColumnMapping
	locator  *FileLocator
	log      *logger.Logger
}

// NewCSVProvider creates a CSV provider rooted at dataRoot
func NewCSVProvider(dataRoot, exchange string, log *logger.Logger) *CSVProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &CSVProvider{
		root:     dataRoot,
		exchange: exchange,
		format:   DefaultCSVFormat,
		locator:  NewFileLocator(),
		log:      log,
	}
}

// WithFormat returns a copy of the provider reading the given column layout
func (p *CSVProvider) WithFormat(format CSVColumnMapping) *CSVProvider {
	cp := *p
	cp.format = format
	return &cp
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV"
}

// Klines loads the last limit bars of the symbol's candle file
func (p *CSVProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	path := p.locator.FindDataFile(p.root, p.exchange, symbol, interval)
	if path == "" {
		return nil, fmt.Errorf("no data file for %s %s under %s", symbol, interval, p.root)
	}
	bars, err := p.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, &EmptySeriesError{Symbol: symbol}
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// TopTickers derives 24h tickers from the last day of each file and ranks them by quote volume
func (p *CSVProvider) TopTickers(ctx context.Context, quoteAsset string, minQuoteVolume float64, limit int) ([]types.Ticker, error) {
	symbols, err := p.Symbols(ctx, quoteAsset)
	if err != nil {
		return nil, err
	}

	var tickers []types.Ticker
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := p.locator.FindFirstInterval(p.root, p.exchange, symbol)
		if path == "" {
			continue
		}
		bars, err := p.LoadFile(path)
		if err != nil || len(bars) == 0 {
			p.log.Warning("skipping %s: unreadable candle file", symbol)
			continue
		}
		t := TickerFromBars(symbol, bars)
		if t.QuoteVolume >= minQuoteVolume {
			tickers = append(tickers, t)
		}
	}

	sort.SliceStable(tickers, func(i, j int) bool {
		return tickers[i].QuoteVolume > tickers[j].QuoteVolume
	})
	if limit > 0 && len(tickers) > limit {
		tickers = tickers[:limit]
	}
	return tickers, nil
}

// Symbols lists the symbol directories present under the data root
func (p *CSVProvider) Symbols(ctx context.Context, quoteAsset string) ([]string, error) {
	seen := map[string]bool{}
	for _, category := range categoriesFor(p.exchange) {
		entries, err := os.ReadDir(filepath.Join(p.root, p.exchange, category))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() && (quoteAsset == "" || strings.HasSuffix(e.Name(), quoteAsset)) {
				seen[e.Name()] = true
			}
		}
	}
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// LoadFile reads a candle file. Malformed rows are skipped with a warning;
// the result is sorted oldest first.
func (p *CSVProvider) LoadFile(filename string) ([]types.OHLCV, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	bars, err := p.read(file, filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

func (p *CSVProvider) read(r io.Reader, name string) ([]types.OHLCV, error) {
	format := p.format
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var data []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading %s at line %d: %w", name, lineNum, err)
		}
		lineNum++

		if len(record) < format.MinColumns {
			p.log.Warning("%s: insufficient columns at line %d (expected %d, got %d), skipping", name, lineNum, format.MinColumns, len(record))
			continue
		}

		timestamp, err := parseCSVTime(record[format.TimestampCol], format.DateFormat)
		if err != nil {
			p.log.Warning("%s: invalid timestamp %q at line %d, skipping", name, record[format.TimestampCol], lineNum)
			continue
		}

		values, ok := parseCSVFloats(record, format.OpenCol, format.HighCol, format.LowCol, format.CloseCol, format.VolumeCol)
		if !ok {
			p.log.Warning("%s: invalid number at line %d, skipping", name, lineNum)
			continue
		}

		data = append(data, types.OHLCV{
			Timestamp: timestamp,
			Open:      values[0],
			High:      values[1],
			Low:       values[2],
			Close:     values[3],
			Volume:    values[4],
		})
	}
	return data, nil
}

// SaveCSV writes bars in the default column layout, creating the parent directory
func SaveCSV(path string, bars []types.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		record := []string{
			b.Timestamp.UTC().Format(DefaultCSVFormat.DateFormat),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func parseCSVTime(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if layout == "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(layout, s)
}

func parseCSVFloats(record []string, cols ...int) ([]float64, bool) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[c]), 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// TickerFromBars summarises the trailing 24 hours of an ascending series
func TickerFromBars(symbol string, bars []types.OHLCV) types.Ticker {
	last := bars[len(bars)-1]
	cutoff := last.Timestamp.Add(-24 * time.Hour)

	var volume, quoteVolume float64
	open := last.Open
	for i := len(bars) - 1; i >= 0 && bars[i].Timestamp.After(cutoff); i-- {
		volume += bars[i].Volume
		quoteVolume += bars[i].Volume * bars[i].Close
		open = bars[i].Open
	}

	return types.Ticker{
		Symbol:             symbol,
		Price:              last.Close,
		PriceChangePercent: types.ChangePercent(last.Close, open),
		Volume:             volume,
		QuoteVolume:        quoteVolume,
		Timestamp:          last.Timestamp,
	}
}
