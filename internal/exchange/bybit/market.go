package bybit

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1m  KlineInterval = "1"
	Interval3m  KlineInterval = "3"
	Interval5m  KlineInterval = "5"
	Interval15m KlineInterval = "15"
	Interval30m KlineInterval = "30"
	Interval1h  KlineInterval = "60"
	Interval2h  KlineInterval = "120"
	Interval4h  KlineInterval = "240"
	Interval6h  KlineInterval = "360"
	Interval12h KlineInterval = "720"
	Interval1d  KlineInterval = "D"
	Interval1w  KlineInterval = "W"
	Interval1M  KlineInterval = "M"
)

var intervalAliases = map[string]KlineInterval{
	"1m":  Interval1m,
	"3m":  Interval3m,
	"5m":  Interval5m,
	"15m": Interval15m,
	"30m": Interval30m,
	"1h":  Interval1h,
	"2h":  Interval2h,
	"4h":  Interval4h,
	"6h":  Interval6h,
	"12h": Interval12h,
	"1d":  Interval1d,
	"1w":  Interval1w,
	"1M":  Interval1M,
}

// ParseInterval accepts either a Bybit interval code ("60", "D") or a
// human form ("1h", "1d"). Intervals Bybit does not serve, such as 8h, fail.
func ParseInterval(s string) (KlineInterval, error) {
	s = strings.TrimSpace(s)
	if iv, ok := intervalAliases[s]; ok {
		return iv, nil
	}
	switch iv := KlineInterval(strings.ToUpper(s)); iv {
	case Interval1m, Interval3m, Interval5m, Interval15m, Interval30m,
		Interval1h, Interval2h, Interval4h, Interval6h, Interval12h,
		Interval1d, Interval1w, Interval1M:
		return iv, nil
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// Duration returns the bar length; months are approximated as 30 days
func (i KlineInterval) Duration() time.Duration {
	switch i {
	case Interval1d:
		return 24 * time.Hour
	case Interval1w:
		return 7 * 24 * time.Hour
	case Interval1M:
		return 30 * 24 * time.Hour
	}
	minutes, err := strconv.Atoi(string(i))
	if err != nil {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

// MaxKlineLimit is the largest page the kline endpoint returns
const MaxKlineLimit = 1000

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"; client default when empty
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Start    *time.Time    // Start time (optional)
	End      *time.Time    // End time (optional)
	Limit    int           // Number of records to return (max 1000, default 200)
}

// GetKlines fetches kline data, returned oldest first
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	if params.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if params.Limit <= 0 {
		params.Limit = 200
	}
	if params.Limit > MaxKlineLimit {
		params.Limit = MaxKlineLimit
	}

	reqParams := map[string]interface{}{
		"category": c.categoryOr(params.Category),
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	var result struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := c.call(ctx, endpointKline, reqParams, &result); err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", params.Symbol, err)
	}
	return parseKlines(result.List), nil
}

// parseKlines converts Bybit rows [startTime, open, high, low, close, volume,
// turnover], which arrive newest first, into ascending klines
func parseKlines(rows [][]string) []Kline {
	klines := make([]Kline, 0, len(rows))
	for _, item := range rows {
		if len(item) < 7 {
			continue
		}
		klines = append(klines, Kline{
			StartTime:  parseTimestamp(item[0]),
			OpenPrice:  parseFloat64(item[1]),
			HighPrice:  parseFloat64(item[2]),
			LowPrice:   parseFloat64(item[3]),
			ClosePrice: parseFloat64(item[4]),
			Volume:     parseFloat64(item[5]),
			Turnover:   parseFloat64(item[6]),
		})
	}
	sort.SliceStable(klines, func(i, j int) bool {
		return klines[i].StartTime.Before(klines[j].StartTime)
	})
	return klines
}

// Ticker is a 24h market summary
type Ticker struct {
	Symbol       string
	LastPrice    float64
	PrevPrice24h float64
	Price24hPcnt float64 // fraction, 0.05 is +5%
	HighPrice24h float64
	LowPrice24h  float64
	Volume24h    float64 // base asset
	Turnover24h  float64 // quote asset
}

// GetTickers fetches the 24h tickers of every symbol in category
func (c *Client) GetTickers(ctx context.Context, category string) ([]Ticker, error) {
	return c.getTickers(ctx, map[string]interface{}{"category": c.categoryOr(category)})
}

func (c *Client) getTickers(ctx context.Context, params map[string]interface{}) ([]Ticker, error) {
	var result struct {
		Category string `json:"category"`
		List     []struct {
			Symbol       string `json:"symbol"`
			LastPrice    string `json:"lastPrice"`
			PrevPrice24h string `json:"prevPrice24h"`
			Price24hPcnt string `json:"price24hPcnt"`
			HighPrice24h string `json:"highPrice24h"`
			LowPrice24h  string `json:"lowPrice24h"`
			Volume24h    string `json:"volume24h"`
			Turnover24h  string `json:"turnover24h"`
		} `json:"list"`
	}
	if err := c.call(ctx, endpointTickers, params, &result); err != nil {
		return nil, fmt.Errorf("failed to get tickers: %w", err)
	}

	tickers := make([]Ticker, 0, len(result.List))
	for _, t := range result.List {
		tickers = append(tickers, Ticker{
			Symbol:       t.Symbol,
			LastPrice:    parseFloat64(t.LastPrice),
			PrevPrice24h: parseFloat64(t.PrevPrice24h),
			Price24hPcnt: parseFloat64(t.Price24hPcnt),
			HighPrice24h: parseFloat64(t.HighPrice24h),
			LowPrice24h:  parseFloat64(t.LowPrice24h),
			Volume24h:    parseFloat64(t.Volume24h),
			Turnover24h:  parseFloat64(t.Turnover24h),
		})
	}
	return tickers, nil
}

// TopTickersByTurnover returns up to limit tickers quoted in quoteAsset,
// ordered by 24h quote volume, largest first
func TopTickersByTurnover(tickers []Ticker, quoteAsset string, limit int) []Ticker {
	var out []Ticker
	for _, t := range tickers {
		if quoteAsset == "" || strings.HasSuffix(t.Symbol, quoteAsset) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Turnover24h > out[j].Turnover24h
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
