package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// bybitAPI is the part of bybit.Client the provider needs
type bybitAPI interface {
	GetKlines(ctx context.Context, params bybit.KlineParams) ([]bybit.Kline, error)
	GetTickers(ctx context.Context, category string) ([]bybit.Ticker, error)
	GetSymbols(ctx context.Context, category, quoteCoin string) ([]string, error)
	GetOrderBook(ctx context.Context, category, symbol string, limit int) (*bybit.OrderBook, error)
}

// BybitProvider reshapes Bybit market data into bars and tickers
type BybitProvider struct {
	client   bybitAPI
	category string
}

// NewBybitProvider creates a provider over client. An empty category uses the client default.
func NewBybitProvider(client *bybit.Client, category string) *BybitProvider {
	return &BybitProvider{client: client, category: category}
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit"
}

// Klines fetches bars for symbol. interval accepts "1h" as well as Bybit codes such as "60".
func (p *BybitProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	iv, err := bybit.ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	klines, err := p.client.GetKlines(ctx, bybit.KlineParams{
		Category: p.category,
		Symbol:   symbol,
		Interval: iv,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	if len(klines) == 0 {
		return nil, &EmptySeriesError{Symbol: symbol}
	}
	return KlinesToBars(klines), nil
}

// TopTickers ranks the 24h tickers by quote volume
func (p *BybitProvider) TopTickers(ctx context.Context, quoteAsset string, minQuoteVolume float64, limit int) ([]types.Ticker, error) {
	raw, err := p.client.GetTickers(ctx, p.category)
	if err != nil {
		return nil, fmt.Errorf("failed to rank tickers: %w", err)
	}

	liquid := make([]bybit.Ticker, 0, len(raw))
	for _, t := range raw {
		if t.Turnover24h >= minQuoteVolume {
			liquid = append(liquid, t)
		}
	}

	now := time.Now().UTC()
	top := bybit.TopTickersByTurnover(liquid, quoteAsset, limit)
	out := make([]types.Ticker, 0, len(top))
	for _, t := range top {
		out = append(out, TickerFromBybit(t, now))
	}
	return out, nil
}

// Symbols lists trading instruments quoted in quoteAsset
func (p *BybitProvider) Symbols(ctx context.Context, quoteAsset string) ([]string, error) {
	return p.client.GetSymbols(ctx, p.category, quoteAsset)
}

// OrderBook returns up to limit price levels per side for symbol
func (p *BybitProvider) OrderBook(ctx context.Context, symbol string, limit int) (*bybit.OrderBook, error) {
	return p.client.GetOrderBook(ctx, p.category, symbol, limit)
}

// KlinesToBars converts ascending klines to bars
func KlinesToBars(klines []bybit.Kline) []types.OHLCV {
	bars := make([]types.OHLCV, len(klines))
	for i, k := range klines {
		bars[i] = types.OHLCV{
			Timestamp: k.StartTime,
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
		}
	}
	return bars
}

// TickerFromBybit converts a Bybit ticker. Bybit reports the 24h change as a
// fraction; Ticker carries it in percent.
func TickerFromBybit(t bybit.Ticker, at time.Time) types.Ticker {
	return types.Ticker{
		Symbol:             t.Symbol,
		Price:              t.LastPrice,
		PriceChangePercent: t.Price24hPcnt * 100,
		Volume:             t.Volume24h,
		QuoteVolume:        t.Turnover24h,
		Timestamp:          at,
	}
}
