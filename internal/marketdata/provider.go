package marketdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// ErrDepthUnsupported is returned by providers without order book data
var ErrDepthUnsupported = errors.New("order book depth is not available from this provider")

// Provider is the market-data boundary the pipeline and the screener read from
type Provider interface {
	// Klines returns up to limit bars for symbol, oldest first
	Klines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error)

	// TopTickers returns up to limit tickers quoted in quoteAsset whose 24h
	// quote volume is at least minQuoteVolume, largest volume first
	TopTickers(ctx context.Context, quoteAsset string, minQuoteVolume float64, limit int) ([]types.Ticker, error)

	// Symbols lists the tradable symbols quoted in quoteAsset
	Symbols(ctx context.Context, quoteAsset string) ([]string, error)

	// GetName returns the name of the data provider
	GetName() string
}

// DepthProvider is implemented by providers that can serve order book depth
type DepthProvider interface {
	OrderBook(ctx context.Context, symbol string, limit int) (*bybit.OrderBook, error)
}

// EmptySeriesError is returned when a provider has no bars for a symbol
type EmptySeriesError struct {
	Symbol string
}

func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("no bars for %s", e.Symbol)
}
