package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

type countingProvider struct {
	calls int
}

func (c *countingProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	c.calls++
	return []types.OHLCV{{Close: float64(c.calls)}}, nil
}

func (c *countingProvider) TopTickers(ctx context.Context, quoteAsset string, minQuoteVolume float64, limit int) ([]types.Ticker, error) {
	return nil, nil
}

func (c *countingProvider) Symbols(ctx context.Context, quoteAsset string) ([]string, error) {
	return nil, nil
}

func (c *countingProvider) GetName() string { return "counting" }

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner, time.Minute)
	assert.Equal(t, "Cached counting", p.GetName())

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.cache.now = func() time.Time { return now }

	bars, err := p.Klines(context.Background(), "BTCUSDT", "1h", 100)
	require.NoError(t, err)
	again, err := p.Klines(context.Background(), "BTCUSDT", "1h", 100)
	require.NoError(t, err)
	assert.Equal(t, bars, again)
	assert.Equal(t, 1, inner.calls)

	_, err = p.Klines(context.Background(), "BTCUSDT", "4h", 100)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different keys miss")

	now = now.Add(2 * time.Minute)
	_, err = p.Klines(context.Background(), "BTCUSDT", "1h", 100)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls, "expired entries are refetched")

	p.ClearCache()
	assert.Equal(t, 0, p.cache.Size())
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	bars := []types.OHLCV{{Close: 1}}
	c.Set("k", bars)
	bars[0].Close = 99

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1.0, got[0].Close)

	got[0].Close = 42
	again, _ := c.Get("k")
	assert.Equal(t, 1.0, again[0].Close)
}

func TestCachedProvider_OrderBookUnsupported(t *testing.T) {
	p := NewCachedProvider(&countingProvider{}, time.Minute)
	_, err := p.OrderBook(context.Background(), "BTCUSDT", 5)
	assert.True(t, errors.Is(err, ErrDepthUnsupported))
}
