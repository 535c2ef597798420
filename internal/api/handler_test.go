package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/safety"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

type fakeProvider struct {
	bars    map[string][]types.OHLCV
	tickers []types.Ticker
	err     error
}

func (f *fakeProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	if f.err != nil {
		return nil, f.err
	}
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, &marketdata.EmptySeriesError{Symbol: symbol}
	}
	return bars, nil
}

func (f *fakeProvider) TopTickers(ctx context.Context, quoteAsset string, minQuoteVolume float64, limit int) ([]types.Ticker, error) {
	return f.tickers, f.err
}

func (f *fakeProvider) Symbols(ctx context.Context, quoteAsset string) ([]string, error) {
	return nil, nil
}

func (f *fakeProvider) GetName() string { return "fake" }

func generateBars(count int, base float64) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, count)
	for i := range bars {
		price := base + 5*math.Sin(float64(i)/4)
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      price - 0.3,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    500 + float64(i%5)*50,
		}
	}
	return bars
}

func newTestServer(p *fakeProvider) *Server {
	return NewServer(Options{
		Provider: p,
		Params:   indicators.DefaultParams(),
		Scan:     screener.DefaultConfig(),
	})
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env envelope
	if strings.HasPrefix(target, "/api/") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestSignals(t *testing.T) {
	s := newTestServer(&fakeProvider{bars: map[string][]types.OHLCV{"BTCUSDT": generateBars(120, 100)}})

	rec, env := get(t, s, "/api/signals?symbol=BTCUSDT&events=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)

	var resp struct {
		Symbol   string                     `json:"symbol"`
		Interval string                     `json:"interval"`
		Bars     int                        `json:"bars"`
		Overall  int                        `json:"overall"`
		Category string                     `json:"category"`
		Snapshot map[string]json.RawMessage `json:"snapshot"`
		Degraded []OutcomeResponse          `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "BTCUSDT", resp.Symbol)
	assert.Equal(t, "1h", resp.Interval)
	assert.Equal(t, 120, resp.Bars)
	assert.Len(t, resp.Snapshot, 11)
	assert.Contains(t, []string{"STRONG BUY", "BUY", "NEUTRAL", "SELL", "STRONG SELL"}, resp.Category)
	assert.Empty(t, resp.Degraded)
}

func TestSignals_ShortSeriesDegrades(t *testing.T) {
	s := newTestServer(&fakeProvider{bars: map[string][]types.OHLCV{"BTCUSDT": generateBars(5, 100)}})

	rec, env := get(t, s, "/api/signals?symbol=BTCUSDT&indicators=rsi,macd")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SignalsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 0, resp.Overall)
	require.NotEmpty(t, resp.Degraded)
}

func TestSignals_Validation(t *testing.T) {
	s := newTestServer(&fakeProvider{})

	tests := []string{
		"/api/signals",
		"/api/signals?symbol=BTCUSDT&limit=5000",
		"/api/signals?symbol=BTCUSDT&interval=8h",
		"/api/signals?symbol=BTCUSDT&indicators=ichimoku",
		"/api/signals?symbol=BTC-USDT",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec, env := get(t, s, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, env.Status)
		})
	}
}

func TestSignals_UpstreamErrors(t *testing.T) {
	rec, _ := get(t, newTestServer(&fakeProvider{}), "/api/signals?symbol=NOPEUSDT")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	limited := &fakeProvider{err: bybit.WrapAPIError("get kline", bybit.NewBybitError(bybit.ErrCodeRateLimitExceeded, "Too many visits"))}
	rec, _ = get(t, newTestServer(limited), "/api/signals?symbol=BTCUSDT")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestScreener(t *testing.T) {
	p := &fakeProvider{
		bars: map[string][]types.OHLCV{
			"BTCUSDT": generateBars(100, 42000),
			"ETHUSDT": generateBars(100, 2200),
		},
		tickers: []types.Ticker{
			{Symbol: "ETHUSDT", QuoteVolume: 5e8, PriceChangePercent: 3},
			{Symbol: "BTCUSDT", QuoteVolume: 9e8, PriceChangePercent: 1},
			{Symbol: "MISSINGUSDT", QuoteVolume: 1e8},
		},
	}
	s := newTestServer(p)

	rec, env := get(t, s, "/api/screener?sort=change_desc")
	require.Equal(t, http.StatusOK, rec.Code)

	var report screener.Report
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Skipped)
	assert.Greater(t, report.Elapsed, time.Duration(0), "elapsed round-trips as nanoseconds")
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "ETHUSDT", report.Rows[0].Symbol)

	rec, _ = get(t, s, "/api/screener?filter=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	s := newTestServer(&fakeProvider{bars: map[string][]types.OHLCV{"BTCUSDT": generateBars(60, 100)}})

	rec, _ := get(t, s, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no fetch yet")

	rec, _ = get(t, s, "/api/signals?symbol=BTCUSDT")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signal_scanner_")
}

func TestFetchStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty series", &marketdata.EmptySeriesError{Symbol: "BTCUSDT"}, http.StatusNotFound},
		{"unknown symbol", bybit.NewBybitError(bybit.ErrCodeSymbolNotFound, "not found"), http.StatusNotFound},
		{"rate limited", bybit.WrapAPIError("get kline", bybit.NewBybitError(bybit.ErrCodeRateLimitExceeded, "slow down")), http.StatusTooManyRequests},
		{"circuit open", bybit.WrapAPIError("get kline", fmt.Errorf("bybit: %w", safety.ErrCircuitOpen)), http.StatusServiceUnavailable},
		{"transport", errors.New("EOF"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fetchStatus(tt.err))
		})
	}
}

type depthProvider struct {
	fakeProvider
	book *bybit.OrderBook
}

func (d *depthProvider) OrderBook(ctx context.Context, symbol string, limit int) (*bybit.OrderBook, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.book, nil
}

func TestOrderBook(t *testing.T) {
	p := &depthProvider{book: &bybit.OrderBook{
		Symbol: "BTCUSDT",
		Bids:   []bybit.PriceLevel{{Price: 42000, Quantity: 1.5}},
		Asks:   []bybit.PriceLevel{{Price: 42000.5, Quantity: 0.7}},
	}}
	s := NewServer(Options{Provider: p, Params: indicators.DefaultParams(), Scan: screener.DefaultConfig()})

	rec, env := get(t, s, "/api/orderbook?symbol=BTCUSDT&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Symbol string             `json:"symbol"`
		Bids   []bybit.PriceLevel `json:"bids"`
		Spread float64            `json:"spread"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "BTCUSDT", resp.Symbol)
	assert.Len(t, resp.Bids, 1)
	assert.Equal(t, 0.5, resp.Spread)

	rec, _ = get(t, s, "/api/orderbook?symbol=BTCUSDT&limit=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderBook_Unsupported(t *testing.T) {
	rec, env := get(t, newTestServer(&fakeProvider{}), "/api/orderbook?symbol=BTCUSDT")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, http.StatusNotImplemented, env.Status)
}
