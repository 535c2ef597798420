package bybit

import (
	"context"
	"errors"
	"testing"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/safety"
)

type recordedCall struct {
	endpoint endpoint
	params   map[string]interface{}
}

// stubClient answers each endpoint from responses and records the requests
func stubClient(responses map[endpoint][]interface{}) (*Client, *[]recordedCall) {
	calls := &[]recordedCall{}
	c := NewClient(Config{Retry: &RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}})
	c.fetch = func(ctx context.Context, ep endpoint, params map[string]interface{}) (interface{}, error) {
		*calls = append(*calls, recordedCall{endpoint: ep, params: params})
		queue := responses[ep]
		if len(queue) == 0 {
			return nil, errors.New("no stubbed response")
		}
		next := queue[0]
		if len(queue) > 1 {
			responses[ep] = queue[1:]
		}
		if err, ok := next.(error); ok {
			return nil, err
		}
		return next, nil
	}
	return c, calls
}

func ok(result interface{}) *bybit_api.ServerResponse {
	return &bybit_api.ServerResponse{RetCode: 0, RetMsg: "OK", Result: result}
}

func TestGetKlines(t *testing.T) {
	c, calls := stubClient(map[endpoint][]interface{}{
		endpointKline: {ok(map[string]interface{}{
			"symbol":   "BTCUSDT",
			"category": "spot",
			"list": [][]string{
				{"1704074400000", "102", "104", "101", "103", "12", "1236"},
				{"1704070800000", "100", "103", "99", "102", "10", "1020"},
				{"bad"},
			},
		})},
	})

	klines, err := c.GetKlines(context.Background(), KlineParams{Symbol: "BTCUSDT", Interval: Interval1h, Limit: 5000})
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.True(t, klines[0].StartTime.Before(klines[1].StartTime), "klines must be oldest first")
	assert.Equal(t, 100.0, klines[0].OpenPrice)
	assert.Equal(t, 103.0, klines[1].ClosePrice)
	assert.Equal(t, 1236.0, klines[1].Turnover)

	require.Len(t, *calls, 1)
	assert.Equal(t, MaxKlineLimit, (*calls)[0].params["limit"])
	assert.Equal(t, "spot", (*calls)[0].params["category"])
	assert.Equal(t, "60", (*calls)[0].params["interval"])
}

func TestGetKlines_RequiresSymbol(t *testing.T) {
	c, _ := stubClient(nil)
	_, err := c.GetKlines(context.Background(), KlineParams{})
	assert.Error(t, err)
}

func TestGetKlines_APIError(t *testing.T) {
	c, calls := stubClient(map[endpoint][]interface{}{
		endpointKline: {&bybit_api.ServerResponse{RetCode: ErrCodeInvalidParameter, RetMsg: "Invalid symbol"}},
	})

	_, err := c.GetKlines(context.Background(), KlineParams{Symbol: "NOPE", Interval: Interval1h})
	require.Error(t, err)
	assert.True(t, IsSymbolNotFoundError(err))
	assert.Len(t, *calls, 1, "non retryable errors are not retried")
}

func TestGetKlines_RetriesRateLimit(t *testing.T) {
	c, calls := stubClient(map[endpoint][]interface{}{
		endpointKline: {
			&bybit_api.ServerResponse{RetCode: ErrCodeRateLimitExceeded, RetMsg: "Too many visits"},
			ok(map[string]interface{}{"list": [][]string{{"1704070800000", "1", "1", "1", "1", "1", "1"}}}),
		},
	})

	klines, err := c.GetKlines(context.Background(), KlineParams{Symbol: "BTCUSDT", Interval: Interval1m})
	require.NoError(t, err)
	assert.Len(t, klines, 1)
	assert.Len(t, *calls, 2)
}

func TestGetTickersAndTop(t *testing.T) {
	c, _ := stubClient(map[endpoint][]interface{}{
		endpointTickers: {ok(map[string]interface{}{
			"category": "spot",
			"list": []map[string]string{
				{"symbol": "BTCUSDT", "lastPrice": "42000", "price24hPcnt": "0.021", "turnover24h": "900000000", "volume24h": "21000"},
				{"symbol": "ETHUSDT", "lastPrice": "2200", "price24hPcnt": "-0.01", "turnover24h": "500000000", "volume24h": "230000"},
				{"symbol": "ETHBTC", "lastPrice": "0.05", "turnover24h": "999999999999"},
				{"symbol": "DOGEUSDT", "lastPrice": "0.08", "turnover24h": "1000"},
			},
		})},
	})

	tickers, err := c.GetTickers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, tickers, 4)
	assert.Equal(t, 0.021, tickers[0].Price24hPcnt)

	top := TopTickersByTurnover(tickers, "USDT", 2)
	require.Len(t, top, 2)
	assert.Equal(t, "BTCUSDT", top[0].Symbol)
	assert.Equal(t, "ETHUSDT", top[1].Symbol)
}

func TestGetSymbols_Paginates(t *testing.T) {
	c, calls := stubClient(map[endpoint][]interface{}{
		endpointInstruments: {
			ok(map[string]interface{}{
				"list": []Instrument{
					{Symbol: "SOLUSDT", Status: "Trading", BaseCoin: "SOL", QuoteCoin: "USDT"},
					{Symbol: "ETHBTC", Status: "Trading", BaseCoin: "ETH", QuoteCoin: "BTC"},
				},
				"nextPageCursor": "page2",
			}),
			ok(map[string]interface{}{
				"list": []Instrument{
					{Symbol: "BTCUSDT", Status: "Trading", BaseCoin: "BTC", QuoteCoin: "USDT"},
					{Symbol: "OLDUSDT", Status: "Closed", BaseCoin: "OLD", QuoteCoin: "USDT"},
				},
			}),
		},
	})
	c.category = CategoryLinear

	symbols, err := c.GetSymbols(context.Background(), "", "USDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "SOLUSDT"}, symbols)

	require.Len(t, *calls, 2)
	assert.Equal(t, "page2", (*calls)[1].params["cursor"])
}

func TestGetOrderBook(t *testing.T) {
	c, _ := stubClient(map[endpoint][]interface{}{
		endpointOrderBook: {ok(map[string]interface{}{
			"s":  "BTCUSDT",
			"b":  [][]string{{"41999.5", "1.2"}, {"41999", "3"}},
			"a":  [][]string{{"42000", "0.5"}},
			"ts": 1704070800000,
		})},
	})

	book, err := c.GetOrderBook(context.Background(), "", "BTCUSDT", 0)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", book.Symbol)
	require.Len(t, book.Bids, 2)
	assert.Equal(t, PriceLevel{Price: 41999.5, Quantity: 1.2}, book.Bids[0])
	assert.InDelta(t, 0.5, book.Spread(), 1e-9)
}

func TestDecodeResult_InvalidResponse(t *testing.T) {
	var out struct{}
	assert.Error(t, decodeResult("nope", &out))
	assert.Error(t, decodeResult((*bybit_api.ServerResponse)(nil), &out))
}

func TestGetEnvironment(t *testing.T) {
	assert.Equal(t, "testnet", NewClient(Config{Testnet: true}).GetEnvironment())
	c := NewClient(Config{})
	assert.Equal(t, "mainnet", c.GetEnvironment())
	assert.Equal(t, CategorySpot, c.Category())
}

func TestCircuitBreakerStopsCallingFailingUpstream(t *testing.T) {
	c, calls := stubClient(map[endpoint][]interface{}{
		endpointTickers: {errors.New("dial tcp: connection refused")},
	})
	c.retry.MaxRetries = 0
	c.breaker = safety.NewCircuitBreaker("bybit", safety.CircuitBreakerConfig{
		FailureThreshold: 2,
		Timeout:          time.Hour,
		IsFailure:        isUpstreamFailure,
	})
	var opened bool
	c.breaker.SetStateChangeCallback(func(from, to safety.CircuitBreakerState) {
		opened = opened || to == safety.StateOpen
	})

	for i := 0; i < 2; i++ {
		_, err := c.GetTickers(context.Background(), "")
		require.Error(t, err)
	}
	_, err := c.GetTickers(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, safety.ErrCircuitOpen)
	assert.Len(t, *calls, 2)
	assert.True(t, opened)

	stats, ok := c.BreakerStats()
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.Rejected)
}

func TestIsUpstreamFailure(t *testing.T) {
	assert.True(t, isUpstreamFailure(errors.New("EOF")))
	assert.True(t, isUpstreamFailure(NewBybitError(ErrCodeServiceBusy, "busy")))
	assert.False(t, isUpstreamFailure(NewBybitError(ErrCodeSymbolNotFound, "not found")))
	assert.False(t, isUpstreamFailure(context.Canceled))
}

func TestNewClientThrottlesWhenConfigured(t *testing.T) {
	c := NewClient(Config{RequestsPerSecond: 5, BreakerThreshold: 3})
	require.NotNil(t, c.limiter)
	require.NotNil(t, c.breaker)
	assert.Equal(t, 5, c.limiter.GetStats().Capacity)

	plain := NewClient(Config{})
	assert.Nil(t, plain.limiter)
	assert.Nil(t, plain.breaker)
}
