package bybit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/safety"
)

// Category values accepted by the v5 market endpoints
const (
	CategorySpot    = "spot"
	CategoryLinear  = "linear"
	CategoryInverse = "inverse"
)

// endpoint names a public v5 market endpoint
type endpoint string

const (
	endpointKline       endpoint = "kline"
	endpointTickers     endpoint = "tickers"
	endpointInstruments endpoint = "instruments-info"
	endpointOrderBook   endpoint = "orderbook"
)

// fetchFunc performs one market request and returns the raw SDK response
type fetchFunc func(ctx context.Context, ep endpoint, params map[string]interface{}) (interface{}, error)

// Client wraps the Bybit API client for public market data
type Client struct {
	httpClient *bybit_api.Client
	category   string
	testnet    bool
	retry      RetryConfig
	limiter    *safety.RateLimiter
	breaker    *safety.CircuitBreaker

	// fetch is replaced in tests
	fetch fetchFunc
}

// Config holds the configuration for the Bybit client
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	BaseURL   string
	Category  string
	Retry     *RetryConfig

	// RequestsPerSecond throttles outgoing requests; 0 disables throttling
	RequestsPerSecond float64
	// BreakerThreshold consecutive upstream failures open the circuit for
	// BreakerTimeout; 0 disables the breaker
	BreakerThreshold int
	BreakerTimeout   time.Duration
	OnBreakerChange  func(from, to safety.CircuitBreakerState)
}

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		if config.Testnet {
			baseURL = bybit_api.TESTNET
		} else {
			baseURL = bybit_api.MAINNET
		}
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	category := config.Category
	if category == "" {
		category = CategorySpot
	}
	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}

	c := &Client{
		httpClient: httpClient,
		category:   category,
		testnet:    config.Testnet,
		retry:      retry,
	}
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = safety.NewRateLimiter("bybit", burst, config.RequestsPerSecond)
	}
	if config.BreakerThreshold > 0 {
		c.breaker = safety.NewCircuitBreaker("bybit", safety.CircuitBreakerConfig{
			FailureThreshold: uint32(config.BreakerThreshold),
			Timeout:          config.BreakerTimeout,
			IsFailure:        isUpstreamFailure,
		})
		if config.OnBreakerChange != nil {
			c.breaker.SetStateChangeCallback(config.OnBreakerChange)
		}
	}
	c.fetch = c.sdkFetch
	return c
}

func (c *Client) sdkFetch(ctx context.Context, ep endpoint, params map[string]interface{}) (interface{}, error) {
	service := c.httpClient.NewUtaBybitServiceWithParams(params)
	switch ep {
	case endpointKline:
		res, err := service.GetMarketKline(ctx)
		return res, err
	case endpointTickers:
		res, err := service.GetMarketTickers(ctx)
		return res, err
	case endpointInstruments:
		res, err := service.GetInstrumentInfo(ctx)
		return res, err
	case endpointOrderBook:
		res, err := service.GetOrderBookInfo(ctx)
		return res, err
	}
	return nil, fmt.Errorf("unknown endpoint %q", ep)
}

// call fetches ep with retries and decodes the result into out
func (c *Client) call(ctx context.Context, ep endpoint, params map[string]interface{}, out interface{}) error {
	return c.Retry(ctx, "get "+string(ep), func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return c.guard(func() error {
			response, err := c.fetch(ctx, ep, params)
			if err != nil {
				return err
			}
			return decodeResult(response, out)
		})
	})
}

// BreakerStats reports the circuit breaker state; ok is false when no breaker is configured
func (c *Client) BreakerStats() (stats safety.CircuitBreakerStats, ok bool) {
	if c.breaker == nil {
		return stats, false
	}
	return c.breaker.Stats(), true
}

// guard runs fn through the circuit breaker when one is configured
func (c *Client) guard(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Call(fn)
}

// isUpstreamFailure reports whether err means the exchange is unhealthy.
// Rejected requests (unknown symbol, bad parameter) do not count.
func isUpstreamFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		return IsRetryableError(err)
	}
	return true
}

// decodeResult unwraps a ServerResponse and unmarshals its result into out
func decodeResult(response interface{}, out interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return fmt.Errorf("invalid response type %T", response)
	}
	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := json.Unmarshal(resultBytes, out); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

// Category returns the default market category
func (c *Client) Category() string {
	return c.category
}

// IsTestnet returns whether the client is configured for testnet
func (c *Client) IsTestnet() bool {
	return c.testnet
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.testnet {
		return "testnet"
	}
	return "mainnet"
}

func (c *Client) categoryOr(category string) string {
	if category == "" {
		return c.category
	}
	return category
}
