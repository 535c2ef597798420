package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

type cacheEntry struct {
	bars    []types.OHLCV
	expires time.Time
}

// MemoryCache stores bar series in memory with a fixed time to live
type MemoryCache struct {
	ttl   time.Duration
	now   func() time.Time
	cache map[string]cacheEntry
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

// Get retrieves a copy of the cached bars if present and fresh
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists || c.now().After(entry.expires) {
		return nil, false
	}
	result := make([]types.OHLCV, len(entry.bars))
	copy(result, entry.bars)
	return result, true
}

// Set stores a copy of bars
func (c *MemoryCache) Set(key string, bars []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(bars))
	copy(cached, bars)
	c.cache[key] = cacheEntry{bars: cached, expires: c.now().Add(c.ttl)}
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]cacheEntry)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another Provider and caches kline responses.
// Tickers and symbol listings are always fetched fresh.
type CachedProvider struct {
	Provider
	cache *MemoryCache
}

// NewCachedProvider caches provider's klines for ttl
func NewCachedProvider(provider Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{Provider: provider, cache: NewMemoryCache(ttl)}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.Provider.GetName()
}

// Klines serves from cache when possible
func (p *CachedProvider) Klines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	key := fmt.Sprintf("%s|%s|%d", symbol, interval, limit)
	if bars, ok := p.cache.Get(key); ok {
		return bars, nil
	}
	bars, err := p.Provider.Klines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, bars)
	return bars, nil
}

// OrderBook passes through uncached when the wrapped provider has depth data
func (p *CachedProvider) OrderBook(ctx context.Context, symbol string, limit int) (*bybit.OrderBook, error) {
	depth, ok := p.Provider.(DepthProvider)
	if !ok {
		return nil, ErrDepthUnsupported
	}
	return depth.OrderBook(ctx, symbol, limit)
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}
