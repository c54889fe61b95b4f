package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/interfaces"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
)

// CachedPrice is a USD reference price with its expiry.
type CachedPrice struct {
	Price     decimal.Decimal
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// PriceCache holds USD reference prices per symbol for a bounded time. Readers see a
// consistent snapshot of each entry.
type PriceCache struct {
	source  interfaces.PriceSource
	retry   *RetryExecutor
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	mu      sync.RWMutex
	entries map[string]CachedPrice
}

// NewPriceCache builds a cache that fills misses from source.
func NewPriceCache(source interfaces.PriceSource, retry *RetryExecutor, ttl time.Duration, now func() time.Time, log *zap.Logger) *PriceCache {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Log
	}
	return &PriceCache{
		source:  source,
		retry:   retry,
		ttl:     ttl,
		now:     now,
		logger:  log,
		entries: make(map[string]CachedPrice),
	}
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Get returns the cached price if it has not expired.
func (c *PriceCache) Get(symbol string) (decimal.Decimal, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(symbol)]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.ExpiresAt) {
		return decimal.Zero, false
	}
	return entry.Price, true
}

// Set stores price for the cache TTL.
func (c *PriceCache) Set(symbol string, price decimal.Decimal) {
	now := c.now()
	c.mu.Lock()
	c.entries[cacheKey(symbol)] = CachedPrice{
		Price:     price,
		UpdatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.mu.Unlock()
}

// Expiry returns when the cached price for symbol expires.
func (c *PriceCache) Expiry(symbol string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(symbol)]
	return entry.ExpiresAt, ok
}

// Price returns the cached price, fetching it from the source on a miss.
func (c *PriceCache) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if price, ok := c.Get(symbol); ok {
		return price, nil
	}

	price, _, err := DoValue(ctx, c.retry, "price "+symbol, func(ctx context.Context) (decimal.Decimal, error) {
		return c.source.GetUSDPrice(ctx, symbol)
	})
	if err != nil {
		return decimal.Zero, err
	}

	c.Set(symbol, price)
	c.logger.Debug("Refreshed reference price",
		zap.String("symbol", symbol),
		zap.String("usd", price.String()))
	return price, nil
}

// Warm loads prices for every symbol. Failures are logged and left for Price to retry.
func (c *PriceCache) Warm(ctx context.Context, symbols ...string) {
	for _, symbol := range symbols {
		if _, err := c.Price(ctx, symbol); err != nil {
			c.logger.Warn("Failed to warm reference price", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}
