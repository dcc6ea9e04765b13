// Package cache provides caching implementations for service interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tradesim_backend/internal/feature/marketdata/domain/entity"
	"tradesim_backend/internal/feature/marketdata/usecase"
)

// CachingMarketData decorates a MarketData service with Redis caching for
// search results and daily history. It implements the decorator pattern,
// transparently adding caching without modifying the underlying service.
//
// GetQuote is passed through untouched: quotes already have a persistent
// cache in the database and layering a second TTL on top would make the
// staleness behavior ambiguous.
type CachingMarketData struct {
	inner      usecase.MarketData
	rdb        *redis.Client
	searchTTL  time.Duration
	historyTTL time.Duration
	namespace  string
}

// CachingMarketDataがMarketDataを実装していることをコンパイル時に検証します。
var _ usecase.MarketData = (*CachingMarketData)(nil)

// NewCachingMarketData decorates a MarketData service with Redis caching.
// If searchTTL is 0, it defaults to 1 hour. If historyTTL is 0, it defaults
// to 5 minutes. If namespace is empty, it uses "stocks".
func NewCachingMarketData(rdb *redis.Client, inner usecase.MarketData, searchTTL, historyTTL time.Duration, namespace string) *CachingMarketData {
	if searchTTL <= 0 {
		searchTTL = time.Hour
	}
	if historyTTL <= 0 {
		historyTTL = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "stocks"
	}
	return &CachingMarketData{
		inner:      inner,
		rdb:        rdb,
		searchTTL:  searchTTL,
		historyTTL: historyTTL,
		namespace:  namespace,
	}
}

// GetQuote delegates to the underlying service.
func (c *CachingMarketData) GetQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	return c.inner.GetQuote(ctx, symbol)
}

// Search retrieves symbol matches, checking cache first then falling back
// to the underlying service.
func (c *CachingMarketData) Search(ctx context.Context, query string) ([]entity.SymbolMatch, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Search(ctx, query)
	}

	key := fmt.Sprintf("%s:search:%s", c.namespace, safe(strings.ToLower(query)))

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.SymbolMatch
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the underlying service
	out, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort), but never cache degraded empty results
	if len(out) > 0 {
		if b, err := json.Marshal(out); err == nil {
			_ = c.rdb.Set(ctx, key, b, c.searchTTL).Err()
		}
	}

	return out, nil
}

// GetDailyHistory retrieves daily bars, checking cache first then falling
// back to the underlying service.
func (c *CachingMarketData) GetDailyHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error) {
	if c.rdb == nil {
		return c.inner.GetDailyHistory(ctx, symbol)
	}

	key := fmt.Sprintf("%s:history:%s", c.namespace, safe(strings.ToUpper(symbol)))

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.DailyBar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.GetDailyHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if len(out) > 0 {
		if b, err := json.Marshal(out); err == nil {
			_ = c.rdb.Set(ctx, key, b, c.historyTTL).Err()
		}
	}

	return out, nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	// Simple escaping of characters that are problematic for Redis keys
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
