// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	marketadapters "tradesim_backend/internal/feature/marketdata/adapters"
	"tradesim_backend/internal/feature/marketdata/adapters/alphavantage"
	"tradesim_backend/internal/feature/marketdata/adapters/mock"
	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/platform/cache"
	"tradesim_backend/internal/platform/config"
	infrahttp "tradesim_backend/internal/platform/http"
	"tradesim_backend/internal/shared/ratelimiter"
)

// NewMarketData assembles the full market data stack: quote provider,
// request budget, database quote cache and the Redis caching decorator.
// With UseMockData set, the deterministic mock provider is used and the
// budget never throttles.
func NewMarketData(cfg config.MarketDataConfig, db *gorm.DB, rdb *redis.Client) (marketusecase.MarketData, ratelimiter.Budget) {
	var (
		provider marketusecase.Provider
		budget   ratelimiter.Budget
	)
	if cfg.UseMockData {
		slog.Info("using deterministic mock stock data")
		provider = mock.NewProvider()
		budget = &ratelimiter.Unlimited{Limit: cfg.RequestsPerDay}
	} else {
		avCfg := alphavantage.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}
		provider = alphavantage.NewClient(avCfg, infrahttp.NewHTTPClient(cfg.Timeout))
		budget = ratelimiter.NewRequestBudget(cfg.RequestsPerMinute, cfg.RequestsPerDay)
	}

	quoteCache := marketadapters.NewQuoteCachePostgres(db)
	md := marketusecase.NewMarketDataUsecase(quoteCache, provider, budget, cfg.CacheTTL)

	// Redisが無い場合、デコレーターは素通しになる
	return cache.NewCachingMarketData(rdb, md, 0, 0, "stocks"), budget
}
