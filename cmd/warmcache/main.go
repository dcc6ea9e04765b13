package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"tradesim_backend/internal/app/di"
	stocksusecase "tradesim_backend/internal/feature/stocks/usecase"
	"tradesim_backend/internal/platform/config"
	infradb "tradesim_backend/internal/platform/db"
)

// warmcache は定番銘柄の相場情報を先読みし、DBのキャッシュ行を温めます。
// APIの日次予算を消費するため、取引開始前に1回だけ実行する想定です。
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := infradb.OpenDB(cfg.Database)

	marketData, _ := di.NewMarketData(cfg.MarketData, db, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	warmed := 0
	for _, symbol := range stocksusecase.PopularStocks {
		if _, err := marketData.GetQuote(ctx, symbol); err != nil {
			log.Printf("[WARN] failed to warm %s: %v", symbol, err)
			continue
		}
		warmed++
	}

	log.Printf("cache warmed for %d/%d symbols", warmed, len(stocksusecase.PopularStocks))
}
