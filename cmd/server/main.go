package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"tradesim_backend/internal/app/di"
	"tradesim_backend/internal/app/router"
	authadapters "tradesim_backend/internal/feature/auth/adapters"
	authhandler "tradesim_backend/internal/feature/auth/transport/handler"
	authusecase "tradesim_backend/internal/feature/auth/usecase"
	portfolioadapters "tradesim_backend/internal/feature/portfolio/adapters"
	portfoliohandler "tradesim_backend/internal/feature/portfolio/transport/handler"
	portfoliousecase "tradesim_backend/internal/feature/portfolio/usecase"
	stockshandler "tradesim_backend/internal/feature/stocks/transport/handler"
	stocksusecase "tradesim_backend/internal/feature/stocks/usecase"
	watchlistadapters "tradesim_backend/internal/feature/watchlist/adapters"
	watchlisthandler "tradesim_backend/internal/feature/watchlist/transport/handler"
	watchlistusecase "tradesim_backend/internal/feature/watchlist/usecase"
	"tradesim_backend/internal/platform/config"
	infradb "tradesim_backend/internal/platform/db"
	jwtmw "tradesim_backend/internal/platform/jwt"
	infraredis "tradesim_backend/internal/platform/redis"
)

func main() {
	// .envがあれば読み込む（本番では環境変数を直接設定する）
	_ = godotenv.Load()

	cfg := config.Load()

	// db
	db := infradb.OpenDB(cfg.Database)

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 相場情報スタック（プロバイダー・予算・キャッシュ）
	marketData, budget := di.NewMarketData(cfg.MarketData, db, rdb)

	// Repository
	userRepo := authadapters.NewUserPostgres(db)
	tokenRepo := authadapters.NewRefreshTokenPostgres(db)
	portfolioRepo := portfolioadapters.NewPortfolioPostgres(db)
	watchlistRepo := watchlistadapters.NewWatchlistPostgres(db)

	// Usecase
	tokenManager := jwtmw.NewTokenManager(
		cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	portfolioUC := portfoliousecase.NewPortfolioUsecase(portfolioRepo, marketData, cfg.Trading.InitialCashBalance)
	authUC := authusecase.NewAuthUsecase(userRepo, tokenRepo, tokenManager, portfolioUC)
	stocksUC := stocksusecase.NewStocksUsecase(marketData, budget, cfg.MarketData.UseMockData)
	watchlistUC := watchlistusecase.NewWatchlistUsecase(watchlistRepo, marketData)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	stocksH := stockshandler.NewStocksHandler(stocksUC)
	portfolioH := portfoliohandler.NewPortfolioHandler(portfolioUC)
	watchlistH := watchlisthandler.NewWatchlistHandler(watchlistUC)

	// ルータ生成
	r := router.NewRouter(authH, stocksH, portfolioH, watchlistH)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
