package db

import (
	"fmt"
	"log"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	authadapters "tradesim_backend/internal/feature/auth/adapters"
	authentity "tradesim_backend/internal/feature/auth/domain/entity"
	marketadapters "tradesim_backend/internal/feature/marketdata/adapters"
	portfolioadapters "tradesim_backend/internal/feature/portfolio/adapters"
	watchlistadapters "tradesim_backend/internal/feature/watchlist/adapters"
	"tradesim_backend/internal/platform/config"
)

// BuildDSN はPostgreSQL接続用のキーワード形式DSN文字列を生成します。
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// retryInterval はDB接続リトライの間隔です。
const retryInterval = 3 * time.Second

// ConnectWithRetry はtimeoutまでの間、openerでの接続確立を繰り返します。
// 起動直後のDBコンテナ待ちを想定しています。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(dsn string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB はPostgreSQLへのgorm接続を確立します。
// 接続できるまで最大60秒リトライし、それでも失敗した場合はプロセスを終了します。
func OpenDB(cfg config.DatabaseConfig) *gorm.DB {
	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, func(dsn string) (*gorm.DB, error) {
		return gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
	})
	if err != nil {
		log.Fatal(err)
	}

	if cfg.RunMigrations {
		// マイグレーション（User, Portfolio, Holding, Transaction など）
		if err := db.AutoMigrate(
			&authentity.User{},
			&authadapters.RefreshTokenModel{},
			&portfolioadapters.PortfolioModel{},
			&portfolioadapters.HoldingModel{},
			&portfolioadapters.TransactionModel{},
			&watchlistadapters.WatchlistModel{},
			&marketadapters.QuoteCacheModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
