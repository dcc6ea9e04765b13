// Package config はアプリケーション全体の設定を環境変数から読み込みます。
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	MarketData MarketDataConfig
	Trading    TradingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// RunMigrations enables gorm AutoMigrate at startup.
	RunMigrations bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// JWTConfig holds token signing configuration.
// アクセストークンとリフレッシュトークンは別々のシークレットで署名します。
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// MarketDataConfig holds external quote provider configuration.
type MarketDataConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerMinute int
	RequestsPerDay    int

	// UseMockData selects the deterministic mock provider instead of
	// the real Alpha Vantage client.
	UseMockData bool
}

// TradingConfig holds paper-trading parameters.
type TradingConfig struct {
	// InitialCashBalance is credited to every new portfolio at registration.
	InitialCashBalance decimal.Decimal
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "tradesim"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			RunMigrations: getEnvBool("RUN_MIGRATIONS", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_SECRET", ""),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
			AccessTTL:     getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		MarketData: MarketDataConfig{
			APIKey:            getEnv("ALPHA_VANTAGE_API_KEY", "demo"),
			BaseURL:           getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			Timeout:           getEnvDuration("ALPHA_VANTAGE_TIMEOUT", 10*time.Second),
			CacheTTL:          getEnvDuration("STOCK_CACHE_TTL", time.Minute),
			RequestsPerMinute: getEnvInt("ALPHA_VANTAGE_REQUESTS_PER_MINUTE", 5),
			RequestsPerDay:    getEnvInt("ALPHA_VANTAGE_MAX_DAILY_REQUESTS", 25),
			UseMockData:       getEnvBool("USE_MOCK_STOCK_DATA", false),
		},
		Trading: TradingConfig{
			InitialCashBalance: getEnvDecimal("INITIAL_CASH_BALANCE", decimal.NewFromInt(100000)),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}
