// Package alphavantage はAlpha Vantage株式市場APIのクライアントを提供します。
package alphavantage

import (
	"os"
	"time"
)

// Config はAlpha Vantage APIクライアントの設定を保持します。
type Config struct {
	APIKey  string        // 認証用APIキー
	BaseURL string        // APIのベースURL（例: "https://www.alphavantage.co/query"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数からAlpha Vantageの設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		APIKey:  os.Getenv("ALPHA_VANTAGE_API_KEY"),
		BaseURL: os.Getenv("ALPHA_VANTAGE_BASE_URL"),
		Timeout: 10 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.alphavantage.co/query"
	}
	return cfg
}
