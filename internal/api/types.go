// Package api はHTTPトランスポート層で共有されるリクエスト/レスポンス型を定義します。
package api

// ErrorResponse はエラーレスポンスの共通形式です。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は成功メッセージのみを返すレスポンスの共通形式です。
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest は /auth/register エンドポイントのリクエストボディを表します。
// Ginのbindingタグでバリデーション（必須、メール形式、パスワード最低8文字）を行います。
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest は /auth/login エンドポイントのリクエストボディを表します。
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest は /auth/refresh エンドポイントのリクエストボディを表します。
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest は /auth/logout エンドポイントのリクエストボディを表します。
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenPairResponse はアクセストークンとリフレッシュトークンのペアを返します。
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TradeRequest は /trades/buy および /trades/sell のリクエストボディを表します。
type TradeRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// QuoteResponse は銘柄の現在値スナップショットのレスポンスDTOです。
// 金額はDBでは固定小数点で保持し、クライアントへはJSON数値として返します。
type QuoteResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
	Volume        int64   `json:"volume"`
	Stale         bool    `json:"stale,omitempty"`
	LastUpdated   string  `json:"lastUpdated"`
}

// SearchResultResponse は銘柄検索結果1件のレスポンスDTOです。
type SearchResultResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Region        string  `json:"region"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
}

// DailyBarResponse は日足1本のレスポンスDTOです。
// PriceはCloseの別名で、クライアント側のチャート描画を簡略化します。
type DailyBarResponse struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// UsageStatsResponse は外部APIの利用状況を返します。
type UsageStatsResponse struct {
	DailyRequestsUsed      int  `json:"dailyRequestsUsed"`
	DailyRequestsLimit     int  `json:"dailyRequestsLimit"`
	DailyRequestsRemaining int  `json:"dailyRequestsRemaining"`
	UsingMockData          bool `json:"usingMockData"`
}

// HoldingResponse は現在値で評価済みの保有銘柄のレスポンスDTOです。
type HoldingResponse struct {
	ID              uint    `json:"id"`
	Symbol          string  `json:"symbol"`
	Quantity        int     `json:"quantity"`
	AvgCostBasis    float64 `json:"avgCostBasis"`
	CurrentPrice    float64 `json:"currentPrice"`
	CurrentValue    float64 `json:"currentValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// PortfolioResponse はポートフォリオ全体のレスポンスDTOです。
type PortfolioResponse struct {
	ID          uint              `json:"id"`
	CashBalance float64           `json:"cashBalance"`
	Holdings    []HoldingResponse `json:"holdings"`
}

// TransactionResponse は約定済み取引1件のレスポンスDTOです。
type TransactionResponse struct {
	ID            uint    `json:"id"`
	Symbol        string  `json:"symbol"`
	Type          string  `json:"type"`
	Quantity      int     `json:"quantity"`
	PricePerShare float64 `json:"pricePerShare"`
	TotalAmount   float64 `json:"totalAmount"`
	ExecutedAt    string  `json:"executedAt"`
}

// WatchlistItemResponse は現在値付きのウォッチリスト項目のレスポンスDTOです。
type WatchlistItemResponse struct {
	ID            uint    `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	AddedAt       string  `json:"addedAt"`
}
