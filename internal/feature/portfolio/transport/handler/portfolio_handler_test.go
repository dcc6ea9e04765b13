package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/feature/portfolio/domain/entity"
	"tradesim_backend/internal/feature/portfolio/transport/handler"
	"tradesim_backend/internal/feature/portfolio/usecase"
	jwtmw "tradesim_backend/internal/platform/jwt"
)

// mockPortfolioUsecase はPortfolioUsecaseインターフェースのモック実装です。
type mockPortfolioUsecase struct {
	GetPortfolioFunc          func(ctx context.Context, userID uint) (*usecase.PortfolioView, error)
	BuyFunc                   func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)
	SellFunc                  func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)
	GetTransactionHistoryFunc func(ctx context.Context, userID uint) ([]entity.Transaction, error)
}

func (m *mockPortfolioUsecase) GetPortfolio(ctx context.Context, userID uint) (*usecase.PortfolioView, error) {
	return m.GetPortfolioFunc(ctx, userID)
}

func (m *mockPortfolioUsecase) Buy(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
	return m.BuyFunc(ctx, userID, symbol, quantity)
}

func (m *mockPortfolioUsecase) Sell(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
	return m.SellFunc(ctx, userID, symbol, quantity)
}

func (m *mockPortfolioUsecase) GetTransactionHistory(ctx context.Context, userID uint) ([]entity.Transaction, error) {
	return m.GetTransactionHistoryFunc(ctx, userID)
}

// setupRouter は認証ミドルウェアの代役としてuserIDをコンテキストに詰めるルーターを組み立てます。
func setupRouter(uc *mockPortfolioUsecase, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewPortfolioHandler(uc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(jwtmw.ContextUserID, userID)
		}
		c.Next()
	})
	r.GET("/portfolio", h.GetPortfolioHandler)
	r.POST("/trades/buy", h.BuyHandler)
	r.POST("/trades/sell", h.SellHandler)
	r.GET("/trades/history", h.GetHistoryHandler)
	return r
}

func TestPortfolioHandler_GetPortfolioHandler(t *testing.T) {
	tests := []struct {
		name           string
		userID         uint
		mockGet        func(ctx context.Context, userID uint) (*usecase.PortfolioView, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "success: portfolio with one holding",
			userID: 42,
			mockGet: func(ctx context.Context, userID uint) (*usecase.PortfolioView, error) {
				assert.Equal(t, uint(42), userID)
				return &usecase.PortfolioView{
					ID:          7,
					CashBalance: decimal.NewFromFloat(98497.50),
					Holdings: []usecase.EnrichedHolding{
						{
							Holding: entity.Holding{
								ID:           3,
								PortfolioID:  7,
								Symbol:       "AAPL",
								Quantity:     10,
								AvgCostBasis: decimal.NewFromFloat(150.25),
							},
							CurrentPrice:    decimal.NewFromFloat(160.00),
							CurrentValue:    decimal.NewFromFloat(1600.00),
							GainLoss:        decimal.NewFromFloat(97.50),
							GainLossPercent: decimal.NewFromFloat(6.49),
						},
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{
				"id": 7,
				"cashBalance": 98497.50,
				"holdings": [
					{
						"id": 3,
						"symbol": "AAPL",
						"quantity": 10,
						"avgCostBasis": 150.25,
						"currentPrice": 160,
						"currentValue": 1600,
						"gainLoss": 97.5,
						"gainLossPercent": 6.49
					}
				]
			}`,
		},
		{
			name:   "success: empty portfolio returns empty holdings array",
			userID: 42,
			mockGet: func(ctx context.Context, userID uint) (*usecase.PortfolioView, error) {
				return &usecase.PortfolioView{ID: 7, CashBalance: decimal.NewFromInt(100000)}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id": 7, "cashBalance": 100000, "holdings": []}`,
		},
		{
			name:   "error: portfolio not found",
			userID: 42,
			mockGet: func(ctx context.Context, userID uint) (*usecase.PortfolioView, error) {
				return nil, usecase.ErrPortfolioNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error": "portfolio not found"}`,
		},
		{
			name:           "error: missing user context",
			userID:         0,
			mockGet:        nil,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error": "unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPortfolioUsecase{GetPortfolioFunc: tt.mockGet}
			r := setupRouter(uc, tt.userID)

			req := httptest.NewRequest(http.MethodGet, "/portfolio", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestPortfolioHandler_BuyHandler(t *testing.T) {
	executedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		mockBuy        func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: buy order executed",
			body: `{"symbol": "AAPL", "quantity": 10}`,
			mockBuy: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				assert.Equal(t, uint(42), userID)
				assert.Equal(t, "AAPL", symbol)
				assert.Equal(t, 10, quantity)
				return &entity.Transaction{
					ID:            1,
					PortfolioID:   7,
					Symbol:        "AAPL",
					Type:          entity.TradeTypeBuy,
					Quantity:      10,
					PricePerShare: decimal.NewFromFloat(150.25),
					TotalAmount:   decimal.NewFromFloat(1502.50),
					ExecutedAt:    executedAt,
				}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{
				"id": 1,
				"symbol": "AAPL",
				"type": "BUY",
				"quantity": 10,
				"pricePerShare": 150.25,
				"totalAmount": 1502.50,
				"executedAt": "2025-06-01T12:00:00Z"
			}`,
		},
		{
			name:           "error: missing body fields",
			body:           `{"symbol": "AAPL"}`,
			mockBuy:        nil,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "symbol and quantity are required"}`,
		},
		{
			name: "error: invalid quantity",
			body: `{"symbol": "AAPL", "quantity": -3}`,
			mockBuy: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				return nil, usecase.ErrInvalidQuantity
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "quantity must be a positive integer"}`,
		},
		{
			name: "error: insufficient funds",
			body: `{"symbol": "AAPL", "quantity": 10000}`,
			mockBuy: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				return nil, usecase.ErrInsufficientFunds
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "insufficient funds"}`,
		},
		{
			name: "error: rate limited without cached quote",
			body: `{"symbol": "AAPL", "quantity": 1}`,
			mockBuy: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				return nil, marketusecase.ErrRateLimited
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"error": "api rate limit reached, try again later"}`,
		},
		{
			name: "error: quote provider failure",
			body: `{"symbol": "AAPL", "quantity": 1}`,
			mockBuy: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				return nil, errors.New("upstream unavailable")
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error": "failed to fetch quote"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPortfolioUsecase{BuyFunc: tt.mockBuy}
			r := setupRouter(uc, 42)

			req := httptest.NewRequest(http.MethodPost, "/trades/buy", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestPortfolioHandler_SellHandler(t *testing.T) {
	executedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		mockSell       func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: sell order executed",
			body: `{"symbol": "AAPL", "quantity": 4}`,
			mockSell: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				return &entity.Transaction{
					ID:            2,
					PortfolioID:   7,
					Symbol:        "AAPL",
					Type:          entity.TradeTypeSell,
					Quantity:      4,
					PricePerShare: decimal.NewFromFloat(160.00),
					TotalAmount:   decimal.NewFromFloat(640.00),
					ExecutedAt:    executedAt,
				}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{
				"id": 2,
				"symbol": "AAPL",
				"type": "SELL",
				"quantity": 4,
				"pricePerShare": 160,
				"totalAmount": 640,
				"executedAt": "2025-06-01T12:00:00Z"
			}`,
		},
		{
			name: "error: insufficient shares",
			body: `{"symbol": "AAPL", "quantity": 100}`,
			mockSell: func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
				return nil, usecase.ErrInsufficientShares
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error": "insufficient shares"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPortfolioUsecase{SellFunc: tt.mockSell}
			r := setupRouter(uc, 42)

			req := httptest.NewRequest(http.MethodPost, "/trades/sell", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestPortfolioHandler_GetHistoryHandler(t *testing.T) {
	executedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		mockHistory    func(ctx context.Context, userID uint) ([]entity.Transaction, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: history newest first",
			mockHistory: func(ctx context.Context, userID uint) ([]entity.Transaction, error) {
				return []entity.Transaction{
					{
						ID: 2, Symbol: "AAPL", Type: entity.TradeTypeSell, Quantity: 4,
						PricePerShare: decimal.NewFromInt(160), TotalAmount: decimal.NewFromInt(640),
						ExecutedAt: executedAt.Add(time.Hour),
					},
					{
						ID: 1, Symbol: "AAPL", Type: entity.TradeTypeBuy, Quantity: 10,
						PricePerShare: decimal.NewFromInt(150), TotalAmount: decimal.NewFromInt(1500),
						ExecutedAt: executedAt,
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `[
				{"id": 2, "symbol": "AAPL", "type": "SELL", "quantity": 4, "pricePerShare": 160, "totalAmount": 640, "executedAt": "2025-06-01T13:00:00Z"},
				{"id": 1, "symbol": "AAPL", "type": "BUY", "quantity": 10, "pricePerShare": 150, "totalAmount": 1500, "executedAt": "2025-06-01T12:00:00Z"}
			]`,
		},
		{
			name: "success: empty history returns empty array",
			mockHistory: func(ctx context.Context, userID uint) ([]entity.Transaction, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPortfolioUsecase{GetTransactionHistoryFunc: tt.mockHistory}
			r := setupRouter(uc, 42)

			req := httptest.NewRequest(http.MethodGet, "/trades/history", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
