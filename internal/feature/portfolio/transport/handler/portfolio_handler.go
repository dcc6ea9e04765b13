// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradesim_backend/internal/api"
	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/feature/portfolio/domain/entity"
	"tradesim_backend/internal/feature/portfolio/usecase"
	jwtmw "tradesim_backend/internal/platform/jwt"
)

// PortfolioUsecase はハンドラーが必要とするポートフォリオ操作を定義します。
type PortfolioUsecase interface {
	GetPortfolio(ctx context.Context, userID uint) (*usecase.PortfolioView, error)
	Buy(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)
	Sell(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)
	GetTransactionHistory(ctx context.Context, userID uint) ([]entity.Transaction, error)
}

// PortfolioHandler はポートフォリオと取引のHTTPリクエストを処理します。
// 全エンドポイントはJWT認証ミドルウェアの背後に置かれます。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler は指定されたusecaseでPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// GetPortfolioHandler は現在値で評価済みのポートフォリオを返します。
//
// エンドポイント例:
// GET /portfolio
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	view, err := h.uc.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "portfolio not found"})
			return
		}
		slog.Error("get portfolio failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch portfolio"})
		return
	}

	c.JSON(http.StatusOK, toPortfolioResponse(view))
}

// BuyHandler は現在値での買い注文を約定させます。
//
// エンドポイント例:
// POST /trades/buy
func (h *PortfolioHandler) BuyHandler(c *gin.Context) {
	h.executeTrade(c, h.uc.Buy)
}

// SellHandler は現在値での売り注文を約定させます。
//
// エンドポイント例:
// POST /trades/sell
func (h *PortfolioHandler) SellHandler(c *gin.Context) {
	h.executeTrade(c, h.uc.Sell)
}

// executeTrade は買い・売り共通のリクエスト検証とエラーマッピングを行います。
func (h *PortfolioHandler) executeTrade(c *gin.Context, trade func(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req api.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbol and quantity are required"})
		return
	}

	txn, err := trade(c.Request.Context(), userID, req.Symbol, req.Quantity)
	if err != nil {
		h.respondTradeError(c, err, userID, req.Symbol)
		return
	}

	slog.Info("trade executed",
		"user_id", userID, "symbol", txn.Symbol, "type", txn.Type, "quantity", txn.Quantity)
	c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// respondTradeError はusecaseのエラーをHTTPステータスに変換します。
func (h *PortfolioHandler) respondTradeError(c *gin.Context, err error, userID uint, symbol string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "quantity must be a positive integer"})
	case errors.Is(err, usecase.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "insufficient funds"})
	case errors.Is(err, usecase.ErrInsufficientShares):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "insufficient shares"})
	case errors.Is(err, usecase.ErrPortfolioNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "portfolio not found"})
	case errors.Is(err, marketusecase.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "api rate limit reached, try again later"})
	default:
		slog.Error("trade failed", "error", err, "user_id", userID, "symbol", symbol)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to fetch quote"})
	}
}

// GetHistoryHandler は取引履歴を新しい順で返します。
//
// エンドポイント例:
// GET /trades/history
func (h *PortfolioHandler) GetHistoryHandler(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	txs, err := h.uc.GetTransactionHistory(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "portfolio not found"})
			return
		}
		slog.Error("get trade history failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch trade history"})
		return
	}

	out := make([]api.TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionResponse(&txs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// toPortfolioResponse はドメインのビューをレスポンスDTOに変換します。
func toPortfolioResponse(view *usecase.PortfolioView) api.PortfolioResponse {
	holdings := make([]api.HoldingResponse, 0, len(view.Holdings))
	for _, h := range view.Holdings {
		holdings = append(holdings, api.HoldingResponse{
			ID:              h.ID,
			Symbol:          h.Symbol,
			Quantity:        h.Quantity,
			AvgCostBasis:    h.AvgCostBasis.InexactFloat64(),
			CurrentPrice:    h.CurrentPrice.InexactFloat64(),
			CurrentValue:    h.CurrentValue.InexactFloat64(),
			GainLoss:        h.GainLoss.InexactFloat64(),
			GainLossPercent: h.GainLossPercent.InexactFloat64(),
		})
	}
	return api.PortfolioResponse{
		ID:          view.ID,
		CashBalance: view.CashBalance.InexactFloat64(),
		Holdings:    holdings,
	}
}

// toTransactionResponse はドメインの取引をレスポンスDTOに変換します。
func toTransactionResponse(t *entity.Transaction) api.TransactionResponse {
	return api.TransactionResponse{
		ID:            t.ID,
		Symbol:        t.Symbol,
		Type:          t.Type,
		Quantity:      t.Quantity,
		PricePerShare: t.PricePerShare.InexactFloat64(),
		TotalAmount:   t.TotalAmount.InexactFloat64(),
		ExecutedAt:    t.ExecutedAt.UTC().Format(time.RFC3339),
	}
}
