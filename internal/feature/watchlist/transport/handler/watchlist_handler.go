// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
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
	"tradesim_backend/internal/feature/watchlist/usecase"
	jwtmw "tradesim_backend/internal/platform/jwt"
)

// WatchlistUsecase はハンドラーが必要とするウォッチリスト操作を定義します。
type WatchlistUsecase interface {
	Add(ctx context.Context, userID uint, symbol string) (*usecase.EnrichedItem, error)
	Remove(ctx context.Context, userID uint, symbol string) error
	List(ctx context.Context, userID uint) ([]usecase.EnrichedItem, error)
}

// WatchlistHandler はウォッチリストのHTTPリクエストを処理します。
// 全エンドポイントはJWT認証ミドルウェアの背後に置かれます。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は指定されたusecaseでWatchlistHandlerの新しいインスタンスを生成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// ListHandler は現在値付きのウォッチリストを返します。
//
// エンドポイント例:
// GET /watchlist
func (h *WatchlistHandler) ListHandler(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	items, err := h.uc.List(c.Request.Context(), userID)
	if err != nil {
		slog.Error("list watchlist failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch watchlist"})
		return
	}

	out := make([]api.WatchlistItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toWatchlistItemResponse(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

// AddHandler は銘柄をウォッチリストに追加します。
//
// エンドポイント例:
// POST /watchlist/:symbol
func (h *WatchlistHandler) AddHandler(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	symbol := c.Param("symbol")

	if _, err := h.uc.Add(c.Request.Context(), userID, symbol); err != nil {
		switch {
		case errors.Is(err, usecase.ErrAlreadyInWatchlist):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "symbol already in watchlist"})
		case errors.Is(err, usecase.ErrUnknownSymbol):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown symbol"})
		case errors.Is(err, marketusecase.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "api rate limit reached, try again later"})
		default:
			slog.Error("add to watchlist failed", "error", err, "user_id", userID, "symbol", symbol)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to add to watchlist"})
		}
		return
	}

	c.JSON(http.StatusCreated, api.MessageResponse{Message: "added to watchlist"})
}

// RemoveHandler は銘柄をウォッチリストから削除します。冪等です。
//
// エンドポイント例:
// DELETE /watchlist/:symbol
func (h *WatchlistHandler) RemoveHandler(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	symbol := c.Param("symbol")

	if err := h.uc.Remove(c.Request.Context(), userID, symbol); err != nil {
		slog.Error("remove from watchlist failed", "error", err, "user_id", userID, "symbol", symbol)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to remove from watchlist"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "removed from watchlist"})
}

// toWatchlistItemResponse はドメインの項目をレスポンスDTOに変換します。
func toWatchlistItemResponse(item *usecase.EnrichedItem) api.WatchlistItemResponse {
	price, _ := item.Price.Float64()
	change, _ := item.Change.Float64()
	changePercent, _ := item.ChangePercent.Float64()
	return api.WatchlistItemResponse{
		ID:            item.ID,
		Symbol:        item.Symbol,
		Name:          item.Name,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		AddedAt:       item.AddedAt.UTC().Format(time.RFC3339),
	}
}
