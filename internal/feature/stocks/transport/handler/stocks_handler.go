// Package handler はstocksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradesim_backend/internal/api"
	"tradesim_backend/internal/feature/marketdata/domain/entity"
	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/feature/stocks/usecase"
)

// StocksHandler は株価情報のHTTPリクエストを処理します。
type StocksHandler struct {
	uc usecase.Stocks
}

// NewStocksHandler は指定されたusecaseでStocksHandlerの新しいインスタンスを生成します。
func NewStocksHandler(uc usecase.Stocks) *StocksHandler {
	return &StocksHandler{uc: uc}
}

// GetQuoteHandler は銘柄の現在値をJSONで返します。
//
// エンドポイント例:
// GET /stocks/quote/:symbol
func (h *StocksHandler) GetQuoteHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	q, err := h.uc.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, marketusecase.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "api rate limit reached, try again later"})
			return
		}
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to fetch quote"})
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(q))
}

// SearchHandler はクエリに一致する銘柄を現在値付きで返します。
//
// エンドポイント例:
// GET /stocks/search?q=apple
func (h *StocksHandler) SearchHandler(c *gin.Context) {
	query := c.Query("q")

	matches, err := h.uc.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to search stocks"})
		return
	}

	c.JSON(http.StatusOK, toSearchResponses(matches))
}

// GetPopularStocksHandler は定番銘柄の現在値一覧を返します。
//
// エンドポイント例:
// GET /stocks/popular
func (h *StocksHandler) GetPopularStocksHandler(c *gin.Context) {
	matches, err := h.uc.GetPopularStocks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to fetch popular stocks"})
		return
	}

	c.JSON(http.StatusOK, toSearchResponses(matches))
}

// GetHistoryHandler は銘柄の直近日足データを古い順のJSONで返します。
//
// エンドポイント例:
// GET /stocks/history/:symbol
func (h *StocksHandler) GetHistoryHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	bars, err := h.uc.GetHistory(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to fetch history"})
		return
	}

	out := make([]api.DailyBarResponse, 0, len(bars))
	for _, b := range bars {
		closePrice, _ := b.Close.Float64()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		out = append(out, api.DailyBarResponse{
			Date:   b.Date.UTC().Format("2006-01-02"),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Price:  closePrice,
			Volume: b.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetAPIUsageHandler は外部APIの利用状況を返します。
//
// エンドポイント例:
// GET /stocks/api-usage
func (h *StocksHandler) GetAPIUsageHandler(c *gin.Context) {
	stats, usingMock := h.uc.UsageStats()

	c.JSON(http.StatusOK, api.UsageStatsResponse{
		DailyRequestsUsed:      stats.DailyRequestsUsed,
		DailyRequestsLimit:     stats.DailyRequestsLimit,
		DailyRequestsRemaining: stats.DailyRequestsRemaining,
		UsingMockData:          usingMock,
	})
}

// toQuoteResponse はドメインのQuoteをレスポンスDTOに変換します。
func toQuoteResponse(q entity.Quote) api.QuoteResponse {
	price, _ := q.Price.Float64()
	change, _ := q.Change.Float64()
	changePercent, _ := q.ChangePercent.Float64()
	high, _ := q.High.Float64()
	low, _ := q.Low.Float64()
	open, _ := q.Open.Float64()
	prevClose, _ := q.PreviousClose.Float64()

	return api.QuoteResponse{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		High:          high,
		Low:           low,
		Open:          open,
		PreviousClose: prevClose,
		Volume:        q.Volume,
		Stale:         q.Stale,
		LastUpdated:   q.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toSearchResponses は現在値付き検索結果をレスポンスDTOに変換します。
func toSearchResponses(matches []usecase.EnrichedMatch) []api.SearchResultResponse {
	out := make([]api.SearchResultResponse, 0, len(matches))
	for _, m := range matches {
		price, _ := m.Price.Float64()
		changePercent, _ := m.ChangePercent.Float64()
		out = append(out, api.SearchResultResponse{
			Symbol:        m.Symbol,
			Name:          m.Name,
			Type:          m.Type,
			Region:        m.Region,
			Price:         price,
			ChangePercent: changePercent,
		})
	}
	return out
}
