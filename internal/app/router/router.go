package router

import (
	"github.com/gin-gonic/gin"

	authhandler "tradesim_backend/internal/feature/auth/transport/handler"
	portfoliohandler "tradesim_backend/internal/feature/portfolio/transport/handler"
	stockshandler "tradesim_backend/internal/feature/stocks/transport/handler"
	watchlisthandler "tradesim_backend/internal/feature/watchlist/transport/handler"
	"tradesim_backend/internal/platform/http/handler"
	jwtmw "tradesim_backend/internal/platform/jwt"
)

func NewRouter(auth *authhandler.AuthHandler, stocks *stockshandler.StocksHandler,
	portfolio *portfoliohandler.PortfolioHandler, watchlist *watchlisthandler.WatchlistHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// 新規ユーザー登録・ログイン・トークン更新
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/refresh", auth.Refresh)

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	protected := r.Group("/")
	protected.Use(jwtmw.AuthRequired())
	{
		protected.POST("/auth/logout", auth.Logout)

		protected.GET("/portfolio", portfolio.GetPortfolioHandler)
		protected.POST("/trades/buy", portfolio.BuyHandler)
		protected.POST("/trades/sell", portfolio.SellHandler)
		protected.GET("/trades/history", portfolio.GetHistoryHandler)

		protected.GET("/stocks/quote/:symbol", stocks.GetQuoteHandler)
		protected.GET("/stocks/search", stocks.SearchHandler)
		protected.GET("/stocks/popular", stocks.GetPopularStocksHandler)
		protected.GET("/stocks/history/:symbol", stocks.GetHistoryHandler)
		protected.GET("/stocks/api-usage", stocks.GetAPIUsageHandler)

		protected.GET("/watchlist", watchlist.ListHandler)
		protected.POST("/watchlist/:symbol", watchlist.AddHandler)
		protected.DELETE("/watchlist/:symbol", watchlist.RemoveHandler)
	}

	return r
}
