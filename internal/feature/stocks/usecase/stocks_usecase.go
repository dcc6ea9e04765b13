// Package usecase はstocksフィーチャーのユースケース層を提供します。
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradesim_backend/internal/feature/marketdata/domain/entity"
	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/shared/enrich"
	"tradesim_backend/internal/shared/ratelimiter"
)

// searchEnrichLimit は検索結果のうち現在値を付加する最大件数です。
// 1クエリで外部APIの分あたり予算を使い切らないための上限です。
const searchEnrichLimit = 5

// PopularStocks は発見画面向けの定番銘柄リストです。
var PopularStocks = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "BRK.B", "JPM", "V",
}

// EnrichedMatch は現在値付きの銘柄検索結果です。
type EnrichedMatch struct {
	entity.SymbolMatch
	Price         decimal.Decimal
	ChangePercent decimal.Decimal
}

// Stocks は株価情報系エンドポイントの契約を定義します。
type Stocks interface {
	// GetQuote は銘柄の現在値スナップショットを返します。
	GetQuote(ctx context.Context, symbol string) (entity.Quote, error)

	// Search はクエリに一致する銘柄を現在値付きで最大5件返します。
	Search(ctx context.Context, query string) ([]EnrichedMatch, error)

	// GetPopularStocks は定番銘柄の現在値一覧を返します。取得に失敗した銘柄は除外されます。
	GetPopularStocks(ctx context.Context) ([]EnrichedMatch, error)

	// GetHistory は直近の日足データを古い順で返します。
	GetHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error)

	// UsageStats は外部APIの利用状況を返します。
	UsageStats() (ratelimiter.UsageStats, bool)
}

// stocksUsecase はMarketDataを組み合わせたStocksの実装です。
type stocksUsecase struct {
	market    marketusecase.MarketData
	budget    ratelimiter.Budget
	usingMock bool
	now       func() time.Time
}

// stocksUsecaseがStocksを実装していることをコンパイル時に検証します。
var _ Stocks = (*stocksUsecase)(nil)

// NewStocksUsecase はstocksUsecaseの新しいインスタンスを生成します。
func NewStocksUsecase(market marketusecase.MarketData, budget ratelimiter.Budget, usingMock bool) *stocksUsecase {
	return &stocksUsecase{
		market:    market,
		budget:    budget,
		usingMock: usingMock,
		now:       time.Now,
	}
}

// GetQuote は銘柄の現在値を返します。
// 取得時刻が不明な値（モックなど）には現在時刻を補います。
func (u *stocksUsecase) GetQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	q, err := u.market.GetQuote(ctx, strings.ToUpper(symbol))
	if err != nil {
		return entity.Quote{}, err
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = u.now()
	}
	return q, nil
}

// Search はクエリに一致する銘柄を検索し、先頭5件に現在値を付加して返します。
// 現在値の取得に失敗した銘柄は価格ゼロのまま返します。
func (u *stocksUsecase) Search(ctx context.Context, query string) ([]EnrichedMatch, error) {
	if len(query) < 1 {
		return []EnrichedMatch{}, nil
	}

	matches, err := u.market.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(matches) > searchEnrichLimit {
		matches = matches[:searchEnrichLimit]
	}

	out := enrich.BestEffort(matches,
		func(m entity.SymbolMatch) (EnrichedMatch, error) {
			q, err := u.market.GetQuote(ctx, m.Symbol)
			if err != nil {
				return EnrichedMatch{}, err
			}
			return EnrichedMatch{
				SymbolMatch:   m,
				Price:         q.Price,
				ChangePercent: q.ChangePercent,
			}, nil
		},
		func(m entity.SymbolMatch) EnrichedMatch {
			return EnrichedMatch{SymbolMatch: m}
		},
	)
	return out, nil
}

// GetPopularStocks は定番銘柄リストの現在値一覧を返します。
// 現在値を取得できなかった銘柄は結果から除外します。
func (u *stocksUsecase) GetPopularStocks(ctx context.Context) ([]EnrichedMatch, error) {
	out := make([]EnrichedMatch, 0, len(PopularStocks))
	for _, symbol := range PopularStocks {
		q, err := u.market.GetQuote(ctx, symbol)
		if err != nil {
			continue
		}
		name := q.Name
		if name == "" {
			name = symbol
		}
		out = append(out, EnrichedMatch{
			SymbolMatch: entity.SymbolMatch{
				Symbol: symbol,
				Name:   name,
				Type:   "Equity",
				Region: "United States",
			},
			Price:         q.Price,
			ChangePercent: q.ChangePercent,
		})
	}
	return out, nil
}

// GetHistory は直近の日足データを古い順で返します。
func (u *stocksUsecase) GetHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error) {
	return u.market.GetDailyHistory(ctx, strings.ToUpper(symbol))
}

// UsageStats は外部APIの利用状況とモックモードかどうかを返します。
func (u *stocksUsecase) UsageStats() (ratelimiter.UsageStats, bool) {
	return u.budget.Stats(), u.usingMock
}
