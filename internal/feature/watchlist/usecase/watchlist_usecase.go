package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	mdentity "tradesim_backend/internal/feature/marketdata/domain/entity"
	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/feature/watchlist/domain/entity"
	"tradesim_backend/internal/shared/enrich"
)

// WatchlistRepository はウォッチリストの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type WatchlistRepository interface {
	// Create はウォッチリスト項目を永続化します。
	// 同一ユーザー・同一シンボルの項目が既に存在する場合、ErrAlreadyInWatchlistを返します。
	Create(ctx context.Context, item *entity.WatchlistItem) error

	// FindByUserID はユーザーのウォッチリストを追加日時の降順で取得します。
	FindByUserID(ctx context.Context, userID uint) ([]entity.WatchlistItem, error)

	// DeleteByUserSymbol は項目を削除し、削除した行数を返します。
	DeleteByUserSymbol(ctx context.Context, userID uint, symbol string) (int64, error)
}

// QuoteService は現在値の取得を抽象化します。実装はstocksフィーチャーが提供します。
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string) (mdentity.Quote, error)
}

// EnrichedItem は現在値付きのウォッチリスト項目です。
type EnrichedItem struct {
	entity.WatchlistItem
	Name          string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
}

// Watchlist はウォッチリストのユースケース契約を定義します。
type Watchlist interface {
	// Add は銘柄をウォッチリストに追加し、現在値付きの項目を返します。
	// 相場情報が取得できないシンボルはErrUnknownSymbolで拒否されます。
	Add(ctx context.Context, userID uint, symbol string) (*EnrichedItem, error)

	// Remove は銘柄をウォッチリストから削除します。
	// 項目が存在しない場合もエラーにはなりません。
	Remove(ctx context.Context, userID uint, symbol string) error

	// List は現在値付きのウォッチリストを追加日時の降順で返します。
	List(ctx context.Context, userID uint) ([]EnrichedItem, error)
}

// watchlistUsecase はウォッチリストのビジネスロジックを実装します。
type watchlistUsecase struct {
	repo   WatchlistRepository
	quotes QuoteService
}

// watchlistUsecaseがWatchlistを実装していることをコンパイル時に検証します。
var _ Watchlist = (*watchlistUsecase)(nil)

// NewWatchlistUsecase はwatchlistUsecaseの新しいインスタンスを生成します。
func NewWatchlistUsecase(repo WatchlistRepository, quotes QuoteService) *watchlistUsecase {
	return &watchlistUsecase{repo: repo, quotes: quotes}
}

// Add は銘柄をウォッチリストに追加します。
// 追加前に相場情報を取得してシンボルの実在を検証します。
func (u *watchlistUsecase) Add(ctx context.Context, userID uint, symbol string) (*EnrichedItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrUnknownSymbol
	}

	quote, err := u.quotes.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, marketusecase.ErrRateLimited) {
			return nil, err
		}
		return nil, ErrUnknownSymbol
	}

	item := &entity.WatchlistItem{
		UserID: userID,
		Symbol: symbol,
	}
	if err := u.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	return &EnrichedItem{
		WatchlistItem: *item,
		Name:          quoteName(quote, symbol),
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
	}, nil
}

// Remove は銘柄をウォッチリストから削除します。冪等です。
func (u *watchlistUsecase) Remove(ctx context.Context, userID uint, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	_, err := u.repo.DeleteByUserSymbol(ctx, userID, symbol)
	return err
}

// List は現在値付きのウォッチリストを返します。
// 現在値が取得できない項目はシンボル名のみ・価格ゼロで返します。
func (u *watchlistUsecase) List(ctx context.Context, userID uint) ([]EnrichedItem, error) {
	items, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	enriched := enrich.BestEffort(items,
		func(item entity.WatchlistItem) (EnrichedItem, error) {
			quote, err := u.quotes.GetQuote(ctx, item.Symbol)
			if err != nil {
				return EnrichedItem{}, err
			}
			return EnrichedItem{
				WatchlistItem: item,
				Name:          quoteName(quote, item.Symbol),
				Price:         quote.Price,
				Change:        quote.Change,
				ChangePercent: quote.ChangePercent,
			}, nil
		},
		func(item entity.WatchlistItem) EnrichedItem {
			return EnrichedItem{WatchlistItem: item, Name: item.Symbol}
		},
	)
	return enriched, nil
}

// quoteName は相場情報の銘柄名を返し、空の場合はシンボルで代用します。
func quoteName(q mdentity.Quote, symbol string) string {
	if q.Name != "" {
		return q.Name
	}
	return symbol
}
