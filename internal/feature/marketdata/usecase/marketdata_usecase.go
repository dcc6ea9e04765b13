package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tradesim_backend/internal/feature/marketdata/domain/entity"
	"tradesim_backend/internal/shared/ratelimiter"
)

// MarketData は株価データ取得の契約を定義します。
// 本番実装はmarketDataUsecaseで、DIが設定に応じて外部プロバイダ版と
// モックデータ版（adapters/mock）のProviderを注入します。
type MarketData interface {
	// GetQuote は銘柄の現在値スナップショットを返します。
	GetQuote(ctx context.Context, symbol string) (entity.Quote, error)

	// Search はクエリに一致する銘柄の一覧を返します。
	Search(ctx context.Context, query string) ([]entity.SymbolMatch, error)

	// GetDailyHistory は直近の日足データを古い順で返します。
	GetDailyHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error)
}

// Provider は外部の株価APIを抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type Provider interface {
	// FetchQuote は外部APIから現在値を取得します。
	FetchQuote(ctx context.Context, symbol string) (entity.Quote, error)

	// SearchSymbols は外部APIで銘柄検索を行います。
	SearchSymbols(ctx context.Context, query string) ([]entity.SymbolMatch, error)

	// FetchDailyHistory は外部APIから日足データを取得します。
	FetchDailyHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error)
}

// QuoteCacheRepository は銘柄ごとのキャッシュ行の永続化層を抽象化します。
type QuoteCacheRepository interface {
	// FindBySymbol はキャッシュ行を取得します。存在しない場合はErrCacheMissを返します。
	FindBySymbol(ctx context.Context, symbol string) (*entity.Quote, error)

	// Upsert はキャッシュ行を挿入または更新します（symbolをキーに後勝ち）。
	Upsert(ctx context.Context, quote *entity.Quote) error
}

// marketDataUsecase は外部プロバイダ・キャッシュ・リクエスト予算を組み合わせた
// MarketDataの本番実装です。
type marketDataUsecase struct {
	cache    QuoteCacheRepository
	provider Provider
	budget   ratelimiter.Budget
	ttl      time.Duration
	now      func() time.Time
}

// marketDataUsecaseがMarketDataを実装していることをコンパイル時に検証します。
var _ MarketData = (*marketDataUsecase)(nil)

// NewMarketDataUsecase はmarketDataUsecaseの新しいインスタンスを生成します。
func NewMarketDataUsecase(cache QuoteCacheRepository, provider Provider, budget ratelimiter.Budget, ttl time.Duration) *marketDataUsecase {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &marketDataUsecase{
		cache:    cache,
		provider: provider,
		budget:   budget,
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetQuote は次の優先順位で現在値を返します。
//  1. TTL内のキャッシュ行（外部呼び出しなし）
//  2. 予算内なら外部プロバイダから取得してキャッシュを更新
//  3. 予算切れ・プロバイダ障害時はTTL切れキャッシュ（stale）
//
// キャッシュが無く予算も尽きている場合のみErrRateLimitedを返します。
func (u *marketDataUsecase) GetQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	sym := strings.ToUpper(symbol)

	cached, err := u.cache.FindBySymbol(ctx, sym)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return entity.Quote{}, err
	}

	// 1) TTL内ならキャッシュヒット
	if cached != nil && u.now().Sub(cached.UpdatedAt) < u.ttl {
		return *cached, nil
	}

	// 2) リクエスト予算の確認
	if !u.budget.Allow() {
		if cached != nil {
			slog.Warn("rate limited, returning stale cache", "symbol", sym)
			return staleCopy(cached), nil
		}
		return entity.Quote{}, ErrRateLimited
	}

	// 3) 外部プロバイダから取得
	quote, err := u.provider.FetchQuote(ctx, sym)
	if err != nil {
		// プロバイダ障害時はTTL切れキャッシュで代替
		if cached != nil {
			slog.Warn("provider failed, returning stale cache", "symbol", sym, "error", err)
			return staleCopy(cached), nil
		}
		return entity.Quote{}, err
	}

	quote.UpdatedAt = u.now()
	// キャッシュ更新はベストエフォート（失敗しても新鮮な値は返す）
	if err := u.cache.Upsert(ctx, &quote); err != nil {
		slog.Warn("failed to upsert quote cache", "symbol", sym, "error", err)
	}

	return quote, nil
}

// Search は銘柄検索を行います。予算切れ・プロバイダ障害時は空の結果に縮退します。
func (u *marketDataUsecase) Search(ctx context.Context, query string) ([]entity.SymbolMatch, error) {
	if !u.budget.Allow() {
		slog.Warn("rate limited, returning empty search results")
		return []entity.SymbolMatch{}, nil
	}

	matches, err := u.provider.SearchSymbols(ctx, query)
	if err != nil {
		slog.Warn("symbol search failed", "query", query, "error", err)
		return []entity.SymbolMatch{}, nil
	}
	return matches, nil
}

// GetDailyHistory は日足データを取得します。予算切れ・プロバイダ障害時は空の結果に縮退します。
func (u *marketDataUsecase) GetDailyHistory(ctx context.Context, symbol string) ([]entity.DailyBar, error) {
	sym := strings.ToUpper(symbol)

	if !u.budget.Allow() {
		slog.Warn("rate limited, returning empty history", "symbol", sym)
		return []entity.DailyBar{}, nil
	}

	bars, err := u.provider.FetchDailyHistory(ctx, sym)
	if err != nil {
		slog.Warn("daily history fetch failed", "symbol", sym, "error", err)
		return []entity.DailyBar{}, nil
	}
	return bars, nil
}

// staleCopy はキャッシュ行をstaleフラグ付きで複製します。
func staleCopy(q *entity.Quote) entity.Quote {
	out := *q
	out.Stale = true
	return out
}
