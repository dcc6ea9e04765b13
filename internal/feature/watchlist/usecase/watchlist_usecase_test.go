package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	mdentity "tradesim_backend/internal/feature/marketdata/domain/entity"
	marketusecase "tradesim_backend/internal/feature/marketdata/usecase"
	"tradesim_backend/internal/feature/watchlist/domain/entity"
	"tradesim_backend/internal/feature/watchlist/usecase"
)

// mockWatchlistRepository はWatchlistRepositoryインターフェースのインメモリモック実装です。
type mockWatchlistRepository struct {
	items  []entity.WatchlistItem
	nextID uint
}

func newMockWatchlistRepository() *mockWatchlistRepository {
	return &mockWatchlistRepository{nextID: 1}
}

func (m *mockWatchlistRepository) Create(ctx context.Context, item *entity.WatchlistItem) error {
	for _, it := range m.items {
		if it.UserID == item.UserID && it.Symbol == item.Symbol {
			return usecase.ErrAlreadyInWatchlist
		}
	}
	item.ID = m.nextID
	m.nextID++
	item.AddedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(item.ID) * time.Minute)
	m.items = append(m.items, *item)
	return nil
}

func (m *mockWatchlistRepository) FindByUserID(ctx context.Context, userID uint) ([]entity.WatchlistItem, error) {
	var out []entity.WatchlistItem
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *mockWatchlistRepository) DeleteByUserSymbol(ctx context.Context, userID uint, symbol string) (int64, error) {
	for i, it := range m.items {
		if it.UserID == userID && it.Symbol == symbol {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// mockQuotes はQuoteServiceインターフェースのモック実装です。
type mockQuotes struct {
	prices   map[string]float64
	rateErr  bool
	getCalls int
}

func (m *mockQuotes) GetQuote(ctx context.Context, symbol string) (mdentity.Quote, error) {
	m.getCalls++
	if m.rateErr {
		return mdentity.Quote{}, marketusecase.ErrRateLimited
	}
	price, ok := m.prices[symbol]
	if !ok {
		return mdentity.Quote{}, errors.New("symbol not found")
	}
	return mdentity.Quote{
		Symbol:        symbol,
		Name:          symbol + " Inc.",
		Price:         decimal.NewFromFloat(price),
		Change:        decimal.NewFromFloat(1.5),
		ChangePercent: decimal.NewFromFloat(0.75),
	}, nil
}

func newTestUsecase(prices map[string]float64) (usecase.Watchlist, *mockWatchlistRepository, *mockQuotes) {
	repo := newMockWatchlistRepository()
	quotes := &mockQuotes{prices: prices}
	return usecase.NewWatchlistUsecase(repo, quotes), repo, quotes
}

func TestAdd(t *testing.T) {
	u, repo, _ := newTestUsecase(map[string]float64{"AAPL": 150.25})

	item, err := u.Add(context.Background(), 1, " aapl ")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if item.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want trimmed and uppercased AAPL", item.Symbol)
	}
	if item.Name != "AAPL Inc." {
		t.Errorf("name = %q, want AAPL Inc.", item.Name)
	}
	if !item.Price.Equal(decimal.NewFromFloat(150.25)) {
		t.Errorf("price = %s, want 150.25", item.Price)
	}
	if len(repo.items) != 1 {
		t.Fatalf("stored items = %d, want 1", len(repo.items))
	}
}

func TestAdd_Duplicate(t *testing.T) {
	u, _, _ := newTestUsecase(map[string]float64{"AAPL": 150})
	ctx := context.Background()

	if _, err := u.Add(ctx, 1, "AAPL"); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := u.Add(ctx, 1, "aapl"); !errors.Is(err, usecase.ErrAlreadyInWatchlist) {
		t.Errorf("duplicate add error = %v, want ErrAlreadyInWatchlist", err)
	}
}

func TestAdd_UnknownSymbol(t *testing.T) {
	u, repo, _ := newTestUsecase(map[string]float64{})

	if _, err := u.Add(context.Background(), 1, "NOPE"); !errors.Is(err, usecase.ErrUnknownSymbol) {
		t.Errorf("error = %v, want ErrUnknownSymbol", err)
	}
	if _, err := u.Add(context.Background(), 1, "   "); !errors.Is(err, usecase.ErrUnknownSymbol) {
		t.Errorf("blank symbol error = %v, want ErrUnknownSymbol", err)
	}
	if len(repo.items) != 0 {
		t.Errorf("nothing should be stored, got %d items", len(repo.items))
	}
}

func TestAdd_RateLimitedPropagates(t *testing.T) {
	u, _, quotes := newTestUsecase(nil)
	quotes.rateErr = true

	if _, err := u.Add(context.Background(), 1, "AAPL"); !errors.Is(err, marketusecase.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	u, repo, _ := newTestUsecase(map[string]float64{"AAPL": 150})
	ctx := context.Background()

	if _, err := u.Add(ctx, 1, "AAPL"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := u.Remove(ctx, 1, "aapl"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("item should be removed, got %d items", len(repo.items))
	}

	// 既に無い項目を消してもエラーにならない
	if err := u.Remove(ctx, 1, "AAPL"); err != nil {
		t.Errorf("second remove should be a no-op, got %v", err)
	}
}

func TestList_EnrichedNewestFirst(t *testing.T) {
	u, _, _ := newTestUsecase(map[string]float64{"AAPL": 150, "MSFT": 400})
	ctx := context.Background()

	if _, err := u.Add(ctx, 1, "AAPL"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := u.Add(ctx, 1, "MSFT"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	items, err := u.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("list len = %d, want 2", len(items))
	}
	if items[0].Symbol != "MSFT" {
		t.Errorf("first item = %q, want most recently added MSFT", items[0].Symbol)
	}
	if !items[0].Price.Equal(decimal.NewFromInt(400)) {
		t.Errorf("MSFT price = %s, want 400", items[0].Price)
	}
}

func TestList_QuoteFailureFallsBackToSymbol(t *testing.T) {
	u, _, quotes := newTestUsecase(map[string]float64{"AAPL": 150})
	ctx := context.Background()

	if _, err := u.Add(ctx, 1, "AAPL"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// 追加後に相場情報が取れなくなっても一覧は返る
	quotes.prices = map[string]float64{}
	items, err := u.List(ctx, 1)
	if err != nil {
		t.Fatalf("List should not fail when quotes are unavailable: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("list len = %d, want 1", len(items))
	}
	if items[0].Name != "AAPL" {
		t.Errorf("fallback name = %q, want symbol AAPL", items[0].Name)
	}
	if !items[0].Price.IsZero() {
		t.Errorf("fallback price = %s, want 0", items[0].Price)
	}
}
