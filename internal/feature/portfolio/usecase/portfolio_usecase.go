package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	mdentity "tradesim_backend/internal/feature/marketdata/domain/entity"
	"tradesim_backend/internal/feature/portfolio/domain/entity"
	"tradesim_backend/internal/shared/enrich"
)

// moneyScale は金額カラムの小数桁数です。
const moneyScale = 2

// PortfolioRepository はポートフォリオ・保有銘柄・取引履歴の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PortfolioRepository interface {
	// Create は新しいポートフォリオを永続化します。
	Create(ctx context.Context, p *entity.Portfolio) error

	// FindByUserID はユーザーのポートフォリオを取得します。
	// 存在しない場合、ErrPortfolioNotFoundを返します。
	FindByUserID(ctx context.Context, userID uint) (*entity.Portfolio, error)

	// UpdateCashBalance はポートフォリオの現金残高を更新します。
	UpdateCashBalance(ctx context.Context, portfolioID uint, balance decimal.Decimal) error

	// FindHoldings はポートフォリオの全保有銘柄を取得します。
	FindHoldings(ctx context.Context, portfolioID uint) ([]entity.Holding, error)

	// FindHolding はポートフォリオ内の特定銘柄の保有を取得します。
	// 存在しない場合、ErrHoldingNotFoundを返します。
	FindHolding(ctx context.Context, portfolioID uint, symbol string) (*entity.Holding, error)

	// SaveHolding は保有銘柄を挿入または更新します。
	SaveHolding(ctx context.Context, h *entity.Holding) error

	// DeleteHolding は保有銘柄を削除します。
	DeleteHolding(ctx context.Context, id uint) error

	// CreateTransaction は取引履歴レコードを追加します。
	CreateTransaction(ctx context.Context, t *entity.Transaction) error

	// FindTransactions はポートフォリオの取引履歴を約定日時の降順で取得します。
	FindTransactions(ctx context.Context, portfolioID uint) ([]entity.Transaction, error)

	// InTx はfnを単一のデータベーストランザクション内で実行します。
	// fnに渡されるリポジトリはトランザクションに束縛されており、
	// fnがエラーを返すと全ての変更がロールバックされます。
	InTx(ctx context.Context, fn func(repo PortfolioRepository) error) error
}

// QuoteService は現在値の取得を抽象化します。実装はstocksフィーチャーが提供します。
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string) (mdentity.Quote, error)
}

// EnrichedHolding は現在値で評価済みの保有銘柄です。
type EnrichedHolding struct {
	entity.Holding
	CurrentPrice    decimal.Decimal
	CurrentValue    decimal.Decimal
	GainLoss        decimal.Decimal
	GainLossPercent decimal.Decimal
}

// PortfolioView は現金残高と評価済み保有銘柄をまとめたビューです。
type PortfolioView struct {
	ID          uint
	CashBalance decimal.Decimal
	Holdings    []EnrichedHolding
}

// Portfolio はポートフォリオと取引のユースケース契約を定義します。
type Portfolio interface {
	// CreateForUser は初期資金入りのポートフォリオを作成します。
	CreateForUser(ctx context.Context, userID uint) error

	// GetPortfolio は現在値で評価済みのポートフォリオを返します。
	GetPortfolio(ctx context.Context, userID uint) (*PortfolioView, error)

	// Buy は現在値で株式を購入し、約定した取引を返します。
	Buy(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)

	// Sell は現在値で株式を売却し、約定した取引を返します。
	Sell(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error)

	// GetTransactionHistory は取引履歴を約定日時の降順で返します。
	GetTransactionHistory(ctx context.Context, userID uint) ([]entity.Transaction, error)
}

// portfolioUsecase は仮想取引のビジネスロジックを実装します。
type portfolioUsecase struct {
	repo        PortfolioRepository
	quotes      QuoteService
	initialCash decimal.Decimal
}

// portfolioUsecaseがPortfolioを実装していることをコンパイル時に検証します。
var _ Portfolio = (*portfolioUsecase)(nil)

// NewPortfolioUsecase はportfolioUsecaseの新しいインスタンスを生成します。
func NewPortfolioUsecase(repo PortfolioRepository, quotes QuoteService, initialCash decimal.Decimal) *portfolioUsecase {
	return &portfolioUsecase{
		repo:        repo,
		quotes:      quotes,
		initialCash: initialCash,
	}
}

// CreateForUser は初期資金入りのポートフォリオを作成します。
// 新規ユーザー登録時にauthフィーチャーから呼び出されます。
func (u *portfolioUsecase) CreateForUser(ctx context.Context, userID uint) error {
	return u.repo.Create(ctx, &entity.Portfolio{
		UserID:      userID,
		CashBalance: u.initialCash,
	})
}

// GetPortfolio は現在値で評価済みのポートフォリオを返します。
// 現在値を取得できない保有銘柄は取得単価で評価し、損益ゼロとして返します。
func (u *portfolioUsecase) GetPortfolio(ctx context.Context, userID uint) (*PortfolioView, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := u.repo.FindHoldings(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	enriched := enrich.BestEffort(holdings,
		func(h entity.Holding) (EnrichedHolding, error) {
			q, err := u.quotes.GetQuote(ctx, h.Symbol)
			if err != nil {
				return EnrichedHolding{}, err
			}
			qty := decimal.NewFromInt(int64(h.Quantity))
			value := q.Price.Mul(qty)
			cost := h.AvgCostBasis.Mul(qty)
			gainLoss := value.Sub(cost)
			gainLossPercent := decimal.Zero
			if !cost.IsZero() {
				gainLossPercent = gainLoss.Div(cost).Mul(decimal.NewFromInt(100)).Round(moneyScale)
			}
			return EnrichedHolding{
				Holding:         h,
				CurrentPrice:    q.Price,
				CurrentValue:    value.Round(moneyScale),
				GainLoss:        gainLoss.Round(moneyScale),
				GainLossPercent: gainLossPercent,
			}, nil
		},
		func(h entity.Holding) EnrichedHolding {
			// 現在値が取れない場合は取得単価で評価する
			qty := decimal.NewFromInt(int64(h.Quantity))
			return EnrichedHolding{
				Holding:      h,
				CurrentPrice: h.AvgCostBasis,
				CurrentValue: h.AvgCostBasis.Mul(qty).Round(moneyScale),
			}
		},
	)

	return &PortfolioView{
		ID:          p.ID,
		CashBalance: p.CashBalance,
		Holdings:    enriched,
	}, nil
}

// Buy は現在値で株式を購入します。
// 現金減算・保有更新・履歴追加は単一トランザクションで行われ、
// いずれかが失敗した場合は全てロールバックされます。
func (u *portfolioUsecase) Buy(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	symbol = strings.ToUpper(symbol)

	// ポートフォリオ未作成は外部API呼び出しの前に弾く
	if _, err := u.repo.FindByUserID(ctx, userID); err != nil {
		return nil, err
	}

	quote, err := u.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	totalCost := quote.Price.Mul(qty).Round(moneyScale)

	var txn *entity.Transaction
	err = u.repo.InTx(ctx, func(repo PortfolioRepository) error {
		// 残高はトランザクション内で読み直す。事前に読んだスナップ
		// ショットを使うと、並行する取引の引き落としを上書きしてしまう
		p, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if p.CashBalance.LessThan(totalCost) {
			return ErrInsufficientFunds
		}
		if err := repo.UpdateCashBalance(ctx, p.ID, p.CashBalance.Sub(totalCost)); err != nil {
			return err
		}

		holding, err := repo.FindHolding(ctx, p.ID, symbol)
		switch {
		case err == nil:
			// 加重平均取得単価を再計算する
			oldQty := decimal.NewFromInt(int64(holding.Quantity))
			totalShares := holding.Quantity + quantity
			totalValue := holding.AvgCostBasis.Mul(oldQty).Add(quote.Price.Mul(qty))
			holding.Quantity = totalShares
			holding.AvgCostBasis = totalValue.Div(decimal.NewFromInt(int64(totalShares))).Round(moneyScale)
			if err := repo.SaveHolding(ctx, holding); err != nil {
				return err
			}
		case errors.Is(err, ErrHoldingNotFound):
			if err := repo.SaveHolding(ctx, &entity.Holding{
				PortfolioID:  p.ID,
				Symbol:       symbol,
				Quantity:     quantity,
				AvgCostBasis: quote.Price.Round(moneyScale),
			}); err != nil {
				return err
			}
		default:
			return err
		}

		txn = &entity.Transaction{
			PortfolioID:   p.ID,
			Symbol:        symbol,
			Type:          entity.TradeTypeBuy,
			Quantity:      quantity,
			PricePerShare: quote.Price.Round(moneyScale),
			TotalAmount:   totalCost,
		}
		return repo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Sell は現在値で株式を売却します。
// 保有数量が残り0になった場合、保有レコードは削除されます。
func (u *portfolioUsecase) Sell(ctx context.Context, userID uint, symbol string, quantity int) (*entity.Transaction, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	symbol = strings.ToUpper(symbol)

	p, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 保有なし・数量不足は外部API呼び出しの前に弾く
	holding, err := u.repo.FindHolding(ctx, p.ID, symbol)
	if err != nil {
		if errors.Is(err, ErrHoldingNotFound) {
			return nil, ErrInsufficientShares
		}
		return nil, err
	}
	if holding.Quantity < quantity {
		return nil, ErrInsufficientShares
	}

	quote, err := u.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(quantity))
	totalProceeds := quote.Price.Mul(qty).Round(moneyScale)

	var txn *entity.Transaction
	err = u.repo.InTx(ctx, func(repo PortfolioRepository) error {
		// 残高と保有はトランザクション内で読み直し、数量を再チェックする
		p, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		holding, err := repo.FindHolding(ctx, p.ID, symbol)
		if err != nil {
			if errors.Is(err, ErrHoldingNotFound) {
				return ErrInsufficientShares
			}
			return err
		}
		if holding.Quantity < quantity {
			return ErrInsufficientShares
		}

		if err := repo.UpdateCashBalance(ctx, p.ID, p.CashBalance.Add(totalProceeds)); err != nil {
			return err
		}

		remaining := holding.Quantity - quantity
		if remaining == 0 {
			if err := repo.DeleteHolding(ctx, holding.ID); err != nil {
				return err
			}
		} else {
			holding.Quantity = remaining
			if err := repo.SaveHolding(ctx, holding); err != nil {
				return err
			}
		}

		txn = &entity.Transaction{
			PortfolioID:   p.ID,
			Symbol:        symbol,
			Type:          entity.TradeTypeSell,
			Quantity:      quantity,
			PricePerShare: quote.Price.Round(moneyScale),
			TotalAmount:   totalProceeds,
		}
		return repo.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransactionHistory は取引履歴を約定日時の降順で返します。
func (u *portfolioUsecase) GetTransactionHistory(ctx context.Context, userID uint) ([]entity.Transaction, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.repo.FindTransactions(ctx, p.ID)
}
