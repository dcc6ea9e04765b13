// Package adapters はportfolioフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradesim_backend/internal/feature/portfolio/domain/entity"
	"tradesim_backend/internal/feature/portfolio/usecase"
)

// portfolioPostgres はPortfolioRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用してportfolios・holdings・transactionsテーブルを読み書きします。
type portfolioPostgres struct {
	db *gorm.DB
}

// portfolioPostgresがPortfolioRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PortfolioRepository = (*portfolioPostgres)(nil)

// NewPortfolioPostgres は指定されたgorm.DB接続でportfolioPostgresの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewPortfolioPostgres(db *gorm.DB) *portfolioPostgres {
	return &portfolioPostgres{db: db}
}

// Create は新しいポートフォリオを永続化します。
func (r *portfolioPostgres) Create(ctx context.Context, p *entity.Portfolio) error {
	m := PortfolioModel{
		UserID:      p.UserID,
		CashBalance: p.CashBalance,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByUserID はユーザーのポートフォリオを取得します。
// 行が存在しない場合、usecase.ErrPortfolioNotFoundを返します。
func (r *portfolioPostgres) FindByUserID(ctx context.Context, userID uint) (*entity.Portfolio, error) {
	var m PortfolioModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPortfolioNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// UpdateCashBalance はポートフォリオの現金残高を更新します。
func (r *portfolioPostgres) UpdateCashBalance(ctx context.Context, portfolioID uint, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&PortfolioModel{}).
		Where("id = ?", portfolioID).
		Update("cash_balance", balance).Error
}

// FindHoldings はポートフォリオの全保有銘柄をシンボルの昇順で取得します。
func (r *portfolioPostgres) FindHoldings(ctx context.Context, portfolioID uint) ([]entity.Holding, error) {
	var models []HoldingModel
	if err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("symbol asc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	holdings := make([]entity.Holding, 0, len(models))
	for i := range models {
		holdings = append(holdings, *models[i].ToEntity())
	}
	return holdings, nil
}

// FindHolding はポートフォリオ内の特定銘柄の保有を取得します。
// 行が存在しない場合、usecase.ErrHoldingNotFoundを返します。
func (r *portfolioPostgres) FindHolding(ctx context.Context, portfolioID uint, symbol string) (*entity.Holding, error) {
	var m HoldingModel
	if err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND symbol = ?", portfolioID, symbol).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrHoldingNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// SaveHolding は保有銘柄を挿入または更新します。
func (r *portfolioPostgres) SaveHolding(ctx context.Context, h *entity.Holding) error {
	m := HoldingModelFromEntity(h)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	h.ID = m.ID
	h.UpdatedAt = m.UpdatedAt
	return nil
}

// DeleteHolding は保有銘柄を削除します。
func (r *portfolioPostgres) DeleteHolding(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&HoldingModel{}, id).Error
}

// CreateTransaction は取引履歴レコードを追加します。
func (r *portfolioPostgres) CreateTransaction(ctx context.Context, t *entity.Transaction) error {
	m := TransactionModelFromEntity(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	t.ID = m.ID
	t.ExecutedAt = m.ExecutedAt
	return nil
}

// FindTransactions はポートフォリオの取引履歴を約定日時の降順で取得します。
func (r *portfolioPostgres) FindTransactions(ctx context.Context, portfolioID uint) ([]entity.Transaction, error) {
	var models []TransactionModel
	if err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("executed_at desc, id desc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	txs := make([]entity.Transaction, 0, len(models))
	for i := range models {
		txs = append(txs, *models[i].ToEntity())
	}
	return txs, nil
}

// InTx はfnを単一のデータベーストランザクション内で実行します。
// fnに渡されるリポジトリはトランザクションのgorm.DBハンドルに束縛されます。
func (r *portfolioPostgres) InTx(ctx context.Context, fn func(repo usecase.PortfolioRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPortfolioPostgres(tx))
	})
}
