package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"tradesim_backend/internal/feature/portfolio/domain/entity"
)

// PortfolioModel is the GORM model for the portfolios table.
type PortfolioModel struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"uniqueIndex;not null"`
	CashBalance decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (PortfolioModel) TableName() string {
	return "portfolios"
}

// ToEntity converts the GORM model to a domain entity.
func (m *PortfolioModel) ToEntity() *entity.Portfolio {
	return &entity.Portfolio{
		ID:          m.ID,
		UserID:      m.UserID,
		CashBalance: m.CashBalance,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// HoldingModel is the GORM model for the holdings table.
// A portfolio holds at most one row per symbol.
type HoldingModel struct {
	ID           uint            `gorm:"primaryKey"`
	PortfolioID  uint            `gorm:"uniqueIndex:idx_holdings_portfolio_symbol;not null"`
	Symbol       string          `gorm:"uniqueIndex:idx_holdings_portfolio_symbol;size:10;not null"`
	Quantity     int             `gorm:"not null"`
	AvgCostBasis decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM.
func (HoldingModel) TableName() string {
	return "holdings"
}

// ToEntity converts the GORM model to a domain entity.
func (m *HoldingModel) ToEntity() *entity.Holding {
	return &entity.Holding{
		ID:           m.ID,
		PortfolioID:  m.PortfolioID,
		Symbol:       m.Symbol,
		Quantity:     m.Quantity,
		AvgCostBasis: m.AvgCostBasis,
		UpdatedAt:    m.UpdatedAt,
	}
}

// HoldingModelFromEntity converts a domain entity to a GORM model.
func HoldingModelFromEntity(h *entity.Holding) *HoldingModel {
	return &HoldingModel{
		ID:           h.ID,
		PortfolioID:  h.PortfolioID,
		Symbol:       h.Symbol,
		Quantity:     h.Quantity,
		AvgCostBasis: h.AvgCostBasis,
	}
}

// TransactionModel is the GORM model for the transactions table.
type TransactionModel struct {
	ID            uint            `gorm:"primaryKey"`
	PortfolioID   uint            `gorm:"index;not null"`
	Symbol        string          `gorm:"size:10;not null"`
	Type          string          `gorm:"size:4;not null"`
	Quantity      int             `gorm:"not null"`
	PricePerShare decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ExecutedAt    time.Time       `gorm:"index;autoCreateTime"`
}

// TableName returns the table name for GORM.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		PortfolioID:   m.PortfolioID,
		Symbol:        m.Symbol,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PricePerShare: m.PricePerShare,
		TotalAmount:   m.TotalAmount,
		ExecutedAt:    m.ExecutedAt,
	}
}

// TransactionModelFromEntity converts a domain entity to a GORM model.
func TransactionModelFromEntity(t *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:            t.ID,
		PortfolioID:   t.PortfolioID,
		Symbol:        t.Symbol,
		Type:          t.Type,
		Quantity:      t.Quantity,
		PricePerShare: t.PricePerShare,
		TotalAmount:   t.TotalAmount,
		ExecutedAt:    t.ExecutedAt,
	}
}
