package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"tradesim_backend/internal/feature/marketdata/domain/entity"
)

// QuoteCacheModel is the GORM model for the stock_cache table.
type QuoteCacheModel struct {
	Symbol        string          `gorm:"primaryKey;size:10"`
	Name          string          `gorm:"size:255"`
	Price         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Change        decimal.Decimal `gorm:"type:decimal(15,2)"`
	ChangePercent decimal.Decimal `gorm:"type:decimal(10,4)"`
	High          decimal.Decimal `gorm:"type:decimal(15,2)"`
	Low           decimal.Decimal `gorm:"type:decimal(15,2)"`
	Open          decimal.Decimal `gorm:"type:decimal(15,2)"`
	PreviousClose decimal.Decimal `gorm:"type:decimal(15,2)"`
	Volume        int64
	LastUpdated   time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (QuoteCacheModel) TableName() string {
	return "stock_cache"
}

// ToEntity converts the GORM model to a domain entity.
func (m *QuoteCacheModel) ToEntity() *entity.Quote {
	return &entity.Quote{
		Symbol:        m.Symbol,
		Name:          m.Name,
		Price:         m.Price,
		Change:        m.Change,
		ChangePercent: m.ChangePercent,
		High:          m.High,
		Low:           m.Low,
		Open:          m.Open,
		PreviousClose: m.PreviousClose,
		Volume:        m.Volume,
		UpdatedAt:     m.LastUpdated,
	}
}

// QuoteCacheModelFromEntity converts a domain entity to a GORM model.
func QuoteCacheModelFromEntity(q *entity.Quote) *QuoteCacheModel {
	return &QuoteCacheModel{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		High:          q.High,
		Low:           q.Low,
		Open:          q.Open,
		PreviousClose: q.PreviousClose,
		Volume:        q.Volume,
		LastUpdated:   q.UpdatedAt,
	}
}
