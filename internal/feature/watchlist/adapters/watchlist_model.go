package adapters

import (
	"time"

	"tradesim_backend/internal/feature/watchlist/domain/entity"
)

// WatchlistModel is the GORM model for the watchlist table.
// A user watches at most one row per symbol.
type WatchlistModel struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"uniqueIndex:idx_watchlist_user_symbol;not null"`
	Symbol  string    `gorm:"uniqueIndex:idx_watchlist_user_symbol;size:10;not null"`
	AddedAt time.Time `gorm:"index;autoCreateTime"`
}

// TableName returns the table name for GORM.
func (WatchlistModel) TableName() string {
	return "watchlist"
}

// ToEntity converts the GORM model to a domain entity.
func (m *WatchlistModel) ToEntity() *entity.WatchlistItem {
	return &entity.WatchlistItem{
		ID:      m.ID,
		UserID:  m.UserID,
		Symbol:  m.Symbol,
		AddedAt: m.AddedAt,
	}
}
