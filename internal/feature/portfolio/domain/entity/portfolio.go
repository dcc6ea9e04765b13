// Package entity はportfolioフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 取引種別。
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Portfolio はユーザー1人に1つ紐づく仮想ポートフォリオを表します。
type Portfolio struct {
	ID     uint
	UserID uint

	// CashBalance は取引に使える仮想現金残高です。
	CashBalance decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Holding はポートフォリオ内のある銘柄の保有ポジションを表します。
type Holding struct {
	ID          uint
	PortfolioID uint
	Symbol      string
	Quantity    int

	// AvgCostBasis は加重平均取得単価です。買い増しのたびに再計算されます。
	AvgCostBasis decimal.Decimal

	UpdatedAt time.Time
}

// Transaction は約定済みの売買取引1件を表します。変更不可の履歴レコードです。
type Transaction struct {
	ID            uint
	PortfolioID   uint
	Symbol        string
	Type          string
	Quantity      int
	PricePerShare decimal.Decimal
	TotalAmount   decimal.Decimal
	ExecutedAt    time.Time
}
