// Package entity はmarketdataフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote はある時点の銘柄の取引価格スナップショットを表します。
// 金額は丸め誤差の蓄積を避けるため固定小数点で保持します。
type Quote struct {
	Symbol        string
	Name          string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	Open          decimal.Decimal
	PreviousClose decimal.Decimal
	Volume        int64

	// Stale はTTL切れのキャッシュから提供された値であることを示します。
	Stale bool

	// UpdatedAt はこの値が外部プロバイダから取得された時刻です。
	UpdatedAt time.Time
}

// SymbolMatch は銘柄検索の結果1件を表します。
type SymbolMatch struct {
	Symbol string
	Name   string
	Type   string
	Region string
}

// DailyBar は日足1本を表します。
type DailyBar struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}
