// Package entity はwatchlistフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// WatchlistItem はユーザーがウォッチしている銘柄1件を表します。
// ユーザーごとに同じシンボルは1件までです。
type WatchlistItem struct {
	ID      uint
	UserID  uint
	Symbol  string
	AddedAt time.Time
}
