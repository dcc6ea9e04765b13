// Package ratelimiter は外部API呼び出し回数の予算管理を提供します。
package ratelimiter

import (
	"sync"
	"time"
)

// Budget は外部API呼び出しの可否を判定するインターフェースです。
type Budget interface {
	// Allow は予算内であれば1回分を消費してtrueを返します。
	Allow() bool
	// Stats は現在の利用状況を返します。
	Stats() UsageStats
}

// UsageStats は日次予算の利用状況のスナップショットです。
type UsageStats struct {
	DailyRequestsUsed      int
	DailyRequestsLimit     int
	DailyRequestsRemaining int
}

// RequestBudget は直近60秒のスライディングウィンドウと
// UTC暦日単位のカウンタでAPI呼び出し回数を制限します。
// 複数のリクエストハンドラから並行に呼ばれるため、mutexで保護します。
type RequestBudget struct {
	mu            sync.Mutex
	perMinute     int
	perDay        int
	timestamps    []time.Time // 直近60秒以内の呼び出し時刻
	dailyCount    int
	lastResetDate string // UTC日付文字列（日またぎでリセット）
	now           func() time.Time
}

// NewRequestBudget は新しいRequestBudgetのインスタンスを生成します。
func NewRequestBudget(perMinute, perDay int) *RequestBudget {
	return &RequestBudget{
		perMinute: perMinute,
		perDay:    perDay,
		now:       time.Now,
	}
}

// Allow は両方の上限に収まっていれば消費を記録してtrueを返します。
// どちらかの上限に達している場合は記録せずfalseを返します。
func (b *RequestBudget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.resetDailyCounterIfNeeded(now)

	// 日次上限チェック
	if b.dailyCount >= b.perDay {
		return false
	}

	// 直近60秒のウィンドウから古い時刻を間引く
	cutoff := now.Add(-time.Minute)
	kept := b.timestamps[:0]
	for _, ts := range b.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	b.timestamps = kept

	if len(b.timestamps) >= b.perMinute {
		return false
	}

	b.timestamps = append(b.timestamps, now)
	b.dailyCount++
	return true
}

// Stats は日次予算の利用状況を返します。
func (b *RequestBudget) Stats() UsageStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetDailyCounterIfNeeded(b.now())
	return UsageStats{
		DailyRequestsUsed:      b.dailyCount,
		DailyRequestsLimit:     b.perDay,
		DailyRequestsRemaining: b.perDay - b.dailyCount,
	}
}

// resetDailyCounterIfNeeded はUTC日付が変わっていたら日次カウンタをリセットします。
// 呼び出し元でロックを保持していること。
func (b *RequestBudget) resetDailyCounterIfNeeded(now time.Time) {
	today := now.UTC().Format("2006-01-02")
	if b.lastResetDate != today {
		b.dailyCount = 0
		b.lastResetDate = today
	}
}
