package ratelimiter

// Unlimited は常に許可するBudget実装です。
// モックデータ運用時など、外部APIの予算管理が不要な場合に使います。
type Unlimited struct {
	// Limit はStatsで報告する名目上の日次上限です。
	Limit int
}

var _ Budget = (*Unlimited)(nil)

// Allow は常にtrueを返します。
func (u *Unlimited) Allow() bool { return true }

// Stats は消費ゼロの利用状況を返します。
func (u *Unlimited) Stats() UsageStats {
	return UsageStats{
		DailyRequestsUsed:      0,
		DailyRequestsLimit:     u.Limit,
		DailyRequestsRemaining: u.Limit,
	}
}
