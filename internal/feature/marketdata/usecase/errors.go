// Package usecase はmarketdataフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrCacheMiss is returned when no cached quote exists for a symbol.
	ErrCacheMiss = errors.New("quote not cached")

	// ErrRateLimited is returned when the request budget is exhausted
	// and no cached data exists to fall back to.
	ErrRateLimited = errors.New("api rate limit exceeded")
)
