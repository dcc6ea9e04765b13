// Package usecase はportfolioフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrPortfolioNotFound is returned when a user has no portfolio.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound is returned when a holding cannot be found for a symbol.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrInvalidQuantity is returned when a trade quantity is zero or negative.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInsufficientFunds is returned when the cash balance cannot cover a buy.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares is returned when a sell exceeds the held quantity.
	ErrInsufficientShares = errors.New("not enough shares to sell")
)
