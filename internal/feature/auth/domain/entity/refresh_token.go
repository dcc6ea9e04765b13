package entity

import "time"

// RefreshToken represents a stored refresh token for a user session.
// Only the bcrypt hash of the token is persisted; the raw token exists
// nowhere but in the client's hands.
type RefreshToken struct {
	// ID is the unique identifier for the token record.
	ID uint

	// UserID is the owner of the token.
	UserID uint

	// TokenHash is the bcrypt hash of the raw refresh token.
	TokenHash string

	// ExpiresAt is when the token stops being accepted.
	ExpiresAt time.Time

	// CreatedAt is the timestamp when the token was issued.
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
