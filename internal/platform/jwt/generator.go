package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken は署名不正・期限切れ等で検証に失敗したトークンを示します。
var ErrInvalidToken = errors.New("invalid token")

// TokenManager defines the interface for JWT token generation and verification.
// アクセストークンとリフレッシュトークンは別々のシークレットで署名します。
type TokenManager interface {
	// GenerateAccessToken creates a short-lived signed JWT for API access.
	GenerateAccessToken(userID uint, email string) (string, error)

	// GenerateRefreshToken creates a long-lived signed JWT and returns its expiry.
	// 同一秒内に発行されたトークンが衝突しないよう、jtiクレームにUUIDを付与します。
	GenerateRefreshToken(userID uint, email string) (string, time.Time, error)

	// ParseRefreshToken verifies a refresh token and returns the user ID and email it carries.
	ParseRefreshToken(token string) (uint, string, error)
}

// tokenManager implements the TokenManager interface.
type tokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a new JWT token manager with the provided secrets and lifetimes.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) TokenManager {
	return &tokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken creates a signed JWT token with standard claims.
func (m *tokenManager) GenerateAccessToken(userID uint, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   time.Now().Add(m.accessTTL).Unix(),
		"iat":   time.Now().Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// GenerateRefreshToken creates a signed refresh JWT and returns its expiry time.
func (m *tokenManager) GenerateRefreshToken(userID uint, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.refreshTTL)
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
		"jti":   uuid.NewString(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseRefreshToken verifies the signature and expiry of a refresh token.
func (m *tokenManager) ParseRefreshToken(tokenStr string) (uint, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムの検証（HMAC以外は拒否）
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JWT numbers are decoded as float64
	if !ok {
		return 0, "", ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return uint(sub), email, nil
}
