package usecase

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradesim_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// RefreshTokenRepository はリフレッシュトークンの永続化層を抽象化します。
type RefreshTokenRepository interface {
	// Create は新しいトークンレコードを永続化します。
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByUserID はユーザーの全トークンレコードを取得します。
	FindByUserID(ctx context.Context, userID uint) ([]entity.RefreshToken, error)

	// DeleteByID はトークンレコードを削除します。
	DeleteByID(ctx context.Context, id uint) error

	// DeleteExpired は期限切れのトークンレコードを一括削除します。
	DeleteExpired(ctx context.Context, now time.Time) error
}

// TokenManager はJWTトークンの生成と検証のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenManager interface {
	// GenerateAccessToken は指定されたユーザーの署名済みアクセストークンを生成します。
	GenerateAccessToken(userID uint, email string) (string, error)

	// GenerateRefreshToken は署名済みリフレッシュトークンとその有効期限を生成します。
	GenerateRefreshToken(userID uint, email string) (string, time.Time, error)

	// ParseRefreshToken はリフレッシュトークンを検証し、ユーザーIDとメールアドレスを返します。
	ParseRefreshToken(token string) (uint, string, error)
}

// PortfolioCreator は新規ユーザーのポートフォリオ作成を抽象化します。
// 実装はportfolioフィーチャーが提供し、DIが注入します。
type PortfolioCreator interface {
	// CreateForUser は初期資金入りのポートフォリオを作成します。
	CreateForUser(ctx context.Context, userID uint) error
}

// TokenPair はアクセストークンとリフレッシュトークンの組です。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Auth は認証ユースケースの契約を定義します。
type Auth interface {
	// Register は新規ユーザーを登録し、トークンペアを返します。
	Register(ctx context.Context, email, password string) (TokenPair, error)

	// Login はユーザーを認証し、成功時にトークンペアを返します。
	Login(ctx context.Context, email, password string) (TokenPair, error)

	// Refresh は有効なリフレッシュトークンを新しいトークンペアに交換します。
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// Logout は指定されたリフレッシュトークンを無効化します（冪等）。
	Logout(ctx context.Context, userID uint, refreshToken string) error
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	tokens     RefreshTokenRepository
	manager    TokenManager
	portfolios PortfolioCreator
	now        func() time.Time
}

// authUsecaseがAuthを実装していることをコンパイル時に検証します。
var _ Auth = (*authUsecase)(nil)

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens RefreshTokenRepository, manager TokenManager, portfolios PortfolioCreator) *authUsecase {
	return &authUsecase{
		users:      users,
		tokens:     tokens,
		manager:    manager,
		portfolios: portfolios,
		now:        time.Now,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録し、
// 初期資金入りのポートフォリオを作成してトークンペアを返します。
func (u *authUsecase) Register(ctx context.Context, email, password string) (TokenPair, error) {
	// パスワード強度を検証
	if err := validatePassword(password); err != nil {
		return TokenPair{}, err
	}
	email = strings.ToLower(email)

	// メール重複の事前チェック。一意制約違反はアダプター側でも
	// ErrEmailAlreadyExistsに変換されるため、これは早期リターン用
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return TokenPair{}, ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Email: email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return TokenPair{}, err
	}

	if err := u.portfolios.CreateForUser(ctx, user.ID); err != nil {
		return TokenPair{}, fmt.Errorf("failed to create portfolio: %w", err)
	}

	return u.issueTokens(ctx, user.ID, user.Email)
}

// Login はユーザーを認証し、成功時にトークンペアを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(email))

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user.ID, user.Email)
}

// Refresh は有効なリフレッシュトークンを新しいトークンペアに交換します。
// 使用されたトークンは削除され、再利用できません（ローテーション）。
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	// まず署名と有効期限をJWTとして検証し、所有者を特定する
	userID, email, err := u.manager.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	stored, err := u.findStoredToken(ctx, userID, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	// ローテーション: 使用済みトークンを削除してから新しいペアを発行する
	if err := u.tokens.DeleteByID(ctx, stored.ID); err != nil {
		return TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return u.issueTokens(ctx, userID, email)
}

// Logout は指定されたリフレッシュトークンを無効化します。
// トークンが見つからない場合もエラーにはしません（冪等）。
func (u *authUsecase) Logout(ctx context.Context, userID uint, refreshToken string) error {
	stored, err := u.findStoredToken(ctx, userID, refreshToken)
	if err != nil {
		return nil
	}
	return u.tokens.DeleteByID(ctx, stored.ID)
}

// refreshTokenDigest はリフレッシュトークンを固定長に縮約します。
// トークンはJWTでbcryptの入力上限（72バイト）を超えるため、
// ハッシュ化・照合にはSHA-256ダイジェストを渡します。
func refreshTokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

// findStoredToken はユーザーの保存済みトークンから平文トークンに一致する
// 未失効のレコードを探します。ハッシュはbcryptのためインデックス検索できず、
// ユーザー単位の全レコードを走査します。
func (u *authUsecase) findStoredToken(ctx context.Context, userID uint, refreshToken string) (*entity.RefreshToken, error) {
	stored, err := u.tokens.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh tokens: %w", err)
	}

	now := u.now()
	for i := range stored {
		t := &stored[i]
		if t.Expired(now) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), refreshTokenDigest(refreshToken)) == nil {
			return t, nil
		}
	}
	return nil, ErrInvalidRefreshToken
}

// issueTokens は新しいトークンペアを発行し、リフレッシュトークンの
// ハッシュを保存します。
func (u *authUsecase) issueTokens(ctx context.Context, userID uint, email string) (TokenPair, error) {
	access, err := u.manager.GenerateAccessToken(userID, email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, expiresAt, err := u.manager.GenerateRefreshToken(userID, email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(refreshTokenDigest(refresh), bcrypt.DefaultCost)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	if err := u.tokens.Create(ctx, &entity.RefreshToken{
		UserID:    userID,
		TokenHash: string(hash),
		ExpiresAt: expiresAt,
	}); err != nil {
		return TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	// 期限切れレコードの掃除はベストエフォート
	if err := u.tokens.DeleteExpired(ctx, u.now()); err != nil {
		slog.Warn("failed to prune expired refresh tokens", "error", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
