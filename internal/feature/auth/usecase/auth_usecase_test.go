package usecase_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradesim_backend/internal/feature/auth/domain/entity"
	"tradesim_backend/internal/feature/auth/usecase"
	jwtmw "tradesim_backend/internal/platform/jwt"
)

// ErrDB はモックと期待値の間で共有されるセンチネルエラーです。
var ErrDB = errors.New("database error")

// mockUserRepository はUserRepositoryインターフェースのインメモリモック実装です。
type mockUserRepository struct {
	users  map[string]*entity.User
	nextID uint
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]*entity.User{}, nextID: 1}
}

func (m *mockUserRepository) Create(ctx context.Context, u *entity.User) error {
	if _, ok := m.users[u.Email]; ok {
		return usecase.ErrEmailAlreadyExists
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.Email] = u
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, usecase.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, usecase.ErrUserNotFound
}

// mockTokenRepository はRefreshTokenRepositoryインターフェースのインメモリモック実装です。
type mockTokenRepository struct {
	tokens map[uint]*entity.RefreshToken
	nextID uint
}

func newMockTokenRepository() *mockTokenRepository {
	return &mockTokenRepository{tokens: map[uint]*entity.RefreshToken{}, nextID: 1}
}

func (m *mockTokenRepository) Create(ctx context.Context, t *entity.RefreshToken) error {
	cp := *t
	cp.ID = m.nextID
	t.ID = cp.ID
	m.nextID++
	m.tokens[cp.ID] = &cp
	return nil
}

func (m *mockTokenRepository) FindByUserID(ctx context.Context, userID uint) ([]entity.RefreshToken, error) {
	out := []entity.RefreshToken{}
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTokenRepository) DeleteByID(ctx context.Context, id uint) error {
	delete(m.tokens, id)
	return nil
}

func (m *mockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	for id, t := range m.tokens {
		if t.Expired(now) {
			delete(m.tokens, id)
		}
	}
	return nil
}

// mockTokenManager はTokenManagerインターフェースのモック実装です。
// 生成されるトークンは呼び出し回数で一意になります。
type mockTokenManager struct {
	counter      int
	ParseFunc    func(token string) (uint, string, error)
	GenerateErr  error
	issuedTokens []string
}

func (m *mockTokenManager) GenerateAccessToken(userID uint, email string) (string, error) {
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	m.counter++
	return "access-token", nil
}

func (m *mockTokenManager) GenerateRefreshToken(userID uint, email string) (string, time.Time, error) {
	if m.GenerateErr != nil {
		return "", time.Time{}, m.GenerateErr
	}
	m.counter++
	token := "refresh-token-" + string(rune('a'+m.counter))
	m.issuedTokens = append(m.issuedTokens, token)
	return token, time.Now().Add(7 * 24 * time.Hour), nil
}

func (m *mockTokenManager) ParseRefreshToken(token string) (uint, string, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(token)
	}
	return 1, "user@example.com", nil
}

// mockPortfolioCreator はPortfolioCreatorインターフェースのモック実装です。
type mockPortfolioCreator struct {
	CreateCalls int
	CreateErr   error
}

func (m *mockPortfolioCreator) CreateForUser(ctx context.Context, userID uint) error {
	m.CreateCalls++
	return m.CreateErr
}

// newTestUsecase はテスト用の依存一式とauthUsecaseを生成します。
func newTestUsecase() (*mockUserRepository, *mockTokenRepository, *mockTokenManager, *mockPortfolioCreator, usecase.Auth) {
	users := newMockUserRepository()
	tokens := newMockTokenRepository()
	manager := &mockTokenManager{}
	portfolios := &mockPortfolioCreator{}
	return users, tokens, manager, portfolios, usecase.NewAuthUsecase(users, tokens, manager, portfolios)
}

// seedUser はハッシュ化済みパスワードでユーザーを登録します。
func seedUser(t *testing.T, users *mockUserRepository, email, password string) *entity.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Email: email, Password: string(hashed)}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

// TestRegister はユーザー登録の正常系と異常系を検証します。
func TestRegister(t *testing.T) {
	t.Run("success: creates user, portfolio and tokens", func(t *testing.T) {
		users, tokens, _, portfolios, uc := newTestUsecase()

		pair, err := uc.Register(context.Background(), "New@Example.com", "password123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected non-empty token pair")
		}
		// メールアドレスは小文字で保存される
		if _, err := users.FindByEmail(context.Background(), "new@example.com"); err != nil {
			t.Errorf("expected lowercased user to exist: %v", err)
		}
		if portfolios.CreateCalls != 1 {
			t.Errorf("expected 1 portfolio creation, got %d", portfolios.CreateCalls)
		}
		stored, _ := tokens.FindByUserID(context.Background(), 1)
		if len(stored) != 1 {
			t.Fatalf("expected 1 stored refresh token, got %d", len(stored))
		}
		// 保存されるのはハッシュであり平文トークンではない
		if stored[0].TokenHash == pair.RefreshToken {
			t.Error("refresh token must not be stored in plaintext")
		}
		// 保存ハッシュはトークンのSHA-256ダイジェストに対するbcrypt
		digest := sha256.Sum256([]byte(pair.RefreshToken))
		if bcrypt.CompareHashAndPassword([]byte(stored[0].TokenHash), digest[:]) != nil {
			t.Error("stored hash should match the issued refresh token")
		}
	})

	t.Run("failure: duplicate email", func(t *testing.T) {
		users, _, _, _, uc := newTestUsecase()
		seedUser(t, users, "taken@example.com", "password123")

		_, err := uc.Register(context.Background(), "taken@example.com", "password123")
		if !errors.Is(err, usecase.ErrEmailAlreadyExists) {
			t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
		}
	})

	t.Run("failure: password too short", func(t *testing.T) {
		_, _, _, portfolios, uc := newTestUsecase()

		_, err := uc.Register(context.Background(), "new@example.com", "short")
		if err == nil {
			t.Fatal("expected error for short password")
		}
		if portfolios.CreateCalls != 0 {
			t.Error("portfolio must not be created on validation failure")
		}
	})
}

// TestLogin は認証の正常系と異常系を検証します。
func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "success: valid credentials",
			email:    "user@example.com",
			password: "password123",
		},
		{
			name:     "failure: wrong password",
			email:    "user@example.com",
			password: "wrong-password",
			wantErr:  usecase.ErrInvalidCredentials,
		},
		{
			name:     "failure: unknown user",
			email:    "missing@example.com",
			password: "password123",
			wantErr:  usecase.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, _, _, _, uc := newTestUsecase()
			seedUser(t, users, "user@example.com", "password123")

			pair, err := uc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pair.AccessToken == "" || pair.RefreshToken == "" {
				t.Error("expected non-empty token pair")
			}
		})
	}
}

// TestRefresh はリフレッシュトークンのローテーションと単回使用を検証します。
func TestRefresh(t *testing.T) {
	t.Run("success: rotates the token", func(t *testing.T) {
		users, _, _, _, uc := newTestUsecase()
		seedUser(t, users, "user@example.com", "password123")

		pair, err := uc.Login(context.Background(), "user@example.com", "password123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		next, err := uc.Refresh(context.Background(), pair.RefreshToken)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.RefreshToken == pair.RefreshToken {
			t.Error("expected a new refresh token after rotation")
		}

		// 使用済みトークンの再利用は拒否される
		if _, err := uc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, usecase.ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken on reuse, got %v", err)
		}

		// ローテーション後のトークンは使用できる
		if _, err := uc.Refresh(context.Background(), next.RefreshToken); err != nil {
			t.Errorf("rotated token should be usable: %v", err)
		}
	})

	t.Run("failure: expired stored token", func(t *testing.T) {
		tokens := newMockTokenRepository()
		manager := &mockTokenManager{}
		uc := usecase.NewAuthUsecase(newMockUserRepository(), tokens, manager, &mockPortfolioCreator{})

		raw := "stale-refresh-token"
		digest := sha256.Sum256([]byte(raw))
		hash, _ := bcrypt.GenerateFromPassword(digest[:], bcrypt.MinCost)
		_ = tokens.Create(context.Background(), &entity.RefreshToken{
			UserID:    1,
			TokenHash: string(hash),
			ExpiresAt: time.Now().Add(-time.Hour),
		})

		if _, err := uc.Refresh(context.Background(), raw); !errors.Is(err, usecase.ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken for expired token, got %v", err)
		}
	})

	t.Run("failure: malformed token", func(t *testing.T) {
		manager := &mockTokenManager{
			ParseFunc: func(token string) (uint, string, error) {
				return 0, "", errors.New("bad signature")
			},
		}
		uc := usecase.NewAuthUsecase(newMockUserRepository(), newMockTokenRepository(), manager, &mockPortfolioCreator{})

		if _, err := uc.Refresh(context.Background(), "garbage"); !errors.Is(err, usecase.ErrInvalidRefreshToken) {
			t.Errorf("expected ErrInvalidRefreshToken, got %v", err)
		}
	})
}

// TestAuthWithSignedTokens は実際の署名付きJWTを使った登録〜リフレッシュの
// フローを検証します。署名付きリフレッシュトークンはbcryptの入力上限
// （72バイト）を超える長さになるため、モックの短いトークンでは通らない
// 経路をカバーします。
func TestAuthWithSignedTokens(t *testing.T) {
	users := newMockUserRepository()
	tokens := newMockTokenRepository()
	manager := jwtmw.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	uc := usecase.NewAuthUsecase(users, tokens, manager, &mockPortfolioCreator{})

	pair, err := uc.Register(context.Background(), "user@example.com", "password123")
	if err != nil {
		t.Fatalf("register with signed tokens failed: %v", err)
	}
	if len(pair.RefreshToken) <= 72 {
		t.Fatalf("expected signed refresh token longer than 72 bytes, got %d", len(pair.RefreshToken))
	}

	next, err := uc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh with signed token failed: %v", err)
	}

	// 使用済みトークンの再利用は拒否される
	if _, err := uc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, usecase.ErrInvalidRefreshToken) {
		t.Errorf("expected ErrInvalidRefreshToken on reuse, got %v", err)
	}

	if err := uc.Logout(context.Background(), 1, next.RefreshToken); err != nil {
		t.Fatalf("logout with signed token failed: %v", err)
	}
	stored, _ := tokens.FindByUserID(context.Background(), 1)
	if len(stored) != 0 {
		t.Errorf("expected no stored tokens after logout, got %d", len(stored))
	}
}

// TestLogout はトークン無効化と冪等性を検証します。
func TestLogout(t *testing.T) {
	users, tokens, _, _, uc := newTestUsecase()
	seedUser(t, users, "user@example.com", "password123")

	pair, err := uc.Login(context.Background(), "user@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := uc.Logout(context.Background(), 1, pair.RefreshToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := tokens.FindByUserID(context.Background(), 1)
	if len(stored) != 0 {
		t.Errorf("expected no stored tokens after logout, got %d", len(stored))
	}

	// ログアウト後のリフレッシュは拒否される
	if _, err := uc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, usecase.ErrInvalidRefreshToken) {
		t.Errorf("expected ErrInvalidRefreshToken after logout, got %v", err)
	}

	// 既に無効なトークンのログアウトはエラーにならない（冪等）
	if err := uc.Logout(context.Background(), 1, pair.RefreshToken); err != nil {
		t.Errorf("expected idempotent logout, got %v", err)
	}
}
