package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tradesim_backend/internal/feature/auth/domain/entity"
	"tradesim_backend/internal/feature/auth/usecase"
)

// refreshTokenPostgres はRefreshTokenRepositoryインターフェースのPostgreSQL実装です。
type refreshTokenPostgres struct {
	db *gorm.DB
}

// refreshTokenPostgresがRefreshTokenRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.RefreshTokenRepository = (*refreshTokenPostgres)(nil)

// NewRefreshTokenPostgres は指定されたgorm.DB接続でrefreshTokenPostgresの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewRefreshTokenPostgres(db *gorm.DB) *refreshTokenPostgres {
	return &refreshTokenPostgres{db: db}
}

// Create はトークンレコードをデータベースに追加します。
func (r *refreshTokenPostgres) Create(ctx context.Context, t *entity.RefreshToken) error {
	m := RefreshTokenModelFromEntity(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	t.ID = m.ID
	return nil
}

// FindByUserID はユーザーの全トークンレコードを取得します。
func (r *refreshTokenPostgres) FindByUserID(ctx context.Context, userID uint) ([]entity.RefreshToken, error) {
	var models []RefreshTokenModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]entity.RefreshToken, 0, len(models))
	for i := range models {
		out = append(out, *models[i].ToEntity())
	}
	return out, nil
}

// DeleteByID はトークンレコードを削除します。
func (r *refreshTokenPostgres) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&RefreshTokenModel{}, id).Error
}

// DeleteExpired は期限切れのトークンレコードを一括削除します。
func (r *refreshTokenPostgres) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&RefreshTokenModel{}).Error
}
