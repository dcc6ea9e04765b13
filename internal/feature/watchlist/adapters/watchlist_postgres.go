// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"tradesim_backend/internal/feature/watchlist/domain/entity"
	"tradesim_backend/internal/feature/watchlist/usecase"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEコードです。
const pgUniqueViolation = "23505"

// watchlistPostgres はWatchlistRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用してwatchlistテーブルを読み書きします。
type watchlistPostgres struct {
	db *gorm.DB
}

// watchlistPostgresがWatchlistRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.WatchlistRepository = (*watchlistPostgres)(nil)

// NewWatchlistPostgres は指定されたgorm.DB接続でwatchlistPostgresの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewWatchlistPostgres(db *gorm.DB) *watchlistPostgres {
	return &watchlistPostgres{db: db}
}

// Create はウォッチリスト項目を追加します。
// 同一ユーザー・同一シンボルの項目が既に存在する場合、usecase.ErrAlreadyInWatchlistを返します。
func (r *watchlistPostgres) Create(ctx context.Context, item *entity.WatchlistItem) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&WatchlistModel{}).
		Where("user_id = ? AND symbol = ?", item.UserID, item.Symbol).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return usecase.ErrAlreadyInWatchlist
	}

	m := WatchlistModel{
		UserID: item.UserID,
		Symbol: item.Symbol,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		// 同時リクエストは一意制約で弾かれる
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return usecase.ErrAlreadyInWatchlist
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrAlreadyInWatchlist
		}
		return err
	}
	item.ID = m.ID
	item.AddedAt = m.AddedAt
	return nil
}

// FindByUserID はユーザーのウォッチリストを追加日時の降順で取得します。
func (r *watchlistPostgres) FindByUserID(ctx context.Context, userID uint) ([]entity.WatchlistItem, error) {
	var models []WatchlistModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at desc, id desc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]entity.WatchlistItem, 0, len(models))
	for i := range models {
		items = append(items, *models[i].ToEntity())
	}
	return items, nil
}

// DeleteByUserSymbol は項目を削除し、削除した行数を返します。
// 項目が存在しない場合は0を返し、エラーにはなりません。
func (r *watchlistPostgres) DeleteByUserSymbol(ctx context.Context, userID uint, symbol string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&WatchlistModel{})
	return res.RowsAffected, res.Error
}
