// Package adapters はmarketdataフィーチャーのリポジトリ・プロバイダ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradesim_backend/internal/feature/marketdata/domain/entity"
	"tradesim_backend/internal/feature/marketdata/usecase"
)

// quoteCachePostgres はQuoteCacheRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用してstock_cacheテーブルを読み書きします。
type quoteCachePostgres struct {
	db *gorm.DB
}

// quoteCachePostgresがQuoteCacheRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.QuoteCacheRepository = (*quoteCachePostgres)(nil)

// NewQuoteCachePostgres は指定されたgorm.DB接続でquoteCachePostgresの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewQuoteCachePostgres(db *gorm.DB) *quoteCachePostgres {
	return &quoteCachePostgres{db: db}
}

// FindBySymbol はシンボルでキャッシュ行を取得します。
// 行が存在しない場合、usecase.ErrCacheMissを返します。
func (r *quoteCachePostgres) FindBySymbol(ctx context.Context, symbol string) (*entity.Quote, error) {
	var m QuoteCacheModel
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCacheMiss
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Upsert はキャッシュ行を挿入または更新します。
// 同一シンボルの行が既に存在する場合は全カラムを上書きします。
func (r *quoteCachePostgres) Upsert(ctx context.Context, q *entity.Quote) error {
	m := QuoteCacheModelFromEntity(q)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).
		Create(m).Error
}
