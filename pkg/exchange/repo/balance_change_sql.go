package repo

import (
	"context"

	"github.com/joripage/exchange-core/pkg/exchange/model"
	"gorm.io/gorm"
)

type BalanceChangeSQLRepo struct {
	db *gorm.DB
}

func NewBalanceChangeSQLRepo(db *gorm.DB) *BalanceChangeSQLRepo {
	return &BalanceChangeSQLRepo{
		db: db,
	}
}

func (s *BalanceChangeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (r *BalanceChangeSQLRepo) Create(ctx context.Context, record *model.BalanceChange) (*model.BalanceChange, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}
