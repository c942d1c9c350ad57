package repo

import (
	"context"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error)
	BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error)
}

type ITrade interface {
	Create(ctx context.Context, record *model.Trade) (*model.Trade, error)
	BulkCreate(ctx context.Context, records []*model.Trade) ([]*model.Trade, error)
}

type IBalanceChange interface {
	Create(ctx context.Context, record *model.BalanceChange) (*model.BalanceChange, error)
}
