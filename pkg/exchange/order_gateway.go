package exchange

import (
	"context"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type OrderGateway interface {
	Start(ctx context.Context) error

	// exchange to client
	OnOrderReport(ctx context.Context, order model.Order)
}
