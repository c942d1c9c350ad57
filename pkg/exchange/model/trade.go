package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one fill, persisted by the worker.
type Trade struct {
	ID           int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Volume       decimal.Decimal `json:"volume"`
	TakerSide    OrderSide       `json:"taker_side"`
	TakerAccount string          `json:"taker_account"`
	MakerAccount string          `json:"maker_account"`
	MakerOrderID uint64          `json:"maker_order_id"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

func (Trade) TableName() string {
	return "trades"
}

type BalanceChangeReason string

const (
	BalanceChangeDeposit  BalanceChangeReason = "Deposit"
	BalanceChangeWithdraw BalanceChangeReason = "Withdraw"
)

// BalanceChange is an audit row for custody movements in and out of the
// market.
type BalanceChange struct {
	ID        int64               `json:"id" gorm:"primaryKey;autoIncrement"`
	Symbol    string              `json:"symbol"`
	Account   string              `json:"account"`
	Asset     string              `json:"asset"`
	Amount    decimal.Decimal     `json:"amount"`
	Reason    BalanceChangeReason `json:"reason"`
	CreatedAt time.Time           `json:"created_at"`
}

func (BalanceChange) TableName() string {
	return "balance_changes"
}
