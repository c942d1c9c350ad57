package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AddOrder struct {
	GatewayID    string
	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

type CancelOrder struct {
	GatewayID     string
	OrigGatewayID string
}

type DepositFunds struct {
	Account string
	Symbol  string
	Asset   string
	Amount  decimal.Decimal
}

type WithdrawFunds struct {
	Account string
	Symbol  string
	Asset   string
	Amount  decimal.Decimal
}
