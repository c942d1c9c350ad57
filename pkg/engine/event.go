package engine

import "github.com/shopspring/decimal"

// Trade is emitted for every fill. Execution is always at the maker's
// resting price.
type Trade struct {
	Symbol       string
	Price        decimal.Decimal
	Volume       decimal.Decimal
	TakerSide    Side
	Taker        string
	Maker        string
	MakerOrderID uint64
}

// NewOrder is emitted when the unfilled remainder of an incoming order is
// rested on its book.
type NewOrder struct {
	Symbol string
	Side   Side
	ID     uint64
	Trader string
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// OrderCanceled is emitted when a resting order is cancelled and its
// collateral refunded.
type OrderCanceled struct {
	Symbol string
	Side   Side
	ID     uint64
	Trader string
}
