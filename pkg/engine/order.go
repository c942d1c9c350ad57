package engine

import "github.com/shopspring/decimal"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "Open"
	OrderStatusFilled    OrderStatus = "Filled"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Order is owned by the order store and referenced by at most one book chain.
// Next links to the next order of the same book; 0 terminates the chain.
type Order struct {
	ID     uint64
	Side   Side
	Price  decimal.Decimal
	Volume decimal.Decimal
	Trader string
	Next   uint64
	Status OrderStatus
}

// orderStore is an append-only arena of orders keyed by a monotonically
// increasing id shared by both sides of the market.
type orderStore struct {
	orders map[uint64]*Order
	lastID uint64
}

func newOrderStore() *orderStore {
	return &orderStore{
		orders: make(map[uint64]*Order),
	}
}

func (s *orderStore) add(o *Order) uint64 {
	s.lastID++
	o.ID = s.lastID
	s.orders[o.ID] = o
	return o.ID
}

func (s *orderStore) get(id uint64) *Order {
	return s.orders[id]
}
