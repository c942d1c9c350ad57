package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is one execution-report-shaped entry in the order's event
// journal. It is also the feed payload the persistence worker consumes.
type OrderEvent struct {
	EventID       string          `json:"event_id" gorm:"primaryKey"`
	OrderID       string          `json:"order_id"`
	GatewayID     string          `json:"gateway_id"`
	OrigGatewayID string          `json:"orig_gateway_id"`
	Symbol        string          `json:"symbol"`
	Account       string          `json:"account"`
	Side          OrderSide       `json:"side"`
	ExecType      OrderExecType   `json:"exec_type"`
	Status        OrderStatus     `json:"status"`
	Price         decimal.Decimal `json:"price"`
	LastQuantity  decimal.Decimal `json:"last_quantity"`
	LastPrice     decimal.Decimal `json:"last_price"`
	CumQuantity   decimal.Decimal `json:"cum_quantity"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (OrderEvent) TableName() string {
	return "order_events"
}

func NewOrderEvent(order Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:       NewEventID(order.OrderID, order.Status, order.CumQuantity),
		OrderID:       order.OrderID,
		GatewayID:     order.GatewayID,
		OrigGatewayID: order.OrigGatewayID,
		Symbol:        order.Symbol,
		Account:       order.Account,
		Side:          order.Side,
		ExecType:      order.ExecType,
		Status:        order.Status,
		Price:         order.Price,
		LastQuantity:  order.LastQuantity,
		LastPrice:     order.LastPrice,
		CumQuantity:   order.CumQuantity,
		Timestamp:     ts,
	}
}

func NewEventID(orderID string, status OrderStatus, cumQty decimal.Decimal) string {
	return fmt.Sprintf("%s-%s-%s", orderID, status, cumQty)
}
