package eventstore

import "github.com/joripage/exchange-core/pkg/exchange/model"

type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	TrackGatewayID(orderID, gatewayID string)
	GetOrderID(gatewayID string) string
	EventsByOrderID(orderID string) []*model.OrderEvent
	DeleteChainByOrderID(orderID string)
}
