package eventstore

import (
	"sync"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type InMemoryEventStore struct {
	mu        sync.RWMutex
	events    map[string][]*model.OrderEvent
	orderID   map[string]string   // GatewayID -> OrderID
	gatewayID map[string][]string // OrderID -> GatewayIDs
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events:    make(map[string][]*model.OrderEvent),
		orderID:   make(map[string]string),
		gatewayID: make(map[string][]string),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
	s.trackGatewayID(ev.OrderID, ev.GatewayID)
}

func (s *InMemoryEventStore) TrackGatewayID(orderID, gatewayID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trackGatewayID(orderID, gatewayID)
}

func (s *InMemoryEventStore) trackGatewayID(orderID, gatewayID string) {
	if gatewayID == "" {
		return
	}
	if _, ok := s.orderID[gatewayID]; !ok {
		s.gatewayID[orderID] = append(s.gatewayID[orderID], gatewayID)
	}
	s.orderID[gatewayID] = orderID
}

// GetOrderID resolves a gateway (client) order id to the exchange order id,
// "" if unknown.
func (s *InMemoryEventStore) GetOrderID(gatewayID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.orderID[gatewayID]
}

func (s *InMemoryEventStore) EventsByOrderID(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*model.OrderEvent, len(s.events[orderID]))
	copy(events, s.events[orderID])
	return events
}

// DeleteChainByOrderID drops the journal and gateway-id chain of a closed
// order.
func (s *InMemoryEventStore) DeleteChainByOrderID(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, gatewayID := range s.gatewayID[orderID] {
		delete(s.orderID, gatewayID)
	}
	delete(s.gatewayID, orderID)
	delete(s.events, orderID)
}
