package exchange

import (
	"time"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

func (s *Exchange) addOrderToMap(order *model.Order) *orderState {
	state := &orderState{order: order}
	s.orderIDMapping.Store(order.OrderID, state)
	return state
}

func (s *Exchange) getOrderByOrderID(orderID string) (*orderState, error) {
	var state any
	var ok bool
	if state, ok = s.orderIDMapping.Load(orderID); !ok {
		return nil, errOrderIDNotFound
	}

	return state.(*orderState), nil
}

func (s *Exchange) deleteOrderByOrderID(orderID string) {
	s.orderIDMapping.Delete(orderID)
}

func (s *Exchange) startCleaner(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup drops closed orders from the in-memory maps so long-running
// instances do not grow without bound.
func (s *Exchange) cleanup() {
	s.orderIDMapping.Range(func(_, v any) bool {
		order := v.(*orderState).snapshot()
		if order.IsEnd() {
			s.deleteOrderByOrderID(order.OrderID)
			s.eventstore.DeleteChainByOrderID(order.OrderID)
			if order.EngineOrderID != 0 {
				s.engineIDMapping.Delete(engineKey{order.Symbol, order.EngineOrderID})
			}
		}
		return true
	})
}
