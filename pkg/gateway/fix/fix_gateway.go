// Package fixgateway is the FIX 4.4 order-entry surface: NewOrderSingle
// and OrderCancelRequest in, ExecutionReports out. The Account field
// carries the trader identity. Custody movements (deposit/withdraw) are not
// FIX messages; they enter through the host application.
package fixgateway

import (
	"context"
	"sync"

	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/logging"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"
)

// ExchangeService is the part of the exchange the gateway drives.
type ExchangeService interface {
	AddOrder(ctx context.Context, addOrder *model.AddOrder) error
	CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error
}

type FixGatewayConfig struct {
	ConfigFilepath string `yaml:"config_filepath"`
}

type FixGateway struct {
	cfg      *FixGatewayConfig
	app      *Application
	exchange ExchangeService

	requestMapping sync.Map // ClOrdID -> *quickfix.SessionID
}

func NewFixGateway(cfg *FixGatewayConfig) *FixGateway {
	return &FixGateway{
		cfg: cfg,
	}
}

func (s *FixGateway) AddExchangeInstance(ex ExchangeService) {
	s.exchange = ex
}

func (s *FixGateway) Start(ctx context.Context) error {
	app, err := startApp(s.cfg.ConfigFilepath, s)
	if err != nil {
		zap.S().Errorf("start fix acceptor fail: %v", err)
		return err
	}
	s.app = app
	return nil
}

func (s *FixGateway) Stop() {
	if s.app != nil {
		stopApp(s.app)
	}
}

func (s *FixGateway) AddOrder(ctx context.Context, newOrderSingle *NewOrderSingle) {
	side := map[enum.Side]model.OrderSide{
		enum.Side_BUY:  model.OrderSideBuy,
		enum.Side_SELL: model.OrderSideSell,
	}[newOrderSingle.Side]

	s.addRequestToMap(newOrderSingle.ClOrdID, newOrderSingle.SessionID)

	ctx = logging.WithRequestID(ctx, newOrderSingle.ClOrdID)
	err := s.exchange.AddOrder(ctx, &model.AddOrder{
		GatewayID:    newOrderSingle.ClOrdID,
		Account:      newOrderSingle.Account,
		Symbol:       newOrderSingle.Symbol,
		Side:         side,
		Price:        newOrderSingle.Price,
		Quantity:     newOrderSingle.OrderQty,
		TransactTime: newOrderSingle.TransactTime,
	})
	if err != nil {
		zap.S().Warnf("add order clOrdID=%s fail: %v", newOrderSingle.ClOrdID, err)
	}
}

func (s *FixGateway) CancelOrder(ctx context.Context, orderCancelRequest *OrderCancelRequest) {
	s.addRequestToMap(orderCancelRequest.ClOrdID, orderCancelRequest.SessionID)

	ctx = logging.WithRequestID(ctx, orderCancelRequest.ClOrdID)
	err := s.exchange.CancelOrder(ctx, &model.CancelOrder{
		GatewayID:     orderCancelRequest.ClOrdID,
		OrigGatewayID: orderCancelRequest.OrigClOrdID,
	})
	if err != nil {
		zap.S().Warnf("cancel order clOrdID=%s fail: %v", orderCancelRequest.ClOrdID, err)
	}
}

// OnOrderReport sends an ExecutionReport for the order's current state to
// the session that placed it.
func (s *FixGateway) OnOrderReport(ctx context.Context, order model.Order) {
	sessionID, err := s.getRequestByClOrdID(order.GatewayID)
	if err != nil {
		zap.S().Warnf("report orderID=%s: session for clOrdID=%s not found", order.OrderID, order.GatewayID)
		return
	}

	go func() {
		if err := orderToExecutionReport(order, sessionID); err != nil {
			zap.S().Warnf("send execution report orderID=%s fail: %v", order.OrderID, err)
		}
	}()
}

func (s *FixGateway) addRequestToMap(clOrdID string, sessionID *quickfix.SessionID) {
	s.requestMapping.Store(clOrdID, sessionID)
}

func (s *FixGateway) getRequestByClOrdID(clOrdID string) (*quickfix.SessionID, error) {
	val, ok := s.requestMapping.Load(clOrdID)
	if !ok {
		return nil, errSessionNotFound
	}
	return val.(*quickfix.SessionID), nil
}
