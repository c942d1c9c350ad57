package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joripage/exchange-core/pkg/engine"
	eventstore "github.com/joripage/exchange-core/pkg/exchange/event_store"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/feed"
	"github.com/joripage/exchange-core/pkg/logging"
	"github.com/shopspring/decimal"
)

type Config struct {
	Markets []*engine.MarketConfig `yaml:"markets"`

	// CleanInterval is how often closed orders are dropped from the
	// in-memory maps. 0 disables the cleaner.
	CleanInterval time.Duration `yaml:"clean_interval"`
}

// FeedPublisher publishes order events, trades and balance changes for
// downstream consumers (persistence worker, market data).
type FeedPublisher interface {
	PublishJSON(ctx context.Context, topic string, key string, v any, headers map[string]string) error
}

// Exchange maps gateway requests onto the matching engine, keeps per-order
// execution state, journals every event and reports executions back through
// the order gateway.
type Exchange struct {
	cfg           *Config
	orderGateway  OrderGateway
	marketManager *engine.MarketManager
	eventstore    eventstore.EventStore
	publisher     FeedPublisher

	orderIDMapping  sync.Map // OrderID -> *orderState
	engineIDMapping sync.Map // engineKey -> OrderID

	stopCh chan struct{}
}

type engineKey struct {
	symbol string
	id     uint64
}

// orderState guards the mutable execution state of one order. The engine
// serializes matching per market, but fills for the same maker arrive from
// concurrent taker placements, so every read or mutation of the shared
// model.Order goes through the lock.
type orderState struct {
	order *model.Order

	mu sync.Mutex
}

func (s *orderState) snapshot() model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.order
}

func (s *orderState) update(fn func(*model.Order)) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.order)
	return *s.order
}

func NewExchange(cfg *Config, orderGateway OrderGateway, custody engine.Transferor) *Exchange {
	marketManager := engine.NewMarketManager(custody)
	for _, marketCfg := range cfg.Markets {
		marketManager.AddMarket(marketCfg)
	}

	return &Exchange{
		cfg:           cfg,
		orderGateway:  orderGateway,
		marketManager: marketManager,
		eventstore:    eventstore.NewInMemoryEventStore(),
		stopCh:        make(chan struct{}),
	}
}

func (s *Exchange) SetFeedPublisher(publisher FeedPublisher) {
	s.publisher = publisher
}

// MarketManager exposes the engine for read-side consumers (market data,
// benchmarks).
func (s *Exchange) MarketManager() *engine.MarketManager {
	return s.marketManager
}

func (s *Exchange) Start(ctx context.Context) error {
	if s.cfg.CleanInterval > 0 {
		go s.startCleaner(s.cfg.CleanInterval)
	}
	return s.orderGateway.Start(ctx)
}

func (s *Exchange) Stop() {
	close(s.stopCh)
}

func (s *Exchange) AddOrder(ctx context.Context, addOrder *model.AddOrder) error {
	if s.eventstore.GetOrderID(addOrder.GatewayID) != "" {
		return errDuplicateOrder
	}

	order := &model.Order{OrderID: uuid.NewString()}
	order.UpdateAddOrder(addOrder)

	market, err := s.marketManager.Market(order.Symbol)
	if err != nil {
		s.rejectOrder(ctx, order)
		return err
	}

	var rested *engine.NewOrder
	var trades []engine.Trade
	if order.Side == model.OrderSideBuy {
		rested, trades, err = market.PlaceBuyOrder(order.Account, order.Price, order.Quantity)
	} else {
		rested, trades, err = market.PlaceSellOrder(order.Account, order.Price, order.Quantity)
	}
	if err != nil {
		s.rejectOrder(ctx, order)
		return err
	}

	if rested != nil {
		order.EngineOrderID = rested.ID
	}
	state := s.addOrderToMap(order)
	if rested != nil {
		s.engineIDMapping.Store(engineKey{order.Symbol, rested.ID}, order.OrderID)
	}

	s.reportOrder(ctx, state.snapshot())
	s.processTrades(ctx, state, trades)

	return nil
}

func (s *Exchange) CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error {
	orderID := s.eventstore.GetOrderID(cancelOrder.OrigGatewayID)
	state, err := s.getOrderByOrderID(orderID)
	if err != nil {
		return errGatewayIDNotFound
	}

	// tie the cancel's gateway id to the order chain up front so later
	// lookups resolve it even when the cancel is rejected
	s.eventstore.TrackGatewayID(orderID, cancelOrder.GatewayID)

	order := state.snapshot()
	if !order.CanCancel() {
		return errInvalidOrderStatus
	}

	market, err := s.marketManager.Market(order.Symbol)
	if err != nil {
		return err
	}
	if _, err := market.CancelOrder(order.Account, engine.Side(order.Side), order.EngineOrderID); err != nil {
		return err
	}

	order = state.update(func(o *model.Order) {
		o.OrigGatewayID = cancelOrder.OrigGatewayID
		o.GatewayID = cancelOrder.GatewayID
		o.ApplyCancel()
	})
	s.reportOrder(ctx, order)

	return nil
}

// Deposit credits a trader's free balance on the given market after the
// custody transfer succeeds.
func (s *Exchange) Deposit(ctx context.Context, deposit *model.DepositFunds) error {
	market, err := s.marketManager.Market(deposit.Symbol)
	if err != nil {
		return err
	}
	if err := market.Deposit(ctx, deposit.Account, deposit.Asset, deposit.Amount); err != nil {
		return err
	}

	s.publishBalanceChange(ctx, deposit.Symbol, deposit.Account, deposit.Asset, deposit.Amount, model.BalanceChangeDeposit)
	return nil
}

func (s *Exchange) Withdraw(ctx context.Context, withdraw *model.WithdrawFunds) error {
	market, err := s.marketManager.Market(withdraw.Symbol)
	if err != nil {
		return err
	}
	if err := market.Withdraw(ctx, withdraw.Account, withdraw.Asset, withdraw.Amount); err != nil {
		return err
	}

	s.publishBalanceChange(ctx, withdraw.Symbol, withdraw.Account, withdraw.Asset, withdraw.Amount, model.BalanceChangeWithdraw)
	return nil
}

func (s *Exchange) processTrades(ctx context.Context, taker *orderState, trades []engine.Trade) {
	for _, trade := range trades {
		snap := taker.update(func(o *model.Order) {
			o.ApplyFill(trade.Price, trade.Volume)
		})
		s.reportOrder(ctx, snap)

		makerID, ok := s.engineIDMapping.Load(engineKey{trade.Symbol, trade.MakerOrderID})
		if ok {
			maker, err := s.getOrderByOrderID(makerID.(string))
			if err == nil {
				snap := maker.update(func(o *model.Order) {
					o.ApplyFill(trade.Price, trade.Volume)
				})
				s.reportOrder(ctx, snap)
			} else {
				logging.S(ctx).Warnf("maker orderID=%v not found", makerID)
			}
		}

		s.publishTrade(ctx, trade)
	}
}

func (s *Exchange) rejectOrder(ctx context.Context, order *model.Order) {
	order.ApplyReject()
	s.reportOrder(ctx, *order)
}

// reportOrder journals an order snapshot and sends an execution report
// through the gateway.
func (s *Exchange) reportOrder(ctx context.Context, order model.Order) {
	ev := model.NewOrderEvent(order, time.Now())
	s.eventstore.AddEvent(ev)
	s.orderGateway.OnOrderReport(ctx, order)

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(ctx, feed.TopicOrderEvents, ev.OrderID, ev, nil); err != nil {
			logging.S(ctx).Warnf("publish order event fail: %v", err)
		}
	}
}

func (s *Exchange) publishTrade(ctx context.Context, trade engine.Trade) {
	if s.publisher == nil {
		return
	}
	record := &model.Trade{
		Symbol:       trade.Symbol,
		Price:        trade.Price,
		Volume:       trade.Volume,
		TakerSide:    model.OrderSide(trade.TakerSide),
		TakerAccount: trade.Taker,
		MakerAccount: trade.Maker,
		MakerOrderID: trade.MakerOrderID,
		ExecutedAt:   time.Now(),
	}
	if err := s.publisher.PublishJSON(ctx, feed.TopicTrades, trade.Symbol, record, nil); err != nil {
		logging.S(ctx).Warnf("publish trade fail: %v", err)
	}
}

func (s *Exchange) publishBalanceChange(ctx context.Context, symbol, account, asset string, amount decimal.Decimal, reason model.BalanceChangeReason) {
	if s.publisher == nil {
		return
	}
	record := &model.BalanceChange{
		Symbol:    symbol,
		Account:   account,
		Asset:     asset,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.PublishJSON(ctx, feed.TopicBalanceChanges, account, record, nil); err != nil {
		logging.S(ctx).Warnf("publish balance change fail: %v", err)
	}
}
