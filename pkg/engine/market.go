package engine

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Transferor moves value between a trader and market custody. It is the
// external boundary of deposit and withdraw; the engine only observes
// whether the transfer succeeded.
type Transferor interface {
	TransferIn(ctx context.Context, trader, asset string, amount decimal.Decimal) error
	TransferOut(ctx context.Context, trader, asset string, amount decimal.Decimal) error
}

type MarketConfig struct {
	Symbol     string `yaml:"symbol"`
	BaseAsset  string `yaml:"base_asset"`
	QuoteAsset string `yaml:"quote_asset"`

	// MaxFillsPerOrder caps the number of maker orders one incoming order
	// may consume in a single call. 0 means no cap. If the cap is hit the
	// remainder is rested even though it still crosses; the next incoming
	// order clears it.
	MaxFillsPerOrder int `yaml:"max_fills_per_order"`
}

// Market is the whole engine for one trading pair: balance ledger, order
// store, both books. Every public operation takes the market lock and runs
// to completion, so operations never interleave.
type Market struct {
	cfg       *MarketConfig
	custody   Transferor
	ledger    *ledger
	store     *orderStore
	bidBook   *orderBook
	askBook   *orderBook
	callbacks []func([]Trade)

	mu sync.Mutex
}

func NewMarket(cfg *MarketConfig, custody Transferor) *Market {
	store := newOrderStore()
	return &Market{
		cfg:     cfg,
		custody: custody,
		ledger:  newLedger(),
		store:   store,
		bidBook: newOrderBook(SideBuy, store),
		askBook: newOrderBook(SideSell, store),
	}
}

func (m *Market) Symbol() string {
	return m.cfg.Symbol
}

func (m *Market) RegisterTradeCallback(fn func([]Trade)) {
	m.callbacks = append(m.callbacks, fn)
}

// Deposit pulls amount from the trader into custody and credits the free
// balance. If the custody transfer fails no ledger mutation is observable.
func (m *Market) Deposit(ctx context.Context, trader, asset string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if asset != m.cfg.BaseAsset && asset != m.cfg.QuoteAsset {
		return ErrInvalidAsset
	}

	if err := m.custody.TransferIn(ctx, trader, asset, amount); err != nil {
		return err
	}
	m.ledger.credit(trader, asset, amount)

	return nil
}

// Withdraw debits the free balance and releases amount from custody back to
// the trader. Collateral locked in open orders is already outside the free
// balance, so it can never be withdrawn. A failed custody transfer rolls the
// debit back.
func (m *Market) Withdraw(ctx context.Context, trader, asset string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if asset != m.cfg.BaseAsset && asset != m.cfg.QuoteAsset {
		return ErrInvalidAsset
	}

	if err := m.ledger.debit(trader, asset, amount); err != nil {
		return err
	}
	if err := m.custody.TransferOut(ctx, trader, asset, amount); err != nil {
		m.ledger.credit(trader, asset, amount)
		return err
	}

	return nil
}

func (m *Market) BalanceOf(trader, asset string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ledger.balanceOf(trader, asset)
}

// CancelOrder refunds the residual collateral of an open order and marks it
// cancelled. The node stays linked in its book chain; matching skips dead
// heads, so no re-splice is needed.
func (m *Market) CancelOrder(trader string, side Side, id uint64) (*OrderCanceled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.store.get(id)
	if order == nil || order.Side != side {
		return nil, ErrOrderNotFound
	}
	if order.Trader != trader {
		return nil, ErrNotOrderOwner
	}
	if order.Status != OrderStatusOpen {
		return nil, ErrOrderAlreadyClosed
	}

	refund := order.Volume
	asset := m.cfg.BaseAsset
	if order.Side == SideBuy {
		refund = order.Price.Mul(order.Volume)
		asset = m.cfg.QuoteAsset
	}
	m.ledger.credit(order.Trader, asset, refund)

	order.Status = OrderStatusCancelled
	order.Volume = decimal.Zero

	return &OrderCanceled{
		Symbol: m.cfg.Symbol,
		Side:   order.Side,
		ID:     order.ID,
		Trader: order.Trader,
	}, nil
}

// BuyOrder returns a copy of a buy order by id.
func (m *Market) BuyOrder(id uint64) (Order, bool) {
	return m.orderBySide(SideBuy, id)
}

// SellOrder returns a copy of a sell order by id.
func (m *Market) SellOrder(id uint64) (Order, bool) {
	return m.orderBySide(SideSell, id)
}

func (m *Market) orderBySide(side Side, id uint64) (Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.store.get(id)
	if order == nil || order.Side != side {
		return Order{}, false
	}
	return *order, true
}

// FirstBuyOrderID returns the bid book head, 0 if empty.
func (m *Market) FirstBuyOrderID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bidBook.head
}

// FirstSellOrderID returns the ask book head, 0 if empty.
func (m *Market) FirstSellOrderID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.askBook.head
}

// CurrentOrderID returns the last assigned order id.
func (m *Market) CurrentOrderID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.lastID
}
