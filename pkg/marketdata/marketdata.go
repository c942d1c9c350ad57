// Package marketdata keeps per-symbol top-of-book and recent-trade state
// and mirrors it into Redis for read-side consumers.
package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/joripage/exchange-core/pkg/engine"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "marketdata:"

type PublisherConfig struct {
	// TradeWindow is how many recent trades to keep per symbol.
	TradeWindow int `yaml:"trade_window"`

	// RefreshInterval is how often top-of-book is re-read from the engine.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type Publisher struct {
	cfg     *PublisherConfig
	manager *engine.MarketManager
	redis   *redis.Client
	symbols []string

	recent    map[string]*deque.Deque[engine.Trade]
	lastTrade map[string]engine.Trade
	pending   map[string]bool

	mu sync.Mutex
}

func NewPublisher(cfg *PublisherConfig, manager *engine.MarketManager, redisClient *redis.Client, symbols []string) *Publisher {
	if cfg.TradeWindow == 0 {
		cfg.TradeWindow = 100
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = time.Second
	}

	return &Publisher{
		cfg:       cfg,
		manager:   manager,
		redis:     redisClient,
		symbols:   symbols,
		recent:    make(map[string]*deque.Deque[engine.Trade]),
		lastTrade: make(map[string]engine.Trade),
		pending:   make(map[string]bool),
	}
}

// Start registers the trade callback and runs the publisher goroutine until
// ctx is cancelled. The callback runs inside the market lock, so it only
// buffers in memory; every engine read and every Redis write happens on the
// publisher goroutine.
func (p *Publisher) Start(ctx context.Context) {
	p.manager.RegisterTradeCallback(p.onTrades)

	go func() {
		ticker := time.NewTicker(p.cfg.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.publishLastTrades(ctx)
				p.refreshTopOfBook(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *Publisher) onTrades(trades []engine.Trade) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, trade := range trades {
		q := p.recent[trade.Symbol]
		if q == nil {
			q = &deque.Deque[engine.Trade]{}
			p.recent[trade.Symbol] = q
		}
		q.PushBack(trade)
		for q.Len() > p.cfg.TradeWindow {
			q.PopFront()
		}

		p.lastTrade[trade.Symbol] = trade
		p.pending[trade.Symbol] = true
	}
}

// publishLastTrades flushes the last trade of every symbol that traded since
// the previous flush.
func (p *Publisher) publishLastTrades(ctx context.Context) {
	if p.redis == nil {
		return
	}

	p.mu.Lock()
	flush := make(map[string]engine.Trade, len(p.pending))
	for symbol := range p.pending {
		flush[symbol] = p.lastTrade[symbol]
	}
	p.pending = make(map[string]bool)
	p.mu.Unlock()

	for symbol, trade := range flush {
		err := p.redis.HSet(ctx, keyPrefix+symbol,
			"last_price", trade.Price.String(),
			"last_volume", trade.Volume.String(),
			"last_trade_at", time.Now().Format(time.RFC3339Nano),
		).Err()
		if err != nil {
			zap.S().Warnf("publish last trade fail: %v", err)
		}
	}
}

// RecentTrades returns up to TradeWindow most recent trades for a symbol.
func (p *Publisher) RecentTrades(symbol string) []engine.Trade {
	p.mu.Lock()
	defer p.mu.Unlock()

	q := p.recent[symbol]
	if q == nil {
		return nil
	}
	trades := make([]engine.Trade, q.Len())
	for i := 0; i < q.Len(); i++ {
		trades[i] = q.At(i)
	}
	return trades
}

func (p *Publisher) refreshTopOfBook(ctx context.Context) {
	if p.redis == nil {
		return
	}
	for _, symbol := range p.symbols {
		market, err := p.manager.Market(symbol)
		if err != nil {
			continue
		}

		bestBid, bestAsk := "", ""
		if bid, ok := market.BuyOrder(market.FirstBuyOrderID()); ok && bid.Status == engine.OrderStatusOpen {
			bestBid = bid.Price.String()
		}
		if ask, ok := market.SellOrder(market.FirstSellOrderID()); ok && ask.Status == engine.OrderStatusOpen {
			bestAsk = ask.Price.String()
		}

		err = p.redis.HSet(ctx, keyPrefix+symbol,
			"best_bid", bestBid,
			"best_ask", bestAsk,
			"updated_at", time.Now().Format(time.RFC3339Nano),
		).Err()
		if err != nil {
			zap.S().Warnf("publish top of book fail: %v", err)
		}
	}
}
