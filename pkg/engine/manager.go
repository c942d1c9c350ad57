package engine

import "sync"

// MarketManager holds one Market per symbol. Markets are fully independent:
// each serializes its own operations, different markets run in parallel.
type MarketManager struct {
	markets   sync.Map
	custody   Transferor
	callbacks []func([]Trade)
}

func NewMarketManager(custody Transferor) *MarketManager {
	return &MarketManager{
		custody: custody,
	}
}

// AddMarket creates and registers a market for cfg.Symbol.
func (s *MarketManager) AddMarket(cfg *MarketConfig) *Market {
	market := NewMarket(cfg, s.custody)
	for _, cb := range s.callbacks {
		market.RegisterTradeCallback(cb)
	}

	actual, _ := s.markets.LoadOrStore(cfg.Symbol, market)
	return actual.(*Market)
}

func (s *MarketManager) Market(symbol string) (*Market, error) {
	if val, ok := s.markets.Load(symbol); ok {
		return val.(*Market), nil
	}
	return nil, ErrMarketNotFound
}

func (s *MarketManager) RegisterTradeCallback(cb func([]Trade)) {
	s.callbacks = append(s.callbacks, cb)

	// apply callback to all markets
	s.markets.Range(func(_, v any) bool {
		v.(*Market).RegisterTradeCallback(cb)
		return true
	})
}
