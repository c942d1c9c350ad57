package engine

import "github.com/shopspring/decimal"

// PlaceBuyOrder locks price*volume of quote as collateral, matches against
// the ask book and rests any remainder on the bid book. It returns the
// rested-order event (nil if fully filled) and the fills in execution order.
func (m *Market) PlaceBuyOrder(trader string, price, volume decimal.Decimal) (*NewOrder, []Trade, error) {
	return m.placeOrder(SideBuy, trader, price, volume)
}

// PlaceSellOrder locks volume of base as collateral, matches against the
// bid book and rests any remainder on the ask book.
func (m *Market) PlaceSellOrder(trader string, price, volume decimal.Decimal) (*NewOrder, []Trade, error) {
	return m.placeOrder(SideSell, trader, price, volume)
}

func (m *Market) placeOrder(side Side, trader string, price, volume decimal.Decimal) (*NewOrder, []Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !price.IsPositive() || !volume.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	// Collateral covers the full requested volume at the order's own limit
	// price, wherever it ultimately executes.
	if side == SideBuy {
		if err := m.ledger.debit(trader, m.cfg.QuoteAsset, price.Mul(volume)); err != nil {
			return nil, nil, err
		}
	} else {
		if err := m.ledger.debit(trader, m.cfg.BaseAsset, volume); err != nil {
			return nil, nil, err
		}
	}

	remaining := volume
	trades := m.matchOrder(side, trader, price, &remaining)

	var newOrder *NewOrder
	if remaining.IsPositive() {
		order := &Order{
			Side:   side,
			Price:  price,
			Volume: remaining,
			Trader: trader,
			Status: OrderStatusOpen,
		}
		m.store.add(order)
		m.sameBook(side).insert(order)

		newOrder = &NewOrder{
			Symbol: m.cfg.Symbol,
			Side:   side,
			ID:     order.ID,
			Trader: trader,
			Price:  price,
			Volume: remaining,
		}
	}

	if len(trades) > 0 {
		for _, cb := range m.callbacks {
			cb(trades)
		}
	}

	return newOrder, trades, nil
}

// matchOrder consumes the opposite book's head while it crosses the
// incoming price. Fills execute at the maker's price; a buy taker that
// locked collateral at a higher limit gets the difference refunded.
func (m *Market) matchOrder(side Side, trader string, price decimal.Decimal, remaining *decimal.Decimal) []Trade {
	var trades []Trade

	counterBook := m.counterBook(side)
	for remaining.IsPositive() {
		counterBook.skipDead()

		maker := counterBook.peekFront()
		if maker == nil || !m.crosses(side, price, maker.Price) {
			break
		}
		if m.cfg.MaxFillsPerOrder > 0 && len(trades) >= m.cfg.MaxFillsPerOrder {
			break
		}

		fill := decimal.Min(*remaining, maker.Volume)
		if side == SideBuy {
			m.ledger.credit(trader, m.cfg.BaseAsset, fill)
			m.ledger.credit(maker.Trader, m.cfg.QuoteAsset, fill.Mul(maker.Price))
			if refund := fill.Mul(price.Sub(maker.Price)); refund.IsPositive() {
				m.ledger.credit(trader, m.cfg.QuoteAsset, refund)
			}
		} else {
			m.ledger.credit(trader, m.cfg.QuoteAsset, fill.Mul(maker.Price))
			m.ledger.credit(maker.Trader, m.cfg.BaseAsset, fill)
		}

		maker.Volume = maker.Volume.Sub(fill)
		*remaining = remaining.Sub(fill)
		if maker.Volume.IsZero() {
			maker.Status = OrderStatusFilled
			counterBook.popFront()
		}

		trades = append(trades, Trade{
			Symbol:       m.cfg.Symbol,
			Price:        maker.Price,
			Volume:       fill,
			TakerSide:    side,
			Taker:        trader,
			Maker:        maker.Trader,
			MakerOrderID: maker.ID,
		})
	}

	return trades
}

func (m *Market) crosses(side Side, price, makerPrice decimal.Decimal) bool {
	if side == SideBuy {
		return makerPrice.LessThanOrEqual(price)
	}
	return makerPrice.GreaterThanOrEqual(price)
}

func (m *Market) sameBook(side Side) *orderBook {
	if side == SideBuy {
		return m.bidBook
	}
	return m.askBook
}

func (m *Market) counterBook(side Side) *orderBook {
	if side == SideBuy {
		return m.askBook
	}
	return m.bidBook
}
