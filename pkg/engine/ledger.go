package engine

import "github.com/shopspring/decimal"

type balanceKey struct {
	trader string
	asset  string
}

// ledger tracks free (unlocked) balances only. Collateral of open orders is
// debited here at placement time and credited back on cancel or fill.
type ledger struct {
	balances map[balanceKey]decimal.Decimal
}

func newLedger() *ledger {
	return &ledger{
		balances: make(map[balanceKey]decimal.Decimal),
	}
}

func (l *ledger) balanceOf(trader, asset string) decimal.Decimal {
	return l.balances[balanceKey{trader, asset}]
}

func (l *ledger) credit(trader, asset string, amount decimal.Decimal) {
	key := balanceKey{trader, asset}
	l.balances[key] = l.balances[key].Add(amount)
}

func (l *ledger) debit(trader, asset string, amount decimal.Decimal) error {
	key := balanceKey{trader, asset}
	if amount.GreaterThan(l.balances[key]) {
		return ErrInsufficientBalance
	}
	l.balances[key] = l.balances[key].Sub(amount)
	return nil
}
