// Package custody implements the asset-custody boundary of the engine:
// moving value between a trader's external holdings and market custody.
package custody

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrTransferFailed = errors.New("custody transfer failed")

type holdingKey struct {
	holder string
	asset  string
}

// Vault is an in-memory custody backend tracking each holder's external
// funds. TransferIn pulls funds from the holder into custody, TransferOut
// releases them back.
type Vault struct {
	holdings map[holdingKey]decimal.Decimal

	mu sync.Mutex
}

func NewVault() *Vault {
	return &Vault{
		holdings: make(map[holdingKey]decimal.Decimal),
	}
}

// Fund seeds a holder's external balance.
func (v *Vault) Fund(holder, asset string, amount decimal.Decimal) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := holdingKey{holder, asset}
	v.holdings[key] = v.holdings[key].Add(amount)
}

// Holdings returns a holder's external balance.
func (v *Vault) Holdings(holder, asset string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.holdings[holdingKey{holder, asset}]
}

func (v *Vault) TransferIn(ctx context.Context, trader, asset string, amount decimal.Decimal) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := holdingKey{trader, asset}
	if amount.GreaterThan(v.holdings[key]) {
		return ErrTransferFailed
	}
	v.holdings[key] = v.holdings[key].Sub(amount)
	return nil
}

func (v *Vault) TransferOut(ctx context.Context, trader, asset string, amount decimal.Decimal) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := holdingKey{trader, asset}
	v.holdings[key] = v.holdings[key].Add(amount)
	return nil
}
