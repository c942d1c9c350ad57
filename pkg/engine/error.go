package engine

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAsset        = errors.New("invalid asset")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("not order owner")
	ErrOrderAlreadyClosed  = errors.New("order already closed")
	ErrMarketNotFound      = errors.New("market not found")
)
