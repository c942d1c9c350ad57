package model

import "github.com/shopspring/decimal"

func (o *Order) UpdateAddOrder(addOrder *AddOrder) {
	o.GatewayID = addOrder.GatewayID
	o.Account = addOrder.Account
	o.Symbol = addOrder.Symbol
	o.Side = addOrder.Side
	o.Price = addOrder.Price
	o.Quantity = addOrder.Quantity
	o.TransactTime = addOrder.TransactTime
	o.Status = OrderStatusNew
	o.ExecType = ExecTypeNew
	o.LeavesQuantity = addOrder.Quantity
}

// ApplyFill moves qty from leaves to cum at the given execution price.
func (o *Order) ApplyFill(price, qty decimal.Decimal) {
	notional := o.AvgPrice.Mul(o.CumQuantity).Add(price.Mul(qty))
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.AvgPrice = notional.Div(o.CumQuantity)
	o.LeavesQuantity = o.Quantity.Sub(o.CumQuantity)
	o.LastQuantity = qty
	o.LastPrice = price
	o.ExecType = ExecTypeTrade
	if o.LeavesQuantity.IsPositive() {
		o.Status = OrderStatusPartiallyFilled
	} else {
		o.Status = OrderStatusFilled
	}
}

func (o *Order) ApplyCancel() {
	o.LeavesQuantity = decimal.Zero
	o.Status = OrderStatusCanceled
	o.ExecType = ExecTypeCanceled
}

func (o *Order) ApplyReject() {
	o.LeavesQuantity = decimal.Zero
	o.Status = OrderStatusRejected
	o.ExecType = ExecTypeRejected
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusNew || o.Status == OrderStatusPartiallyFilled
}

// IsEnd reports whether the order can no longer change.
func (o *Order) IsEnd() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected:
		return true
	}
	return false
}
