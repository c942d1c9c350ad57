package fixgateway

import (
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
)

var (
	orderStatusMapping = map[model.OrderStatus]enum.OrdStatus{
		model.OrderStatusNew:             enum.OrdStatus_NEW,
		model.OrderStatusPartiallyFilled: enum.OrdStatus_PARTIALLY_FILLED,
		model.OrderStatusFilled:          enum.OrdStatus_FILLED,
		model.OrderStatusCanceled:        enum.OrdStatus_CANCELED,
		model.OrderStatusRejected:        enum.OrdStatus_REJECTED,
	}

	execTypeMapping = map[model.OrderExecType]enum.ExecType{
		model.ExecTypeNew:      enum.ExecType_NEW,
		model.ExecTypeTrade:    enum.ExecType_TRADE,
		model.ExecTypeCanceled: enum.ExecType_CANCELED,
		model.ExecTypeRejected: enum.ExecType_REJECTED,
	}

	sideMapping = map[model.OrderSide]enum.Side{
		model.OrderSideBuy:  enum.Side_BUY,
		model.OrderSideSell: enum.Side_SELL,
	}
)

func orderToExecutionReport(order model.Order, sessionID *quickfix.SessionID) error {
	return quickfix.SendToTarget(buildExecutionReport(order), *sessionID)
}

func buildExecutionReport(order model.Order) executionreport.ExecutionReport {
	execReportMsg := executionreport.New(
		field.NewOrderID(order.OrderID),
		field.NewExecID(model.NewEventID(order.OrderID, order.Status, order.CumQuantity)),
		field.NewExecType(execTypeMapping[order.ExecType]),
		field.NewOrdStatus(orderStatusMapping[order.Status]),
		field.NewSide(sideMapping[order.Side]),
		field.NewLeavesQty(order.LeavesQuantity, 2),
		field.NewCumQty(order.CumQuantity, 2),
		field.NewAvgPx(order.AvgPrice, 2),
	)

	execReportMsg.SetClOrdID(order.GatewayID)
	if order.OrigGatewayID != "" {
		execReportMsg.SetOrigClOrdID(order.OrigGatewayID)
	}
	execReportMsg.SetAccount(order.Account)
	execReportMsg.SetSymbol(order.Symbol)
	execReportMsg.SetOrderQty(order.Quantity, 0)
	execReportMsg.SetPrice(order.Price, 0)
	execReportMsg.SetTransactTime(order.TransactTime)
	execReportMsg.SetLastQty(order.LastQuantity, 0)
	execReportMsg.SetLastPx(order.LastPrice, 0)

	return execReportMsg
}
