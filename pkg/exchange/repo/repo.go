package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	OrderEvent() IOrderEvent
	Trade() ITrade
	BalanceChange() IBalanceChange
}

type Repo struct {
	exchangeDB *gorm.DB
}

func NewRepo(exchangeDB *gorm.DB) IRepo {
	return &Repo{
		exchangeDB: exchangeDB,
	}
}

func (r *Repo) OrderEvent() IOrderEvent {
	return NewOrderEventSQLRepo(r.exchangeDB)
}

func (r *Repo) Trade() ITrade {
	return NewTradeSQLRepo(r.exchangeDB)
}

func (r *Repo) BalanceChange() IBalanceChange {
	return NewBalanceChangeSQLRepo(r.exchangeDB)
}
