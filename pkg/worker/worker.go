// Package worker persists the exchange event feed to Postgres.
package worker

import (
	"context"
	"encoding/json"

	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	"github.com/joripage/exchange-core/pkg/feed"
	"go.uber.org/zap"
)

type Worker struct {
	orderEvent    repo.IOrderEvent
	trade         repo.ITrade
	balanceChange repo.IBalanceChange
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		orderEvent:    repo.OrderEvent(),
		trade:         repo.Trade(),
		balanceChange: repo.BalanceChange(),
	}
}

// StartOrderEventConsumer consumes the order-event topic in batches and
// bulk-inserts them. Blocks until ctx is cancelled.
func (w *Worker) StartOrderEventConsumer(ctx context.Context, cfg feed.ConsumerConfig) error {
	cfg.Topic = feed.TopicOrderEvents
	cg, err := feed.NewConsumerGroup(cfg)
	if err != nil {
		return err
	}
	defer cg.Close()

	return cg.Run(ctx, func(ctx context.Context, msgs []feed.Message) error {
		records := make([]*model.OrderEvent, 0, len(msgs))
		for _, msg := range msgs {
			var ev model.OrderEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				zap.S().Warnf("unmarshal order event fail: %v", err)
				continue
			}
			records = append(records, &ev)
		}
		if len(records) == 0 {
			return nil
		}
		_, err := w.orderEvent.BulkCreate(ctx, records)
		return err
	})
}

func (w *Worker) StartTradeConsumer(ctx context.Context, cfg feed.ConsumerConfig) error {
	cfg.Topic = feed.TopicTrades
	cg, err := feed.NewConsumerGroup(cfg)
	if err != nil {
		return err
	}
	defer cg.Close()

	return cg.Run(ctx, func(ctx context.Context, msgs []feed.Message) error {
		records := make([]*model.Trade, 0, len(msgs))
		for _, msg := range msgs {
			var trade model.Trade
			if err := json.Unmarshal(msg.Value, &trade); err != nil {
				zap.S().Warnf("unmarshal trade fail: %v", err)
				continue
			}
			records = append(records, &trade)
		}
		if len(records) == 0 {
			return nil
		}
		_, err := w.trade.BulkCreate(ctx, records)
		return err
	})
}

func (w *Worker) StartBalanceChangeConsumer(ctx context.Context, cfg feed.ConsumerConfig) error {
	cfg.Topic = feed.TopicBalanceChanges
	cg, err := feed.NewConsumerGroup(cfg)
	if err != nil {
		return err
	}
	defer cg.Close()

	return cg.Run(ctx, func(ctx context.Context, msgs []feed.Message) error {
		for _, msg := range msgs {
			var change model.BalanceChange
			if err := json.Unmarshal(msg.Value, &change); err != nil {
				zap.S().Warnf("unmarshal balance change fail: %v", err)
				continue
			}
			if _, err := w.balanceChange.Create(ctx, &change); err != nil {
				return err
			}
		}
		return nil
	})
}
