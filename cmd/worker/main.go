package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	"github.com/joripage/exchange-core/pkg/logging"
	"github.com/joripage/exchange-core/pkg/worker"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.ExchangeDB)
	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo)

	consumerCfg := cfg.Feed.Consumer
	go func() {
		if err := w.StartOrderEventConsumer(ctx, consumerCfg); err != nil && ctx.Err() == nil {
			zap.S().Errorf("order event consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := w.StartTradeConsumer(ctx, consumerCfg); err != nil && ctx.Err() == nil {
			zap.S().Errorf("trade consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := w.StartBalanceChangeConsumer(ctx, consumerCfg); err != nil && ctx.Err() == nil {
			zap.S().Errorf("balance change consumer stopped: %v", err)
		}
	}()

	<-sigs
	zap.S().Info("shutting down...")
	cancel()
}
