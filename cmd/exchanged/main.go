package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/custody"
	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/feed"
	fixgateway "github.com/joripage/exchange-core/pkg/gateway/fix"
	redis_wrapper "github.com/joripage/exchange-core/pkg/infra/redis"
	"github.com/joripage/exchange-core/pkg/logging"
	"github.com/joripage/exchange-core/pkg/marketdata"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fixGateway := fixgateway.NewFixGateway(cfg.FixGateway)

	vault := custody.NewVault()
	ex := exchange.NewExchange(cfg.Exchange, fixGateway, vault)
	fixGateway.AddExchangeInstance(ex)

	if cfg.Feed != nil && len(cfg.Feed.Producer.Brokers) > 0 {
		producer := feed.NewProducer(cfg.Feed.Producer)
		defer producer.Close(context.Background()) // nolint
		ex.SetFeedPublisher(producer)
	}

	if cfg.Redis != nil && cfg.MarketData != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Errorf("init redis fail: %v", err)
			panic(err)
		}

		symbols := make([]string, 0, len(cfg.Exchange.Markets))
		for _, market := range cfg.Exchange.Markets {
			symbols = append(symbols, market.Symbol)
		}
		publisher := marketdata.NewPublisher(cfg.MarketData, ex.MarketManager(), redisClient, symbols)
		publisher.Start(ctx)
	}

	if err := ex.Start(ctx); err != nil {
		zap.S().Errorf("start exchange fail: %v", err)
		panic(err)
	}
	fmt.Println("Exchange started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	ex.Stop()
	fixGateway.Stop()
	cancel()

	fmt.Println("Exited cleanly.")
}
