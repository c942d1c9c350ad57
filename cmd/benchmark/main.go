package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/exchange-core/pkg/custody"
	"github.com/joripage/exchange-core/pkg/engine"
	"github.com/shopspring/decimal"
)

const (
	numOrders  = 1_000_000
	numTraders = 100
	minPrice   = 100
	maxPrice   = 200
	minQty     = 1
	maxQty     = 100
)

func main() {
	ctx := context.Background()

	vault := custody.NewVault()
	manager := engine.NewMarketManager(vault)
	market := manager.AddMarket(&engine.MarketConfig{
		Symbol:     "ABC/USD",
		BaseAsset:  "ABC",
		QuoteAsset: "USD",
	})

	totalMatched := 0
	totalQty := decimal.Zero
	manager.RegisterTradeCallback(func(trades []engine.Trade) {
		for _, trade := range trades {
			totalMatched++
			totalQty = totalQty.Add(trade.Volume)
			if totalMatched <= 5 {
				fmt.Printf("match: %s %s @ %s qty %s\n",
					trade.Taker, trade.Maker, trade.Price, trade.Volume)
			}
		}
	})

	// seed traders with enough balance that no order is rejected
	quoteSeed := decimal.NewFromInt(int64(numOrders) * maxPrice * maxQty)
	baseSeed := decimal.NewFromInt(int64(numOrders) * maxQty)
	traders := make([]string, numTraders)
	for i := range traders {
		traders[i] = fmt.Sprintf("T%03d", i)
		vault.Fund(traders[i], "USD", quoteSeed)
		vault.Fund(traders[i], "ABC", baseSeed)
		market.Deposit(ctx, traders[i], "USD", quoteSeed) // nolint
		market.Deposit(ctx, traders[i], "ABC", baseSeed)  // nolint
	}

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		trader := traders[rand.Intn(numTraders)]
		price := decimal.NewFromInt(int64(rand.Intn(maxPrice-minPrice+1) + minPrice))
		qty := decimal.NewFromInt(int64(rand.Intn(maxQty-minQty+1) + minQty))

		if rand.Intn(2) == 0 {
			market.PlaceBuyOrder(trader, price, qty) // nolint
		} else {
			market.PlaceSellOrder(trader, price, qty) // nolint
		}
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("total orders     : %d\n", numOrders)
	fmt.Printf("total matches    : %d\n", totalMatched)
	fmt.Printf("total matched qty: %s\n", totalQty)
	fmt.Printf("time taken       : %s\n", elapsed)
	fmt.Printf("orders/sec       : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
