package config

import (
	"os"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/feed"
	fixgateway "github.com/joripage/exchange-core/pkg/gateway/fix"
	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/exchange-core/pkg/infra/redis"
	"github.com/joripage/exchange-core/pkg/marketdata"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type FeedConfig struct {
	Producer feed.ProducerConfig `yaml:"producer"`
	Consumer feed.ConsumerConfig `yaml:"consumer"`
}

type AppConfig struct {
	ServiceName string `yaml:"service_name"`
	LogLevel    string `yaml:"log_level"`

	Exchange   *exchange.Config                 `yaml:"exchange"`
	ExchangeDB *postgres_wrapper.PostgresConfig `yaml:"exchange_db"`
	Redis      *redis_wrapper.RedisConfig       `yaml:"redis"`
	Feed       *FeedConfig                      `yaml:"feed"`
	FixGateway *fixgateway.FixGatewayConfig     `yaml:"fix_gateway"`
	MarketData *marketdata.PublisherConfig      `yaml:"marketdata"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
