package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lukehollenback/cryptox/exchange"
)

type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Binance     ExchangeConfig `envconfig:"BINANCE"`
	KuCoin      KuCoinConfig   `envconfig:"KUCOIN"`
	Kraken      ExchangeConfig `envconfig:"KRAKEN"`
	Graviex     ExchangeConfig `envconfig:"GRAVIEX"`
	CoinbasePro ExchangeConfig `envconfig:"COINBASEPRO"`
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Timeout          time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	TickerRetryPause time.Duration `envconfig:"TICKER_RETRY_PAUSE" default:"1s"`
}

// ExchangeConfig holds the credentials of one exchange. Field names are combined with the
// exchange prefix, e.g. BINANCE_API_KEY, and are only ever read with it.
//
// NOTE ~> No envconfig name tags here. envconfig falls back to a tag's bare name when the
//  prefixed variable is unset, which would hand a generic SECRET_KEY to every exchange.
type ExchangeConfig struct {
	APIKey     string `split_words:"true"`
	SecretKey  string `split_words:"true"`
	Passphrase string `split_words:"true"`
	BaseURL    string `split_words:"true"`
}

type KuCoinConfig struct {
	ExchangeConfig
	KeyVersion int `split_words:"true" default:"2"`
}

// Credentials returns the opaque credential triple
func (c ExchangeConfig) Credentials() exchange.Credentials {
	return exchange.Credentials{
		AccessKey:  c.APIKey,
		SecretKey:  c.SecretKey,
		Passphrase: c.Passphrase,
	}
}

// Exchange returns the settings of the named exchange
func (c *Config) Exchange(name string) (ExchangeConfig, error) {
	switch strings.ToLower(name) {
	case "binance":
		return c.Binance, nil
	case "kucoin":
		return c.KuCoin.ExchangeConfig, nil
	case "kraken":
		return c.Kraken, nil
	case "graviex":
		return c.Graviex, nil
	case "coinbasepro":
		return c.CoinbasePro, nil
	default:
		return ExchangeConfig{}, fmt.Errorf("no configuration for exchange %q", name)
	}
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	return &cfg, nil
}
