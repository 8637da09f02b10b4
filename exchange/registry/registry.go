//
// Package registry builds exchange adapters by name.
//
package registry

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lukehollenback/cryptox/config"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/exchange/binance"
	"github.com/lukehollenback/cryptox/exchange/coinbasepro"
	"github.com/lukehollenback/cryptox/exchange/graviex"
	"github.com/lukehollenback/cryptox/exchange/kraken"
	"github.com/lukehollenback/cryptox/exchange/kucoin"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/metrics"
	"github.com/lukehollenback/cryptox/transport"
)

//
// Options are the settings shared by every adapter. Zero values fall back to each adapter's
// defaults.
//
type Options struct {
	Credentials      exchange.Credentials
	BaseURL          string
	KeyVersion       int
	TickerRetryPause time.Duration
	HTTPClient       *http.Client
	Metrics          *metrics.Requests
	Logger           *logger.Logger
}

type factory func(opts Options) exchange.Client

var factories = map[string]factory{
	binance.Name:     newBinance,
	coinbasepro.Name: newCoinbasePro,
	graviex.Name:     newGraviex,
	kraken.Name:      newKraken,
	kucoin.Name:      newKuCoin,
}

//
// Names returns the name of every known exchange, sorted.
//
func Names() []string {
	names := make([]string, 0, len(factories))

	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

//
// New builds the adapter for the named exchange. Names are matched case-insensitively.
//
func New(name string, opts Options) (exchange.Client, error) {
	build, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, exchange.NewParameterError("exchange", "unknown exchange (known: "+strings.Join(Names(), ", ")+")", name)
	}

	return build(opts), nil
}

//
// FromConfig builds the named adapter from the environment configuration.
//
func FromConfig(cfg *config.Config, name string, m *metrics.Requests, log *logger.Logger) (exchange.Client, error) {
	settings, err := cfg.Exchange(name)
	if err != nil {
		return nil, exchange.NewParameterError("exchange", err.Error(), name)
	}

	var httpClient *http.Client
	if cfg.HTTP.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}

	return New(name, Options{
		Credentials:      settings.Credentials(),
		BaseURL:          settings.BaseURL,
		KeyVersion:       cfg.KuCoin.KeyVersion,
		TickerRetryPause: cfg.HTTP.TickerRetryPause,
		HTTPClient:       httpClient,
		Metrics:          m,
		Logger:           log,
	})
}

//
// doer builds the shared transport for adapters that talk to their exchange directly.
//
func (o Options) doer(name string) transport.Doer {
	return transport.NewHTTP(
		name,
		transport.WithHTTPClient(o.HTTPClient),
		transport.WithMetrics(o.Metrics),
		transport.WithLogger(o.Logger),
	)
}

func newBinance(opts Options) exchange.Client {
	return binance.NewClient(binance.Config{
		Credentials:      opts.Credentials,
		BaseURL:          opts.BaseURL,
		TickerRetryPause: opts.TickerRetryPause,
		HTTPClient:       transport.Instrument(binance.Name, opts.HTTPClient, opts.Metrics),
		Transport:        opts.doer(binance.Name),
		Logger:           opts.Logger,
	})
}

func newCoinbasePro(opts Options) exchange.Client {
	return coinbasepro.NewClient(coinbasepro.Config{
		Credentials: opts.Credentials,
		BaseURL:     opts.BaseURL,
		HTTPClient:  transport.Instrument(coinbasepro.Name, opts.HTTPClient, opts.Metrics),
		Logger:      opts.Logger,
	})
}

func newGraviex(opts Options) exchange.Client {
	return graviex.NewClient(graviex.Config{
		Credentials:      opts.Credentials,
		BaseURL:          opts.BaseURL,
		TickerRetryPause: opts.TickerRetryPause,
		Transport:        opts.doer(graviex.Name),
		Logger:           opts.Logger,
	})
}

func newKraken(opts Options) exchange.Client {
	return kraken.NewClient(kraken.Config{
		Credentials: opts.Credentials,
		BaseURL:     opts.BaseURL,
		Transport:   opts.doer(kraken.Name),
		Logger:      opts.Logger,
	})
}

func newKuCoin(opts Options) exchange.Client {
	return kucoin.NewClient(kucoin.Config{
		Credentials: opts.Credentials,
		BaseURL:     opts.BaseURL,
		KeyVersion:  opts.KeyVersion,
		Transport:   opts.doer(kucoin.Name),
		Logger:      opts.Logger,
	})
}
