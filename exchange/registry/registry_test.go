package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollenback/cryptox/config"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/exchange/binance"
	"github.com/lukehollenback/cryptox/exchange/coinbasepro"
	"github.com/lukehollenback/cryptox/exchange/graviex"
	"github.com/lukehollenback/cryptox/exchange/kraken"
	"github.com/lukehollenback/cryptox/exchange/kucoin"
	"github.com/lukehollenback/cryptox/metrics"
)

var (
	_ exchange.Client = (*binance.Client)(nil)
	_ exchange.Client = (*coinbasepro.Client)(nil)
	_ exchange.Client = (*graviex.Client)(nil)
	_ exchange.Client = (*kraken.Client)(nil)
	_ exchange.Client = (*kucoin.Client)(nil)
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"binance", "coinbasepro", "graviex", "kraken", "kucoin"}, Names())
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			client, err := New(name, Options{})
			require.NoError(t, err)
			assert.Equal(t, name, client.Name())
		})
	}
}

func TestNewIsCaseInsensitive(t *testing.T) {
	client, err := New(" KuCoin ", Options{})
	require.NoError(t, err)
	assert.Equal(t, kucoin.Name, client.Name())
}

func TestNewUnknown(t *testing.T) {
	_, err := New("mtgox", Options{})
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.KuCoin.APIKey = "key"
	cfg.KuCoin.KeyVersion = 1

	client, err := FromConfig(cfg, "kucoin", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, kucoin.Name, client.Name())

	_, err = FromConfig(cfg, "mtgox", nil, nil)
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
}

func TestSDKRequestsAreCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "BTC-USD"}]`))
	}))
	defer server.Close()

	requests := metrics.NewRequests(nil)

	client, err := New(coinbasepro.Name, Options{
		Credentials: exchange.Credentials{SecretKey: "c2VjcmV0"},
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
		Metrics:     requests,
	})
	require.NoError(t, err)

	markets, err := client.GetAvailableMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USD"}, markets)
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.Total().WithLabelValues(coinbasepro.Name, http.MethodGet, "200")))
}

func TestTransportRequestsAreCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": [], "result": {"XXBTZUSD": {"altname": "XBTUSD"}}}`))
	}))
	defer server.Close()

	requests := metrics.NewRequests(nil)

	client, err := New(kraken.Name, Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Metrics:    requests,
	})
	require.NoError(t, err)

	markets, err := client.GetAvailableMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"XXBTZUSD"}, markets)
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.Total().WithLabelValues(kraken.Name, http.MethodGet, "200")))
}
