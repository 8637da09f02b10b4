package kucoin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/kline"
	"github.com/lukehollenback/cryptox/metrics"
	"github.com/lukehollenback/cryptox/signer"
	"github.com/lukehollenback/cryptox/transport"
)

const (
	marketsResp = `{
  "code": "200000",
  "data": [
    {"symbol": "REQ-ETH", "name": "REQ-ETH", "baseCurrency": "REQ", "quoteCurrency": "ETH", "enableTrading": true},
    {"symbol": "REQ-BTC", "name": "REQ-BTC", "baseCurrency": "REQ", "quoteCurrency": "BTC", "enableTrading": true},
    {"symbol": "NULS-ETH", "name": "NULS-ETH", "baseCurrency": "NULS", "quoteCurrency": "ETH", "enableTrading": true}
  ]
}`

	tickerResp = `{
  "code": "200000",
  "data": {"sequence": "1550467636704", "bestAsk": "0.03715004", "size": "0.17", "price": "0.03715005", "bestBid": "0.03710768"}
}`

	allTickersResp = `{
  "code": "200000",
  "data": {
    "time": 1655652664013,
    "ticker": [
      {"symbol": "ADA-BTC", "buy": "0.00002373", "sell": "0.00002375", "last": "0.00002375"},
      {"symbol": "XRP-BTC", "buy": "0.00001614", "sell": "0.00001616", "last": "0.00001615"}
    ]
  }
}`

	klinesResp = `{
  "code": "200000",
  "data": [
    ["1655415000", "20843.9", "20673.8", "20920.8", "20626", "123.98034374", "2576013.394928467"],
    ["1655413200", "20711.7", "20843.9", "20935.6", "20676.8", "281.93338746", "5865493.858205836"],
    ["1655411400", "20966", "20711.7", "20969.9", "20510", "760.96912518", "15713004.882986378"],
    ["1655409600", "20871.9", "20966", "21096", "20856.5", "498.41595179", "10464215.073549074"],
    ["1655407800", "21071.3", "20872.7", "21096.9", "20850", "774.62700373", "16196368.501153962"]
  ]
}`

	accountsResp = `{
  "code": "200000",
  "data": [
    {"id": "1", "currency": "BTC", "type": "main", "balance": "0.05", "available": "0.05", "holds": "0"},
    {"id": "2", "currency": "BTC", "type": "trade", "balance": "0.0009013500", "available": "0.0009", "holds": "0.00000135"},
    {"id": "3", "currency": "ETH", "type": "main", "balance": "0", "available": "0", "holds": "0"}
  ]
}`
)

var expectedCandles = []kline.Candle{
	{Ts: 1655415000, Open: 20843.9, Close: 20673.8, High: 20920.8, Low: 20626.0},
	{Ts: 1655413200, Open: 20711.7, Close: 20843.9, High: 20935.6, Low: 20676.8},
	{Ts: 1655411400, Open: 20966.0, Close: 20711.7, High: 20969.9, Low: 20510.0},
	{Ts: 1655409600, Open: 20871.9, Close: 20966.0, High: 21096.0, Low: 20856.5},
	{Ts: 1655407800, Open: 21071.3, Close: 20872.7, High: 21096.9, Low: 20850.0},
}

//
// fixed returns a doer that answers every request with body and remembers the requests it saw.
//
func fixed(status int, body string, seen *[]*transport.Request) transport.Doer {
	return transport.DoerFunc(func(_ context.Context, req *transport.Request) (*transport.Response, error) {
		if seen != nil {
			*seen = append(*seen, req)
		}

		return &transport.Response{Status: status, Body: []byte(body)}, nil
	})
}

func creds() exchange.Credentials {
	return exchange.Credentials{AccessKey: "access", SecretKey: "secret", Passphrase: "passphrase"}
}

func TestGetAvailableMarkets(t *testing.T) {
	client := NewClient(Config{Transport: fixed(http.StatusOK, marketsResp, nil)})

	markets, err := client.GetAvailableMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"REQ-ETH", "REQ-BTC", "NULS-ETH"}, markets)
}

func TestGetAvailableMarketsRejected(t *testing.T) {
	client := NewClient(Config{Transport: fixed(http.StatusOK, `{"code": "400100", "msg": "bad"}`, nil)})

	markets, err := client.GetAvailableMarkets(context.Background())
	assert.Nil(t, markets)
	assert.ErrorIs(t, err, exchange.ErrRejected)

	var apiErr *exchange.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Parameter Error", apiErr.Message)
}

func TestUnknownCode(t *testing.T) {
	client := NewClient(Config{Transport: fixed(http.StatusOK, `{"code": "123456", "msg": "what"}`, nil)})

	_, err := client.GetAvailableMarkets(context.Background())
	assert.ErrorIs(t, err, exchange.ErrUnknownCode)
}

func TestAuthFailure(t *testing.T) {
	client := NewClient(Config{
		Credentials: creds(),
		Transport:   fixed(http.StatusUnauthorized, `{"code": "400005", "msg": "Signature error"}`, nil),
	})

	_, err := client.GetAllBalances(context.Background())
	assert.ErrorIs(t, err, exchange.ErrAuth)
}

func TestStatusWithoutEnvelope(t *testing.T) {
	client := NewClient(Config{Transport: fixed(http.StatusServiceUnavailable, `<html>maintenance</html>`, nil)})

	_, err := client.GetAvailableMarkets(context.Background())
	assert.ErrorIs(t, err, exchange.ErrRejected)
}

func TestGetCoinPrice(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{Transport: fixed(http.StatusOK, tickerResp, &seen)})

	ask, err := client.GetCoinPrice(context.Background(), "coin", "pair", exchange.Ask)
	require.NoError(t, err)
	assert.Equal(t, "0.03715004", ask)

	bid, err := client.GetCoinPrice(context.Background(), "coin", "pair", exchange.Bid)
	require.NoError(t, err)
	assert.Equal(t, "0.03710768", bid)

	latest, err := client.GetCoinPrice(context.Background(), "coin", "pair", exchange.Latest)
	require.NoError(t, err)
	assert.Equal(t, "0.03715005", latest)

	require.Len(t, seen, 3)
	assert.Equal(t, BaseURL+"/api/v1/market/orderbook/level1?symbol=COIN-PAIR", seen[0].URL)
}

func TestGetCoinPriceMissingPair(t *testing.T) {
	client := NewClient(Config{Transport: fixed(http.StatusOK, `{"code": "200000", "data": null}`, nil)})

	_, err := client.GetCoinPrice(context.Background(), "NOPE", "BTC", exchange.Ask)
	assert.ErrorIs(t, err, exchange.ErrPairNotFound)
}

func TestGetCoinsPrices(t *testing.T) {
	client := NewClient(Config{Transport: fixed(http.StatusOK, allTickersResp, nil)})
	ctx := context.Background()

	asks, err := client.GetCoinsPrices(ctx, []string{"ADA", "XRP", "NOPE"}, "BTC", exchange.Ask)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ADA": "0.00002375", "XRP": "0.00001616"}, asks)

	bids, err := client.GetCoinsPrices(ctx, []string{"ada", "xrp"}, "btc", exchange.Bid)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ADA": "0.00002373", "XRP": "0.00001614"}, bids)

	latest, err := client.GetCoinsPrices(ctx, []string{"ADA"}, "BTC", exchange.Latest)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ADA": "0.00002375"}, latest)
}

func TestGetCandles(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{Transport: fixed(http.StatusOK, klinesResp, &seen)})

	start := time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 17, 0, 0, 0, 0, time.UTC)

	candles, err := client.GetCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, start, end)
	require.NoError(t, err)
	assert.Equal(t, expectedCandles, candles)

	require.Len(t, seen, 1)
	assert.Equal(t, BaseURL+"/api/v1/market/candles?symbol=BTC-USDT&type=30min&startAt=1655251200&endAt=1655424000", seen[0].URL)
}

func TestGetCandlesRejectsUnsupportedInterval(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{Transport: fixed(http.StatusOK, klinesResp, &seen)})

	_, err := client.GetCandles(context.Background(), "BTC", "USDT", exchange.ThreeDay, time.Now().Add(-time.Hour), time.Time{})
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
	assert.Empty(t, seen)
}

func TestGetCandlesMalformedRow(t *testing.T) {
	body := `{"code": "200000", "data": [["1655415000", "20843.9", "x", "20920.8", "20626"]]}`
	client := NewClient(Config{Transport: fixed(http.StatusOK, body, nil)})

	_, err := client.GetCandles(context.Background(), "BTC", "USDT", exchange.OneHour, time.Unix(1655415000, 0), time.Time{})
	assert.ErrorIs(t, err, kline.ErrData)
}

func TestGetLastCandles(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{CandleLimit: 100, Transport: fixed(http.StatusOK, klinesResp, &seen)})
	client.now = func() time.Time { return time.Unix(1655416800, 0) }

	candles, err := client.GetLastCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, 3)
	require.NoError(t, err)
	assert.Equal(t, expectedCandles[:3], candles)

	require.Len(t, seen, 1)
	assert.Equal(t, BaseURL+"/api/v1/market/candles?symbol=BTC-USDT&type=30min&startAt=1655411400&endAt=1655416800", seen[0].URL)
}

func TestGetLastCandlesAboveLimit(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{CandleLimit: 100, Transport: fixed(http.StatusOK, klinesResp, &seen)})

	_, err := client.GetLastCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, 101)
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
	assert.Empty(t, seen)

	_, err = client.GetLastCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, 100)
	assert.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestBalances(t *testing.T) {
	client := NewClient(Config{Credentials: creds(), Transport: fixed(http.StatusOK, accountsResp, nil)})
	ctx := context.Background()

	all, err := client.GetAllBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"BTC": "0.0509013500"}, all)

	btc, err := client.GetBalance(ctx, "btc")
	require.NoError(t, err)
	assert.Equal(t, "0.0509013500", btc)

	eth, err := client.GetBalance(ctx, "ETH")
	require.NoError(t, err)
	assert.Equal(t, "0.0000000000", eth)

	_, err = client.GetBalance(ctx, "QAB")
	assert.ErrorIs(t, err, exchange.ErrNoSuchAsset)
}

func TestPrivateRequiresCredentials(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{Transport: fixed(http.StatusOK, accountsResp, &seen)})

	_, err := client.GetAllBalances(context.Background())
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
	assert.Empty(t, seen)
}

func TestSignedHeaders(t *testing.T) {
	signer.Now = func() time.Time { return time.UnixMilli(1655652664013) }
	defer func() { signer.Now = time.Now }()

	var seen []*transport.Request

	client := NewClient(Config{Credentials: creds(), Transport: fixed(http.StatusOK, accountsResp, &seen)})

	_, err := client.GetAllBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, seen, 1)

	header := seen[0].Header
	assert.Equal(t, "1655652664013", header.Get("KC-API-TIMESTAMP"))
	assert.Equal(t, "access", header.Get("KC-API-KEY"))
	assert.Equal(t, "2", header.Get("KC-API-KEY-VERSION"))
	assert.Equal(t, signer.SignPassphrase("secret", "passphrase"), header.Get("KC-API-PASSPHRASE"))
	assert.Equal(t, signer.Sign("secret", "GET", "/api/v1/accounts", "", 1655652664013), header.Get("KC-API-SIGN"))
}

func TestCreateMarketOrder(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{
		Credentials: creds(),
		Transport:   fixed(http.StatusOK, `{"code": "200000", "data": {"orderId": "5bd6e9286d99522a52e458de"}}`, &seen),
	})
	ctx := context.Background()

	_, err := client.CreateMarketOrder(ctx, exchange.Buy, "BTC", "USDT", "", "")
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)

	_, err = client.CreateMarketOrder(ctx, exchange.Buy, "BTC", "USDT", "1", "100")
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
	assert.Empty(t, seen)
	assert.Zero(t, client.OrderIDs().Count())

	receipt, err := client.CreateMarketOrder(ctx, exchange.Buy, "BTC", "USDT", "", "100")
	require.NoError(t, err)
	assert.Equal(t, "5bd6e9286d99522a52e458de", receipt.ID)
	assert.EqualValues(t, 1, client.OrderIDs().Count())

	require.Len(t, seen, 1)
	assert.Equal(t, http.MethodPost, seen[0].Method)

	var body map[string]string
	require.NoError(t, json.Unmarshal(seen[0].Body, &body))
	assert.Equal(t, "market", body["type"])
	assert.Equal(t, "BTC-USDT", body["symbol"])
	assert.Equal(t, "100", body["funds"])
	assert.Equal(t, receipt.ClientOrderID, body["clientOid"])
	assert.NotContains(t, body, "size")

	_, err = client.CreateOrder(ctx, "BTC-USDT", exchange.Sell, "30000", "0.1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, client.OrderIDs().Count())
}

func TestWithdrawAsset(t *testing.T) {
	var seen []*transport.Request

	client := NewClient(Config{
		Credentials: creds(),
		Transport:   fixed(http.StatusOK, `{"code": "200000", "data": {"withdrawalId": "5bffb63303aa675e8bbe18f9"}}`, &seen),
	})

	receipt, err := client.WithdrawAsset(context.Background(), "usdt", "0x1234", "10.5")
	require.NoError(t, err)
	assert.Equal(t, "5bffb63303aa675e8bbe18f9", receipt.ID)
	assert.JSONEq(t, `{"currency": "USDT", "address": "0x1234", "amount": "10.5"}`, string(seen[0].Body))

	_, err = client.WithdrawAsset(context.Background(), "usdt", "0x1234", "-1")
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
}

func TestGetOrderBook(t *testing.T) {
	body := `{"code": "200000", "data": {"time": 1, "asks": [["6500.12", "0.45"]], "bids": [["6500.11", "0.45"], ["6500.00", "1"]]}}`
	client := NewClient(Config{Transport: fixed(http.StatusOK, body, nil)})

	book, err := client.GetOrderBook(context.Background(), "BTC", "USDT")
	require.NoError(t, err)
	assert.Equal(t, []exchange.Level{{Price: "6500.12", Amount: "0.45"}}, book.Side(exchange.Ask))
	assert.Len(t, book.Bids, 2)
}

func TestOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)

		assert.Equal(t, "/api/v1/symbols", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(marketsResp))
	}))
	defer server.Close()

	requests := metrics.NewRequests(prometheus.NewRegistry())

	client := NewClient(Config{
		BaseURL:   server.URL,
		Transport: transport.NewHTTP(Name, transport.WithMetrics(requests)),
	})

	markets, err := client.GetAvailableMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, markets, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.Total().WithLabelValues(Name, http.MethodGet, "200")))
}
