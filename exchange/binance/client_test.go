package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/kline"
)

const (
	accountResp = `{
  "makerCommission": 15,
  "takerCommission": 15,
  "canTrade": true,
  "balances": [
    {"asset": "BTC", "free": "0.05090135", "locked": "0.00000000"},
    {"asset": "EOS", "free": "0.00000000", "locked": "0.00000000"},
    {"asset": "ETH", "free": "1.5", "locked": "0.25"}
  ]
}`

	pricesResp = `[
  {"symbol": "REQETH", "price": "0.07990400"},
  {"symbol": "REQBTC", "price": "0.00260900"},
  {"symbol": "NULSETH", "price": "0.01302100"}
]`

	bookTickersResp = `[
  {"symbol": "REQETH", "bidPrice": "0.07990000", "bidQty": "10", "askPrice": "0.07991000", "askQty": "4"},
  {"symbol": "REQBTC", "bidPrice": "0.00260800", "bidQty": "1", "askPrice": "0.00260900", "askQty": "2"},
  {"symbol": "NULSBTC", "bidPrice": "0.00001300", "bidQty": "5", "askPrice": "0.00001310", "askQty": "7"}
]`

	klinesResp = `[
  [1655415000000, "20843.90000000", "20920.80000000", "20626.00000000", "20673.80000000", "9928.37788000", 1659041999999, "238297508.30548260", 223164, "5053.28525000", "121321348.55092420", "0"],
  [1655413200000, "20711.70000000", "20935.60000000", "20676.80000000", "20843.90000000", "4215.44152000", 1659043799999, "101368085.47540840", 107653, "2161.38546000", "51980514.36553620", "0"],
  [1655411400000, "20966.00000000", "20969.90000000", "20510.00000000", "20711.70000000", "2267.81878000", 1659045599999, "54227886.51585630", 73967, "1091.69289000", "26107254.33713290", "0"],
  [1655409600000, "20871.90000000", "21096.00000000", "20856.50000000", "20966.00000000", "3551.20149000", 1659047399999, "84883974.97390910", 102841, "1761.37823000", "42104064.60080590", "0"],
  [1655407800000, "21071.30000000", "21096.90000000", "20850.00000000", "20872.70000000", "2716.13934000", 1659049199999, "65014289.42109820", 78897, "1345.43812000", "32206975.25982810", "0"]
]`
)

//
// server fakes the handful of Binance endpoints the client uses and counts the hits per path.
//
type server struct {
	*httptest.Server
	routes map[string]string
	status map[string]int
	hits   map[string]*int64
}

func newServer(t *testing.T, routes map[string]string) *server {
	s := &server{
		routes: routes,
		status: map[string]int{},
		hits:   map[string]*int64{},
	}

	for path := range routes {
		s.hits[path] = new(int64)
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		atomic.AddInt64(s.hits[r.URL.Path], 1)

		w.Header().Set("Content-Type", "application/json")

		if status, ok := s.status[r.URL.Path]; ok {
			w.WriteHeader(status)
		}

		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(s.Close)

	return s
}

func (o *server) count(path string) int64 {
	return atomic.LoadInt64(o.hits[path])
}

func newTestClient(s *server) *Client {
	return NewClient(Config{
		Credentials:      exchange.Credentials{AccessKey: "access", SecretKey: "secret"},
		BaseURL:          s.URL,
		CandleLimit:      100,
		TickerRetryPause: time.Millisecond,
	})
}

func TestGetBalance(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{"/api/v3/account": accountResp}))
	ctx := context.Background()

	btc, err := client.GetBalance(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, "0.0509013500", btc)

	eos, err := client.GetBalance(ctx, "EOS")
	require.NoError(t, err)
	assert.Equal(t, "0.0000000000", eos)

	_, err = client.GetBalance(ctx, "QAB")
	assert.ErrorIs(t, err, exchange.ErrNoSuchAsset)
}

func TestGetAllBalances(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{"/api/v3/account": accountResp}))

	all, err := client.GetAllBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"BTC": "0.0509013500", "ETH": "1.7500000000"}, all)
}

func TestGetBalanceAuthFailure(t *testing.T) {
	s := newServer(t, map[string]string{"/api/v3/account": `{"code": -2015, "msg": "Invalid API-key, IP, or permissions for action."}`})
	s.status["/api/v3/account"] = http.StatusUnauthorized

	_, err := newTestClient(s).GetBalance(context.Background(), "BTC")
	assert.ErrorIs(t, err, exchange.ErrAuth)
}

func TestGetAvailableMarkets(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{"/api/v3/ticker/price": pricesResp}))

	markets, err := client.GetAvailableMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"REQETH", "REQBTC", "NULSETH"}, markets)
}

func TestGetCoinPrice(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{
		"/api/v3/ticker/bookTicker": `{"symbol": "REQBTC", "bidPrice": "0.00260800", "bidQty": "1", "askPrice": "0.00260900", "askQty": "2"}`,
		"/api/v3/ticker/price":      `{"symbol": "REQBTC", "price": "0.00260850"}`,
	}))
	ctx := context.Background()

	ask, err := client.GetCoinPrice(ctx, "req", "btc", exchange.Ask)
	require.NoError(t, err)
	assert.Equal(t, "0.00260900", ask)

	bid, err := client.GetCoinPrice(ctx, "req", "btc", exchange.Bid)
	require.NoError(t, err)
	assert.Equal(t, "0.00260800", bid)

	latest, err := client.GetCoinPrice(ctx, "req", "btc", exchange.Latest)
	require.NoError(t, err)
	assert.Equal(t, "0.00260850", latest)
}

func TestGetCoinPriceBadSymbol(t *testing.T) {
	s := newServer(t, map[string]string{"/api/v3/ticker/bookTicker": `{"code": -1121, "msg": "Invalid symbol."}`})
	s.status["/api/v3/ticker/bookTicker"] = http.StatusBadRequest

	_, err := newTestClient(s).GetCoinPrice(context.Background(), "NOPE", "BTC", exchange.Ask)
	assert.ErrorIs(t, err, exchange.ErrPairNotFound)
	assert.ErrorIs(t, err, exchange.ErrRejected)
}

func TestGetCoinsPrices(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{"/api/v3/ticker/bookTicker": bookTickersResp}))

	prices, err := client.GetCoinsPrices(context.Background(), []string{"REQ", "NULS", "XYZ"}, "BTC", exchange.Ask)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"REQ": "0.00260900", "NULS": "0.00001310"}, prices)
}

func TestGetCoinsPricesGivesUpAfterFourAttempts(t *testing.T) {
	s := newServer(t, map[string]string{"/api/v3/ticker/bookTicker": `[]`})

	_, err := newTestClient(s).GetCoinsPrices(context.Background(), []string{"REQ"}, "BTC", exchange.Bid)
	assert.ErrorIs(t, err, exchange.ErrEmptyResponse)
	assert.EqualValues(t, 4, s.count("/api/v3/ticker/bookTicker"))
}

func TestGetOrderBook(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{
		"/api/v3/depth": `{"lastUpdateId": 1027024, "bids": [["4.00000000", "431.00000000"]], "asks": [["4.00000200", "12.00000000"], ["4.00000300", "1.00000000"]]}`,
	}))

	book, err := client.GetOrderBook(context.Background(), "BNB", "BTC")
	require.NoError(t, err)
	assert.Equal(t, []exchange.Level{{Price: "4.00000000", Amount: "431.00000000"}}, book.Bids)
	assert.Len(t, book.Asks, 2)
}

func TestGetCandles(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{KlinesPath: klinesResp}))

	start := time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 17, 0, 0, 0, 0, time.UTC)

	candles, err := client.GetCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, start, end)
	require.NoError(t, err)
	assert.Equal(t, []kline.Candle{
		{Ts: 1655415000, Open: 20843.9, Close: 20673.8, High: 20920.8, Low: 20626.0},
		{Ts: 1655413200, Open: 20711.7, Close: 20843.9, High: 20935.6, Low: 20676.8},
		{Ts: 1655411400, Open: 20966.0, Close: 20711.7, High: 20969.9, Low: 20510.0},
		{Ts: 1655409600, Open: 20871.9, Close: 20966.0, High: 21096.0, Low: 20856.5},
		{Ts: 1655407800, Open: 21071.3, Close: 20872.7, High: 21096.9, Low: 20850.0},
	}, candles)
}

func TestGetLastCandlesAboveLimit(t *testing.T) {
	s := newServer(t, map[string]string{KlinesPath: klinesResp})
	client := newTestClient(s)

	_, err := client.GetLastCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, 101)
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
	assert.Zero(t, s.count(KlinesPath))

	candles, err := client.GetLastCandles(context.Background(), "BTC", "USDT", exchange.ThirtyMinute, 5)
	require.NoError(t, err)
	assert.Len(t, candles, 5)
	assert.EqualValues(t, 1, s.count(KlinesPath))
}

func TestGetCandlesBadInterval(t *testing.T) {
	s := newServer(t, map[string]string{KlinesPath: `{"code": -1120, "msg": "Invalid interval."}`})
	s.status[KlinesPath] = http.StatusBadRequest

	_, err := newTestClient(s).GetLastCandles(context.Background(), "BTC", "USDT", exchange.OneMinute, 5)
	assert.ErrorIs(t, err, exchange.ErrRejected)
}

func TestCreateOrder(t *testing.T) {
	s := newServer(t, map[string]string{
		"/api/v3/order": `{"symbol": "REQETH", "orderId": 28, "clientOrderId": "abc1", "transactTime": 1507725176595}`,
	})
	client := newTestClient(s)
	ctx := context.Background()

	receipt, err := client.CreateOrder(ctx, "REQ-ETH", exchange.Buy, "0.0799", "100")
	require.NoError(t, err)
	assert.Equal(t, "28", receipt.ID)
	assert.NotEmpty(t, receipt.ClientOrderID)
	assert.EqualValues(t, 1, client.OrderIDs().Count())

	_, err = client.CreateMarketOrder(ctx, exchange.Sell, "REQ", "ETH", "", "")
	assert.ErrorIs(t, err, exchange.ErrInvalidParameter)
	assert.EqualValues(t, 1, s.count("/api/v3/order"))
	assert.EqualValues(t, 1, client.OrderIDs().Count())

	_, err = client.CreateMarketOrder(ctx, exchange.Sell, "REQ", "ETH", "10", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, client.OrderIDs().Count())
}

func TestWithdrawAsset(t *testing.T) {
	client := newTestClient(newServer(t, map[string]string{
		"/sapi/v1/capital/withdraw/apply": `{"id": "7213fea8e94b4a5593d507237e5a555b"}`,
	}))

	receipt, err := client.WithdrawAsset(context.Background(), "btc", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "0.01")
	require.NoError(t, err)
	assert.Equal(t, "7213fea8e94b4a5593d507237e5a555b", receipt.ID)
}

func TestUnreachable(t *testing.T) {
	s := newServer(t, map[string]string{})
	client := newTestClient(s)
	s.Close()

	_, err := client.GetAvailableMarkets(context.Background())
	assert.ErrorIs(t, err, exchange.ErrUnavailable)

	_, err = client.GetLastCandles(context.Background(), "BTC", "USDT", exchange.OneHour, 1)
	assert.ErrorIs(t, err, exchange.ErrUnavailable)
}
