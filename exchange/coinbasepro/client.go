package coinbasepro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/preichenberger/go-coinbasepro/v2"

	"github.com/lukehollenback/cryptox/constants"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/kline"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/validator"
)

const (
	Name = "coinbasepro"

	BaseURL = "https://api.pro.coinbase.com"

	//
	// CandleLimit is the most historic rates Coinbase Pro returns for a single request.
	//
	CandleLimit = 300

	bookLevel = 2
)

// NOTE ~> Coinbase Pro errors carry only a message, so the message is the code.

var Codes = validator.NewTable(map[string]string{
	"NotFound":                    "The requested resource could not be found",
	"Invalid API Key":             "Invalid API Key",
	"invalid signature":           "Invalid signature",
	"Invalid Passphrase":          "Invalid passphrase",
	"request timestamp expired":   "Request timestamp expired",
	"Forbidden":                   "The API key lacks the permission for this call",
	"Insufficient funds":          "Insufficient funds",
	"Private rate limit exceeded": "Private rate limit exceeded",
	"Public rate limit exceeded":  "Public rate limit exceeded",
})

var authCodes = []string{"Invalid API Key", "invalid signature", "Invalid Passphrase", "request timestamp expired", "Forbidden"}

var granularities = exchange.IntervalTable{
	exchange.OneMinute:     "60",
	exchange.FiveMinute:    "300",
	exchange.FifteenMinute: "900",
	exchange.OneHour:       "3600",
	exchange.SixHour:       "21600",
	exchange.OneDay:        "86400",
}

type Config struct {
	Credentials exchange.Credentials
	BaseURL     string
	CandleLimit int
	HTTPClient  *http.Client
	Logger      *logger.Logger
}

//
// Client implements the exchange.Client interface on top of the Coinbase Pro SDK. Withdrawals are
// not offered.
//
type Client struct {
	exchange.Unsupported

	creds       exchange.Credentials
	candleLimit int
	sdk         *coinbasepro.Client
	validator   *validator.Validator
	log         *logger.Logger
	now         func() time.Time
}

func NewClient(cfg Config) *Client {
	o := &Client{
		creds:       cfg.Credentials,
		candleLimit: cfg.CandleLimit,
		validator:   validator.New(Name, "", Codes, authCodes...),
		log:         cfg.Logger,
		now:         time.Now,
	}

	if o.candleLimit <= 0 {
		o.candleLimit = CandleLimit
	}

	if o.log == nil {
		o.log = logger.Nop()
	}

	o.log = o.log.With("exchange", Name)

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}

	o.sdk = &coinbasepro.Client{
		BaseURL:    baseURL,
		Key:        o.creds.AccessKey,
		Passphrase: o.creds.Passphrase,
		Secret:     o.creds.SecretKey,
		HTTPClient: httpClient,
		RetryCount: 0,
	}

	return o
}

func (o *Client) Name() string {
	return Name
}

func (o *Client) GetBalance(ctx context.Context, coin string) (string, error) {
	balances, err := o.balances(ctx)
	if err != nil {
		return "", err
	}

	balance, ok := balances.Get(coin)
	if !ok {
		return "", fmt.Errorf("%w: %s", exchange.ErrNoSuchAsset, coin)
	}

	return balance, nil
}

func (o *Client) GetAllBalances(ctx context.Context) (map[string]string, error) {
	balances, err := o.balances(ctx)
	if err != nil {
		return nil, err
	}

	return balances.NonZero(), nil
}

//
// balances uses each account's balance, which already includes holds.
//
func (o *Client) balances(ctx context.Context) (*exchange.Balances, error) {
	if err := o.creds.Require(true); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts, err := o.sdk.GetAccounts()
	if err != nil {
		return nil, o.translate(err, "accounts")
	}

	balances := exchange.NewBalances()

	for _, a := range accounts {
		if err := balances.Add(a.Currency, a.Balance); err != nil {
			return nil, err
		}
	}

	return balances, nil
}

func (o *Client) GetAvailableMarkets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products, err := o.sdk.GetProducts()
	if err != nil {
		return nil, o.translate(err, "products")
	}

	markets := make([]string, 0, len(products))
	for _, p := range products {
		markets = append(markets, p.ID)
	}

	return markets, nil
}

func (o *Client) GetCoinPrice(ctx context.Context, coin, quote string, side exchange.MarketSide) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	product := Symbol(coin, quote)

	ticker, err := o.sdk.GetTicker(product)
	if err != nil {
		return "", o.translate(err, product)
	}

	switch side {
	case exchange.Ask:
		return ticker.Ask, nil
	case exchange.Bid:
		return ticker.Bid, nil
	case exchange.Latest:
		return ticker.Price, nil
	}

	return "", exchange.NewParameterError("side", "unknown market side", side)
}

//
// GetCoinsPrices asks for one ticker per coin. Coins without a product are left out.
//
func (o *Client) GetCoinsPrices(ctx context.Context, coins []string, quote string, side exchange.MarketSide) (map[string]string, error) {
	prices := make(map[string]string)

	for _, coin := range coins {
		price, err := o.GetCoinPrice(ctx, coin, quote, side)
		if errors.Is(err, exchange.ErrPairNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		prices[strings.ToUpper(coin)] = price
	}

	return prices, nil
}

func (o *Client) GetOrderBook(ctx context.Context, coin, quote string) (*exchange.OrderBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product := Symbol(coin, quote)

	book, err := o.sdk.GetBook(product, bookLevel)
	if err != nil {
		return nil, o.translate(err, product)
	}

	return &exchange.OrderBook{
		Asks: levels(book.Asks),
		Bids: levels(book.Bids),
	}, nil
}

func levels(entries []coinbasepro.BookEntry) []exchange.Level {
	result := make([]exchange.Level, 0, len(entries))

	for _, e := range entries {
		result = append(result, exchange.Level{Price: e.Price, Amount: e.Size})
	}

	return result
}

func (o *Client) GetCandles(
	ctx context.Context,
	coin string,
	quote string,
	interval exchange.Interval,
	start time.Time,
	end time.Time,
) ([]kline.Candle, error) {
	if _, err := granularities.Code(interval); err != nil {
		return nil, err
	}

	if err := exchange.ValidateRange(start, end); err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = o.now()
	}

	return o.historicRates(ctx, Symbol(coin, quote), interval, start, end)
}

func (o *Client) GetLastCandles(
	ctx context.Context,
	coin string,
	quote string,
	interval exchange.Interval,
	amount int,
) ([]kline.Candle, error) {
	if _, err := granularities.Code(interval); err != nil {
		return nil, err
	}

	if err := exchange.ValidateLastCandles(amount, o.candleLimit); err != nil {
		return nil, err
	}

	end := o.now()
	start := end.Add(-time.Duration(amount) * interval.Duration())

	candles, err := o.historicRates(ctx, Symbol(coin, quote), interval, start, end)
	if err != nil {
		return nil, err
	}

	if len(candles) > amount {
		candles = candles[:amount]
	}

	return candles, nil
}

func (o *Client) historicRates(
	ctx context.Context,
	product string,
	interval exchange.Interval,
	start time.Time,
	end time.Time,
) ([]kline.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rates, err := o.sdk.GetHistoricRates(product, coinbasepro.GetHistoricRatesParams{
		Start:       start,
		End:         end,
		Granularity: int(interval.Duration() / time.Second),
	})
	if err != nil {
		return nil, o.translate(err, product)
	}

	candles := make([]kline.Candle, 0, len(rates))

	for _, r := range rates {
		candles = append(candles, kline.Candle{
			Ts:    r.Time.Unix(),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		})
	}

	return candles, nil
}

func (o *Client) CreateOrder(
	ctx context.Context,
	market string,
	side exchange.OrderSide,
	price string,
	amount string,
) (*exchange.Receipt, error) {
	if market == "" {
		return nil, exchange.NewParameterError("market", "must be provided", market)
	}

	if err := exchange.ValidateAmount("price", price); err != nil {
		return nil, err
	}

	if err := exchange.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	return o.placeOrder(ctx, &coinbasepro.Order{
		Type:      "limit",
		Side:      string(side),
		ProductID: strings.ToUpper(market),
		Price:     price,
		Size:      amount,
	})
}

func (o *Client) CreateMarketOrder(
	ctx context.Context,
	side exchange.OrderSide,
	coin string,
	quote string,
	size string,
	amount string,
) (*exchange.Receipt, error) {
	if err := exchange.ValidateMarketOrder(size, amount); err != nil {
		return nil, err
	}

	return o.placeOrder(ctx, &coinbasepro.Order{
		Type:      "market",
		Side:      string(side),
		ProductID: Symbol(coin, quote),
		Size:      size,
		Funds:     amount,
	})
}

func (o *Client) placeOrder(ctx context.Context, order *coinbasepro.Order) (*exchange.Receipt, error) {
	if _, err := exchange.ParseOrderSide(order.Side); err != nil {
		return nil, err
	}

	if err := o.creds.Require(true); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// NOTE ~> Coinbase Pro only accepts UUIDs as client order ids.
	order.ClientOID = uuid.NewString()

	created, err := o.sdk.CreateOrder(order)
	if err != nil {
		return nil, o.translate(err, order.ProductID)
	}

	raw, err := json.Marshal(created)
	if err != nil {
		return nil, err
	}

	return &exchange.Receipt{ID: created.ID, ClientOrderID: order.ClientOID, Raw: raw}, nil
}

//
// translate converts SDK errors. The SDK reports non-2xx answers as coinbasepro.Error values and
// everything else (network, TLS, decoding) as plain errors.
//
func (o *Client) translate(err error, subject string) error {
	var apiErr coinbasepro.Error

	if !errors.As(err, &apiErr) {
		return &exchange.TransportError{Exchange: Name, Err: err}
	}

	o.log.Debugw("request rejected", "subject", subject, "message", apiErr.Message)

	checked := o.validator.Check(apiErr.Message, apiErr.Message)

	if apiErr.Message == "NotFound" {
		return fmt.Errorf("%w: %s: %w", exchange.ErrPairNotFound, subject, checked)
	}

	return checked
}

//
// Symbol renders a Coinbase Pro product id ("BTC-USD").
//
func Symbol(coin, quote string) string {
	return strings.ToUpper(coin) + "-" + strings.ToUpper(quote)
}
