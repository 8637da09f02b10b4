package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/kline"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/signer"
	"github.com/lukehollenback/cryptox/transport"
	"github.com/lukehollenback/cryptox/validator"
)

const (
	BaseURL    = "https://api.kucoin.com"
	PathPrefix = "/api/v1/"

	//
	// CandleLimit is the most candles KuCoin returns for a single request.
	//
	CandleLimit = 1500
)

//
// Config holds everything needed to build a Client. Zero values fall back to the KuCoin defaults.
//
type Config struct {
	Credentials exchange.Credentials
	BaseURL     string
	KeyVersion  int
	CandleLimit int
	Transport   transport.Doer
	Logger      *logger.Logger
}

//
// Client implements the exchange.Client interface for the KuCoin API. It is the reference adapter:
// every request goes through the shared transport, is signed with the common signer scheme and has
// its envelope classified by the validator.
//
type Client struct {
	creds       exchange.Credentials
	baseURL     string
	keyVersion  int
	candleLimit int
	doer        transport.Doer
	validator   *validator.Validator
	orderIDs    *exchange.OrderIDs
	log         *logger.Logger
	now         func() time.Time
}

func NewClient(cfg Config) *Client {
	o := &Client{
		creds:       cfg.Credentials,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		keyVersion:  cfg.KeyVersion,
		candleLimit: cfg.CandleLimit,
		doer:        cfg.Transport,
		validator:   NewValidator(),
		orderIDs:    exchange.NewOrderIDs(),
		log:         cfg.Logger,
		now:         time.Now,
	}

	if o.baseURL == "" {
		o.baseURL = BaseURL
	}

	if o.keyVersion == 0 {
		o.keyVersion = 2
	}

	if o.candleLimit <= 0 {
		o.candleLimit = CandleLimit
	}

	if o.doer == nil {
		o.doer = transport.NewHTTP(Name)
	}

	if o.log == nil {
		o.log = logger.Nop()
	}

	o.log = o.log.With("exchange", Name)

	return o
}

func (o *Client) Name() string {
	return Name
}

//
// OrderIDs exposes the client order id generator.
//
func (o *Client) OrderIDs() *exchange.OrderIDs {
	return o.orderIDs
}

func (o *Client) GetBalance(ctx context.Context, coin string) (string, error) {
	var accounts []account

	query := signer.Query{}.Add("currency", strings.ToUpper(coin))

	if err := o.private(ctx, http.MethodGet, "accounts", query, nil, &accounts); err != nil {
		return "", err
	}

	balances, err := sumAccounts(accounts)
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
	var accounts []account

	if err := o.private(ctx, http.MethodGet, "accounts", nil, nil, &accounts); err != nil {
		return nil, err
	}

	balances, err := sumAccounts(accounts)
	if err != nil {
		return nil, err
	}

	return balances.NonZero(), nil
}

func (o *Client) GetAvailableMarkets(ctx context.Context) ([]string, error) {
	var symbols []symbolInfo

	if err := o.public(ctx, "symbols", nil, &symbols); err != nil {
		return nil, err
	}

	markets := make([]string, 0, len(symbols))
	for _, s := range symbols {
		markets = append(markets, s.Symbol)
	}

	return markets, nil
}

func (o *Client) GetCoinPrice(ctx context.Context, coin, quote string, side exchange.MarketSide) (string, error) {
	var ticker *levelOne

	market := Symbol(coin, quote)
	query := signer.Query{}.Add("symbol", market)

	if err := o.public(ctx, "market/orderbook/level1", query, &ticker); err != nil {
		return "", err
	}

	if ticker == nil {
		return "", fmt.Errorf("%w: %s", exchange.ErrPairNotFound, market)
	}

	return ticker.price(side)
}

func (o *Client) GetCoinsPrices(ctx context.Context, coins []string, quote string, side exchange.MarketSide) (map[string]string, error) {
	var tickers allTickers

	if err := o.public(ctx, "market/allTickers", nil, &tickers); err != nil {
		return nil, err
	}

	wanted := make(map[string]string, len(coins))
	for _, coin := range coins {
		wanted[Symbol(coin, quote)] = strings.ToUpper(coin)
	}

	prices := make(map[string]string)

	for _, t := range tickers.Ticker {
		coin, ok := wanted[t.Symbol]
		if !ok {
			continue
		}

		price, err := t.price(side)
		if err != nil {
			return nil, err
		}

		prices[coin] = price
	}

	return prices, nil
}

func (o *Client) GetOrderBook(ctx context.Context, coin, quote string) (*exchange.OrderBook, error) {
	var book *orderBook

	market := Symbol(coin, quote)
	query := signer.Query{}.Add("symbol", market)

	if err := o.public(ctx, "market/orderbook/level2_20", query, &book); err != nil {
		return nil, err
	}

	if book == nil {
		return nil, fmt.Errorf("%w: %s", exchange.ErrPairNotFound, market)
	}

	return book.normalize(), nil
}

func (o *Client) GetCandles(
	ctx context.Context,
	coin string,
	quote string,
	interval exchange.Interval,
	start time.Time,
	end time.Time,
) ([]kline.Candle, error) {
	code, err := intervals.Code(interval)
	if err != nil {
		return nil, err
	}

	if err := exchange.ValidateRange(start, end); err != nil {
		return nil, err
	}

	return o.candles(ctx, Symbol(coin, quote), code, start, end)
}

//
// GetLastCandles requests the window ending now that holds amount candles and returns at most
// amount of them, most recent first as KuCoin delivers them.
//
func (o *Client) GetLastCandles(
	ctx context.Context,
	coin string,
	quote string,
	interval exchange.Interval,
	amount int,
) ([]kline.Candle, error) {
	code, err := intervals.Code(interval)
	if err != nil {
		return nil, err
	}

	if err := exchange.ValidateLastCandles(amount, o.candleLimit); err != nil {
		return nil, err
	}

	end := o.now()
	start := end.Add(-time.Duration(amount) * interval.Duration())

	candles, err := o.candles(ctx, Symbol(coin, quote), code, start, end)
	if err != nil {
		return nil, err
	}

	if len(candles) > amount {
		candles = candles[:amount]
	}

	return candles, nil
}

func (o *Client) candles(ctx context.Context, market, code string, start, end time.Time) ([]kline.Candle, error) {
	query := signer.Query{}.
		Add("symbol", market).
		Add("type", code).
		Add("startAt", strconv.FormatInt(start.Unix(), 10))

	if !end.IsZero() {
		query = query.Add("endAt", strconv.FormatInt(end.Unix(), 10))
	}

	var rows [][]json.RawMessage

	if err := o.public(ctx, "market/candles", query, &rows); err != nil {
		return nil, err
	}

	return kline.KuCoinLayout.NormalizeAll(rows)
}

func (o *Client) WithdrawAsset(ctx context.Context, asset, address, amount string) (*exchange.Receipt, error) {
	if address == "" {
		return nil, exchange.NewParameterError("address", "must be provided", address)
	}

	if err := exchange.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	body := withdrawalRequest{
		Currency: strings.ToUpper(asset),
		Address:  address,
		Amount:   amount,
	}

	var result struct {
		WithdrawalID string `json:"withdrawalId"`
	}

	raw, err := o.submit(ctx, "withdrawals", body, &result)
	if err != nil {
		return nil, err
	}

	return &exchange.Receipt{ID: result.WithdrawalID, Raw: raw}, nil
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

	return o.placeOrder(ctx, orderRequest{
		Side:   string(side),
		Symbol: strings.ToUpper(market),
		Type:   "limit",
		Price:  price,
		Size:   amount,
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

	return o.placeOrder(ctx, orderRequest{
		Side:   string(side),
		Symbol: Symbol(coin, quote),
		Type:   "market",
		Size:   size,
		Funds:  amount,
	})
}

func (o *Client) placeOrder(ctx context.Context, order orderRequest) (*exchange.Receipt, error) {
	if _, err := exchange.ParseOrderSide(order.Side); err != nil {
		return nil, err
	}

	if err := o.creds.Require(true); err != nil {
		return nil, err
	}

	order.ClientOID = o.orderIDs.Next()

	var result struct {
		OrderID string `json:"orderId"`
	}

	raw, err := o.submit(ctx, "orders", order, &result)
	if err != nil {
		return nil, err
	}

	return &exchange.Receipt{ID: result.OrderID, ClientOrderID: order.ClientOID, Raw: raw}, nil
}

//
// submit posts a signed JSON body and returns the raw data section next to the decoded one.
//
func (o *Client) submit(ctx context.Context, endpoint string, body interface{}, out interface{}) (json.RawMessage, error) {
	var raw json.RawMessage

	if err := o.private(ctx, http.MethodPost, endpoint, nil, body, &raw); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return raw, nil
}

func (o *Client) public(ctx context.Context, endpoint string, query signer.Query, out interface{}) error {
	return o.request(ctx, http.MethodGet, endpoint, query, nil, false, out)
}

func (o *Client) private(
	ctx context.Context,
	method string,
	endpoint string,
	query signer.Query,
	body interface{},
	out interface{},
) error {
	if err := o.creds.Require(true); err != nil {
		return err
	}

	return o.request(ctx, method, endpoint, query, body, true, out)
}

//
// request makes the specified request to the KuCoin API, classifies the envelope and decodes its
// data section into out. Public requests are signed too whenever credentials are available.
//
func (o *Client) request(
	ctx context.Context,
	method string,
	endpoint string,
	query signer.Query,
	body interface{},
	private bool,
	out interface{},
) error {
	//
	// Build the payload. GET requests carry the query string, everything else a compact JSON body.
	//
	path := PathPrefix + endpoint + query.Suffix()

	var rawBody []byte

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}

		rawBody = encoded
	}

	req := &transport.Request{
		Method: method,
		URL:    o.baseURL + path,
		Header: http.Header{},
		Body:   rawBody,
	}

	req.Header.Set("Content-Type", "application/json")

	if private || o.creds.AccessKey != "" {
		o.sign(req.Header, signer.NewContext(method, path, string(rawBody)))
	}

	//
	// Make the request.
	//
	resp, err := o.doer.Do(ctx, req)
	if err != nil {
		return err
	}

	//
	// Classify the envelope. Responses that carry no envelope at all are classified by their HTTP
	// status, which is in the code table as well.
	//
	var envelope validator.Envelope

	if err := json.Unmarshal(resp.Body, &envelope); err != nil || envelope.Code == "" {
		if resp.OK() {
			return o.validator.Check(envelope.Code, "response carried no code")
		}

		if _, known := o.validator.Describe(strconv.Itoa(resp.Status)); known {
			return o.validator.Check(strconv.Itoa(resp.Status), "")
		}

		return exchange.NewHTTPError(resp.Status, resp.Body)
	}

	if err := o.validator.Check(envelope.Code, envelope.Msg); err != nil {
		o.log.Debugw("request rejected", "endpoint", endpoint, "code", envelope.Code)

		return err
	}

	if !envelope.HasData() {
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = envelope.Data

		return nil
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}

func (o *Client) sign(header http.Header, sc signer.Context) {
	passphrase := o.creds.Passphrase
	if o.keyVersion >= 2 {
		passphrase = signer.SignPassphrase(o.creds.SecretKey, o.creds.Passphrase)
	}

	header.Set("KC-API-SIGN", sc.Sign(o.creds.SecretKey))
	header.Set("KC-API-TIMESTAMP", strconv.FormatInt(sc.Timestamp, 10))
	header.Set("KC-API-KEY", o.creds.AccessKey)
	header.Set("KC-API-PASSPHRASE", passphrase)
	header.Set("KC-API-KEY-VERSION", strconv.Itoa(o.keyVersion))
}

//
// Symbol renders a KuCoin market symbol ("REQ-ETH").
//
func Symbol(coin, quote string) string {
	return strings.ToUpper(coin) + "-" + strings.ToUpper(quote)
}
