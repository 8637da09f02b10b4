package graviex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lukehollenback/cryptox/constants"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/kline"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/signer"
	"github.com/lukehollenback/cryptox/transport"
	"github.com/lukehollenback/cryptox/validator"
)

const (
	BaseURL    = "https://graviex.net"
	PathPrefix = "/api/v3/"

	CandleLimit = 1000
)

type Config struct {
	Credentials      exchange.Credentials
	BaseURL          string
	CandleLimit      int
	TickerRetryPause time.Duration
	Transport        transport.Doer
	Logger           *logger.Logger
}

//
// Client implements the exchange.Client interface for the Graviex API. Graviex has no market
// orders, so CreateMarketOrder falls through to exchange.Unsupported.
//
type Client struct {
	exchange.Unsupported

	creds       exchange.Credentials
	baseURL     string
	candleLimit int
	retryPause  time.Duration
	doer        transport.Doer
	validator   *validator.Validator
	log         *logger.Logger
}

func NewClient(cfg Config) *Client {
	o := &Client{
		creds:       cfg.Credentials,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		candleLimit: cfg.CandleLimit,
		retryPause:  cfg.TickerRetryPause,
		doer:        cfg.Transport,
		validator:   NewValidator(),
		log:         cfg.Logger,
	}

	if o.baseURL == "" {
		o.baseURL = BaseURL
	}

	if o.candleLimit <= 0 {
		o.candleLimit = CandleLimit
	}

	if o.retryPause <= 0 {
		o.retryPause = constants.DefaultTickerRetryPause
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

func (o *Client) balances(ctx context.Context) (*exchange.Balances, error) {
	var me member

	if err := o.private(ctx, http.MethodGet, "members/me", nil, &me); err != nil {
		return nil, err
	}

	return me.balances()
}

func (o *Client) GetAvailableMarkets(ctx context.Context) ([]string, error) {
	var markets []market

	if err := o.public(ctx, "markets", nil, &markets); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(markets))
	for _, m := range markets {
		result = append(result, m.ID)
	}

	return result, nil
}

//
// GetCoinPrice reads asks and bids off the top of the order book and the latest price off the
// market's ticker.
//
func (o *Client) GetCoinPrice(ctx context.Context, coin, quote string, side exchange.MarketSide) (string, error) {
	symbol := Symbol(coin, quote)

	if side == exchange.Latest {
		var t struct {
			At     int64  `json:"at"`
			Ticker ticker `json:"ticker"`
		}

		if err := o.public(ctx, "tickers/"+symbol, nil, &t); err != nil {
			return "", err
		}

		return t.Ticker.price(side)
	}

	book, err := o.GetOrderBook(ctx, coin, quote)
	if err != nil {
		return "", err
	}

	levels := book.Side(side)
	if len(levels) == 0 {
		return "", fmt.Errorf("%w: %s has an empty %s side", exchange.ErrPairNotFound, symbol, side)
	}

	return levels[0].Price, nil
}

//
// GetCoinsPrices fetches every ticker at once and retries a few times if Graviex answers with
// nothing.
//
func (o *Client) GetCoinsPrices(ctx context.Context, coins []string, quote string, side exchange.MarketSide) (map[string]string, error) {
	var tickers map[string]ticker

	err := exchange.RetryEmpty(ctx, constants.TickerAttempts, o.retryPause, func() (bool, error) {
		tickers = nil

		if err := o.public(ctx, "tickers", nil, &tickers); err != nil {
			return false, err
		}

		return len(tickers) == 0, nil
	})
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(coins))
	for _, coin := range coins {
		wanted[strings.ToLower(coin)] = struct{}{}
	}

	prices := make(map[string]string)

	for _, t := range tickers {
		if !strings.EqualFold(t.QuoteUnit, quote) {
			continue
		}

		if _, ok := wanted[strings.ToLower(t.BaseUnit)]; !ok {
			continue
		}

		price, err := t.price(side)
		if err != nil {
			return nil, err
		}

		prices[strings.ToUpper(t.BaseUnit)] = price
	}

	return prices, nil
}

func (o *Client) GetOrderBook(ctx context.Context, coin, quote string) (*exchange.OrderBook, error) {
	var book orderBook

	query := signer.Query{}.Add("market", Symbol(coin, quote))

	if err := o.public(ctx, "order_book", query, &book); err != nil {
		return nil, err
	}

	return book.normalize(), nil
}

//
// GetCandles asks for candles starting at start. The k endpoint has no end parameter, so rows past
// end are dropped here.
//
func (o *Client) GetCandles(
	ctx context.Context,
	coin string,
	quote string,
	interval exchange.Interval,
	start time.Time,
	end time.Time,
) ([]kline.Candle, error) {
	period, err := intervals.Code(interval)
	if err != nil {
		return nil, err
	}

	if err := exchange.ValidateRange(start, end); err != nil {
		return nil, err
	}

	query := signer.Query{}.
		Add("market", Symbol(coin, quote)).
		Add("period", period).
		Add("timestamp", strconv.FormatInt(start.Unix(), 10)).
		Add("limit", strconv.Itoa(o.candleLimit))

	candles, err := o.candles(ctx, query)
	if err != nil || end.IsZero() {
		return candles, err
	}

	kept := candles[:0]
	for _, c := range candles {
		if c.Ts <= end.Unix() {
			kept = append(kept, c)
		}
	}

	return kept, nil
}

func (o *Client) GetLastCandles(
	ctx context.Context,
	coin string,
	quote string,
	interval exchange.Interval,
	amount int,
) ([]kline.Candle, error) {
	period, err := intervals.Code(interval)
	if err != nil {
		return nil, err
	}

	if err := exchange.ValidateLastCandles(amount, o.candleLimit); err != nil {
		return nil, err
	}

	query := signer.Query{}.
		Add("market", Symbol(coin, quote)).
		Add("period", period).
		Add("limit", strconv.Itoa(amount))

	return o.candles(ctx, query)
}

func (o *Client) candles(ctx context.Context, query signer.Query) ([]kline.Candle, error) {
	var rows [][]json.RawMessage

	if err := o.public(ctx, "k", query, &rows); err != nil {
		return nil, err
	}

	return kline.GraviexLayout.NormalizeAll(rows)
}

func (o *Client) WithdrawAsset(ctx context.Context, asset, address, amount string) (*exchange.Receipt, error) {
	if address == "" {
		return nil, exchange.NewParameterError("address", "must be provided", address)
	}

	if err := exchange.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	query := signer.Query{}.
		Add("currency", strings.ToLower(asset)).
		Add("fund_uid", address).
		Add("sum", amount)

	var raw json.RawMessage

	if err := o.private(ctx, http.MethodPost, "create_withdraw", query, &raw); err != nil {
		return nil, err
	}

	var result struct {
		ID json.Number `json:"id"`
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode create_withdraw response: %w", err)
	}

	return &exchange.Receipt{ID: result.ID.String(), Raw: raw}, nil
}

func (o *Client) CreateOrder(
	ctx context.Context,
	market string,
	side exchange.OrderSide,
	price string,
	amount string,
) (*exchange.Receipt, error) {
	if _, err := exchange.ParseOrderSide(string(side)); err != nil {
		return nil, err
	}

	if market == "" {
		return nil, exchange.NewParameterError("market", "must be provided", market)
	}

	if err := exchange.ValidateAmount("price", price); err != nil {
		return nil, err
	}

	if err := exchange.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	query := signer.Query{}.
		Add("market", strings.ToLower(exchange.CompactSymbol(market))).
		Add("side", string(side)).
		Add("price", price).
		Add("volume", amount)

	var created order

	raw, err := o.submit(ctx, "orders", query, &created)
	if err != nil {
		return nil, err
	}

	return &exchange.Receipt{ID: strconv.FormatInt(created.ID, 10), Raw: raw}, nil
}

func (o *Client) submit(ctx context.Context, endpoint string, query signer.Query, out interface{}) (json.RawMessage, error) {
	var raw json.RawMessage

	if err := o.private(ctx, http.MethodPost, endpoint, query, &raw); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return raw, nil
}

func (o *Client) public(ctx context.Context, endpoint string, query signer.Query, out interface{}) error {
	return o.do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    o.baseURL + PathPrefix + endpoint + query.Suffix(),
	}, endpoint, out)
}

//
// private signs the request the Graviex way: access_key and tonce join the parameters, the whole
// set is sorted, and "METHOD|/api/v3/endpoint|query" is signed. GET requests carry the result in
// the URL and POST requests as a form body.
//
func (o *Client) private(ctx context.Context, method, endpoint string, query signer.Query, out interface{}) error {
	if err := o.creds.Require(false); err != nil {
		return err
	}

	signed := query.
		Add("access_key", o.creds.AccessKey).
		Add("tonce", strconv.FormatInt(signer.Now().UnixMilli(), 10)).
		Sorted()

	payload := signed.Encode()
	signature := signer.SignHex(o.creds.SecretKey, method+"|"+PathPrefix+endpoint+"|"+payload)
	signed = signed.Add("signature", signature)

	req := &transport.Request{
		Method: method,
		URL:    o.baseURL + PathPrefix + endpoint,
	}

	if method == http.MethodGet {
		req.URL += signed.Suffix()
	} else {
		req.Header = http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}}
		req.Body = []byte(signed.Encode())
	}

	return o.do(ctx, req, endpoint, out)
}

func (o *Client) do(ctx context.Context, req *transport.Request, endpoint string, out interface{}) error {
	resp, err := o.doer.Do(ctx, req)
	if err != nil {
		return err
	}

	//
	// Check the response for an error envelope first; Graviex sends those with non-2xx statuses.
	//
	var envelope errorEnvelope

	if json.Unmarshal(resp.Body, &envelope) == nil && envelope.Error != nil {
		o.log.Debugw("request rejected", "endpoint", endpoint, "code", envelope.Error.Code)

		return o.validator.Check(strconv.Itoa(envelope.Error.Code), envelope.Error.Message)
	}

	if resp.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", exchange.ErrPairNotFound, endpoint)
	}

	if !resp.OK() {
		return exchange.NewHTTPError(resp.Status, resp.Body)
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = resp.Body

		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}

//
// Symbol renders a Graviex market id ("reqbtc").
//
func Symbol(coin, quote string) string {
	return strings.ToLower(coin) + strings.ToLower(quote)
}
