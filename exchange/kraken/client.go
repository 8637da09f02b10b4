package kraken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
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
	BaseURL = "https://api.kraken.com"

	PublicPrefix  = "/0/public/"
	PrivatePrefix = "/0/private/"

	//
	// CandleLimit is the most OHLC entries Kraken returns for a single request.
	//
	CandleLimit = 720

	DepthLimit = 100
)

type Config struct {
	Credentials exchange.Credentials
	BaseURL     string
	CandleLimit int
	Transport   transport.Doer
	Logger      *logger.Logger
}

//
// Client implements the exchange.Client interface for the Kraken API.
//
type Client struct {
	creds       exchange.Credentials
	baseURL     string
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

func (o *Client) OrderIDs() *exchange.OrderIDs {
	return o.orderIDs
}

//
// GetBalance matches the coin against Kraken's asset names, which may carry an X (crypto) or Z
// (fiat) prefix.
//
func (o *Client) GetBalance(ctx context.Context, coin string) (string, error) {
	balances, err := o.balances(ctx)
	if err != nil {
		return "", err
	}

	for _, name := range assetNames(coin) {
		if balance, ok := balances.Get(name); ok {
			return balance, nil
		}
	}

	return "", fmt.Errorf("%w: %s", exchange.ErrNoSuchAsset, coin)
}

func (o *Client) GetAllBalances(ctx context.Context) (map[string]string, error) {
	balances, err := o.balances(ctx)
	if err != nil {
		return nil, err
	}

	return balances.NonZero(), nil
}

func (o *Client) balances(ctx context.Context) (*exchange.Balances, error) {
	var result json.RawMessage

	if err := o.private(ctx, "Balance", nil, &result); err != nil {
		return nil, err
	}

	assets, err := decodeObject(result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Balance response: %w", err)
	}

	balances := exchange.NewBalances()

	for _, asset := range assets.keys {
		amount, err := text(assets.values[asset])
		if err != nil {
			return nil, err
		}

		if err := balances.Add(asset, amount); err != nil {
			return nil, err
		}
	}

	return balances, nil
}

//
// GetAvailableMarkets returns the AssetPairs keys in the order Kraken listed them.
//
func (o *Client) GetAvailableMarkets(ctx context.Context) ([]string, error) {
	var result json.RawMessage

	if err := o.public(ctx, "AssetPairs", nil, &result); err != nil {
		return nil, err
	}

	pairs, err := decodeObject(result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode AssetPairs response: %w", err)
	}

	return pairs.keys, nil
}

func (o *Client) GetCoinPrice(ctx context.Context, coin, quote string, side exchange.MarketSide) (string, error) {
	pair := Symbol(coin, quote)

	tickers, err := o.tickers(ctx, pair)
	if err != nil {
		return "", err
	}

	_, raw, ok := tickers.single()
	if !ok {
		return "", fmt.Errorf("%w: %s", exchange.ErrPairNotFound, pair)
	}

	var t ticker
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", fmt.Errorf("failed to decode Ticker response: %w", err)
	}

	return t.price(side)
}

//
// GetCoinsPrices queries every requested pair in one Ticker call. Kraken answers with its own pair
// names, so results are matched back through the pair's altname. Kraken rejects the whole batch if
// any pair is unknown, in which case each pair is asked for on its own and unknown ones are left
// out.
//
func (o *Client) GetCoinsPrices(ctx context.Context, coins []string, quote string, side exchange.MarketSide) (map[string]string, error) {
	if len(coins) == 0 {
		return map[string]string{}, nil
	}

	pairs := make([]string, 0, len(coins))
	for _, coin := range coins {
		pairs = append(pairs, Symbol(coin, quote))
	}

	tickers, err := o.tickers(ctx, strings.Join(pairs, ","))
	if errors.Is(err, exchange.ErrPairNotFound) {
		if len(coins) == 1 {
			return map[string]string{}, nil
		}

		return o.coinPricesOneByOne(ctx, coins, quote, side)
	}

	if err != nil {
		return nil, err
	}

	prices := make(map[string]string)

	for _, coin := range coins {
		price, ok, err := tickers.priceOf(coin, quote, side)
		if err != nil {
			return nil, err
		}

		if ok {
			prices[strings.ToUpper(coin)] = price
		}
	}

	return prices, nil
}

func (o *Client) coinPricesOneByOne(ctx context.Context, coins []string, quote string, side exchange.MarketSide) (map[string]string, error) {
	prices := make(map[string]string)

	for _, coin := range coins {
		tickers, err := o.tickers(ctx, Symbol(coin, quote))
		if errors.Is(err, exchange.ErrPairNotFound) {
			o.log.Debugw("skipping unknown pair", "pair", Symbol(coin, quote))
			continue
		}

		if err != nil {
			return nil, err
		}

		price, ok, err := tickers.priceOf(coin, quote, side)
		if err != nil {
			return nil, err
		}

		if ok {
			prices[strings.ToUpper(coin)] = price
		}
	}

	return prices, nil
}

//
// priceOf finds the ticker of the coin/quote pair among the decoded Ticker results.
//
func (o *object) priceOf(coin, quote string, side exchange.MarketSide) (string, bool, error) {
	for _, key := range o.keys {
		if !matchesPair(key, coin, quote) {
			continue
		}

		var t ticker
		if err := json.Unmarshal(o.values[key], &t); err != nil {
			return "", false, fmt.Errorf("failed to decode Ticker response: %w", err)
		}

		price, err := t.price(side)
		if err != nil {
			return "", false, err
		}

		return price, true, nil
	}

	return "", false, nil
}

func (o *Client) tickers(ctx context.Context, pair string) (*object, error) {
	var result json.RawMessage

	if err := o.public(ctx, "Ticker", signer.Query{}.Add("pair", pair), &result); err != nil {
		return nil, err
	}

	return decodeObject(result)
}

func (o *Client) GetOrderBook(ctx context.Context, coin, quote string) (*exchange.OrderBook, error) {
	pair := Symbol(coin, quote)
	query := signer.Query{}.Add("pair", pair).Add("count", formatInt(DepthLimit))

	var result json.RawMessage

	if err := o.public(ctx, "Depth", query, &result); err != nil {
		return nil, err
	}

	books, err := decodeObject(result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Depth response: %w", err)
	}

	_, raw, ok := books.single()
	if !ok {
		return nil, fmt.Errorf("%w: %s", exchange.ErrPairNotFound, pair)
	}

	var d depth
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode Depth response: %w", err)
	}

	return d.normalize()
}

//
// GetCandles returns the entries since start, dropping whatever lies past end.
//
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

	candles, err := o.ohlc(ctx, Symbol(coin, quote), code, start)
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

//
// GetLastCandles asks for the window ending now and keeps the newest amount entries. Kraken lists
// entries oldest first.
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

	since := o.now().Add(-time.Duration(amount) * interval.Duration())

	candles, err := o.ohlc(ctx, Symbol(coin, quote), code, since)
	if err != nil {
		return nil, err
	}

	if len(candles) > amount {
		candles = candles[len(candles)-amount:]
	}

	return candles, nil
}

func (o *Client) ohlc(ctx context.Context, pair, code string, since time.Time) ([]kline.Candle, error) {
	query := signer.Query{}.
		Add("pair", pair).
		Add("interval", code).
		Add("since", formatInt(since.Unix()))

	var result json.RawMessage

	if err := o.public(ctx, "OHLC", query, &result); err != nil {
		return nil, err
	}

	series, err := decodeObject(result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode OHLC response: %w", err)
	}

	_, raw, ok := series.single()
	if !ok {
		return nil, fmt.Errorf("%w: %s", exchange.ErrPairNotFound, pair)
	}

	return kline.KrakenLayout.Decode(raw)
}

//
// WithdrawAsset withdraws to a withdrawal key. Kraken does not take raw addresses; address must be
// the name of a key set up on the account.
//
func (o *Client) WithdrawAsset(ctx context.Context, asset, address, amount string) (*exchange.Receipt, error) {
	if address == "" {
		return nil, exchange.NewParameterError("address", "must name a withdrawal key", address)
	}

	if err := exchange.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	query := signer.Query{}.
		Add("asset", strings.ToUpper(asset)).
		Add("key", address).
		Add("amount", amount)

	var raw json.RawMessage

	if err := o.private(ctx, "Withdraw", query, &raw); err != nil {
		return nil, err
	}

	var result struct {
		RefID string `json:"refid"`
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode Withdraw response: %w", err)
	}

	return &exchange.Receipt{ID: result.RefID, Raw: raw}, nil
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

	query := signer.Query{}.
		Add("pair", exchange.CompactSymbol(market)).
		Add("type", string(side)).
		Add("ordertype", "limit").
		Add("price", price).
		Add("volume", amount)

	return o.addOrder(ctx, side, query)
}

//
// CreateMarketOrder sends size as the volume in coin, or amount as the volume in quote with the
// viqc flag.
//
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

	query := signer.Query{}.
		Add("pair", Symbol(coin, quote)).
		Add("type", string(side)).
		Add("ordertype", "market")

	if size != "" {
		query = query.Add("volume", size)
	} else {
		query = query.Add("volume", amount).Add("oflags", "viqc")
	}

	return o.addOrder(ctx, side, query)
}

func (o *Client) addOrder(ctx context.Context, side exchange.OrderSide, query signer.Query) (*exchange.Receipt, error) {
	if _, err := exchange.ParseOrderSide(string(side)); err != nil {
		return nil, err
	}

	if err := o.creds.Require(false); err != nil {
		return nil, err
	}

	clientOrderID := o.orderIDs.Next()
	query = query.Add("cl_ord_id", clientOrderID)

	var raw json.RawMessage

	if err := o.private(ctx, "AddOrder", query, &raw); err != nil {
		return nil, err
	}

	var result addOrderResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode AddOrder response: %w", err)
	}

	return &exchange.Receipt{ID: result.id(), ClientOrderID: clientOrderID, Raw: raw}, nil
}

func (o *Client) public(ctx context.Context, method string, query signer.Query, out *json.RawMessage) error {
	return o.do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    o.baseURL + PublicPrefix + method + query.Suffix(),
	}, method, pairOf(query), out)
}

//
// private posts a nonce-stamped form and signs it with API-Sign.
//
func (o *Client) private(ctx context.Context, method string, query signer.Query, out *json.RawMessage) error {
	if err := o.creds.Require(false); err != nil {
		return err
	}

	nonce := formatInt(signer.Now().UnixMilli())
	body := signer.Query{{Key: "nonce", Value: nonce}}
	body = append(body, query...)

	path := PrivatePrefix + method
	encoded := body.Encode()

	signature, err := signer.SignKraken(o.creds.SecretKey, path, nonce, encoded)
	if err != nil {
		return exchange.NewParameterError("secret_key", err.Error(), "")
	}

	return o.do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    o.baseURL + path,
		Header: http.Header{
			"API-Key":      []string{o.creds.AccessKey},
			"API-Sign":     []string{signature},
			"Content-Type": []string{"application/x-www-form-urlencoded"},
		},
		Body: []byte(encoded),
	}, method, pairOf(query), out)
}

//
// pairOf returns the pair a request is about, if any.
//
func pairOf(query signer.Query) string {
	for _, p := range query {
		if p.Key == "pair" {
			return p.Value
		}
	}

	return ""
}

func (o *Client) do(ctx context.Context, req *transport.Request, method, pair string, out *json.RawMessage) error {
	resp, err := o.doer.Do(ctx, req)
	if err != nil {
		return err
	}

	var env envelope

	if err := json.Unmarshal(resp.Body, &env); err != nil {
		if !resp.OK() {
			return exchange.NewHTTPError(resp.Status, resp.Body)
		}

		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if len(env.Error) > 0 {
		o.log.Debugw("request rejected", "method", method, "error", env.Error[0])

		code, detail := errorCode(env.Error[0])
		checked := o.validator.Check(code, env.Error[0])

		if code == codeUnknownPair {
			if detail == "" {
				detail = pair
			}

			return fmt.Errorf("%w: %s: %w", exchange.ErrPairNotFound, detail, checked)
		}

		return checked
	}

	if !resp.OK() {
		return exchange.NewHTTPError(resp.Status, resp.Body)
	}

	*out = env.Result

	return nil
}

//
// Symbol renders a Kraken pair name ("XBTUSD"). Kraken accepts BTC as an alias for XBT.
//
func Symbol(coin, quote string) string {
	return strings.ToUpper(coin) + strings.ToUpper(quote)
}

func assetNames(coin string) []string {
	upper := strings.ToUpper(coin)
	names := []string{upper, "X" + upper, "Z" + upper}

	if upper == "BTC" {
		names = append(names, "XBT", "XXBT")
	}

	return names
}

//
// matchesPair reports whether a Kraken pair key (e.g. "XXBTZUSD" or "ADAUSD") is the coin/quote
// pair.
//
func matchesPair(key, coin, quote string) bool {
	key = strings.ToUpper(key)

	for _, c := range assetNames(coin) {
		for _, q := range assetNames(quote) {
			if key == c+q {
				return true
			}
		}
	}

	return false
}
