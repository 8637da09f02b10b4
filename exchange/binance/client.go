package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"github.com/lukehollenback/cryptox/constants"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/transport"
	"github.com/lukehollenback/cryptox/validator"
)

//
// Config holds everything needed to build a Client. Zero values fall back to the Binance defaults.
//
type Config struct {
	Credentials      exchange.Credentials
	BaseURL          string
	CandleLimit      int
	TickerRetryPause time.Duration
	HTTPClient       *http.Client
	Transport        transport.Doer
	Logger           *logger.Logger
}

//
// Client implements the exchange.Client interface for the Binance API. Account, ticker, depth,
// withdrawal and order endpoints go through the official SDK; klines go through the shared
// transport.
//
type Client struct {
	creds       exchange.Credentials
	baseURL     string
	candleLimit int
	retryPause  time.Duration
	sdk         *binance.Client
	doer        transport.Doer
	validator   *validator.Validator
	orderIDs    *exchange.OrderIDs
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
		orderIDs:    exchange.NewOrderIDs(),
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
		o.doer = transport.NewHTTP(Name, transport.WithHTTPClient(cfg.HTTPClient))
	}

	if o.log == nil {
		o.log = logger.Nop()
	}

	o.log = o.log.With("exchange", Name)

	o.sdk = binance.NewClient(o.creds.AccessKey, o.creds.SecretKey)
	o.sdk.BaseURL = o.baseURL

	if cfg.HTTPClient != nil {
		o.sdk.HTTPClient = cfg.HTTPClient
	}

	return o
}

func (o *Client) Name() string {
	return Name
}

func (o *Client) OrderIDs() *exchange.OrderIDs {
	return o.orderIDs
}

//
// GetBalance returns free plus locked. An asset listed with a zero balance is not a miss.
//
func (o *Client) GetBalance(ctx context.Context, coin string) (string, error) {
	all, err := o.balances(ctx)
	if err != nil {
		return "", err
	}

	balance, ok := all.Get(coin)
	if !ok {
		return "", fmt.Errorf("%w: %s", exchange.ErrNoSuchAsset, coin)
	}

	return balance, nil
}

func (o *Client) GetAllBalances(ctx context.Context) (map[string]string, error) {
	all, err := o.balances(ctx)
	if err != nil {
		return nil, err
	}

	return all.NonZero(), nil
}

func (o *Client) balances(ctx context.Context) (*exchange.Balances, error) {
	if err := o.creds.Require(false); err != nil {
		return nil, err
	}

	account, err := o.sdk.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, translate(o.validator, err, "account")
	}

	return balances(account)
}

func (o *Client) GetAvailableMarkets(ctx context.Context) ([]string, error) {
	prices, err := o.sdk.NewListPricesService().Do(ctx)
	if err != nil {
		return nil, translate(o.validator, err, "ticker")
	}

	markets := make([]string, 0, len(prices))
	for _, p := range prices {
		markets = append(markets, p.Symbol)
	}

	return markets, nil
}

func (o *Client) GetCoinPrice(ctx context.Context, coin, quote string, side exchange.MarketSide) (string, error) {
	symbol := Symbol(coin, quote)

	if side == exchange.Latest {
		prices, err := o.sdk.NewListPricesService().Symbol(symbol).Do(ctx)
		if err != nil {
			return "", translate(o.validator, err, symbol)
		}

		for _, p := range prices {
			if p.Symbol == symbol {
				return p.Price, nil
			}
		}

		return "", fmt.Errorf("%w: %s", exchange.ErrPairNotFound, symbol)
	}

	tickers, err := o.sdk.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return "", translate(o.validator, err, symbol)
	}

	for _, t := range tickers {
		if t.Symbol == symbol {
			return bookPrice(t, side)
		}
	}

	return "", fmt.Errorf("%w: %s", exchange.ErrPairNotFound, symbol)
}

//
// GetCoinsPrices fetches every ticker at once. Binance occasionally answers that call with an empty
// list, so it is retried a few times before giving up.
//
func (o *Client) GetCoinsPrices(ctx context.Context, coins []string, quote string, side exchange.MarketSide) (map[string]string, error) {
	wanted := make(map[string]string, len(coins))
	for _, coin := range coins {
		wanted[Symbol(coin, quote)] = strings.ToUpper(coin)
	}

	prices := make(map[string]string)

	if side == exchange.Latest {
		var tickers []*binance.SymbolPrice

		err := exchange.RetryEmpty(ctx, constants.TickerAttempts, o.retryPause, func() (bool, error) {
			var err error

			tickers, err = o.sdk.NewListPricesService().Do(ctx)

			return len(tickers) == 0, err
		})
		if err != nil {
			return nil, translate(o.validator, err, "ticker")
		}

		for _, t := range tickers {
			if coin, ok := wanted[t.Symbol]; ok {
				prices[coin] = t.Price
			}
		}

		return prices, nil
	}

	var tickers []*binance.BookTicker

	err := exchange.RetryEmpty(ctx, constants.TickerAttempts, o.retryPause, func() (bool, error) {
		var err error

		tickers, err = o.sdk.NewListBookTickersService().Do(ctx)
		if err != nil {
			o.log.Debugw("book ticker request failed", "error", err)
		}

		return len(tickers) == 0, err
	})
	if err != nil {
		return nil, translate(o.validator, err, "bookTicker")
	}

	for _, t := range tickers {
		coin, ok := wanted[t.Symbol]
		if !ok {
			continue
		}

		price, err := bookPrice(t, side)
		if err != nil {
			return nil, err
		}

		prices[coin] = price
	}

	return prices, nil
}

func (o *Client) GetOrderBook(ctx context.Context, coin, quote string) (*exchange.OrderBook, error) {
	symbol := Symbol(coin, quote)

	depth, err := o.sdk.NewDepthService().Symbol(symbol).Limit(DepthLimit).Do(ctx)
	if err != nil {
		return nil, translate(o.validator, err, symbol)
	}

	return &exchange.OrderBook{
		Asks: levels(depth.Asks),
		Bids: levels(depth.Bids),
	}, nil
}

func (o *Client) WithdrawAsset(ctx context.Context, asset, address, amount string) (*exchange.Receipt, error) {
	if address == "" {
		return nil, exchange.NewParameterError("address", "must be provided", address)
	}

	if err := exchange.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	if err := o.creds.Require(false); err != nil {
		return nil, err
	}

	res, err := o.sdk.NewCreateWithdrawService().
		Coin(strings.ToUpper(asset)).
		Address(address).
		Amount(amount).
		Do(ctx)
	if err != nil {
		return nil, translate(o.validator, err, asset)
	}

	return receipt(res.ID, "", res)
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

	return o.placeOrder(ctx, side, func(s *binance.CreateOrderService) *binance.CreateOrderService {
		return s.Symbol(exchange.CompactSymbol(market)).
			Type(binance.OrderTypeLimit).
			TimeInForce(binance.TimeInForceTypeGTC).
			Price(price).
			Quantity(amount)
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

	return o.placeOrder(ctx, side, func(s *binance.CreateOrderService) *binance.CreateOrderService {
		s = s.Symbol(Symbol(coin, quote)).Type(binance.OrderTypeMarket)

		if size != "" {
			return s.Quantity(size)
		}

		return s.QuoteOrderQty(amount)
	})
}

func (o *Client) placeOrder(
	ctx context.Context,
	side exchange.OrderSide,
	build func(*binance.CreateOrderService) *binance.CreateOrderService,
) (*exchange.Receipt, error) {
	if _, err := exchange.ParseOrderSide(string(side)); err != nil {
		return nil, err
	}

	if err := o.creds.Require(false); err != nil {
		return nil, err
	}

	clientOrderID := o.orderIDs.Next()

	service := o.sdk.NewCreateOrderService().
		Side(binance.SideType(strings.ToUpper(string(side)))).
		NewClientOrderID(clientOrderID)

	res, err := build(service).Do(ctx)
	if err != nil {
		return nil, translate(o.validator, err, "order")
	}

	return receipt(fmt.Sprint(res.OrderID), clientOrderID, res)
}

func receipt(id, clientOrderID string, payload interface{}) (*exchange.Receipt, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &exchange.Receipt{ID: id, ClientOrderID: clientOrderID, Raw: raw}, nil
}

//
// Symbol renders a Binance market symbol ("REQETH").
//
func Symbol(coin, quote string) string {
	return strings.ToUpper(coin) + strings.ToUpper(quote)
}
