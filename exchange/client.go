package exchange

import (
	"context"
	"time"

	"github.com/lukehollenback/cryptox/kline"
)

//
// Client generically provides an interface to an object that can be used to interact with a
// cryptocurrency exchange's regular REST API. Normally, this is the client used to do things
// like place orders, check balances, and retrieve historical trade data.
//
// Every failure is returned as an error that can be matched with errors.Is against one of the
// sentinels in this package (ErrUnavailable, ErrAuth, ErrRejected, ErrUnknownCode,
// ErrInvalidParameter, ErrNotSupported, ErrNoSuchAsset, ErrPairNotFound). Operations an exchange
// does not implement return ErrNotSupported without touching the network.
//
type Client interface {

	//
	// Name returns the lowercase name of the exchange.
	//
	Name() string

	//
	// GetBalance returns the total (free plus locked) balance of the coin, formatted with ten
	// fractional digits. The coin is matched case-insensitively. ErrNoSuchAsset is returned if
	// the account holds no entry for the coin at all.
	//
	GetBalance(ctx context.Context, coin string) (string, error)

	//
	// GetAllBalances returns every non-zero balance on the account keyed by currency.
	//
	GetAllBalances(ctx context.Context) (map[string]string, error)

	//
	// GetAvailableMarkets returns the exchange's market symbols, in the exchange's own naming
	// convention and in the order the exchange listed them.
	//
	GetAvailableMarkets(ctx context.Context) ([]string, error)

	//
	// GetCoinPrice returns the ask, bid or latest price of the coin quoted in quote.
	// ErrPairNotFound is returned if the market does not exist.
	//
	GetCoinPrice(ctx context.Context, coin, quote string, side MarketSide) (string, error)

	//
	// GetCoinsPrices returns prices for the requested coins quoted in quote. Only requested coins
	// that have a market are present in the result.
	//
	GetCoinsPrices(ctx context.Context, coins []string, quote string, side MarketSide) (map[string]string, error)

	//
	// GetOrderBook returns both sides of the order book of the coin/quote market.
	//
	GetOrderBook(ctx context.Context, coin, quote string) (*OrderBook, error)

	//
	// GetCandles returns candles between start and end, in the order the exchange returned them.
	// A zero end means "up to now". The interval is checked against the exchange's supported set
	// before any request is made.
	//
	GetCandles(ctx context.Context, coin, quote string, interval Interval, start, end time.Time) ([]kline.Candle, error)

	//
	// GetLastCandles returns the most recent amount candles. Amounts above the exchange's page
	// limit are rejected before any request is made.
	//
	GetLastCandles(ctx context.Context, coin, quote string, interval Interval, amount int) ([]kline.Candle, error)

	//
	// WithdrawAsset asks the exchange to send amount of asset to address.
	//
	WithdrawAsset(ctx context.Context, asset, address, amount string) (*Receipt, error)

	//
	// CreateOrder places a limit order on the given market.
	//
	CreateOrder(ctx context.Context, market string, side OrderSide, price, amount string) (*Receipt, error)

	//
	// CreateMarketOrder places a market order for coin/quote. Exactly one of size (in coin) or
	// amount (in quote) must be provided.
	//
	CreateMarketOrder(ctx context.Context, side OrderSide, coin, quote, size, amount string) (*Receipt, error)
}
