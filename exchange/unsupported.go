package exchange

import (
	"context"
	"time"

	"github.com/lukehollenback/cryptox/kline"
)

//
// Unsupported implements every Client operation by returning ErrNotSupported. Adapters embed it and
// override the operations their exchange actually offers.
//
type Unsupported struct{}

func (Unsupported) GetBalance(context.Context, string) (string, error) {
	return "", ErrNotSupported
}

func (Unsupported) GetAllBalances(context.Context) (map[string]string, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetAvailableMarkets(context.Context) ([]string, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetCoinPrice(context.Context, string, string, MarketSide) (string, error) {
	return "", ErrNotSupported
}

func (Unsupported) GetCoinsPrices(context.Context, []string, string, MarketSide) (map[string]string, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetOrderBook(context.Context, string, string) (*OrderBook, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetCandles(context.Context, string, string, Interval, time.Time, time.Time) ([]kline.Candle, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetLastCandles(context.Context, string, string, Interval, int) ([]kline.Candle, error) {
	return nil, ErrNotSupported
}

func (Unsupported) WithdrawAsset(context.Context, string, string, string) (*Receipt, error) {
	return nil, ErrNotSupported
}

func (Unsupported) CreateOrder(context.Context, string, OrderSide, string, string) (*Receipt, error) {
	return nil, ErrNotSupported
}

func (Unsupported) CreateMarketOrder(context.Context, OrderSide, string, string, string, string) (*Receipt, error) {
	return nil, ErrNotSupported
}
