package binance

import (
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/lukehollenback/cryptox/exchange"
)

//
// balances sums the free and locked parts of every asset on the account.
//
func balances(account *binance.Account) (*exchange.Balances, error) {
	result := exchange.NewBalances()

	for _, b := range account.Balances {
		if err := result.Add(b.Asset, b.Free, b.Locked); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func bookPrice(t *binance.BookTicker, side exchange.MarketSide) (string, error) {
	switch side {
	case exchange.Ask:
		return t.AskPrice, nil
	case exchange.Bid:
		return t.BidPrice, nil
	}

	return "", exchange.NewParameterError("side", "book tickers only carry asks and bids", side)
}

func levels(raw []common.PriceLevel) []exchange.Level {
	result := make([]exchange.Level, 0, len(raw))

	for _, l := range raw {
		result = append(result, exchange.Level{Price: l.Price, Amount: l.Quantity})
	}

	return result
}
