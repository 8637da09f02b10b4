package kucoin

import (
	"github.com/lukehollenback/cryptox/exchange"
)

type account struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
	Holds     string `json:"holds"`
}

//
// sumAccounts adds up the balances of every account type (main, trade, margin) per currency.
//
func sumAccounts(accounts []account) (*exchange.Balances, error) {
	balances := exchange.NewBalances()

	for _, a := range accounts {
		if err := balances.Add(a.Currency, a.Balance); err != nil {
			return nil, err
		}
	}

	return balances, nil
}

type symbolInfo struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	BaseCurrency  string `json:"baseCurrency"`
	QuoteCurrency string `json:"quoteCurrency"`
	EnableTrading bool   `json:"enableTrading"`
}

type levelOne struct {
	Sequence string `json:"sequence"`
	Price    string `json:"price"`
	Size     string `json:"size"`
	BestBid  string `json:"bestBid"`
	BestAsk  string `json:"bestAsk"`
}

func (o *levelOne) price(side exchange.MarketSide) (string, error) {
	switch side {
	case exchange.Ask:
		return o.BestAsk, nil
	case exchange.Bid:
		return o.BestBid, nil
	case exchange.Latest:
		return o.Price, nil
	}

	return "", exchange.NewParameterError("side", "unknown market side", side)
}

type allTickers struct {
	Time   int64    `json:"time"`
	Ticker []ticker `json:"ticker"`
}

type ticker struct {
	Symbol string `json:"symbol"`
	Buy    string `json:"buy"`
	Sell   string `json:"sell"`
	Last   string `json:"last"`
}

func (o ticker) price(side exchange.MarketSide) (string, error) {
	switch side {
	case exchange.Ask:
		return o.Sell, nil
	case exchange.Bid:
		return o.Buy, nil
	case exchange.Latest:
		return o.Last, nil
	}

	return "", exchange.NewParameterError("side", "unknown market side", side)
}

type orderBook struct {
	Time int64       `json:"time"`
	Asks [][2]string `json:"asks"`
	Bids [][2]string `json:"bids"`
}

func (o *orderBook) normalize() *exchange.OrderBook {
	return &exchange.OrderBook{
		Asks: levels(o.Asks),
		Bids: levels(o.Bids),
	}
}

func levels(raw [][2]string) []exchange.Level {
	result := make([]exchange.Level, 0, len(raw))

	for _, l := range raw {
		result = append(result, exchange.Level{Price: l[0], Amount: l[1]})
	}

	return result
}

type withdrawalRequest struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
	Amount   string `json:"amount"`
}

type orderRequest struct {
	ClientOID string `json:"clientOid"`
	Side      string `json:"side"`
	Symbol    string `json:"symbol"`
	Type      string `json:"type"`
	Price     string `json:"price,omitempty"`
	Size      string `json:"size,omitempty"`
	Funds     string `json:"funds,omitempty"`
}
