package graviex

import (
	"github.com/lukehollenback/cryptox/exchange"
)

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type member struct {
	SN       string    `json:"sn"`
	Accounts []account `json:"accounts_filtered"`
}

type account struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Locked   string `json:"locked"`
}

func (o *member) balances() (*exchange.Balances, error) {
	result := exchange.NewBalances()

	for _, a := range o.Accounts {
		if err := result.Add(a.Currency, a.Balance, a.Locked); err != nil {
			return nil, err
		}
	}

	return result, nil
}

type market struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ticker struct {
	Name      string `json:"name"`
	BaseUnit  string `json:"base_unit"`
	QuoteUnit string `json:"quote_unit"`
	Buy       string `json:"buy"`
	Sell      string `json:"sell"`
	Last      string `json:"last"`
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

type order struct {
	ID              int64  `json:"id"`
	Side            string `json:"side"`
	Price           string `json:"price"`
	RemainingVolume string `json:"remaining_volume"`
}

type orderBook struct {
	Asks []order `json:"asks"`
	Bids []order `json:"bids"`
}

func (o *orderBook) normalize() *exchange.OrderBook {
	return &exchange.OrderBook{
		Asks: levels(o.Asks),
		Bids: levels(o.Bids),
	}
}

func levels(orders []order) []exchange.Level {
	result := make([]exchange.Level, 0, len(orders))

	for _, o := range orders {
		result = append(result, exchange.Level{Price: o.Price, Amount: o.RemainingVolume})
	}

	return result
}
