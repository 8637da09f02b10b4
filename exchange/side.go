package exchange

import "strings"

//
// MarketSide selects either a side of the order book or the price type of a ticker.
//
type MarketSide int

const (
	Ask MarketSide = iota
	Bid
	Latest
)

func (o MarketSide) String() string {
	switch o {
	case Ask:
		return "asks"
	case Bid:
		return "bids"
	case Latest:
		return "latest"
	default:
		return "invalid"
	}
}

//
// ParseMarketSide accepts the side tags ("asks", "bids", "latest") as well as their singular
// forms.
//
func ParseMarketSide(s string) (MarketSide, error) {
	switch strings.ToLower(s) {
	case "asks", "ask":
		return Ask, nil
	case "bids", "bid":
		return Bid, nil
	case "latest", "last":
		return Latest, nil
	default:
		return 0, NewParameterError("side", "expected one of asks, bids, latest", s)
	}
}

//
// OrderSide is the direction of an order.
//
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

func ParseOrderSide(s string) (OrderSide, error) {
	switch OrderSide(strings.ToLower(s)) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", NewParameterError("side", "expected buy or sell", s)
	}
}
