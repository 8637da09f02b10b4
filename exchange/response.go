package exchange

import "encoding/json"

//
// Level is a single price level of an order book. Values are kept exactly as the exchange
// rendered them.
//
type Level struct {
	Price  string
	Amount string
}

//
// OrderBook holds both sides of a market's order book, best prices first.
//
type OrderBook struct {
	Asks []Level
	Bids []Level
}

//
// Side returns the levels of the requested side. Latest has no book side and yields nil.
//
func (o *OrderBook) Side(side MarketSide) []Level {
	switch side {
	case Ask:
		return o.Asks
	case Bid:
		return o.Bids
	default:
		return nil
	}
}

//
// Receipt is what an exchange hands back for a withdrawal or an order. ID is the exchange's
// identifier for it (if one was returned) and Raw is the vendor payload, untouched.
//
type Receipt struct {
	ID            string
	ClientOrderID string
	Raw           json.RawMessage
}
