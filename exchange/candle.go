package exchange

import (
	"context"
	"time"

	"github.com/lukehollenback/cryptox/kline"
	"github.com/lukehollenback/cryptox/store"
)

//
// ValidateLastCandles checks a requested candle count against an exchange's page limit.
//
func ValidateLastCandles(amount, limit int) error {
	if amount < 1 {
		return NewParameterError("amount", "must be at least 1", amount)
	}

	if amount > limit {
		return NewParameterError("amount", "exceeds the exchange page limit", amount)
	}

	return nil
}

//
// ValidateRange checks a candle time range. A zero end is allowed and means "up to now".
//
func ValidateRange(start, end time.Time) error {
	if start.IsZero() {
		return NewParameterError("start", "must be provided", start)
	}

	if !end.IsZero() && end.Before(start) {
		return NewParameterError("end", "must not be before start", end)
	}

	return nil
}

//
// DumpRequest describes a market data dump. Either Amount or Start must be set; Amount wins if
// both are.
//
type DumpRequest struct {
	Coin     string
	Quote    string
	Interval Interval
	Path     string
	Amount   int
	Start    time.Time
	End      time.Time
}

//
// DumpMarketData fetches candles from the client and writes them to req.Path. The candles that were
// written are returned as well.
//
func DumpMarketData(ctx context.Context, client Client, req DumpRequest) ([]kline.Candle, error) {
	var (
		candles []kline.Candle
		err     error
	)

	//
	// Figure out which flavour of candle request the caller asked for.
	//
	switch {
	case req.Amount > 0:
		candles, err = client.GetLastCandles(ctx, req.Coin, req.Quote, req.Interval, req.Amount)
	case !req.Start.IsZero():
		candles, err = client.GetCandles(ctx, req.Coin, req.Quote, req.Interval, req.Start, req.End)
	default:
		return nil, NewParameterError("amount", "provide an amount or a start time", req.Amount)
	}

	if err != nil {
		return nil, err
	}

	//
	// Write them out.
	//
	if err := store.Dump(candles, req.Path); err != nil {
		return nil, err
	}

	return candles, nil
}
