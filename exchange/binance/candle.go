package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/kline"
	"github.com/lukehollenback/cryptox/signer"
	"github.com/lukehollenback/cryptox/transport"
)

// NOTE ~> According to https://tinyurl.com/y4eywj46, the structure of the arrays returned from
//  the Binance candlestick endpoint are as follows:
//
//  [0]  1499040000000,      // Open time
//  [1]  "0.01634790",       // Open
//  [2]  "0.80000000",       // High
//  [3]  "0.01575800",       // Low
//  [4]  "0.01577100",       // Close
//  [5]  "148976.11427815",  // Volume
//  [6]  1499644799999,      // Close time
//  ...
//
//  Only the first five fields are used; kline.BinanceLayout describes them.

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

	query := signer.Query{}.
		Add("symbol", Symbol(coin, quote)).
		Add("interval", code).
		Add("startTime", strconv.FormatInt(start.UnixMilli(), 10))

	if !end.IsZero() {
		query = query.Add("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	}

	query = query.Add("limit", strconv.Itoa(o.candleLimit))

	return o.klines(ctx, query)
}

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

	query := signer.Query{}.
		Add("symbol", Symbol(coin, quote)).
		Add("interval", code).
		Add("limit", strconv.Itoa(amount))

	return o.klines(ctx, query)
}

//
// klines calls the public kline endpoint directly rather than through the SDK so that the rows go
// through the shared normalizer untouched.
//
func (o *Client) klines(ctx context.Context, query signer.Query) ([]kline.Candle, error) {
	//
	// Make the endpoint request and handle any errors along the way.
	//
	resp, err := o.doer.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    o.baseURL + KlinesPath + query.Suffix(),
	})
	if err != nil {
		return nil, err
	}

	//
	// Check the response for API errors.
	//
	if !resp.OK() {
		var apiErr struct {
			Code    json.Number `json:"code"`
			Message string      `json:"msg"`
		}

		if err := json.Unmarshal(resp.Body, &apiErr); err != nil || apiErr.Code == "" {
			return nil, exchange.NewHTTPError(resp.Status, resp.Body)
		}

		return nil, classify(o.validator, apiErr.Code.String(), apiErr.Message, query.Encode())
	}

	//
	// Parse the response.
	//
	return kline.BinanceLayout.Decode(resp.Body)
}
