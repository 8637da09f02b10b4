//
// Package kline turns the raw kline arrays returned by exchange candle endpoints into canonical
// candles. Exchanges disagree on both the position of the OHLC fields and on the unit of the
// opening timestamp, so every exchange describes its rows with a Layout.
//
package kline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrData is matched by every DataError.
var ErrData = errors.New("malformed kline data")

//
// Candle is the canonical, exchange-agnostic candle. Ts is the opening time in whole unix seconds.
// OHLC consistency is whatever the exchange delivered; nothing here validates it.
//
type Candle struct {
	Ts    int64
	Open  float64
	High  float64
	Low   float64
	Close float64
}

//
// TimeUnit is the unit an exchange uses for kline opening times.
//
type TimeUnit int

const (
	Seconds TimeUnit = iota
	Milliseconds
)

//
// Layout gives the index of each canonical field within an exchange's raw kline row.
//
type Layout struct {
	Ts    int
	Open  int
	High  int
	Low   int
	Close int
	Unit  TimeUnit
}

// NOTE ~> Binance rows look like:
//
//  [0]  1499040000000,      // Open time (ms)
//  [1]  "0.01634790",       // Open
//  [2]  "0.80000000",       // High
//  [3]  "0.01575800",       // Low
//  [4]  "0.01577100",       // Close
//  [5]  "148976.11427815",  // Volume
//  [6]  1499644799999,      // Close time
//  ...
//
//  while KuCoin rows are ["1545904980", "0.058", "0.049", "0.058", "0.049", "0.018", "0.000945"],
//  i.e. [time (s), open, close, high, low, volume, turnover].

var (
	BinanceLayout = Layout{Ts: 0, Open: 1, High: 2, Low: 3, Close: 4, Unit: Milliseconds}
	KuCoinLayout  = Layout{Ts: 0, Open: 1, Close: 2, High: 3, Low: 4, Unit: Seconds}
	KrakenLayout  = Layout{Ts: 0, Open: 1, High: 2, Low: 3, Close: 4, Unit: Seconds}
	GraviexLayout = Layout{Ts: 0, Open: 1, High: 2, Low: 3, Close: 4, Unit: Seconds}
)

func (o Layout) width() int {
	widest := o.Ts

	for _, i := range []int{o.Open, o.High, o.Low, o.Close} {
		if i > widest {
			widest = i
		}
	}

	return widest + 1
}

//
// DataError describes the first field of a kline row that could not be parsed.
//
type DataError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (o *DataError) Error() string {
	if o.Err != nil {
		return fmt.Sprintf("kline row %d: bad %s field %s: %s", o.Row, o.Field, o.Value, o.Err)
	}

	return fmt.Sprintf("kline row %d: bad %s field %s", o.Row, o.Field, o.Value)
}

func (o *DataError) Unwrap() error {
	return o.Err
}

func (o *DataError) Is(target error) bool {
	return target == ErrData
}

//
// Normalize converts a single raw kline row into a Candle.
//
func (o Layout) Normalize(row []json.RawMessage) (Candle, error) {
	return o.normalize(0, row)
}

//
// NormalizeAll converts every row, preserving order. A single malformed row fails the whole call.
//
func (o Layout) NormalizeAll(rows [][]json.RawMessage) ([]Candle, error) {
	candles := make([]Candle, 0, len(rows))

	for i, row := range rows {
		candle, err := o.normalize(i, row)
		if err != nil {
			return nil, err
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

//
// Decode unmarshals a JSON array of kline rows and normalizes it in one step.
//
func (o Layout) Decode(data []byte) ([]Candle, error) {
	var rows [][]json.RawMessage

	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &DataError{Row: -1, Field: "payload", Value: truncate(data), Err: err}
	}

	return o.NormalizeAll(rows)
}

func (o Layout) normalize(index int, row []json.RawMessage) (Candle, error) {
	if len(row) < o.width() {
		return Candle{}, &DataError{
			Row:   index,
			Field: "row",
			Value: fmt.Sprintf("%d fields", len(row)),
			Err:   fmt.Errorf("expected at least %d fields", o.width()),
		}
	}

	var (
		candle Candle
		err    error
	)

	//
	// Parse the opening time and bring it down to whole seconds.
	//
	candle.Ts, err = parseTimestamp(row[o.Ts])
	if err != nil {
		return Candle{}, &DataError{Row: index, Field: "ts", Value: string(row[o.Ts]), Err: err}
	}

	if o.Unit == Milliseconds {
		candle.Ts /= 1000
	}

	//
	// Parse the prices.
	//
	fields := []struct {
		name string
		at   int
		dst  *float64
	}{
		{"open", o.Open, &candle.Open},
		{"high", o.High, &candle.High},
		{"low", o.Low, &candle.Low},
		{"close", o.Close, &candle.Close},
	}

	for _, f := range fields {
		*f.dst, err = parseFloat(row[f.at])
		if err != nil {
			return Candle{}, &DataError{Row: index, Field: f.name, Value: string(row[f.at]), Err: err}
		}
	}

	return candle, nil
}

//
// unquote returns the text of a JSON number or the contents of a JSON string.
//
func unquote(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '"' {
		var s string

		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}

		return s, nil
	}

	return string(raw), nil
}

func parseFloat(raw json.RawMessage) (float64, error) {
	s, err := unquote(raw)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}

	return f, nil
}

func parseTimestamp(raw json.RawMessage) (int64, error) {
	s, err := unquote(raw)
	if err != nil {
		return 0, err
	}

	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}

	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}

	return int64(f), nil
}

func truncate(data []byte) string {
	const limit = 64

	if len(data) > limit {
		return string(data[:limit]) + "..."
	}

	return string(data)
}
