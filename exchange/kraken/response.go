package kraken

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lukehollenback/cryptox/exchange"
)

type envelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

//
// object is a JSON object whose keys keep the order Kraken sent them in.
//
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

func decodeObject(data []byte) (*object, error) {
	o := &object{values: make(map[string]json.RawMessage)}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return o, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}

		if _, seen := o.values[key]; !seen {
			o.keys = append(o.keys, key)
		}

		o.values[key] = value
	}

	return o, nil
}

//
// single returns the only pair entry of a per-pair result, skipping bookkeeping keys like "last".
//
func (o *object) single() (string, json.RawMessage, bool) {
	for _, key := range o.keys {
		if key == "last" {
			continue
		}

		return key, o.values[key], true
	}

	return "", nil, false
}

type ticker struct {
	Ask  []string `json:"a"`
	Bid  []string `json:"b"`
	Last []string `json:"c"`
}

func (o *ticker) price(side exchange.MarketSide) (string, error) {
	var values []string

	switch side {
	case exchange.Ask:
		values = o.Ask
	case exchange.Bid:
		values = o.Bid
	case exchange.Latest:
		values = o.Last
	default:
		return "", exchange.NewParameterError("side", "unknown market side", side)
	}

	if len(values) == 0 {
		return "", fmt.Errorf("%w: ticker has no %s price", exchange.ErrEmptyResponse, side)
	}

	return values[0], nil
}

type depth struct {
	Asks [][]json.RawMessage `json:"asks"`
	Bids [][]json.RawMessage `json:"bids"`
}

func (o *depth) normalize() (*exchange.OrderBook, error) {
	asks, err := levels(o.Asks)
	if err != nil {
		return nil, err
	}

	bids, err := levels(o.Bids)
	if err != nil {
		return nil, err
	}

	return &exchange.OrderBook{Asks: asks, Bids: bids}, nil
}

//
// levels converts [price, volume, timestamp] rows.
//
func levels(rows [][]json.RawMessage) ([]exchange.Level, error) {
	result := make([]exchange.Level, 0, len(rows))

	for _, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("order book level has %d fields", len(row))
		}

		price, err := text(row[0])
		if err != nil {
			return nil, err
		}

		volume, err := text(row[1])
		if err != nil {
			return nil, err
		}

		result = append(result, exchange.Level{Price: price, Amount: volume})
	}

	return result, nil
}

func text(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}

	return n.String(), nil
}

type addOrderResult struct {
	Descr struct {
		Order string `json:"order"`
	} `json:"descr"`
	TxID []string `json:"txid"`
}

func (o *addOrderResult) id() string {
	if len(o.TxID) == 0 {
		return ""
	}

	return o.TxID[0]
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
