//
// Package validator classifies exchange responses by their status code.
//
// A Validator never logs and never mutates anything; it only tells an adapter whether a code means
// success and, if not, which kind of error to surface.
//
package validator

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/lukehollenback/cryptox/exchange"
)

//
// Validator classifies codes for one exchange.
//
type Validator struct {
	exchange string
	success  string
	table    *Table
	auth     map[string]struct{}
}

//
// New creates a validator. A code is valid iff it equals success. authCodes are the known codes
// that mean the exchange rejected the credentials or the signature.
//
func New(exchangeName, success string, table *Table, authCodes ...string) *Validator {
	auth := make(map[string]struct{}, len(authCodes))

	for _, code := range authCodes {
		auth[code] = struct{}{}
	}

	return &Validator{
		exchange: exchangeName,
		success:  success,
		table:    table,
		auth:     auth,
	}
}

func (o *Validator) IsValid(code string) bool {
	return code == o.success
}

//
// Describe resolves the human-readable message for the code.
//
func (o *Validator) Describe(code string) (string, bool) {
	return o.table.Lookup(code)
}

//
// Check returns nil for the success code. Otherwise it returns an *exchange.AuthError or an
// *exchange.APIError for codes in the table and an *exchange.UnknownCodeError for anything else.
// msg is whatever message the exchange sent along; it is only used when the table has nothing.
//
func (o *Validator) Check(code, msg string) error {
	if o.IsValid(code) {
		return nil
	}

	resolved, ok := o.Describe(code)
	if !ok {
		return &exchange.UnknownCodeError{Exchange: o.exchange, Code: code, Message: msg}
	}

	if _, isAuth := o.auth[code]; isAuth {
		return &exchange.AuthError{Exchange: o.exchange, Code: code, Message: resolved}
	}

	return &exchange.APIError{Exchange: o.exchange, Code: code, Message: resolved}
}

//
// Envelope is the response wrapper used by code-bearing exchanges.
//
type Envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

//
// UnmarshalJSON accepts codes rendered either as strings or as numbers.
//
func (o *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code json.RawMessage `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	code, err := Code(raw.Code)
	if err != nil {
		return err
	}

	o.Code = code
	o.Msg = raw.Msg
	o.Data = raw.Data

	return nil
}

//
// HasData reports whether the envelope carried a non-null payload.
//
func (o *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(o.Data)

	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

//
// Code renders a raw JSON code (string or number) as a string. A missing code yields "".
//
func Code(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)

		return s, err
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}

	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}

	return n.String(), nil
}
