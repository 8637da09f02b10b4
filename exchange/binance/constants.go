package binance

import (
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/validator"
)

const (
	Name = "binance"

	BaseURL    = "https://api.binance.com"
	KlinesPath = "/api/v3/klines"

	//
	// CandleLimit is the most klines Binance returns for a single request.
	//
	CandleLimit = 1000

	//
	// DepthLimit is the number of levels requested per order book side.
	//
	DepthLimit = 100

	codeBadSymbol = "-1121"
)

// NOTE ~> Binance answers successful calls without any code at all, so the empty code is the
//  success code. Only the codes worth telling apart are listed; everything else surfaces as an
//  exchange.UnknownCodeError carrying Binance's own message.

var Codes = validator.NewTable(map[string]string{
	"-1000": "An unknown error occurred while processing the request.",
	"-1001": "Internal error; unable to process your request. Please try again.",
	"-1003": "Too many requests queued.",
	"-1013": "Invalid quantity.",
	"-1021": "Timestamp for this request is outside of the recvWindow.",
	"-1022": "Signature for this request is not valid.",
	"-1100": "Illegal characters found in a parameter.",
	"-1102": "A mandatory parameter was not sent, was empty/null, or malformed.",
	"-1120": "Invalid interval.",
	"-1121": "Invalid symbol.",
	"-2008": "Invalid Api-Key ID.",
	"-2010": "New order rejected.",
	"-2014": "API-key format invalid.",
	"-2015": "Invalid API-key, IP, or permissions for action.",
})

var authCodes = []string{"-1022", "-2008", "-2014", "-2015"}

func NewValidator() *validator.Validator {
	return validator.New(Name, "", Codes, authCodes...)
}

var intervals = exchange.IntervalTable{
	exchange.OneMinute:     "1m",
	exchange.ThreeMinute:   "3m",
	exchange.FiveMinute:    "5m",
	exchange.FifteenMinute: "15m",
	exchange.ThirtyMinute:  "30m",
	exchange.OneHour:       "1h",
	exchange.TwoHour:       "2h",
	exchange.FourHour:      "4h",
	exchange.SixHour:       "6h",
	exchange.EightHour:     "8h",
	exchange.TwelveHour:    "12h",
	exchange.OneDay:        "1d",
	exchange.ThreeDay:      "3d",
	exchange.OneWeek:       "1w",
	exchange.OneMonth:      "1M",
}
