package kucoin

import (
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/validator"
)

const (
	Name = "kucoin"

	SuccessCode = "200000"
)

var httpCodes = map[string]string{
	"400": "Bad Request -- Invalid request format.",
	"401": "Unauthorized -- Invalid API Key.",
	"403": "Forbidden or Too Many Requests -- The request is forbidden or Access limit breached.",
	"404": "Not Found -- The specified resource could not be found.",
	"405": "Method Not Allowed -- You tried to access the resource with an invalid method.",
	"415": "Unsupported Media Type. You need to use: application/json.",
	"500": "Internal Server Error -- We had a problem with our server. Try again later.",
	"503": "Service Unavailable -- We're temporarily offline for maintenance. Please try again later.",
}

var systemCodes = map[string]string{
	"200000": "Success",
	"200001": "Order creation for this pair suspended",
	"200002": "Order cancel for this pair suspended",
	"200003": "Number of orders breached the limit",
	"200004": "Balance insufficient",
	"200009": "Please complete the KYC verification before you trade XX",
	"400001": "Any of KC-API-KEY, KC-API-SIGN, KC-API-TIMESTAMP, KC-API-PASSPHRASE is missing in your request header",
	"400002": "KC-API-TIMESTAMP Invalid",
	"400003": "KC-API-KEY not exists",
	"400004": "KC-API-PASSPHRASE error",
	"400005": "Signature error",
	"400006": "The requested ip address is not in the api whitelist",
	"400007": "Access Denied",
	"404000": "Url Not Found",
	"400100": "Parameter Error",
	"400200": "Forbidden to place an order",
	"400500": "Your located country/region is currently not supported for the trading of this token",
	"400700": "Transaction restricted, there's a risk problem in your account",
	"400800": "Leverage order failed",
	"411100": "User are frozen",
	"500000": "Internal Server Error",
	"900001": "symbol not exists",
}

//
// Codes is every code KuCoin is known to answer with, HTTP statuses included.
//
var Codes = validator.NewTable(httpCodes, systemCodes)

var authCodes = []string{"401", "400001", "400002", "400003", "400004", "400005", "400006", "400007"}

//
// NewValidator returns the response validator for KuCoin envelopes.
//
func NewValidator() *validator.Validator {
	return validator.New(Name, SuccessCode, Codes, authCodes...)
}

var intervals = exchange.IntervalTable{
	exchange.OneMinute:     "1min",
	exchange.ThreeMinute:   "3min",
	exchange.FiveMinute:    "5min",
	exchange.FifteenMinute: "15min",
	exchange.ThirtyMinute:  "30min",
	exchange.OneHour:       "1hour",
	exchange.TwoHour:       "2hour",
	exchange.FourHour:      "4hour",
	exchange.SixHour:       "6hour",
	exchange.EightHour:     "8hour",
	exchange.TwelveHour:    "12hour",
	exchange.OneDay:        "1day",
	exchange.OneWeek:       "1week",
}
