package graviex

import (
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/validator"
)

const Name = "graviex"

var Codes = validator.NewTable(map[string]string{
	"1001": "Parameter is missing or invalid",
	"2001": "Authorization failed",
	"2002": "Failed to create order",
	"2003": "Failed to cancel order",
	"2004": "Order not found",
	"2005": "The tonce is invalid, current timestamp must be within 5 minutes",
	"2006": "The tonce has already been used by access key",
	"2007": "The signature is incorrect",
	"2008": "The access key does not exist",
	"2009": "The access key has expired",
	"2010": "The withdrawal could not be created",
})

var authCodes = []string{"2001", "2005", "2006", "2007", "2008", "2009"}

//
// NewValidator returns the validator for Graviex error envelopes. Successful Graviex responses carry
// no code at all.
//
func NewValidator() *validator.Validator {
	return validator.New(Name, "", Codes, authCodes...)
}

// NOTE ~> The k endpoint takes its period in minutes.

var intervals = exchange.IntervalTable{
	exchange.OneMinute:     "1",
	exchange.FiveMinute:    "5",
	exchange.FifteenMinute: "15",
	exchange.ThirtyMinute:  "30",
	exchange.OneHour:       "60",
	exchange.TwoHour:       "120",
	exchange.FourHour:      "240",
	exchange.SixHour:       "360",
	exchange.TwelveHour:    "720",
	exchange.OneDay:        "1440",
	exchange.ThreeDay:      "4320",
	exchange.OneWeek:       "10080",
}
