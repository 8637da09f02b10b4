package kraken

import (
	"strings"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/validator"
)

const Name = "kraken"

// NOTE ~> Kraken reports errors as "<severity+category>:<message>[:<detail>]" strings, e.g.
//  "EGeneral:Invalid arguments:volume". The first two segments are the code; the detail is
//  dropped before lookup.

var Codes = validator.NewTable(map[string]string{
	"EAPI:Invalid key":              "The API key is invalid",
	"EAPI:Invalid signature":        "The request signature is invalid",
	"EAPI:Invalid nonce":            "The nonce is invalid or was already used",
	"EAPI:Rate limit exceeded":      "API rate limit exceeded",
	"EAPI:Feature disabled":         "The requested feature is disabled",
	"EGeneral:Permission denied":    "The API key lacks the permission for this call",
	"EGeneral:Invalid arguments":    "The request arguments are invalid",
	"EGeneral:Unknown method":       "Unknown API method",
	"EGeneral:Internal error":       "Kraken had an internal error",
	"EQuery:Unknown asset pair":     "Unknown asset pair",
	"EQuery:Unknown asset":          "Unknown asset",
	"EOrder:Insufficient funds":     "Insufficient funds",
	"EOrder:Order minimum not met":  "The order volume is below the pair minimum",
	"EOrder:Rate limit exceeded":    "Order rate limit exceeded",
	"EFunding:Unknown withdraw key": "Unknown withdrawal key",
	"EFunding:Invalid amount":       "Invalid withdrawal amount",
	"EService:Unavailable":          "Kraken is unavailable",
	"EService:Busy":                 "Kraken is busy",
})

var authCodes = []string{
	"EAPI:Invalid key",
	"EAPI:Invalid signature",
	"EAPI:Invalid nonce",
	"EGeneral:Permission denied",
}

const codeUnknownPair = "EQuery:Unknown asset pair"

func NewValidator() *validator.Validator {
	return validator.New(Name, "", Codes, authCodes...)
}

//
// errorCode splits a Kraken error string into its code and detail.
//
func errorCode(raw string) (code, detail string) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return raw, ""
	}

	code = parts[0] + ":" + parts[1]
	if len(parts) == 3 {
		detail = parts[2]
	}

	return code, detail
}

// NOTE ~> The OHLC endpoint takes its interval in minutes.

var intervals = exchange.IntervalTable{
	exchange.OneMinute:     "1",
	exchange.FiveMinute:    "5",
	exchange.FifteenMinute: "15",
	exchange.ThirtyMinute:  "30",
	exchange.OneHour:       "60",
	exchange.FourHour:      "240",
	exchange.OneDay:        "1440",
	exchange.OneWeek:       "10080",
}
