package constants

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LogPrefixFmt = "%-17s "

	//
	// BalancePrecision is the number of fractional digits every balance is rendered with.
	//
	BalancePrecision = 10

	DefaultHTTPTimeout      = 10 * time.Second
	DefaultTickerRetryPause = time.Second
	TickerAttempts          = 4
)

var zero = decimal.Zero

func Zero() decimal.Decimal {
	return zero
}
