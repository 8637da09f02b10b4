package exchange

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lukehollenback/cryptox/constants"
)

//
// SumAmounts adds decimal strings exactly and returns the total with ten fractional digits. Empty
// strings count as zero.
//
func SumAmounts(amounts ...string) (string, error) {
	total, err := sum(amounts...)
	if err != nil {
		return "", err
	}

	return total.StringFixed(constants.BalancePrecision), nil
}

//
// FormatAmount renders a single decimal string with ten fractional digits.
//
func FormatAmount(amount string) (string, error) {
	return SumAmounts(amount)
}

//
// Balances accumulates per-currency totals across several account entries (free and locked
// parts, or several sub-accounts) without ever going through binary floating point.
//
type Balances struct {
	order  []string
	totals map[string]decimal.Decimal
}

func NewBalances() *Balances {
	return &Balances{
		totals: make(map[string]decimal.Decimal),
	}
}

//
// Add adds amounts to the currency's running total.
//
func (o *Balances) Add(currency string, amounts ...string) error {
	d, err := sum(amounts...)
	if err != nil {
		return err
	}

	current, ok := o.totals[currency]
	if !ok {
		o.order = append(o.order, currency)
		current = constants.Zero()
	}

	o.totals[currency] = current.Add(d)

	return nil
}

//
// Get returns the formatted total for the currency, matching case-insensitively.
//
func (o *Balances) Get(currency string) (string, bool) {
	for _, c := range o.order {
		if strings.EqualFold(c, currency) {
			return o.totals[c].StringFixed(constants.BalancePrecision), true
		}
	}

	return "", false
}

//
// NonZero returns every non-zero total, formatted.
//
func (o *Balances) NonZero() map[string]string {
	result := make(map[string]string)

	for _, c := range o.order {
		if total := o.totals[c]; !total.IsZero() {
			result[c] = total.StringFixed(constants.BalancePrecision)
		}
	}

	return result
}

func sum(amounts ...string) (decimal.Decimal, error) {
	total := constants.Zero()

	for _, a := range amounts {
		if a == "" {
			continue
		}

		d, err := decimal.NewFromString(a)
		if err != nil {
			return total, err
		}

		total = total.Add(d)
	}

	return total, nil
}
