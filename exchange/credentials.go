package exchange

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

//
// Credentials are the API keys an adapter signs its private requests with. Adapters copy them at
// construction and never hand them out again.
//
type Credentials struct {
	AccessKey  string
	SecretKey  string
	Passphrase string
}

//
// String redacts everything but a short preview of the access key so that credentials can never
// end up in a log line by accident.
//
func (o Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessKey: %s, SecretKey: ***, Passphrase: ***}", preview(o.AccessKey))
}

func (o Credentials) GoString() string {
	return o.String()
}

//
// Require returns a ParameterError naming the first empty field among the ones requested.
//
func (o Credentials) Require(passphrase bool) error {
	switch {
	case o.AccessKey == "":
		return NewParameterError("access_key", "must be provided for private endpoints", "")
	case o.SecretKey == "":
		return NewParameterError("secret_key", "must be provided for private endpoints", "")
	case passphrase && o.Passphrase == "":
		return NewParameterError("passphrase", "must be provided for private endpoints", "")
	}

	return nil
}

func preview(key string) string {
	if key == "" {
		return "empty"
	}

	if len(key) < 8 {
		return "***"
	}

	return key[:4] + "..." + key[len(key)-4:]
}

//
// CompactSymbol strips the separators exchanges put between base and quote ("REQ-ETH", "req_eth",
// "REQ/ETH") and upper-cases the result, which makes symbols comparable across exchanges.
//
func CompactSymbol(symbol string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", "_", "", "/", "").Replace(symbol))
}

//
// ValidateMarketOrder checks that exactly one of size and amount was provided.
//
func ValidateMarketOrder(size, amount string) error {
	switch {
	case size == "" && amount == "":
		return NewParameterError("size", "one of size or amount must be provided", size)
	case size != "" && amount != "":
		return NewParameterError("amount", "size and amount are mutually exclusive", amount)
	}

	return nil
}

//
// ValidateAmount checks that a price or quantity is a positive decimal number.
//
func ValidateAmount(field, amount string) error {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return NewParameterError(field, "must be a decimal number", amount)
	}

	if !d.IsPositive() {
		return NewParameterError(field, "must be positive", amount)
	}

	return nil
}
