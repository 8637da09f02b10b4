package binance

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2/common"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/validator"
)

//
// translate converts an error returned by the Binance SDK into one of the exchange error types.
// API errors are classified by their code; anything else means Binance could not be reached or
// answered with something unreadable.
//
func translate(v *validator.Validator, err error, subject string) error {
	if err == nil {
		return nil
	}

	var apiErr *common.APIError

	if !errors.As(err, &apiErr) {
		if errors.Is(err, exchange.ErrEmptyResponse) {
			return err
		}

		return &exchange.TransportError{Exchange: Name, Err: err}
	}

	return classify(v, strconv.FormatInt(apiErr.Code, 10), apiErr.Message, subject)
}

func classify(v *validator.Validator, code, msg, subject string) error {
	checked := v.Check(code, msg)

	if code == codeBadSymbol {
		return fmt.Errorf("%w: %s: %w", exchange.ErrPairNotFound, subject, checked)
	}

	return checked
}
