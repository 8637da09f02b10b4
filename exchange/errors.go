package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is returned when the exchange does not implement the requested operation.
	ErrNotSupported = errors.New("operation not supported by exchange")

	// ErrInvalidParameter is matched by every ParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnavailable is matched by every TransportError.
	ErrUnavailable = errors.New("exchange unavailable")

	// ErrAuth is matched by every AuthError.
	ErrAuth = errors.New("exchange rejected credentials")

	// ErrRejected is matched by every APIError.
	ErrRejected = errors.New("exchange rejected request")

	// ErrUnknownCode is matched by every UnknownCodeError.
	ErrUnknownCode = errors.New("exchange returned unknown code")

	// ErrNoSuchAsset means the account has no entry at all for the asset. A zero balance is not
	// a miss.
	ErrNoSuchAsset = errors.New("no such asset")

	// ErrPairNotFound means the exchange does not list the requested market.
	ErrPairNotFound = errors.New("pair not found")

	// ErrEmptyResponse means a call succeeded but carried no payload.
	ErrEmptyResponse = errors.New("exchange returned an empty response")
)

//
// ParameterError represents a caller mistake detected before any request is sent.
//
type ParameterError struct {
	Field   string
	Message string
	Value   interface{}
}

func NewParameterError(field, message string, value interface{}) *ParameterError {
	return &ParameterError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

func (o *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter '%s': %s (value: %v)", o.Field, o.Message, o.Value)
}

func (o *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
