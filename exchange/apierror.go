package exchange

import "fmt"

//
// APIError represents a first-class error carried in an exchange's response envelope whose code
// is present in that exchange's error table. The message is the one resolved from the table, not
// necessarily the one the exchange sent.
//
type APIError struct {
	Exchange string
	Code     string
	Message  string
}

func (o *APIError) Error() string {
	return fmt.Sprintf(
		"the %s endpoint returned an API error (code: %s, message: %s)",
		o.Exchange, o.Code, o.Message,
	)
}

func (o *APIError) Is(target error) bool {
	return target == ErrRejected
}

//
// AuthError is an APIError whose code means the exchange rejected the credentials or the
// signature. It is never retried.
//
type AuthError struct {
	Exchange string
	Code     string
	Message  string
}

func (o *AuthError) Error() string {
	return fmt.Sprintf(
		"the %s endpoint rejected the request credentials (code: %s, message: %s)",
		o.Exchange, o.Code, o.Message,
	)
}

func (o *AuthError) Is(target error) bool {
	return target == ErrAuth
}

//
// UnknownCodeError is returned when a response carries a non-success code that the exchange's
// error table does not know about. It matches ErrUnknownCode, not ErrRejected.
//
type UnknownCodeError struct {
	Exchange string
	Code     string
	Message  string
}

func (o *UnknownCodeError) Error() string {
	if o.Message == "" {
		return fmt.Sprintf("the %s endpoint returned unknown code %q", o.Exchange, o.Code)
	}

	return fmt.Sprintf(
		"the %s endpoint returned unknown code %q (message: %s)",
		o.Exchange, o.Code, o.Message,
	)
}

func (o *UnknownCodeError) Is(target error) bool {
	return target == ErrUnknownCode
}
