package rotmgapi

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrTokenNotFound      = errors.New("access token not found in response")
	ErrCouldNotParseToken = errors.New("could not parse access token")

	ErrFieldMissing   = errors.New("field not found")
	ErrFieldMalformed = errors.New("field is not valid text")
)

// InvalidResponseError reports a verify response that carried an access
// token but not the rest of the session fields.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: %s", e.Reason)
}

// NetworkError wraps a transport failure while talking to the account
// service. It is never retried.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
