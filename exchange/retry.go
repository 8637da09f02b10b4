package exchange

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

//
// RetryEmpty calls fetch up to attempts times, pausing for a fixed interval between calls, for as
// long as fetch reports an empty result. Errors are never retried. ErrEmptyResponse is returned if
// every attempt came back empty.
//
// This is used for ticker endpoints only; no other operation retries.
//
func RetryEmpty(ctx context.Context, attempts int, pause time.Duration, fetch func() (empty bool, err error)) error {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(pause), uint64(attempts-1)),
		ctx,
	)

	operation := func() error {
		empty, err := fetch()
		if err != nil {
			return backoff.Permanent(err)
		}

		if empty {
			return ErrEmptyResponse
		}

		return nil
	}

	return backoff.Retry(operation, policy)
}
