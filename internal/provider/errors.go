package provider

import (
	"errors"
	"fmt"
)

// ErrNoData means a provider (or the whole fallback chain) had no bars for
// the request. A zero-row response is this error, never an empty success.
var ErrNoData = errors.New("no data available")

// TransientError marks a retryable failure: a network hiccup or an upstream
// rate limit. RateLimited distinguishes the latter for backoff decisions.
type TransientError struct {
	Provider    string
	RateLimited bool
	Err         error
}

func (e *TransientError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: transient: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a structural incompatibility, typically a symbol the
// source does not cover. Retrying the same provider is pointless.
type PermanentError struct {
	Provider string
	Reason   string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// IsTransient reports whether err is retryable against the same provider.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsRateLimited reports whether err is a transient rate-limit failure.
func IsRateLimited(err error) bool {
	var te *TransientError
	return errors.As(err, &te) && te.RateLimited
}

// IsPermanent reports whether err means the provider cannot serve the symbol.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
