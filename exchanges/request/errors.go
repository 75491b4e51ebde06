// Package request wraps outbound exchange calls with rate limiting, failure
// classification and bounded retry.
package request

import (
	"errors"
	"fmt"
	"strings"
)

// Classification sentinels. Wrap venue errors with one of these so the
// retrier can decide whether a call is worth repeating.
var (
	// ErrRateLimited marks a venue throttle response; retried after backoff
	ErrRateLimited = errors.New("rate limited")
	// ErrTemporary marks a transient network or venue fault; retried
	ErrTemporary = errors.New("temporary failure")
	// ErrOperational marks a definitive venue rejection; never retried
	ErrOperational = errors.New("operational failure")
	// ErrNotSupported marks functionality the venue does not offer
	ErrNotSupported = errors.New("not supported")
)

// WrapRateLimited tags err as a throttle response
func WrapRateLimited(err error) error {
	return fmt.Errorf("%w: %w", ErrRateLimited, err)
}

// WrapTemporary tags err as transient
func WrapTemporary(err error) error {
	return fmt.Errorf("%w: %w", ErrTemporary, err)
}

// WrapOperational tags err as a definitive rejection
func WrapOperational(err error) error {
	return fmt.Errorf("%w: %w", ErrOperational, err)
}

// IsRetryable reports whether err warrants another attempt
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTemporary)
}

// isSoftThrottle reports a throttle response the venue resolves on its own;
// kucoin signals these with code 429000 and repeated calls succeed without
// waiting out a full backoff window
func isSoftThrottle(err error) bool {
	return errors.Is(err, ErrRateLimited) && strings.Contains(err.Error(), "429000")
}
