package sdk

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sethvargo/go-retry"
)

// Default retry settings.
const (
	DefaultRetries    = 3
	DefaultMinTimeout = 500 * time.Millisecond
	DefaultMaxTimeout = 10 * time.Second
	DefaultFactor     = 2.0
)

// RetryPolicy bounds the attempts of one request.
type RetryPolicy struct {
	// Retries is the number of attempts after the first one.
	Retries int
	// MinTimeout is the delay before the first retry.
	MinTimeout time.Duration
	// MaxTimeout caps every delay.
	MaxTimeout time.Duration
	// Factor multiplies the delay after each retry.
	Factor float64
	// ShouldRetry decides whether a failed attempt is retried. Nil means
	// DefaultShouldRetry.
	ShouldRetry func(err error) bool
}

// DefaultRetryPolicy returns the platform defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:     DefaultRetries,
		MinTimeout:  DefaultMinTimeout,
		MaxTimeout:  DefaultMaxTimeout,
		Factor:      DefaultFactor,
		ShouldRetry: DefaultShouldRetry,
	}
}

// DefaultShouldRetry retries everything except 4xx responses, with 408 and
// 429 retried anyway. Cancellation by the caller, and success responses
// that failed to decode, are never retried.
func DefaultShouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var de *decodeError
	if errors.As(err, &de) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

// Delay returns the wait before retry number n, counting from 1.
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(p.MinTimeout) * math.Pow(p.Factor, float64(n-1))
	if p.MaxTimeout > 0 && d > float64(p.MaxTimeout) {
		return p.MaxTimeout
	}
	return time.Duration(d)
}

// backoff adapts the policy to go-retry.
func (p RetryPolicy) backoff() retry.Backoff {
	var n int
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return p.Delay(n), false
	})

	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	return retry.WithMaxRetries(uint64(retries), next)
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if p.ShouldRetry == nil {
		return DefaultShouldRetry(err)
	}
	return p.ShouldRetry(err)
}

// normalized fills zero fields with defaults.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MinTimeout <= 0 {
		p.MinTimeout = DefaultMinTimeout
	}
	if p.MaxTimeout <= 0 {
		p.MaxTimeout = DefaultMaxTimeout
	}
	if p.Factor <= 0 {
		p.Factor = DefaultFactor
	}
	return p
}
