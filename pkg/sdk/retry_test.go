package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 500*time.Millisecond, p.Delay(1))
	assert.Equal(t, time.Second, p.Delay(2))
	assert.Equal(t, 2*time.Second, p.Delay(3))
	assert.Equal(t, 8*time.Second, p.Delay(5))
	assert.Equal(t, 10*time.Second, p.Delay(6), "capped at MaxTimeout")
	assert.Equal(t, 10*time.Second, p.Delay(30))
}

func TestBackoffStopsAfterRetries(t *testing.T) {
	b := DefaultRetryPolicy().backoff()

	var delays []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			break
		}
		delays = append(delays, d)
	}
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}, delays)
}

func TestDefaultShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &APIError{Status: http.StatusBadGateway}, true},
		{"too many requests", &APIError{Status: http.StatusTooManyRequests}, true},
		{"request timeout", &APIError{Status: http.StatusRequestTimeout}, true},
		{"forbidden", &APIError{Status: http.StatusForbidden}, false},
		{"unauthorized", &APIError{Status: http.StatusUnauthorized}, false},
		{"wrapped conflict", fmt.Errorf("save: %w", &APIError{Status: http.StatusConflict}), false},
		{"timeout", ErrTimeout, true},
		{"transport", errors.New("connection refused"), true},
		{"canceled", context.Canceled, false},
		{"decode", &decodeError{err: errors.New("eof")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultShouldRetry(tt.err))
		})
	}
}
