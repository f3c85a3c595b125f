package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meisai/internal/service"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
}

func TestWithRetry(t *testing.T) {
	transient := errors.New("503 backend error")

	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", wantCalls: 1},
		{name: "recovers", failures: []error{transient, transient}, wantCalls: 3},
		{name: "gives up", failures: []error{transient, transient, transient}, wantCalls: 3, wantErr: ErrMaxRetries},
		{name: "permanent stops early", failures: []error{Permanent(transient)}, wantCalls: 1, wantErr: transient},
		{name: "rate limit is retried", failures: []error{ErrRateLimit}, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, fastRetry)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return errors.New("flaky") }, service.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Hour,
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	b := newBackoff(service.RetryOptions{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2})

	assert.Equal(t, time.Second, b.next(errors.New("x")))
	assert.Equal(t, 2*time.Second, b.next(errors.New("x")))
	assert.Equal(t, 5*time.Second, b.next(ErrRateLimit))
	assert.Equal(t, 4*time.Second, b.next(errors.New("x")))
	assert.Equal(t, 5*time.Second, b.next(errors.New("x")))
	assert.Equal(t, 3, b.opts.MaxAttempts)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))

	cause := errors.New("bad request")
	err := Permanent(cause)

	var retryable *RetryableError
	require.ErrorAs(t, err, &retryable)
	assert.False(t, retryable.Retryable)
	assert.ErrorIs(t, err, cause)
}
