package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/retry"
)

func fastConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	doErr := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})

	require.NoError(t, doErr)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	doErr := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, doErr)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnTerminalError(t *testing.T) {
	terminal := errors.New("invalid payload")

	calls := 0
	doErr := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		return terminal
	})

	require.ErrorIs(t, doErr, terminal)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("i/o timeout")

	calls := 0
	doErr := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		return transient
	})

	require.ErrorIs(t, doErr, transient)
	assert.Equal(t, 3, calls)
	assert.Contains(t, doErr.Error(), "max retry attempts exceeded")
}

func TestDo_CustomIsRetryable(t *testing.T) {
	marker := errors.New("transient marker")

	cfg := fastConfig()
	cfg.IsRetryable = func(err error) bool { return errors.Is(err, marker) }

	calls := 0
	doErr := retry.Do(context.Background(), cfg, func() error {
		calls++
		return marker
	})

	require.Error(t, doErr)
	assert.Equal(t, 3, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doErr := retry.Do(ctx, fastConfig(), func() error {
		return errors.New("connection reset")
	})

	require.ErrorIs(t, doErr, retry.ErrContextCancelled)
}

func TestDefaultIsRetryable(t *testing.T) {
	assert.False(t, retry.DefaultIsRetryable(nil))
	assert.True(t, retry.DefaultIsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, retry.DefaultIsRetryable(errors.New("context deadline exceeded")))
	assert.False(t, retry.DefaultIsRetryable(errors.New("404 not found")))
}
