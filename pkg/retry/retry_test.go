package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	sentinel := errors.New("bad input")
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return Permanent(sentinel)
	})

	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithLog_ExhaustsAttempts(t *testing.T) {
	logged := 0
	err := DoWithLog(context.Background(), fastConfig(3), "PostgreSQL", func() error {
		return errors.New("down")
	}, func(attempt int, err error, nextDelay time.Duration) {
		logged++
	})

	assert.ErrorContains(t, err, "PostgreSQL: max retry attempts (3) exceeded")
	assert.Equal(t, 2, logged)
}

func TestDo_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
