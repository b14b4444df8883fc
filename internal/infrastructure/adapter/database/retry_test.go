package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:    4,
		RetryInterval: time.Millisecond,
		MaxInterval:   5 * time.Millisecond,
		JitterFactor:  0.2,
	}
}

func TestRetryOnTransientError(t *testing.T) {
	transient := &pgconn.PgError{Code: "40P01"}

	t.Run("Retries until success", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetry(), func() error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		}, NewErrorMapper(), logger.NewNoopLogger())

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Gives up after the last attempt", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetry(), func() error {
			calls++
			return transient
		}, NewErrorMapper(), logger.NewNoopLogger())

		assert.ErrorIs(t, err, transient)
		assert.Equal(t, 4, calls)
	})

	t.Run("Permanent errors are not retried", func(t *testing.T) {
		calls := 0
		permanent := errors.New("password authentication failed")
		err := RetryOnTransientError(context.Background(), fastRetry(), func() error {
			calls++
			return permanent
		}, NewErrorMapper(), logger.NewNoopLogger())

		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("Canceled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := fastRetry()
		cfg.RetryInterval = time.Hour
		cfg.MaxInterval = time.Hour

		calls := 0
		err := RetryOnTransientError(ctx, cfg, func() error {
			calls++
			cancel()
			return transient
		}, NewErrorMapper(), logger.NewNoopLogger())

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	cfg := RetryConfig{RetryInterval: 100 * time.Millisecond, MaxInterval: time.Second}

	assert.Equal(t, 100*time.Millisecond, calculateBackoffWithJitter(0, cfg))
	assert.Equal(t, 400*time.Millisecond, calculateBackoffWithJitter(2, cfg))
	assert.Equal(t, time.Second, calculateBackoffWithJitter(10, cfg))

	cfg.JitterFactor = 0.5
	backoff := calculateBackoffWithJitter(0, cfg)
	assert.GreaterOrEqual(t, backoff, 100*time.Millisecond)
	assert.LessOrEqual(t, backoff, 150*time.Millisecond)
}
