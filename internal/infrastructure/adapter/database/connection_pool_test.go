package database

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/logger"
	"github.com/stretchr/testify/assert"
)

func TestHealthChecker_Details(t *testing.T) {
	t.Run("Without a monitor", func(t *testing.T) {
		checker := NewHealthChecker(nil, nil, logger.NewNoopLogger(), time.Second)
		assert.Nil(t, checker.Details())
		assert.Equal(t, "postgres", checker.Name())
	})

	t.Run("Before the first sample", func(t *testing.T) {
		monitor := NewConnectionPoolMonitor(nil, logger.NewNoopLogger())
		checker := NewHealthChecker(nil, monitor, logger.NewNoopLogger(), time.Second)

		details := checker.Details()
		assert.Equal(t, 0, details["in_use"])
		assert.Equal(t, int64(0), details["wait_count"])
	})

	t.Run("Reports the sampled pool", func(t *testing.T) {
		monitor := NewConnectionPoolMonitor(nil, logger.NewNoopLogger())
		monitor.metricsCache = &ConnectionPoolMetrics{
			OpenConnections:    12,
			IdleConnections:    2,
			MaxOpenConnections: 25,
			InUse:              10,
			WaitCount:          7,
			WaitDuration:       1500 * time.Millisecond,
		}
		checker := NewHealthChecker(nil, monitor, logger.NewNoopLogger(), time.Second)

		assert.Equal(t, map[string]any{
			"open_connections":     12,
			"idle_connections":     2,
			"in_use":               10,
			"max_open_connections": 25,
			"wait_count":           int64(7),
			"wait_duration_ms":     int64(1500),
		}, checker.Details())
	})
}
