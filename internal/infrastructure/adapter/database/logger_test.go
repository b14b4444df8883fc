package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	coremocks "github.com/amirhossein-jamali/donation-auction/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestExtractQueryTypeAndTable(t *testing.T) {
	tests := []struct {
		sql       string
		queryType string
		table     string
	}{
		{`SELECT * FROM "auctions" WHERE id = 'a1' FOR UPDATE`, "SELECT", "auctions"},
		{`INSERT INTO "bids" ("id","auction_id") VALUES ('b1','a1')`, "INSERT", "bids"},
		{`UPDATE "payments" SET "status"='processed'`, "UPDATE", "payments"},
		{`SET LOCAL lock_timeout = '2000ms'`, "SET", ""},
		{`VACUUM`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.queryType, extractQueryType(tt.sql))
			assert.Equal(t, tt.table, extractTableName(tt.sql))
		})
	}
}

func TestDatabaseLogger_Trace(t *testing.T) {
	begin := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fc := func() (string, int64) { return `SELECT * FROM "bids"`, 0 }

	t.Run("Missing rows are not errors", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		clock.EXPECT().Since(begin).Return(core.Millisecond)
		log.EXPECT().Debug("SQL Query", mock.Anything).Once()

		NewDatabaseLogger(log, clock, "info").Trace(context.Background(), begin, fc, gorm.ErrRecordNotFound)
	})

	t.Run("Failures are logged as errors", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		clock.EXPECT().Since(begin).Return(core.Millisecond)
		log.EXPECT().Error("SQL Error", mock.MatchedBy(func(fields map[string]any) bool {
			return fields["table"] == "bids" && fields["error"] == "boom"
		})).Once()

		NewDatabaseLogger(log, clock, "error").Trace(context.Background(), begin, fc, errors.New("boom"))
	})

	t.Run("Slow queries are warnings", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		clock.EXPECT().Since(begin).Return(core.Second)
		log.EXPECT().Warn("Slow SQL Query", mock.Anything).Once()

		NewDatabaseLogger(log, clock, "warn").Trace(context.Background(), begin, fc, nil)
	})

	t.Run("Silent logs nothing", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)

		NewDatabaseLogger(log, clock, "info").LogMode(gormlogger.Silent).Trace(context.Background(), begin, fc, nil)
	})
}

func TestMetricsCollector_MeasureQuery(t *testing.T) {
	log := coremocks.NewMockLogger(t)
	clock := coremocks.NewMockTimeProvider(t)
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.EXPECT().Now().Return(start)
	clock.EXPECT().Since(start).Return(core.Second).Once()
	log.EXPECT().Warn("Slow database operation detected", mock.Anything).Once()

	metrics, err := NewMetricsCollector(log, clock).MeasureQuery(context.Background(), "commit", func() (int64, error) {
		return 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "commit", metrics.Operation)
	assert.Equal(t, int64(3), metrics.RowsAffected)
	assert.Equal(t, time.Second, metrics.Duration)
	assert.False(t, metrics.Failed)
}
