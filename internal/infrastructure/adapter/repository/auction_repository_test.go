package repository

import (
	"errors"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/donation-auction/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestAuctionRepository_HandleDatabaseError(t *testing.T) {
	matchAuction := mock.MatchedBy(func(fields map[string]any) bool {
		return fields["auction_id"] == "a1"
	})

	t.Run("Lock timeout is logged as contention", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		log.EXPECT().Warn("Lock contention when locking auction", matchAuction).Once()
		repo := NewAuctionRepository(nil, time.Second, log)

		err := repo.handleDatabaseError("locking auction", pgError(sqlStateLockNotAvailable), "a1")

		assert.ErrorIs(t, err, errs.ErrConcurrentModification)
	})

	t.Run("Deadlock is logged as contention", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		log.EXPECT().Warn("Lock contention when updating auction", matchAuction).Once()
		repo := NewAuctionRepository(nil, time.Second, log)

		err := repo.handleDatabaseError("updating auction", pgError(sqlStateDeadlockDetected), "a1")

		assert.ErrorIs(t, err, errs.ErrConcurrentModification)
	})

	t.Run("Missing row is not logged", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		repo := NewAuctionRepository(nil, time.Second, log)

		err := repo.handleDatabaseError("getting auction", gorm.ErrRecordNotFound, "a1")

		assert.ErrorIs(t, err, errs.ErrAuctionNotFound)
	})

	t.Run("Other failures are logged as errors", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		log.EXPECT().Error("Database error when creating auction", matchAuction).Once()
		repo := NewAuctionRepository(nil, time.Second, log)

		err := repo.handleDatabaseError("creating auction", errors.New("syntax error at or near"), "a1")

		assert.ErrorIs(t, err, errs.ErrInternalServer)
	})
}
