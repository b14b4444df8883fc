package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuctionRepository implements AuctionRepository interface using GORM
type AuctionRepository struct {
	db              *gorm.DB
	lockTimeout     time.Duration
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.AuctionRepository = (*AuctionRepository)(nil)

// NewAuctionRepository creates a new AuctionRepository instance.
// lockTimeout bounds how long GetForUpdate waits for the row lock.
func NewAuctionRepository(db *gorm.DB, lockTimeout time.Duration, logger coreport.Logger) *AuctionRepository {
	return &AuctionRepository{
		db:              db,
		lockTimeout:     lockTimeout,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func auctionToModel(a *entity.Auction) model.Auction {
	return model.Auction{
		ID:                a.ID,
		OwnerID:           a.OwnerID,
		Category:          string(a.Category),
		Description:       a.Description,
		StartingBidAmount: a.StartingBidAmount,
		CurrentHighestBid: a.CurrentHighestBid,
		Status:            string(a.Status),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
		CompletedAt:       a.CompletedAt,
		CancelledAt:       a.CancelledAt,
	}
}

func auctionToEntity(m *model.Auction) *entity.Auction {
	return &entity.Auction{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Category:          entity.Category(m.Category),
		Description:       m.Description,
		StartingBidAmount: m.StartingBidAmount,
		CurrentHighestBid: m.CurrentHighestBid,
		Status:            entity.AuctionStatus(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *AuctionRepository) handleDatabaseError(operation string, err error, auctionID string) error {
	mapped := r.errorClassifier.ToDomain(err, errs.ErrAuctionNotFound, operation)
	fields := map[string]any{
		"auction_id": auctionID,
		"error":      err.Error(),
	}

	switch {
	case r.errorClassifier.Classify(err) == NotFoundError:
	case r.errorClassifier.IsLockError(err):
		r.logger.Warn(fmt.Sprintf("Lock contention when %s", operation), fields)
	default:
		r.logger.Error(fmt.Sprintf("Database error when %s", operation), fields)
	}
	return mapped
}

// Create saves a new auction
func (r *AuctionRepository) Create(ctx context.Context, auction *entity.Auction) error {
	m := auctionToModel(auction)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.handleDatabaseError("creating auction", err, auction.ID)
	}
	return nil
}

// GetByID retrieves an auction without locking it
func (r *AuctionRepository) GetByID(ctx context.Context, id string) (*entity.Auction, error) {
	var m model.Auction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.handleDatabaseError("getting auction", err, id)
	}
	return auctionToEntity(&m), nil
}

// GetForUpdate selects the auction with FOR UPDATE. The lock is held until
// the surrounding transaction ends; a lock wait longer than lockTimeout
// fails with SQLSTATE 55P03, reported as ErrConcurrentModification.
func (r *AuctionRepository) GetForUpdate(ctx context.Context, id string) (*entity.Auction, error) {
	db := r.db.WithContext(ctx)

	if r.lockTimeout > 0 {
		// SET does not take bind parameters
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if err := db.Exec(stmt).Error; err != nil {
			return nil, r.handleDatabaseError("setting lock timeout", err, id)
		}
	}

	var m model.Auction
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking auction", err, id)
	}

	r.logger.Debug("Auction row locked", map[string]any{
		"auction_id": id,
		"status":     m.Status,
	})
	return auctionToEntity(&m), nil
}

// Update persists the highest bid and status, guarded by the expected stored status
func (r *AuctionRepository) Update(ctx context.Context, auction *entity.Auction, expectedStatus entity.AuctionStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Auction{}).
		Where("id = ? AND status = ?", auction.ID, string(expectedStatus)).
		Updates(map[string]any{
			"current_highest_bid": auction.CurrentHighestBid,
			"status":              string(auction.Status),
			"updated_at":          auction.UpdatedAt,
			"completed_at":        auction.CompletedAt,
			"cancelled_at":        auction.CancelledAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating auction", result.Error, auction.ID)
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, auction.ID); err != nil {
			return err
		}
		r.logger.Warn("Auction status changed before update", map[string]any{
			"auction_id":      auction.ID,
			"expected_status": string(expectedStatus),
		})
		return fmt.Errorf("auction %s is no longer %s: %w", auction.ID, expectedStatus, errs.ErrConcurrentModification)
	}
	return nil
}

// ListActive returns active auctions, newest first
func (r *AuctionRepository) ListActive(ctx context.Context, filter persistence.AuctionFilter) ([]*entity.Auction, error) {
	query := r.db.WithContext(ctx).Model(&model.Auction{}).
		Where("status = ?", string(entity.AuctionActive))
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Auction
	if err := query.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, r.handleDatabaseError("listing active auctions", err, "")
	}

	out := make([]*entity.Auction, 0, len(rows))
	for i := range rows {
		out = append(out, auctionToEntity(&rows[i]))
	}
	return out, nil
}
