package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// BidRepository implements BidRepository interface using GORM
type BidRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.BidRepository = (*BidRepository)(nil)

// NewBidRepository creates a new BidRepository instance
func NewBidRepository(db *gorm.DB, logger coreport.Logger) *BidRepository {
	return &BidRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func bidToModel(b *entity.Bid) model.Bid {
	m := model.Bid{
		ID:         b.ID,
		AuctionID:  b.AuctionID,
		BidderID:   b.BidderID,
		BidderName: b.BidderName,
		Amount:     b.Amount,
		Message:    b.Message,
		CreatedAt:  b.CreatedAt,
	}
	if b.IdempotencyKey != "" {
		key := b.IdempotencyKey
		m.IdempotencyKey = &key
	}
	return m
}

func bidToEntity(m *model.Bid) *entity.Bid {
	b := &entity.Bid{
		ID:         m.ID,
		AuctionID:  m.AuctionID,
		BidderID:   m.BidderID,
		BidderName: m.BidderName,
		Amount:     m.Amount,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
	}
	if m.IdempotencyKey != nil {
		b.IdempotencyKey = *m.IdempotencyKey
	}
	return b
}

// Create appends a bid. A reused idempotency key fails with ErrConstraintViolation.
func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	m := bidToModel(bid)
	// Omit the association so gorm does not upsert the parent auction
	if err := r.db.WithContext(ctx).Omit("Auction").Create(&m).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate bid insert", map[string]any{
				"bid_id":          bid.ID,
				"auction_id":      bid.AuctionID,
				"idempotency_key": bid.IdempotencyKey,
			})
		} else {
			r.logger.Error("Failed to create bid", map[string]any{
				"bid_id":     bid.ID,
				"auction_id": bid.AuctionID,
				"error":      err.Error(),
			})
		}
		return r.errorClassifier.ToDomain(err, errs.ErrBidNotFound, "creating bid")
	}
	return nil
}

// GetByID retrieves a bid
func (r *BidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	var m model.Bid
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrBidNotFound, "getting bid")
	}
	return bidToEntity(&m), nil
}

// GetByIdempotencyKey retrieves the bid stored under a client retry token
func (r *BidRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Bid, error) {
	if key == "" {
		return nil, errs.ErrBidNotFound
	}
	var m model.Bid
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&m).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrBidNotFound, "getting bid by idempotency key")
	}
	return bidToEntity(&m), nil
}

// FindRecentDuplicate returns the latest matching bid created at or after since, or nil
func (r *BidRepository) FindRecentDuplicate(ctx context.Context, auctionID, bidderID string, amount int64, since time.Time) (*entity.Bid, error) {
	var m model.Bid
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND bidder_id = ? AND amount = ? AND created_at >= ?", auctionID, bidderID, amount, since).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrBidNotFound, "finding duplicate bid")
	}
	return bidToEntity(&m), nil
}

// ListByAuction returns every bid of an auction in the requested order
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID string, order entity.BidOrder) ([]*entity.Bid, error) {
	query := r.db.WithContext(ctx).Where("auction_id = ?", auctionID)
	switch order {
	case entity.OrderByTime:
		query = query.Order("created_at ASC").Order("id")
	default:
		query = query.Order("amount DESC").Order("created_at ASC")
	}

	var rows []model.Bid
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrBidNotFound, fmt.Sprintf("listing bids of auction %s", auctionID))
	}

	out := make([]*entity.Bid, 0, len(rows))
	for i := range rows {
		out = append(out, bidToEntity(&rows[i]))
	}
	return out, nil
}
