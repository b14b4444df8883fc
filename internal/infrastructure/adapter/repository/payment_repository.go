package repository

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// PaymentRepository implements PaymentRepository interface using GORM
type PaymentRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

var _ persistence.PaymentRepository = (*PaymentRepository)(nil)

// NewPaymentRepository creates a new PaymentRepository instance
func NewPaymentRepository(db *gorm.DB, logger coreport.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func paymentToModel(p *entity.Payment) model.Payment {
	return model.Payment{
		ID:                p.ID,
		AuctionID:         p.AuctionID,
		WinningBidID:      p.WinningBidID,
		WinningBidAmount:  p.WinningBidAmount,
		PlatformFeeAmount: p.PlatformFeeAmount,
		DonorPayoutAmount: p.DonorPayoutAmount,
		DonorID:           p.DonorID,
		WinnerID:          p.WinnerID,
		Status:            string(p.Status),
		ProcessedAt:       p.ProcessedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func paymentToEntity(m *model.Payment) *entity.Payment {
	return &entity.Payment{
		ID:                m.ID,
		AuctionID:         m.AuctionID,
		WinningBidID:      m.WinningBidID,
		WinningBidAmount:  m.WinningBidAmount,
		PlatformFeeAmount: m.PlatformFeeAmount,
		DonorPayoutAmount: m.DonorPayoutAmount,
		DonorID:           m.DonorID,
		WinnerID:          m.WinnerID,
		Status:            entity.PaymentStatus(m.Status),
		ProcessedAt:       m.ProcessedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// Create saves a new payment. The unique index on auction_id rejects a second settlement.
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	m := paymentToModel(payment)
	if err := r.db.WithContext(ctx).Omit("Auction", "WinningBid").Create(&m).Error; err != nil {
		r.logger.Error("Failed to create payment", map[string]any{
			"payment_id": payment.ID,
			"auction_id": payment.AuctionID,
			"error":      err.Error(),
		})
		return r.errorClassifier.ToDomain(err, errs.ErrPaymentNotFound, "creating payment")
	}

	r.logger.Info("Payment recorded", map[string]any{
		"payment_id":   payment.ID,
		"auction_id":   payment.AuctionID,
		"amount":       entity.AmountInCentsToString(payment.WinningBidAmount),
		"platform_fee": entity.AmountInCentsToString(payment.PlatformFeeAmount),
		"donor_payout": entity.AmountInCentsToString(payment.DonorPayoutAmount),
	})
	return nil
}

// GetByID retrieves a payment
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	var m model.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrPaymentNotFound, "getting payment")
	}
	return paymentToEntity(&m), nil
}

// GetByAuctionID retrieves the payment of an auction
func (r *PaymentRepository) GetByAuctionID(ctx context.Context, auctionID string) (*entity.Payment, error) {
	var m model.Payment
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).First(&m).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrPaymentNotFound, "getting payment by auction")
	}
	return paymentToEntity(&m), nil
}

// ListByStatus returns payments in the given status, oldest first
func (r *PaymentRepository) ListByStatus(ctx context.Context, status entity.PaymentStatus, limit int) ([]*entity.Payment, error) {
	query := r.db.WithContext(ctx).Where("status = ?", string(status)).Order("created_at ASC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrPaymentNotFound, "listing payments")
	}

	out := make([]*entity.Payment, 0, len(rows))
	for i := range rows {
		out = append(out, paymentToEntity(&rows[i]))
	}
	return out, nil
}

// UpdateStatus persists a status change, guarded by the expected stored status
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *entity.Payment, from entity.PaymentStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", payment.ID, string(from)).
		Updates(map[string]any{
			"status":       string(payment.Status),
			"processed_at": payment.ProcessedAt,
			"updated_at":   payment.UpdatedAt,
		})
	if result.Error != nil {
		return r.errorClassifier.ToDomain(result.Error, errs.ErrPaymentNotFound, "updating payment status")
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, payment.ID); err != nil {
			return err
		}
		return fmt.Errorf("payment %s is no longer %s: %w", payment.ID, from, errs.ErrConcurrentModification)
	}
	return nil
}
