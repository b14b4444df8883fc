package settlement

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/unitofwork"
)

// DefaultPendingLimit bounds a single pickup of pending payments
const DefaultPendingLimit = 50

// PayoutService is the hand-off point for the external payout collaborator.
// It never moves money itself; it only tracks the status of settlement records.
type PayoutService struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewPayoutService creates a new payout service
func NewPayoutService(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *PayoutService {
	return &PayoutService{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// ListPending returns payments awaiting payout, oldest first
func (s *PayoutService) ListPending(ctx context.Context, limit int) ([]*entity.Payment, error) {
	if limit <= 0 || limit > DefaultPendingLimit {
		limit = DefaultPendingLimit
	}
	return s.uow.GetPaymentRepository(ctx).ListByStatus(ctx, entity.PaymentPending, limit)
}

// UpdateStatus moves a pending payment to processed or failed.
// Repeating the same terminal status is accepted and returns the stored record.
func (s *PayoutService) UpdateStatus(ctx context.Context, paymentID string, status entity.PaymentStatus) (*entity.Payment, error) {
	if !entity.IsValidPaymentStatus(string(status)) {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidPaymentStatus, status)
	}
	if status == entity.PaymentPending {
		return nil, fmt.Errorf("%w: a payment cannot be moved back to pending", errs.ErrInvalidPaymentStatus)
	}

	var updated *entity.Payment
	err := unitofwork.Run(ctx, s.uow, s.logger, "update payment status", func(txCtx context.Context) error {
		payments := s.uow.GetPaymentRepository(txCtx)

		payment, err := payments.GetByID(txCtx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == status {
			updated = payment
			return nil
		}
		mark := payment.MarkAsProcessed
		if status == entity.PaymentFailed {
			mark = payment.MarkAsFailed
		}
		if err := mark(s.timeProvider); err != nil {
			return err
		}
		if err := payments.UpdateStatus(txCtx, payment, entity.PaymentPending); err != nil {
			return err
		}
		updated = payment
		return nil
	})
	if err != nil {
		s.logger.Warn("Payment status update failed", map[string]any{
			"payment_id": paymentID,
			"status":     string(status),
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Payment status updated", map[string]any{
		"payment_id": paymentID,
		"auction_id": updated.AuctionID,
		"status":     string(updated.Status),
	})
	return updated, nil
}
