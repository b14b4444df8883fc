package persistence

import (
	"context"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
)

// PaymentRepository defines essential methods to interact with settlement records
type PaymentRepository interface {
	// Create saves a new payment. At most one payment exists per auction.
	//
	// Possible errors:
	// - ErrConstraintViolation: If the auction already has a payment
	Create(ctx context.Context, payment *entity.Payment) error

	// GetByID retrieves a payment
	//
	// Possible errors:
	// - ErrPaymentNotFound: If the payment doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Payment, error)

	// GetByAuctionID retrieves the payment of an auction
	//
	// Possible errors:
	// - ErrPaymentNotFound: If the auction has not been settled
	GetByAuctionID(ctx context.Context, auctionID string) (*entity.Payment, error)

	// ListByStatus returns payments in the given status, oldest first
	ListByStatus(ctx context.Context, status entity.PaymentStatus, limit int) ([]*entity.Payment, error)

	// UpdateStatus persists a status change only if the stored status still equals from
	//
	// Possible errors:
	// - ErrPaymentNotFound: If the payment doesn't exist
	// - ErrConcurrentModification: If the stored status changed
	UpdateStatus(ctx context.Context, payment *entity.Payment, from entity.PaymentStatus) error
}
