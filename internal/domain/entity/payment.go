package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
)

// PaymentStatus defines possible status values for a settlement record
type PaymentStatus string

// PaymentStatus constants
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentProcessed PaymentStatus = "processed"
	PaymentFailed    PaymentStatus = "failed"
)

// IsValidPaymentStatus checks if the status is one of the allowed values
func IsValidPaymentStatus(status string) bool {
	return status == string(PaymentPending) ||
		status == string(PaymentProcessed) ||
		status == string(PaymentFailed)
}

// Payment is the settlement record produced when an auction completes.
// Payouts are carried out by an external collaborator that picks up pending records.
type Payment struct {
	ID                string        // Unique identifier for the payment
	AuctionID         string        // One payment per auction
	WinningBidID      string        // Bid the owner accepted
	WinningBidAmount  int64         // Amount of the accepted bid in cents
	PlatformFeeAmount int64         // Platform share in cents
	DonorPayoutAmount int64         // Donor share in cents
	DonorID           string        // Auction owner
	WinnerID          string        // Bidder of the accepted bid
	Status            PaymentStatus // pending, processed or failed
	ProcessedAt       *time.Time    // When the payout collaborator finished (nullable)
	CreatedAt         time.Time     // When the auction was settled
	UpdatedAt         time.Time     // When the record last changed
}

// NewPayment creates a pending payment for an accepted bid and splits the amount
func NewPayment(id string, auction *Auction, bid *Bid, timeProvider coreport.TimeProvider) (*Payment, error) {
	if bid.AuctionID != auction.ID {
		return nil, errs.ErrBidNotFound
	}
	if bid.Amount <= 0 {
		return nil, fmt.Errorf("%w: winning bid must be positive", errs.ErrInvalidAmount)
	}

	fee, payout := CalculateFeeSplit(bid.Amount)
	now := timeProvider.Now()
	return &Payment{
		ID:                id,
		AuctionID:         auction.ID,
		WinningBidID:      bid.ID,
		WinningBidAmount:  bid.Amount,
		PlatformFeeAmount: fee,
		DonorPayoutAmount: payout,
		DonorID:           auction.OwnerID,
		WinnerID:          bid.BidderID,
		Status:            PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsBalanced checks that fee and payout add up to the winning amount
func (p *Payment) IsBalanced() bool {
	return p.PlatformFeeAmount+p.DonorPayoutAmount == p.WinningBidAmount
}

// MarkAsProcessed records a successful payout
func (p *Payment) MarkAsProcessed(timeProvider coreport.TimeProvider) error {
	return p.transition(PaymentProcessed, timeProvider)
}

// MarkAsFailed records a failed payout
func (p *Payment) MarkAsFailed(timeProvider coreport.TimeProvider) error {
	return p.transition(PaymentFailed, timeProvider)
}

func (p *Payment) transition(to PaymentStatus, timeProvider coreport.TimeProvider) error {
	if p.Status != PaymentPending {
		return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidPaymentStatus, p.Status, to)
	}
	now := timeProvider.Now()
	p.Status = to
	p.ProcessedAt = &now
	p.UpdatedAt = now
	return nil
}
