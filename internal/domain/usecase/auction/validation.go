package auction

import (
	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
)

// Increment tiers, in cents
const (
	// IncrementThreshold is the highest bid from which the large increment applies
	IncrementThreshold int64 = 100_000
	// SmallIncrement applies while the highest bid is below IncrementThreshold
	SmallIncrement int64 = 100
	// LargeIncrement applies once the highest bid reaches IncrementThreshold
	LargeIncrement int64 = 500
)

// BidValidator decides whether a proposed amount is acceptable for an auction.
// It is pure; the ledger calls it while holding the auction lock.
type BidValidator struct {
	maxAmount int64
}

// NewBidValidator creates a validator using the platform maximum bid
func NewBidValidator() *BidValidator {
	return &BidValidator{maxAmount: entity.MaxBidAmount}
}

// RequiredIncrement returns the minimum step above the given highest bid
func RequiredIncrement(currentHighest int64) int64 {
	if currentHighest < IncrementThreshold {
		return SmallIncrement
	}
	return LargeIncrement
}

// MinimumNextBid returns the smallest amount that would be accepted next
func MinimumNextBid(currentHighest int64) int64 {
	return currentHighest + RequiredIncrement(currentHighest)
}

// Validate checks, in order: status, strictly higher, increment, upper bound.
// Every rejection is a *errs.BidRejectionError.
func (v *BidValidator) Validate(auction *entity.Auction, proposedAmount int64) error {
	highest := auction.CurrentHighestBid
	minimum := MinimumNextBid(highest)

	reject := func(err error) error {
		return errs.NewBidRejectionError(auction.ID, proposedAmount, highest, minimum, err)
	}

	if !auction.IsActive() {
		return reject(errs.ErrAuctionNotActive)
	}
	if proposedAmount <= highest {
		return reject(errs.ErrBidTooLow)
	}
	if proposedAmount < minimum {
		return reject(errs.ErrIncrementTooSmall)
	}
	if proposedAmount > v.maxAmount {
		return reject(errs.ErrAmountOutOfRange)
	}
	return nil
}
