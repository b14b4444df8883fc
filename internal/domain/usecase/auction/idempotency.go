package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
)

// IdempotencyHandler recognizes retried bid submissions so they never create a second bid.
// Two keys are supported: an explicit client token, and the natural key
// (auction, bidder, amount) inside a short window.
type IdempotencyHandler struct {
	timeProvider    coreport.TimeProvider
	duplicateWindow time.Duration
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(timeProvider coreport.TimeProvider, duplicateWindow time.Duration) *IdempotencyHandler {
	return &IdempotencyHandler{
		timeProvider:    timeProvider,
		duplicateWindow: duplicateWindow,
	}
}

// CheckKey looks up a bid stored under the client token.
// Returns the bid and true when the request is a replay of it.
func (h *IdempotencyHandler) CheckKey(
	ctx context.Context,
	bids persistence.BidRepository,
	auctionID string,
	bidderID string,
	amount int64,
	key string,
) (*entity.Bid, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	existing, err := bids.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, errs.ErrBidNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	if !existing.SamePayload(auctionID, bidderID, amount) {
		return nil, false, fmt.Errorf("%w: key %s", errs.ErrIdempotencyKeyReused, key)
	}
	return existing, true, nil
}

// FindNaturalDuplicate returns a bid with the same auction, bidder and amount
// accepted within the duplicate window, or nil
func (h *IdempotencyHandler) FindNaturalDuplicate(
	ctx context.Context,
	bids persistence.BidRepository,
	auctionID string,
	bidderID string,
	amount int64,
) (*entity.Bid, error) {
	if h.duplicateWindow <= 0 {
		return nil, nil
	}

	since := h.timeProvider.Now().Add(-h.duplicateWindow)
	existing, err := bids.FindRecentDuplicate(ctx, auctionID, bidderID, amount, since)
	if err != nil {
		return nil, fmt.Errorf("failed to look up duplicate bid: %w", err)
	}
	return existing, nil
}
