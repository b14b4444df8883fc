package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
)

// MaxBidMessageLength bounds the optional note a bidder attaches to a bid
const MaxBidMessageLength = 1000

// BidOrder selects how bids of an auction are listed
type BidOrder string

// Bid orderings
const (
	// OrderByAmount lists highest bids first, ties broken by earliest placement
	OrderByAmount BidOrder = "amount"
	// OrderByTime lists bids in placement order
	OrderByTime BidOrder = "time"
)

// ParseBidOrder converts a query value into a BidOrder, defaulting to amount
func ParseBidOrder(order string) (BidOrder, error) {
	switch BidOrder(strings.ToLower(strings.TrimSpace(order))) {
	case "", OrderByAmount:
		return OrderByAmount, nil
	case OrderByTime:
		return OrderByTime, nil
	default:
		return "", fmt.Errorf("%w: unknown bid order %q", errs.ErrInvalidRequest, order)
	}
}

// Bid is an immutable offer placed on an auction
type Bid struct {
	ID             string    // Unique identifier for the bid
	AuctionID      string    // Auction the bid was placed on
	BidderID       string    // User who placed the bid
	BidderName     string    // Display name of the bidder at placement time
	Amount         int64     // Offered amount in cents
	Message        string    // Optional note to the donor
	IdempotencyKey string    // Client supplied retry token (optional)
	CreatedAt      time.Time // When the bid was accepted
}

// NewBid creates a new bid with basic validation
func NewBid(
	id string,
	auctionID string,
	bidderID string,
	bidderName string,
	amount int64,
	message string,
	idempotencyKey string,
	timeProvider coreport.TimeProvider,
) (*Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", errs.ErrInvalidRequest)
	}
	if strings.TrimSpace(bidderID) == "" {
		return nil, fmt.Errorf("%w: bidder id is required", errs.ErrInvalidRequest)
	}
	if len(message) > MaxBidMessageLength {
		return nil, fmt.Errorf("%w: message longer than %d characters", errs.ErrInvalidRequest, MaxBidMessageLength)
	}

	return &Bid{
		ID:             id,
		AuctionID:      auctionID,
		BidderID:       bidderID,
		BidderName:     strings.TrimSpace(bidderName),
		Amount:         amount,
		Message:        strings.TrimSpace(message),
		IdempotencyKey: idempotencyKey,
		CreatedAt:      timeProvider.Now(),
	}, nil
}

// SamePayload reports whether other describes the same offer from the same bidder
func (b *Bid) SamePayload(auctionID, bidderID string, amount int64) bool {
	return b.AuctionID == auctionID && b.BidderID == bidderID && b.Amount == amount
}
