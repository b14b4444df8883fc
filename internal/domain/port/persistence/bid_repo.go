package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
)

// BidRepository defines essential methods to interact with bid data.
// Bids are append-only.
type BidRepository interface {
	// Create appends a bid
	//
	// Possible errors:
	// - ErrConstraintViolation: If the idempotency key was already stored
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, bid *entity.Bid) error

	// GetByID retrieves a bid
	//
	// Possible errors:
	// - ErrBidNotFound: If the bid doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Bid, error)

	// GetByIdempotencyKey retrieves the bid stored under a client retry token
	//
	// Possible errors:
	// - ErrBidNotFound: If no bid carries the key
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Bid, error)

	// FindRecentDuplicate returns the latest bid with the same auction, bidder
	// and amount created at or after since, or nil when there is none
	FindRecentDuplicate(ctx context.Context, auctionID, bidderID string, amount int64, since time.Time) (*entity.Bid, error)

	// ListByAuction returns every bid of an auction in the requested order
	ListByAuction(ctx context.Context, auctionID string, order entity.BidOrder) ([]*entity.Bid, error)
}
