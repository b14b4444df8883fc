package persistence

import (
	"context"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
)

// AuctionFilter narrows ListActive results
type AuctionFilter struct {
	Category entity.Category // empty matches every category
	Limit    int
	Offset   int
}

// AuctionRepository defines essential methods to interact with auction data
type AuctionRepository interface {
	// Create saves a new auction
	//
	// Possible errors:
	// - ErrConstraintViolation: If an auction with the same ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, auction *entity.Auction) error

	// GetByID retrieves an auction without locking it
	//
	// Possible errors:
	// - ErrAuctionNotFound: If the auction doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id string) (*entity.Auction, error)

	// GetForUpdate retrieves an auction and holds its row lock until the
	// surrounding unit of work commits or rolls back. Must run inside Begin.
	//
	// Possible errors:
	// - ErrAuctionNotFound: If the auction doesn't exist
	// - ErrConcurrentModification: If the lock could not be acquired in time
	// - ErrTransientFailure: If the context ended while waiting
	GetForUpdate(ctx context.Context, id string) (*entity.Auction, error)

	// Update persists highest bid and status changes, only if the stored
	// status still equals expectedStatus
	//
	// Possible errors:
	// - ErrAuctionNotFound: If the auction doesn't exist
	// - ErrConcurrentModification: If the stored status changed
	Update(ctx context.Context, auction *entity.Auction, expectedStatus entity.AuctionStatus) error

	// ListActive returns active auctions, newest first
	ListActive(ctx context.Context, filter AuctionFilter) ([]*entity.Auction, error)
}
