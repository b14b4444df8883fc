package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context.
	// Rolling back a context that was already committed is a no-op.
	Rollback(ctx context.Context) error

	// GetAuctionRepository returns an auction repository bound to the current transaction
	GetAuctionRepository(ctx context.Context) AuctionRepository

	// GetBidRepository returns a bid repository bound to the current transaction
	GetBidRepository(ctx context.Context) BidRepository

	// GetPaymentRepository returns a payment repository bound to the current transaction
	GetPaymentRepository(ctx context.Context) PaymentRepository
}
