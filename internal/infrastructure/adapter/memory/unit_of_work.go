package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const txKey contextKey = "memory_tx"

// ErrNoTransaction is returned when Commit or Rollback is called outside Begin
var ErrNoTransaction = errors.New("no transaction in context")

type auctionUpdate struct {
	auction  *entity.Auction
	expected entity.AuctionStatus
}

type paymentUpdate struct {
	payment *entity.Payment
	from    entity.PaymentStatus
}

// txState collects the locks and staged writes of one unit of work
type txState struct {
	mu             sync.Mutex
	held           []string
	auctionCreates []*entity.Auction
	auctionUpdates []auctionUpdate
	bidCreates     []*entity.Bid
	paymentCreates []*entity.Payment
	paymentUpdates []paymentUpdate
	done           bool
}

func (tx *txState) holds(auctionID string) bool {
	for _, id := range tx.held {
		if id == auctionID {
			return true
		}
	}
	return false
}

// UnitOfWork implements persistence.UnitOfWork on top of a Store.
// Writes made inside a unit of work become visible only on Commit.
type UnitOfWork struct {
	store *Store
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a new in-memory unit of work
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func txFromContext(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey).(*txState)
	return tx
}

// Begin starts a new transaction and returns a transactional context
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return ctx, errors.Join(errs.ErrTransientFailure, err)
	}
	return context.WithValue(ctx, txKey, &txState{}), nil
}

// Commit applies staged writes and releases held locks
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil
	}

	err := u.store.commit(tx)
	if err == nil {
		tx.done = true
		u.releaseAll(tx)
	}
	return err
}

// Rollback discards staged writes and releases held locks
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil
	}

	tx.done = true
	u.releaseAll(tx)
	return nil
}

func (u *UnitOfWork) releaseAll(tx *txState) {
	for _, id := range tx.held {
		u.store.release(id)
	}
	tx.held = nil
}

// GetAuctionRepository returns an auction repository bound to the current transaction
func (u *UnitOfWork) GetAuctionRepository(ctx context.Context) persistence.AuctionRepository {
	return &AuctionRepository{store: u.store, tx: txFromContext(ctx)}
}

// GetBidRepository returns a bid repository bound to the current transaction
func (u *UnitOfWork) GetBidRepository(ctx context.Context) persistence.BidRepository {
	return &BidRepository{store: u.store, tx: txFromContext(ctx)}
}

// GetPaymentRepository returns a payment repository bound to the current transaction
func (u *UnitOfWork) GetPaymentRepository(ctx context.Context) persistence.PaymentRepository {
	return &PaymentRepository{store: u.store, tx: txFromContext(ctx)}
}
