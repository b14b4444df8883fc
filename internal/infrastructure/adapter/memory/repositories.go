package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
)

// stage records a write in the unit of work, or applies it at once when there is none
func stage(store *Store, tx *txState, add func(t *txState)) error {
	if tx == nil {
		single := &txState{}
		add(single)
		return store.commit(single)
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return fmt.Errorf("write after transaction end: %w", errs.ErrInternalServer)
	}
	add(tx)
	return nil
}

// AuctionRepository implements persistence.AuctionRepository
type AuctionRepository struct {
	store *Store
	tx    *txState
}

// Create saves a new auction
func (r *AuctionRepository) Create(ctx context.Context, auction *entity.Auction) error {
	return stage(r.store, r.tx, func(t *txState) {
		t.auctionCreates = append(t.auctionCreates, auction.Clone())
	})
}

// GetByID retrieves an auction without locking it
func (r *AuctionRepository) GetByID(ctx context.Context, id string) (*entity.Auction, error) {
	return r.store.getAuction(id)
}

// GetForUpdate locks the auction until the unit of work ends and returns its current state
func (r *AuctionRepository) GetForUpdate(ctx context.Context, id string) (*entity.Auction, error) {
	if r.tx == nil {
		return nil, fmt.Errorf("lock auction %s outside a transaction: %w", id, errs.ErrInternalServer)
	}
	if _, err := r.store.getAuction(id); err != nil {
		return nil, err
	}

	r.tx.mu.Lock()
	held := r.tx.holds(id)
	r.tx.mu.Unlock()

	if !held {
		if err := r.store.acquire(ctx, id); err != nil {
			return nil, err
		}
		r.tx.mu.Lock()
		r.tx.held = append(r.tx.held, id)
		r.tx.mu.Unlock()
	}

	return r.store.getAuction(id)
}

// Update persists the auction if its stored status still equals expectedStatus
func (r *AuctionRepository) Update(ctx context.Context, auction *entity.Auction, expectedStatus entity.AuctionStatus) error {
	current, err := r.store.getAuction(auction.ID)
	if err != nil {
		return err
	}
	if current.Status != expectedStatus {
		return fmt.Errorf("auction %s is %s: %w", auction.ID, current.Status, errs.ErrConcurrentModification)
	}
	return stage(r.store, r.tx, func(t *txState) {
		t.auctionUpdates = append(t.auctionUpdates, auctionUpdate{auction: auction.Clone(), expected: expectedStatus})
	})
}

// ListActive returns active auctions, newest first
func (r *AuctionRepository) ListActive(ctx context.Context, filter persistence.AuctionFilter) ([]*entity.Auction, error) {
	return r.store.listActive(filter), nil
}

// BidRepository implements persistence.BidRepository
type BidRepository struct {
	store *Store
	tx    *txState
}

// Create appends a bid
func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	if bid.IdempotencyKey != "" {
		if _, err := r.store.getBidByKey(bid.IdempotencyKey); err == nil {
			return fmt.Errorf("idempotency key %s: %w", bid.IdempotencyKey, errs.ErrConstraintViolation)
		}
	}
	c := *bid
	return stage(r.store, r.tx, func(t *txState) {
		t.bidCreates = append(t.bidCreates, &c)
	})
}

// GetByID retrieves a bid
func (r *BidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	return r.store.getBid(id)
}

// GetByIdempotencyKey retrieves the bid stored under a client retry token
func (r *BidRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Bid, error) {
	return r.store.getBidByKey(key)
}

// FindRecentDuplicate returns the latest matching bid created at or after since
func (r *BidRepository) FindRecentDuplicate(ctx context.Context, auctionID, bidderID string, amount int64, since time.Time) (*entity.Bid, error) {
	var found *entity.Bid
	for _, b := range r.store.bidsOf(auctionID) {
		if b.BidderID != bidderID || b.Amount != amount || b.CreatedAt.Before(since) {
			continue
		}
		if found == nil || !b.CreatedAt.Before(found.CreatedAt) {
			found = b
		}
	}
	return found, nil
}

// ListByAuction returns every bid of an auction in the requested order
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID string, order entity.BidOrder) ([]*entity.Bid, error) {
	bids := r.store.bidsOf(auctionID)

	switch order {
	case entity.OrderByTime:
		sort.SliceStable(bids, func(i, j int) bool {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		})
	default:
		sort.SliceStable(bids, func(i, j int) bool {
			if bids[i].Amount != bids[j].Amount {
				return bids[i].Amount > bids[j].Amount
			}
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		})
	}
	return bids, nil
}

// PaymentRepository implements persistence.PaymentRepository
type PaymentRepository struct {
	store *Store
	tx    *txState
}

// Create saves a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	if _, err := r.store.getPaymentByAuction(payment.AuctionID); err == nil {
		return fmt.Errorf("payment for auction %s: %w", payment.AuctionID, errs.ErrConstraintViolation)
	} else if !errors.Is(err, errs.ErrPaymentNotFound) {
		return err
	}
	c := *payment
	return stage(r.store, r.tx, func(t *txState) {
		t.paymentCreates = append(t.paymentCreates, &c)
	})
}

// GetByID retrieves a payment
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	return r.store.getPayment(id)
}

// GetByAuctionID retrieves the payment of an auction
func (r *PaymentRepository) GetByAuctionID(ctx context.Context, auctionID string) (*entity.Payment, error) {
	return r.store.getPaymentByAuction(auctionID)
}

// ListByStatus returns payments in the given status, oldest first
func (r *PaymentRepository) ListByStatus(ctx context.Context, status entity.PaymentStatus, limit int) ([]*entity.Payment, error) {
	return r.store.listPayments(status, limit), nil
}

// UpdateStatus persists a status change if the stored status still equals from
func (r *PaymentRepository) UpdateStatus(ctx context.Context, payment *entity.Payment, from entity.PaymentStatus) error {
	current, err := r.store.getPayment(payment.ID)
	if err != nil {
		return err
	}
	if current.Status != from {
		return fmt.Errorf("payment %s is %s: %w", payment.ID, current.Status, errs.ErrConcurrentModification)
	}
	c := *payment
	return stage(r.store, r.tx, func(t *txState) {
		t.paymentUpdates = append(t.paymentUpdates, paymentUpdate{payment: &c, from: from})
	})
}
