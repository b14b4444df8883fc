package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
)

// DefaultLockTimeout is used when the store is created without a lock timeout
const DefaultLockTimeout = 2 * time.Second

// Store is a concurrency-safe in-memory implementation of the persistence ports.
// Each auction has a one-slot lock channel that plays the role of a row lock:
// it is taken by GetForUpdate and released when the unit of work ends.
type Store struct {
	mu               sync.RWMutex
	auctions         map[string]*entity.Auction
	auctionOrder     []string // creation order
	bids             map[string]*entity.Bid
	bidsByAuction    map[string][]string // key: auctionID -> bid ids in insertion order
	bidKeys          map[string]string   // key: idempotency key -> bid id
	payments         map[string]*entity.Payment
	paymentOrder     []string
	paymentByAuction map[string]string

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore creates a new in-memory store
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		auctions:         make(map[string]*entity.Auction),
		bids:             make(map[string]*entity.Bid),
		bidsByAuction:    make(map[string][]string),
		bidKeys:          make(map[string]string),
		payments:         make(map[string]*entity.Payment),
		paymentByAuction: make(map[string]string),
		locks:            make(map[string]chan struct{}),
		lockTimeout:      lockTimeout,
	}
}

func (s *Store) lockFor(auctionID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[auctionID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[auctionID] = ch
	}
	return ch
}

// acquire blocks until the auction lock is free, the lock timeout passes or ctx ends
func (s *Store) acquire(ctx context.Context, auctionID string) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case s.lockFor(auctionID) <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("lock auction %s: timed out after %s: %w", auctionID, s.lockTimeout, errs.ErrConcurrentModification)
	case <-ctx.Done():
		return fmt.Errorf("lock auction %s: %v: %w", auctionID, ctx.Err(), errs.ErrTransientFailure)
	}
}

func (s *Store) release(auctionID string) {
	select {
	case <-s.lockFor(auctionID):
	default:
	}
}

// commit validates every staged write against committed state and applies
// them all, or none if any check fails
func (s *Store) commit(tx *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seenKeys := make(map[string]bool)
	for _, a := range tx.auctionCreates {
		if _, exists := s.auctions[a.ID]; exists {
			return fmt.Errorf("auction %s: %w", a.ID, errs.ErrConstraintViolation)
		}
	}
	for _, u := range tx.auctionUpdates {
		stored, ok := s.auctions[u.auction.ID]
		if !ok {
			return errs.ErrAuctionNotFound
		}
		if stored.Status != u.expected {
			return fmt.Errorf("auction %s is %s: %w", u.auction.ID, stored.Status, errs.ErrConcurrentModification)
		}
	}
	for _, b := range tx.bidCreates {
		if _, exists := s.bids[b.ID]; exists {
			return fmt.Errorf("bid %s: %w", b.ID, errs.ErrConstraintViolation)
		}
		if b.IdempotencyKey != "" {
			if _, exists := s.bidKeys[b.IdempotencyKey]; exists || seenKeys[b.IdempotencyKey] {
				return fmt.Errorf("idempotency key %s: %w", b.IdempotencyKey, errs.ErrConstraintViolation)
			}
			seenKeys[b.IdempotencyKey] = true
		}
	}
	seenAuctions := make(map[string]bool)
	for _, p := range tx.paymentCreates {
		if _, exists := s.paymentByAuction[p.AuctionID]; exists || seenAuctions[p.AuctionID] {
			return fmt.Errorf("payment for auction %s: %w", p.AuctionID, errs.ErrConstraintViolation)
		}
		seenAuctions[p.AuctionID] = true
	}
	for _, u := range tx.paymentUpdates {
		stored, ok := s.payments[u.payment.ID]
		if !ok {
			return errs.ErrPaymentNotFound
		}
		if stored.Status != u.from {
			return fmt.Errorf("payment %s is %s: %w", u.payment.ID, stored.Status, errs.ErrConcurrentModification)
		}
	}

	for _, a := range tx.auctionCreates {
		s.putAuction(a)
	}
	for _, u := range tx.auctionUpdates {
		s.auctions[u.auction.ID] = u.auction.Clone()
	}
	for _, b := range tx.bidCreates {
		s.putBid(b)
	}
	for _, p := range tx.paymentCreates {
		s.putPayment(p)
	}
	for _, u := range tx.paymentUpdates {
		c := *u.payment
		s.payments[u.payment.ID] = &c
	}
	return nil
}

func (s *Store) putAuction(a *entity.Auction) {
	s.auctions[a.ID] = a.Clone()
	s.auctionOrder = append(s.auctionOrder, a.ID)
}

func (s *Store) putBid(b *entity.Bid) {
	c := *b
	s.bids[b.ID] = &c
	s.bidsByAuction[b.AuctionID] = append(s.bidsByAuction[b.AuctionID], b.ID)
	if b.IdempotencyKey != "" {
		s.bidKeys[b.IdempotencyKey] = b.ID
	}
}

func (s *Store) putPayment(p *entity.Payment) {
	c := *p
	s.payments[p.ID] = &c
	s.paymentOrder = append(s.paymentOrder, p.ID)
	s.paymentByAuction[p.AuctionID] = p.ID
}

func (s *Store) getAuction(id string) (*entity.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[id]
	if !ok {
		return nil, fmt.Errorf("get auction %s: %w", id, errs.ErrAuctionNotFound)
	}
	return a.Clone(), nil
}

func (s *Store) listActive(filter persistence.AuctionFilter) []*entity.Auction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Auction, 0)
	// newest first
	for i := len(s.auctionOrder) - 1; i >= 0; i-- {
		a := s.auctions[s.auctionOrder[i]]
		if a.Status != entity.AuctionActive {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		out = append(out, a.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset >= len(out) {
		return []*entity.Auction{}
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out
}

func (s *Store) getBid(id string) (*entity.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bids[id]
	if !ok {
		return nil, fmt.Errorf("get bid %s: %w", id, errs.ErrBidNotFound)
	}
	c := *b
	return &c, nil
}

func (s *Store) getBidByKey(key string) (*entity.Bid, error) {
	s.mu.RLock()
	id, ok := s.bidKeys[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get bid by idempotency key: %w", errs.ErrBidNotFound)
	}
	return s.getBid(id)
}

func (s *Store) bidsOf(auctionID string) []*entity.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bidsByAuction[auctionID]
	out := make([]*entity.Bid, 0, len(ids))
	for _, id := range ids {
		c := *s.bids[id]
		out = append(out, &c)
	}
	return out
}

func (s *Store) getPayment(id string) (*entity.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, fmt.Errorf("get payment %s: %w", id, errs.ErrPaymentNotFound)
	}
	c := *p
	return &c, nil
}

func (s *Store) getPaymentByAuction(auctionID string) (*entity.Payment, error) {
	s.mu.RLock()
	id, ok := s.paymentByAuction[auctionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get payment for auction %s: %w", auctionID, errs.ErrPaymentNotFound)
	}
	return s.getPayment(id)
}

func (s *Store) listPayments(status entity.PaymentStatus, limit int) []*entity.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Payment, 0)
	for _, id := range s.paymentOrder {
		p := s.payments[id]
		if p.Status != status {
			continue
		}
		c := *p
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// AuctionCount returns the number of stored auctions
func (s *Store) AuctionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.auctions)
}

// BidCount returns the number of stored bids
func (s *Store) BidCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bids)
}

// PaymentCount returns the number of stored payments
func (s *Store) PaymentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}
