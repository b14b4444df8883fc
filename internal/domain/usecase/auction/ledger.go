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
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/unitofwork"
)

// Default paging for active auction listings
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// LedgerConfig holds tunables for the auction ledger
type LedgerConfig struct {
	// DuplicateBidWindow is how far back a rejected bid is matched against an
	// identical accepted one and treated as a retry. Zero disables the check.
	DuplicateBidWindow time.Duration
	DefaultListLimit   int
}

// RecordBidRequest is the input of RecordBid
type RecordBidRequest struct {
	AuctionID      string
	BidderID       string
	BidderName     string
	Amount         int64
	Message        string
	IdempotencyKey string
}

// RecordBidResult is the output of RecordBid
type RecordBidResult struct {
	Bid               *entity.Bid
	CurrentHighestBid int64
	Replayed          bool
}

// Ledger is the source of truth for auctions and their bids.
// Bid placement for one auction is serialized through the auction row lock.
type Ledger struct {
	uow          persistence.UnitOfWork
	validator    *BidValidator
	idempotency  *IdempotencyHandler
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	listLimit    int
}

// NewLedger creates a new auction ledger
func NewLedger(
	uow persistence.UnitOfWork,
	validator *BidValidator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg LedgerConfig,
) *Ledger {
	listLimit := cfg.DefaultListLimit
	if listLimit <= 0 || listLimit > MaxListLimit {
		listLimit = DefaultListLimit
	}

	return &Ledger{
		uow:          uow,
		validator:    validator,
		idempotency:  NewIdempotencyHandler(timeProvider, cfg.DuplicateBidWindow),
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
		listLimit:    listLimit,
	}
}

// CreateAuction opens a new active auction whose highest bid starts at the starting amount
func (l *Ledger) CreateAuction(
	ctx context.Context,
	ownerID string,
	category string,
	description string,
	startingBidAmount int64,
) (*entity.Auction, error) {
	auction, err := entity.NewAuction(l.ids.NewID(), ownerID, category, description, startingBidAmount, l.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := l.uow.GetAuctionRepository(ctx).Create(ctx, auction); err != nil {
		l.logger.Error("Failed to create auction", map[string]any{
			"owner_id": ownerID,
			"category": category,
			"error":    err.Error(),
		})
		return nil, err
	}

	l.logger.Info("Auction created", map[string]any{
		"auction_id":   auction.ID,
		"owner_id":     ownerID,
		"category":     category,
		"starting_bid": startingBidAmount,
	})
	return auction, nil
}

// RecordBid validates a bid against the locked, current auction row and appends it.
// The bid insert and the highest-bid update commit together or not at all.
func (l *Ledger) RecordBid(ctx context.Context, req RecordBidRequest) (*RecordBidResult, error) {
	// A replay carrying a client token can be answered without taking the lock
	replay, found, err := l.idempotency.CheckKey(ctx, l.uow.GetBidRepository(ctx), req.AuctionID, req.BidderID, req.Amount, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if found {
		return l.replayResult(ctx, replay)
	}

	var result *RecordBidResult
	err = unitofwork.Run(ctx, l.uow, l.logger, "record bid", func(txCtx context.Context) error {
		auctions := l.uow.GetAuctionRepository(txCtx)
		bids := l.uow.GetBidRepository(txCtx)

		auction, err := auctions.GetForUpdate(txCtx, req.AuctionID)
		if err != nil {
			return err
		}

		// Re-check under the lock: a retry with the same token may have committed meanwhile
		replay, found, err := l.idempotency.CheckKey(txCtx, bids, req.AuctionID, req.BidderID, req.Amount, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if found {
			result = &RecordBidResult{Bid: replay, CurrentHighestBid: auction.CurrentHighestBid, Replayed: true}
			return nil
		}

		if err := l.validator.Validate(auction, req.Amount); err != nil {
			if errors.Is(err, errs.ErrBidTooLow) {
				dup, dupErr := l.idempotency.FindNaturalDuplicate(txCtx, bids, req.AuctionID, req.BidderID, req.Amount)
				if dupErr != nil {
					return dupErr
				}
				if dup != nil {
					result = &RecordBidResult{Bid: dup, CurrentHighestBid: auction.CurrentHighestBid, Replayed: true}
					return nil
				}
			}
			return err
		}

		bid, err := entity.NewBid(l.ids.NewID(), req.AuctionID, req.BidderID, req.BidderName, req.Amount, req.Message, req.IdempotencyKey, l.timeProvider)
		if err != nil {
			return err
		}
		if err := bids.Create(txCtx, bid); err != nil {
			return err
		}
		if err := auction.ApplyBid(bid.Amount, l.timeProvider); err != nil {
			return err
		}
		if err := auctions.Update(txCtx, auction, entity.AuctionActive); err != nil {
			return err
		}

		result = &RecordBidResult{Bid: bid, CurrentHighestBid: auction.CurrentHighestBid}
		return nil
	})

	if err != nil {
		// Two retries with the same token raced; the loser returns the winner's bid
		if req.IdempotencyKey != "" && errors.Is(err, errs.ErrConstraintViolation) {
			replay, found, keyErr := l.idempotency.CheckKey(ctx, l.uow.GetBidRepository(ctx), req.AuctionID, req.BidderID, req.Amount, req.IdempotencyKey)
			if keyErr == nil && found {
				return l.replayResult(ctx, replay)
			}
		}
		l.logRejection(req, err)
		return nil, err
	}

	if result.Replayed {
		l.logger.Info("Duplicate bid submission returned existing bid", map[string]any{
			"auction_id": req.AuctionID,
			"bidder_id":  req.BidderID,
			"bid_id":     result.Bid.ID,
			"amount":     req.Amount,
		})
		return result, nil
	}

	l.logger.Info("Bid recorded", map[string]any{
		"auction_id":  req.AuctionID,
		"bidder_id":   req.BidderID,
		"bid_id":      result.Bid.ID,
		"amount":      req.Amount,
		"highest_bid": result.CurrentHighestBid,
	})
	return result, nil
}

func (l *Ledger) replayResult(ctx context.Context, bid *entity.Bid) (*RecordBidResult, error) {
	auction, err := l.uow.GetAuctionRepository(ctx).GetByID(ctx, bid.AuctionID)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Idempotent bid replay", map[string]any{
		"auction_id": bid.AuctionID,
		"bid_id":     bid.ID,
	})
	return &RecordBidResult{Bid: bid, CurrentHighestBid: auction.CurrentHighestBid, Replayed: true}, nil
}

func (l *Ledger) logRejection(req RecordBidRequest, err error) {
	fields := errs.LogFieldsOf(err)
	fields["bidder_id"] = req.BidderID
	fields["auction_id"] = req.AuctionID

	kind := errs.KindOf(err)
	switch {
	case errs.IsBidRejection(err):
		l.logger.Info("Bid below the acceptable minimum", fields)
	case kind == errs.KindInternal, kind == errs.KindTransientFailure:
		l.logger.Error("Bid could not be recorded", fields)
	case kind == errs.KindConcurrentModification:
		l.logger.Warn("Bid lost a concurrent update", fields)
	default:
		l.logger.Info("Bid rejected", fields)
	}
}

// GetAuction returns the committed state of an auction
func (l *Ledger) GetAuction(ctx context.Context, auctionID string) (*entity.Auction, error) {
	return l.uow.GetAuctionRepository(ctx).GetByID(ctx, auctionID)
}

// ListBids returns all bids of an auction in the requested order
func (l *Ledger) ListBids(ctx context.Context, auctionID string, order entity.BidOrder) ([]*entity.Bid, error) {
	if _, err := l.uow.GetAuctionRepository(ctx).GetByID(ctx, auctionID); err != nil {
		return nil, err
	}
	return l.uow.GetBidRepository(ctx).ListByAuction(ctx, auctionID, order)
}

// ListActiveAuctions returns a page of active auctions, newest first
func (l *Ledger) ListActiveAuctions(ctx context.Context, filter persistence.AuctionFilter) ([]*entity.Auction, error) {
	if filter.Category != "" && !entity.IsValidCategory(string(filter.Category)) {
		return nil, fmt.Errorf("%w: %s (supported: %s)", errs.ErrInvalidCategory, filter.Category, supportedCategories())
	}
	if filter.Limit <= 0 {
		filter.Limit = l.listLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return l.uow.GetAuctionRepository(ctx).ListActive(ctx, filter)
}

// CancelAuction moves an active auction to cancelled. No fee is charged.
func (l *Ledger) CancelAuction(ctx context.Context, auctionID string) (*entity.Auction, error) {
	var cancelled *entity.Auction
	err := unitofwork.Run(ctx, l.uow, l.logger, "cancel auction", func(txCtx context.Context) error {
		auctions := l.uow.GetAuctionRepository(txCtx)

		auction, err := auctions.GetForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}
		if err := auction.Cancel(l.timeProvider); err != nil {
			return err
		}
		if err := auctions.Update(txCtx, auction, entity.AuctionActive); err != nil {
			return err
		}
		cancelled = auction
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Auction cancelled", map[string]any{
		"auction_id": auctionID,
	})
	return cancelled, nil
}
