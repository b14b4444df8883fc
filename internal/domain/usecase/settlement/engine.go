package settlement

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/unitofwork"
)

// Engine completes auctions. Completion, the fee split and the payment record
// are written in one transaction under the auction row lock.
type Engine struct {
	uow          persistence.UnitOfWork
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewEngine creates a new settlement engine
func NewEngine(
	uow persistence.UnitOfWork,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Engine {
	return &Engine{
		uow:          uow,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CompleteAuction accepts winningBidID on behalf of requesterID.
// Checks run in order: auction active, requester is owner, bid belongs to auction.
func (e *Engine) CompleteAuction(
	ctx context.Context,
	auctionID string,
	winningBidID string,
	requesterID string,
) (*usecase.SettlementResult, error) {
	var result *usecase.SettlementResult

	err := unitofwork.Run(ctx, e.uow, e.logger, "complete auction", func(txCtx context.Context) error {
		auctions := e.uow.GetAuctionRepository(txCtx)
		bids := e.uow.GetBidRepository(txCtx)
		payments := e.uow.GetPaymentRepository(txCtx)

		auction, err := auctions.GetForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}

		if !auction.IsActive() {
			return errs.NewSettlementError(auctionID, winningBidID, requesterID, notActiveReason(auction, requesterID), errs.ErrAuctionNotActive)
		}
		if !auction.IsOwnedBy(requesterID) {
			return errs.NewSettlementError(auctionID, winningBidID, requesterID, "only the auction owner can accept a bid", errs.ErrNotAuthorized)
		}

		bid, err := bids.GetByID(txCtx, winningBidID)
		if err != nil {
			if errors.Is(err, errs.ErrBidNotFound) {
				return errs.NewSettlementError(auctionID, winningBidID, requesterID, "bid does not exist", errs.ErrBidNotFound)
			}
			return err
		}
		if bid.AuctionID != auction.ID {
			return errs.NewSettlementError(auctionID, winningBidID, requesterID, "bid belongs to a different auction", errs.ErrBidNotFound)
		}

		payment, err := entity.NewPayment(e.ids.NewID(), auction, bid, e.timeProvider)
		if err != nil {
			return err
		}
		if err := payments.Create(txCtx, payment); err != nil {
			return err
		}
		if err := auction.Complete(e.timeProvider); err != nil {
			return err
		}
		if err := auctions.Update(txCtx, auction, entity.AuctionActive); err != nil {
			return err
		}

		result = &usecase.SettlementResult{
			AuctionID:        auction.ID,
			PaymentID:        payment.ID,
			WinningBidID:     bid.ID,
			WinnerID:         bid.BidderID,
			WinningBidAmount: payment.WinningBidAmount,
			PlatformFee:      payment.PlatformFeeAmount,
			DonorPayout:      payment.DonorPayoutAmount,
			CompletedAt:      *auction.CompletedAt,
		}
		return nil
	})

	if err != nil {
		fields := errs.LogFieldsOf(err)
		fields["auction_id"] = auctionID
		fields["requester_id"] = requesterID
		e.logger.Warn("Auction completion failed", fields)
		return nil, err
	}

	e.logger.Info("Auction completed", map[string]any{
		"auction_id":   result.AuctionID,
		"payment_id":   result.PaymentID,
		"winning_bid":  result.WinningBidID,
		"amount":       result.WinningBidAmount,
		"platform_fee": result.PlatformFee,
		"donor_payout": result.DonorPayout,
	})
	return result, nil
}

// GetPayment returns the settlement record of an auction
func (e *Engine) GetPayment(ctx context.Context, auctionID string) (*entity.Payment, error) {
	return e.uow.GetPaymentRepository(ctx).GetByAuctionID(ctx, auctionID)
}

func notActiveReason(auction *entity.Auction, requesterID string) string {
	switch {
	case auction.Status == entity.AuctionCompleted && auction.IsOwnedBy(requesterID):
		return "you already completed this auction; refresh to see the result"
	case auction.Status == entity.AuctionCompleted:
		return "auction was already completed; refresh to see the result"
	default:
		return "auction was cancelled; refresh to see the result"
	}
}
