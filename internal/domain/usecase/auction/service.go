package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/settlement"
	"github.com/go-playground/validator/v10"
)

// Service is the client-facing entry point. It checks request shape,
// delegates to the ledger and the settlement engine, and turns every
// failure into a *usecase.OperationError.
type Service struct {
	ledger   *Ledger
	engine   *settlement.Engine
	validate *validator.Validate
	logger   coreport.Logger
}

var _ usecase.AuctionUseCase = (*Service)(nil)

// NewService creates a new auction service
func NewService(ledger *Ledger, engine *settlement.Engine, logger coreport.Logger) *Service {
	return &Service{
		ledger:   ledger,
		engine:   engine,
		validate: NewRequestValidator(),
		logger:   logger,
	}
}

// CreateAuction opens a new auction owned by the requester
func (s *Service) CreateAuction(ctx context.Context, requester usecase.Requester, req usecase.CreateAuctionRequest) (*entity.Auction, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, normalize(err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, normalize(validationError(err))
	}

	auction, err := s.ledger.CreateAuction(ctx, requester.UserID, req.Category, req.Description, req.StartingBidAmount)
	return auction, normalize(err)
}

// PlaceBid records a bid from the requester
func (s *Service) PlaceBid(ctx context.Context, requester usecase.Requester, req usecase.PlaceBidRequest) (*usecase.PlaceBidResult, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, normalize(err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, normalize(validationError(err))
	}

	res, err := s.ledger.RecordBid(ctx, RecordBidRequest{
		AuctionID:      req.AuctionID,
		BidderID:       requester.UserID,
		BidderName:     requester.Name,
		Amount:         req.Amount,
		Message:        req.Message,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, normalize(err)
	}

	return &usecase.PlaceBidResult{
		Bid:               res.Bid,
		CurrentHighestBid: res.CurrentHighestBid,
		Replayed:          res.Replayed,
	}, nil
}

// GetAuction returns the current state of an auction
func (s *Service) GetAuction(ctx context.Context, auctionID string) (*entity.Auction, error) {
	auction, err := s.ledger.GetAuction(ctx, auctionID)
	return auction, normalize(err)
}

// ListBids returns the bids of an auction
func (s *Service) ListBids(ctx context.Context, auctionID string, order entity.BidOrder) ([]*entity.Bid, error) {
	if order != entity.OrderByAmount && order != entity.OrderByTime {
		return nil, normalize(fmt.Errorf("%w: unknown bid order %q", errs.ErrInvalidRequest, order))
	}
	bids, err := s.ledger.ListBids(ctx, auctionID, order)
	return bids, normalize(err)
}

// ListActiveAuctions returns a page of active auctions
func (s *Service) ListActiveAuctions(ctx context.Context, req usecase.ListAuctionsRequest) ([]*entity.Auction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, normalize(validationError(err))
	}
	auctions, err := s.ledger.ListActiveAuctions(ctx, persistence.AuctionFilter{
		Category: entity.Category(req.Category),
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	return auctions, normalize(err)
}

// AcceptBid completes the auction with the chosen bid
func (s *Service) AcceptBid(ctx context.Context, requester usecase.Requester, req usecase.AcceptBidRequest) (*usecase.SettlementResult, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, normalize(err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, normalize(validationError(err))
	}

	res, err := s.engine.CompleteAuction(ctx, req.AuctionID, req.WinningBidID, requester.UserID)
	return res, normalize(err)
}

// CancelAuction cancels an active auction. Administrators only.
func (s *Service) CancelAuction(ctx context.Context, requester usecase.Requester, auctionID string) (*entity.Auction, error) {
	if !requester.IsAdmin() {
		s.logger.Warn("Non-admin attempted to cancel auction", map[string]any{
			"auction_id": auctionID,
			"user_id":    requester.UserID,
		})
		return nil, normalize(fmt.Errorf("%w: only administrators can cancel auctions", errs.ErrNotAuthorized))
	}

	auction, err := s.ledger.CancelAuction(ctx, auctionID)
	return auction, normalize(err)
}

// GetPayment returns the settlement record. Visible to the donor, the winner and administrators.
func (s *Service) GetPayment(ctx context.Context, requester usecase.Requester, auctionID string) (*entity.Payment, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, normalize(err)
	}

	payment, err := s.engine.GetPayment(ctx, auctionID)
	if err != nil {
		return nil, normalize(err)
	}
	if !requester.IsAdmin() && requester.UserID != payment.DonorID && requester.UserID != payment.WinnerID {
		return nil, normalize(fmt.Errorf("%w: payment is visible to the donor and the winner only", errs.ErrNotAuthorized))
	}
	return payment, nil
}

func requireIdentity(requester usecase.Requester) error {
	if strings.TrimSpace(requester.UserID) == "" {
		return fmt.Errorf("%w: missing user identity", errs.ErrNotAuthorized)
	}
	return nil
}

// normalize maps domain and storage errors to an OperationError with a caller-facing message
func normalize(err error) error {
	if err == nil {
		return nil
	}

	var opErr *usecase.OperationError
	if errors.As(err, &opErr) {
		return opErr
	}

	kind := errs.KindOf(err)
	out := &usecase.OperationError{
		Kind:      kind,
		Message:   err.Error(),
		Retryable: errs.IsRetryable(err),
		Err:       err,
	}

	var rejection *errs.BidRejectionError
	if errors.As(err, &rejection) {
		out.MinimumAcceptable = rejection.MinimumAcceptable
		out.Message = rejectionMessage(rejection)
		return out
	}

	var settlementErr *errs.SettlementError
	if errors.As(err, &settlementErr) {
		out.Message = settlementErr.Reason
		return out
	}

	switch kind {
	case errs.KindConcurrentModification:
		out.Message = "The auction was updated by another request. Please refresh and try again."
	case errs.KindTransientFailure:
		out.Message = "The service is temporarily unavailable. Please try again."
	case errs.KindInternal:
		out.Message = errs.ErrInternalServer.Error()
	}
	return out
}

func rejectionMessage(e *errs.BidRejectionError) string {
	highest := entity.AmountInCentsToString(e.CurrentHighest)
	minimum := entity.AmountInCentsToString(e.MinimumAcceptable)

	switch {
	case errors.Is(e.Err, errs.ErrAuctionNotActive):
		return "This auction is no longer accepting bids."
	case errors.Is(e.Err, errs.ErrBidTooLow):
		return fmt.Sprintf("Your bid must be higher than the current highest bid of %s. The minimum acceptable bid is %s.", highest, minimum)
	case errors.Is(e.Err, errs.ErrIncrementTooSmall):
		return fmt.Sprintf("Bids must increase by at least %s. The minimum acceptable bid is %s.",
			entity.AmountInCentsToString(RequiredIncrement(e.CurrentHighest)), minimum)
	case errors.Is(e.Err, errs.ErrAmountOutOfRange):
		return fmt.Sprintf("Bids cannot exceed %s.", entity.AmountInCentsToString(entity.MaxBidAmount))
	default:
		return e.Error()
	}
}
