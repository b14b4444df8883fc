package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
)

// Requester identifies the caller as asserted by the upstream gateway
type Requester struct {
	UserID string
	Name   string
	Role   string
}

// IsAdmin returns true for platform administrators
func (r Requester) IsAdmin() bool {
	return r.Role == "admin"
}

// CreateAuctionRequest represents a request to open a new auction
type CreateAuctionRequest struct {
	Category          string `validate:"required,donation_category"`
	Description       string `validate:"max=2000"`
	StartingBidAmount int64  `validate:"gt=0"`
}

// PlaceBidRequest represents a bid submitted by a client
type PlaceBidRequest struct {
	AuctionID      string `validate:"required"`
	Amount         int64  `validate:"gt=0"`
	Message        string `validate:"max=1000"`
	IdempotencyKey string `validate:"max=128"`
}

// AcceptBidRequest represents the owner choosing a winning bid
type AcceptBidRequest struct {
	AuctionID    string `validate:"required"`
	WinningBidID string `validate:"required"`
}

// ListAuctionsRequest represents a paged query over active auctions
type ListAuctionsRequest struct {
	Category string `validate:"omitempty,donation_category"`
	Limit    int    `validate:"gte=0,lte=100"`
	Offset   int    `validate:"gte=0"`
}

// PlaceBidResult is returned for an accepted (or replayed) bid
type PlaceBidResult struct {
	Bid               *entity.Bid
	CurrentHighestBid int64
	Replayed          bool // true when an earlier identical bid was returned instead of a new one
}

// SettlementResult summarizes a completed auction
type SettlementResult struct {
	AuctionID        string
	PaymentID        string
	WinningBidID     string
	WinnerID         string
	WinningBidAmount int64
	PlatformFee      int64
	DonorPayout      int64
	CompletedAt      time.Time
}

// OperationError is the normalized failure returned by the auction service
type OperationError struct {
	Kind              errs.Kind
	Message           string
	MinimumAcceptable int64 // set for bid rejections
	Retryable         bool
	Err               error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// AuctionUseCase defines the operations exposed to clients
type AuctionUseCase interface {
	// CreateAuction opens a new active auction owned by the requester
	CreateAuction(ctx context.Context, requester Requester, req CreateAuctionRequest) (*entity.Auction, error)

	// PlaceBid validates and records a bid against the live auction state
	PlaceBid(ctx context.Context, requester Requester, req PlaceBidRequest) (*PlaceBidResult, error)

	// GetAuction returns the current state of an auction
	GetAuction(ctx context.Context, auctionID string) (*entity.Auction, error)

	// ListBids returns the bids of an auction in the requested order
	ListBids(ctx context.Context, auctionID string, order entity.BidOrder) ([]*entity.Bid, error)

	// ListActiveAuctions returns a page of active auctions
	ListActiveAuctions(ctx context.Context, req ListAuctionsRequest) ([]*entity.Auction, error)

	// AcceptBid completes the auction with the chosen bid and records the fee split
	AcceptBid(ctx context.Context, requester Requester, req AcceptBidRequest) (*SettlementResult, error)

	// CancelAuction administratively cancels an active auction
	CancelAuction(ctx context.Context, requester Requester, auctionID string) (*entity.Auction, error)

	// GetPayment returns the settlement record of a completed auction
	GetPayment(ctx context.Context, requester Requester, auctionID string) (*entity.Payment, error)
}

// PayoutUseCase is used by the external payout collaborator
type PayoutUseCase interface {
	// ListPending returns payments awaiting payout, oldest first
	ListPending(ctx context.Context, limit int) ([]*entity.Payment, error)

	// UpdateStatus moves a pending payment to processed or failed
	UpdateStatus(ctx context.Context, paymentID string, status entity.PaymentStatus) (*entity.Payment, error)
}
