package dto

import (
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
)

// PlaceBidRequest represents the API request for placing a bid.
// The amount is given either in cents or as a major-unit string ("5505.00").
type PlaceBidRequest struct {
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount" binding:"max=32"`
	Message     string `json:"message" binding:"max=1000"`
}

// PlaceBidResponse represents the API response for an accepted bid
type PlaceBidResponse struct {
	BidID                  string `json:"bidId"`
	AuctionID              string `json:"auctionId"`
	AmountCents            int64  `json:"amountCents"`
	CurrentHighestBidCents int64  `json:"currentHighestBidCents"`
	Replayed               bool   `json:"replayed"`
}

// BidResponse represents a bid as returned to clients
type BidResponse struct {
	BidID       string    `json:"bidId"`
	AuctionID   string    `json:"auctionId"`
	BidderID    string    `json:"bidderId"`
	BidderName  string    `json:"bidderName,omitempty"`
	AmountCents int64     `json:"amountCents"`
	Amount      string    `json:"amount"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BidListResponse represents the bids of one auction
type BidListResponse struct {
	AuctionID string        `json:"auctionId"`
	Order     string        `json:"order"`
	Bids      []BidResponse `json:"bids"`
}

// NewBidResponse converts a bid entity for the API
func NewBidResponse(b *entity.Bid) BidResponse {
	return BidResponse{
		BidID:       b.ID,
		AuctionID:   b.AuctionID,
		BidderID:    b.BidderID,
		BidderName:  b.BidderName,
		AmountCents: b.Amount,
		Amount:      entity.AmountInCentsToString(b.Amount),
		Message:     b.Message,
		CreatedAt:   b.CreatedAt,
	}
}

// NewBidListResponse converts the bids of an auction for the API
func NewBidListResponse(auctionID string, order entity.BidOrder, bids []*entity.Bid) BidListResponse {
	out := BidListResponse{
		AuctionID: auctionID,
		Order:     string(order),
		Bids:      make([]BidResponse, 0, len(bids)),
	}
	for _, b := range bids {
		out.Bids = append(out.Bids, NewBidResponse(b))
	}
	return out
}
