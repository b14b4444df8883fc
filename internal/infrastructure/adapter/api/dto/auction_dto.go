package dto

import (
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
)

// CreateAuctionRequest represents the API request for opening an auction.
// The starting amount is given either in cents or as a major-unit string ("50.00").
type CreateAuctionRequest struct {
	Category               string `json:"category" binding:"required,donation_category"`
	Description            string `json:"description" binding:"max=2000"`
	StartingBidAmountCents int64  `json:"startingBidAmountCents" binding:"gte=0"`
	StartingBidAmount      string `json:"startingBidAmount" binding:"max=32"`
}

// CreateAuctionResponse represents the API response for a created auction
type CreateAuctionResponse struct {
	AuctionID string `json:"auctionId"`
}

// AuctionResponse represents an auction as returned to clients
type AuctionResponse struct {
	AuctionID              string     `json:"auctionId"`
	OwnerID                string     `json:"ownerId"`
	Category               string     `json:"category"`
	Description            string     `json:"description"`
	StartingBidAmountCents int64      `json:"startingBidAmountCents"`
	CurrentHighestBidCents int64      `json:"currentHighestBidCents"`
	CurrentHighestBid      string     `json:"currentHighestBid"`
	Status                 string     `json:"status"`
	CreatedAt              time.Time  `json:"createdAt"`
	CompletedAt            *time.Time `json:"completedAt,omitempty"`
	CancelledAt            *time.Time `json:"cancelledAt,omitempty"`
}

// AuctionListResponse represents a page of auctions
type AuctionListResponse struct {
	Auctions []AuctionResponse `json:"auctions"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ListAuctionsQuery represents the query string of the auction listing
type ListAuctionsQuery struct {
	Category string `form:"category"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// NewAuctionResponse converts an auction entity for the API
func NewAuctionResponse(a *entity.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:              a.ID,
		OwnerID:                a.OwnerID,
		Category:               string(a.Category),
		Description:            a.Description,
		StartingBidAmountCents: a.StartingBidAmount,
		CurrentHighestBidCents: a.CurrentHighestBid,
		CurrentHighestBid:      entity.AmountInCentsToString(a.CurrentHighestBid),
		Status:                 string(a.Status),
		CreatedAt:              a.CreatedAt,
		CompletedAt:            a.CompletedAt,
		CancelledAt:            a.CancelledAt,
	}
}

// NewAuctionListResponse converts a page of auctions for the API
func NewAuctionListResponse(auctions []*entity.Auction, limit, offset int) AuctionListResponse {
	out := AuctionListResponse{
		Auctions: make([]AuctionResponse, 0, len(auctions)),
		Limit:    limit,
		Offset:   offset,
	}
	for _, a := range auctions {
		out.Auctions = append(out.Auctions, NewAuctionResponse(a))
	}
	return out
}
