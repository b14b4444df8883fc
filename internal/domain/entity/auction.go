package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
)

// Category identifies the kind of donation being auctioned
type Category string

// Donation categories
const (
	CategoryBlood      Category = "blood"
	CategorySperm      Category = "sperm"
	CategoryEggs       Category = "eggs"
	CategoryPlasma     Category = "plasma"
	CategoryBoneMarrow Category = "bone_marrow"
)

var categories = []Category{
	CategoryBlood,
	CategorySperm,
	CategoryEggs,
	CategoryPlasma,
	CategoryBoneMarrow,
}

// Categories returns every supported donation category
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValidCategory checks if the category is one of the supported values
func IsValidCategory(category string) bool {
	for _, c := range categories {
		if string(c) == category {
			return true
		}
	}
	return false
}

// AuctionStatus represents the lifecycle state of an auction
type AuctionStatus string

// AuctionStatus constants
const (
	AuctionActive    AuctionStatus = "active"
	AuctionCompleted AuctionStatus = "completed"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Auction is a time-unbounded listing in which bidders compete for a donation
type Auction struct {
	ID                string        // Unique identifier for the auction
	OwnerID           string        // Donor who created the listing
	Category          Category      // Donation category
	Description       string        // Free text shown to bidders
	StartingBidAmount int64         // Opening price in cents
	CurrentHighestBid int64         // Highest accepted bid in cents, or the starting amount
	Status            AuctionStatus // active, completed or cancelled
	CreatedAt         time.Time     // When the auction was created
	UpdatedAt         time.Time     // When the auction was last modified
	CompletedAt       *time.Time    // When the owner accepted a bid (nullable)
	CancelledAt       *time.Time    // When an administrator cancelled the auction (nullable)
}

// NewAuction creates a new active auction with basic validation
func NewAuction(
	id string,
	ownerID string,
	category string,
	description string,
	startingBidAmount int64,
	timeProvider coreport.TimeProvider,
) (*Auction, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", errs.ErrInvalidRequest)
	}
	if !IsValidCategory(category) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCategory, category)
	}
	if startingBidAmount <= 0 {
		return nil, fmt.Errorf("%w: starting bid must be positive", errs.ErrInvalidAmount)
	}
	if startingBidAmount > MaxBidAmount {
		return nil, fmt.Errorf("%w: starting bid exceeds %s", errs.ErrAmountOutOfRange, AmountInCentsToString(MaxBidAmount))
	}

	now := timeProvider.Now()
	return &Auction{
		ID:                id,
		OwnerID:           ownerID,
		Category:          Category(category),
		Description:       strings.TrimSpace(description),
		StartingBidAmount: startingBidAmount,
		CurrentHighestBid: startingBidAmount,
		Status:            AuctionActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsActive returns true while the auction accepts bids
func (a *Auction) IsActive() bool {
	return a.Status == AuctionActive
}

// IsOwnedBy returns true if userID created this auction
func (a *Auction) IsOwnedBy(userID string) bool {
	return a.OwnerID == userID
}

// ApplyBid advances the highest bid pointer. The pointer never moves down.
func (a *Auction) ApplyBid(amount int64, timeProvider coreport.TimeProvider) error {
	if !a.IsActive() {
		return errs.ErrAuctionNotActive
	}
	if amount <= a.CurrentHighestBid {
		return errs.ErrBidTooLow
	}
	a.CurrentHighestBid = amount
	a.UpdatedAt = timeProvider.Now()
	return nil
}

// Complete marks the auction as completed
func (a *Auction) Complete(timeProvider coreport.TimeProvider) error {
	if !a.IsActive() {
		return errs.ErrAuctionNotActive
	}
	now := timeProvider.Now()
	a.Status = AuctionCompleted
	a.CompletedAt = &now
	a.UpdatedAt = now
	return nil
}

// Cancel marks the auction as cancelled
func (a *Auction) Cancel(timeProvider coreport.TimeProvider) error {
	if !a.IsActive() {
		return errs.ErrAuctionNotActive
	}
	now := timeProvider.Now()
	a.Status = AuctionCancelled
	a.CancelledAt = &now
	a.UpdatedAt = now
	return nil
}

// Clone returns a copy that can be mutated without affecting the receiver
func (a *Auction) Clone() *Auction {
	c := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		c.CompletedAt = &t
	}
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}
