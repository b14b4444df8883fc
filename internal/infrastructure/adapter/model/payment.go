package model

import (
	"time"
)

// Payment represents the settlement record of a completed auction
type Payment struct {
	ID                string    `gorm:"primaryKey;size:64"`
	AuctionID         string    `gorm:"not null;size:64;uniqueIndex"`
	WinningBidID      string    `gorm:"not null;size:64"`
	WinningBidAmount  int64     `gorm:"not null"`
	PlatformFeeAmount int64     `gorm:"not null"`
	DonorPayoutAmount int64     `gorm:"not null"`
	DonorID           string    `gorm:"not null;size:128"`
	WinnerID          string    `gorm:"not null;size:128"`
	Status            string    `gorm:"not null;size:16;index"`
	ProcessedAt       *time.Time
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`

	Auction    Auction `gorm:"foreignKey:AuctionID;references:ID"`
	WinningBid Bid     `gorm:"foreignKey:WinningBidID;references:ID"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
