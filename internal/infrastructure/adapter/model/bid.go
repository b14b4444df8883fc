package model

import (
	"time"
)

// Bid represents the database model for bids. Rows are never updated.
type Bid struct {
	ID             string    `gorm:"primaryKey;size:64"`
	AuctionID      string    `gorm:"not null;size:64;index"`
	BidderID       string    `gorm:"not null;size:128"`
	BidderName     string    `gorm:"size:255"`
	Amount         int64     `gorm:"not null"` // cents
	Message        string    `gorm:"type:text"`
	IdempotencyKey *string   `gorm:"size:128"` // NULL when the client sent none
	CreatedAt      time.Time `gorm:"not null"`

	Auction Auction `gorm:"foreignKey:AuctionID;references:ID"`
}

// TableName specifies the table name for Bid
func (Bid) TableName() string {
	return "bids"
}
