package model

import (
	"time"
)

// Auction represents the database model for auctions
type Auction struct {
	ID                string    `gorm:"primaryKey;size:64"`
	OwnerID           string    `gorm:"not null;size:128;index"`
	Category          string    `gorm:"not null;size:32"`
	Description       string    `gorm:"type:text"`
	StartingBidAmount int64     `gorm:"not null"` // cents
	CurrentHighestBid int64     `gorm:"not null"` // cents
	Status            string    `gorm:"not null;size:16"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
	CompletedAt       *time.Time
	CancelledAt       *time.Time
}

// TableName specifies the table name for Auction
func (Auction) TableName() string {
	return "auctions"
}
