package core

// IDGenerator produces identifiers for auctions, bids and payments
type IDGenerator interface {
	NewID() string
}
