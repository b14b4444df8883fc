package dto

import (
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
)

// AcceptBidRequest represents the API request for completing an auction
type AcceptBidRequest struct {
	WinningBidID string `json:"winningBidId" binding:"required"`
}

// AcceptBidResponse represents the fee split of a completed auction
type AcceptBidResponse struct {
	AuctionID       string    `json:"auctionId"`
	PaymentID       string    `json:"paymentId"`
	WinningBidID    string    `json:"winningBidId"`
	WinnerID        string    `json:"winnerId"`
	WinningBidCents int64     `json:"winningBidCents"`
	FeeCents        int64     `json:"feeCents"`
	PayoutCents     int64     `json:"payoutCents"`
	Fee             string    `json:"fee"`
	Payout          string    `json:"payout"`
	CompletedAt     time.Time `json:"completedAt"`
}

// PaymentResponse represents a settlement record
type PaymentResponse struct {
	PaymentID       string     `json:"paymentId"`
	AuctionID       string     `json:"auctionId"`
	WinningBidID    string     `json:"winningBidId"`
	DonorID         string     `json:"donorId"`
	WinnerID        string     `json:"winnerId"`
	WinningBidCents int64      `json:"winningBidCents"`
	FeeCents        int64      `json:"feeCents"`
	PayoutCents     int64      `json:"payoutCents"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
}

// PaymentListResponse represents payments awaiting payout
type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// UpdatePaymentStatusRequest represents the payout collaborator reporting a result
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=processed failed"`
}

// NewAcceptBidResponse converts a settlement result for the API
func NewAcceptBidResponse(r *usecase.SettlementResult) AcceptBidResponse {
	return AcceptBidResponse{
		AuctionID:       r.AuctionID,
		PaymentID:       r.PaymentID,
		WinningBidID:    r.WinningBidID,
		WinnerID:        r.WinnerID,
		WinningBidCents: r.WinningBidAmount,
		FeeCents:        r.PlatformFee,
		PayoutCents:     r.DonorPayout,
		Fee:             entity.AmountInCentsToString(r.PlatformFee),
		Payout:          entity.AmountInCentsToString(r.DonorPayout),
		CompletedAt:     r.CompletedAt,
	}
}

// NewPaymentResponse converts a payment entity for the API
func NewPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:       p.ID,
		AuctionID:       p.AuctionID,
		WinningBidID:    p.WinningBidID,
		DonorID:         p.DonorID,
		WinnerID:        p.WinnerID,
		WinningBidCents: p.WinningBidAmount,
		FeeCents:        p.PlatformFeeAmount,
		PayoutCents:     p.DonorPayoutAmount,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
		ProcessedAt:     p.ProcessedAt,
	}
}

// NewPaymentListResponse converts a list of payments for the API
func NewPaymentListResponse(payments []*entity.Payment) PaymentListResponse {
	out := PaymentListResponse{Payments: make([]PaymentResponse, 0, len(payments))}
	for _, p := range payments {
		out.Payments = append(out.Payments, NewPaymentResponse(p))
	}
	return out
}
