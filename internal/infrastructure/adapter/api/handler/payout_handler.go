package handler

import (
	"net/http"
	"strconv"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// PayoutHandler serves the payout collaborator
type PayoutHandler struct {
	payouts usecase.PayoutUseCase
	logger  coreport.Logger
}

// NewPayoutHandler creates a new payout handler instance
func NewPayoutHandler(payouts usecase.PayoutUseCase, logger coreport.Logger) *PayoutHandler {
	return &PayoutHandler{
		payouts: payouts,
		logger:  logger,
	}
}

// ListPending handles GET /api/v1/payouts/pending
func (h *PayoutHandler) ListPending(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = c.Error(invalidRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	payments, err := h.payouts.ListPending(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentListResponse(payments))
}

// UpdateStatus handles PATCH /api/v1/payouts/:paymentId
func (h *PayoutHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(invalidRequest("invalid request format: " + err.Error()))
		return
	}

	payment, err := h.payouts.UpdateStatus(c.Request.Context(), c.Param("paymentId"), entity.PaymentStatus(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Payout status reported", map[string]any{
		"payment_id": payment.ID,
		"auction_id": payment.AuctionID,
		"status":     string(payment.Status),
	})
	c.JSON(http.StatusOK, dto.NewPaymentResponse(payment))
}
