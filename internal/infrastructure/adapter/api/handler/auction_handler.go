package handler

import (
	"net/http"
	"strings"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client retry token of a bid
const HeaderIdempotencyKey = "Idempotency-Key"

// AuctionHandler handles auction, bid and settlement HTTP requests
type AuctionHandler struct {
	auctions usecase.AuctionUseCase
	logger   coreport.Logger
}

// NewAuctionHandler creates a new auction handler instance
func NewAuctionHandler(auctions usecase.AuctionUseCase, logger coreport.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctions: auctions,
		logger:   logger,
	}
}

// CreateAuction handles POST /api/v1/auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	var req dto.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	starting, err := amountInCents(req.StartingBidAmountCents, req.StartingBidAmount, "startingBidAmountCents", "startingBidAmount")
	if err != nil {
		_ = c.Error(err)
		return
	}

	auction, err := h.auctions.CreateAuction(c.Request.Context(), middleware.RequesterFrom(c), usecase.CreateAuctionRequest{
		Category:          req.Category,
		Description:       req.Description,
		StartingBidAmount: starting,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAuctionResponse{AuctionID: auction.ID})
}

// ListActiveAuctions handles GET /api/v1/auctions
func (h *AuctionHandler) ListActiveAuctions(c *gin.Context) {
	var q dto.ListAuctionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}

	auctions, err := h.auctions.ListActiveAuctions(c.Request.Context(), usecase.ListAuctionsRequest{
		Category: q.Category,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuctionListResponse(auctions, q.Limit, q.Offset))
}

// GetAuction handles GET /api/v1/auctions/:auctionId
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auction, err := h.auctions.GetAuction(c.Request.Context(), c.Param("auctionId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuctionResponse(auction))
}

// ListBids handles GET /api/v1/auctions/:auctionId/bids
func (h *AuctionHandler) ListBids(c *gin.Context) {
	auctionID := c.Param("auctionId")
	order, err := entity.ParseBidOrder(c.Query("order"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	bids, err := h.auctions.ListBids(c.Request.Context(), auctionID, order)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBidListResponse(auctionID, order, bids))
}

// PlaceBid handles POST /api/v1/auctions/:auctionId/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	amount, err := amountInCents(req.AmountCents, req.Amount, "amountCents", "amount")
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.auctions.PlaceBid(c.Request.Context(), middleware.RequesterFrom(c), usecase.PlaceBidRequest{
		AuctionID:      c.Param("auctionId"),
		Amount:         amount,
		Message:        req.Message,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.PlaceBidResponse{
		BidID:                  res.Bid.ID,
		AuctionID:              res.Bid.AuctionID,
		AmountCents:            res.Bid.Amount,
		CurrentHighestBidCents: res.CurrentHighestBid,
		Replayed:               res.Replayed,
	})
}

// AcceptBid handles POST /api/v1/auctions/:auctionId/accept
func (h *AuctionHandler) AcceptBid(c *gin.Context) {
	var req dto.AcceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.auctions.AcceptBid(c.Request.Context(), middleware.RequesterFrom(c), usecase.AcceptBidRequest{
		AuctionID:    c.Param("auctionId"),
		WinningBidID: req.WinningBidID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAcceptBidResponse(res))
}

// GetPayment handles GET /api/v1/auctions/:auctionId/payment
func (h *AuctionHandler) GetPayment(c *gin.Context) {
	payment, err := h.auctions.GetPayment(c.Request.Context(), middleware.RequesterFrom(c), c.Param("auctionId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentResponse(payment))
}

// CancelAuction handles POST /api/v1/admin/auctions/:auctionId/cancel
func (h *AuctionHandler) CancelAuction(c *gin.Context) {
	auction, err := h.auctions.CancelAuction(c.Request.Context(), middleware.RequesterFrom(c), c.Param("auctionId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuctionResponse(auction))
}

func (h *AuctionHandler) badRequest(c *gin.Context, err error) {
	h.logger.Debug("Invalid request format", map[string]any{
		"path":  c.FullPath(),
		"error": err.Error(),
	})
	_ = c.Error(invalidRequest("invalid request format: " + err.Error()))
}
