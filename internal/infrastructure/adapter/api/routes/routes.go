package routes

import (
	"errors"

	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/auction"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Auction *handler.AuctionHandler
	Payout  *handler.PayoutHandler
	Health  *handler.HealthHandler
}

// RegisterValidators adds the auction validation tags to gin's binding validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return auction.RegisterValidations(v)
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, handlers Handlers, bidLimiter *middleware.RateLimiter) {
	router.GET("/health", handlers.Health.Health)

	v1 := router.Group("/api/v1")

	auctions := v1.Group("/auctions")
	{
		auctions.POST("", handlers.Auction.CreateAuction)
		auctions.GET("", handlers.Auction.ListActiveAuctions)
		auctions.GET("/:auctionId", handlers.Auction.GetAuction)
		auctions.GET("/:auctionId/bids", handlers.Auction.ListBids)
		auctions.POST("/:auctionId/bids", bidLimiter.Middleware(), handlers.Auction.PlaceBid)
		auctions.POST("/:auctionId/accept", handlers.Auction.AcceptBid)
		auctions.GET("/:auctionId/payment", handlers.Auction.GetPayment)
	}

	admin := v1.Group("/admin")
	{
		admin.POST("/auctions/:auctionId/cancel", handlers.Auction.CancelAuction)
	}

	payouts := v1.Group("/payouts", middleware.RequireRole("admin", "payout"))
	{
		payouts.GET("/pending", handlers.Payout.ListPending)
		payouts.PATCH("/:paymentId", handlers.Payout.UpdateStatus)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider, allowedOrigins []string) {
	// Logger wraps ErrorHandler so it sees the final status
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.Identity())
}
