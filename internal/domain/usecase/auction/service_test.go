package auction

import (
	"context"
	"errors"
	"testing"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	donor  = usecase.Requester{UserID: "donor", Name: "Dana"}
	alice  = usecase.Requester{UserID: "alice", Name: "Alice"}
	bob    = usecase.Requester{UserID: "bob", Name: "Bob"}
	admin  = usecase.Requester{UserID: "ops", Name: "Ops", Role: "admin"}
	nobody = usecase.Requester{}
)

func requireOperationError(t *testing.T, err error, kind errs.Kind) *usecase.OperationError {
	t.Helper()
	require.Error(t, err)
	var opErr *usecase.OperationError
	require.True(t, errors.As(err, &opErr), "expected *usecase.OperationError, got %T", err)
	assert.Equal(t, kind, opErr.Kind)
	return opErr
}

func openAuction(t *testing.T, f *fixture, starting int64) *entity.Auction {
	t.Helper()
	a, err := f.service.CreateAuction(context.Background(), donor, usecase.CreateAuctionRequest{
		Category:          "plasma",
		Description:       "Plasma donation",
		StartingBidAmount: starting,
	})
	require.NoError(t, err)
	return a
}

func TestService_CreateAuction(t *testing.T) {
	tests := []struct {
		name      string
		requester usecase.Requester
		req       usecase.CreateAuctionRequest
		kind      errs.Kind
	}{
		{
			name:      "Missing identity",
			requester: nobody,
			req:       usecase.CreateAuctionRequest{Category: "blood", StartingBidAmount: 1000},
			kind:      errs.KindNotAuthorized,
		},
		{
			name:      "Unknown category",
			requester: donor,
			req:       usecase.CreateAuctionRequest{Category: "kidney", StartingBidAmount: 1000},
			kind:      errs.KindInvalidRequest,
		},
		{
			name:      "Missing category",
			requester: donor,
			req:       usecase.CreateAuctionRequest{StartingBidAmount: 1000},
			kind:      errs.KindInvalidRequest,
		},
		{
			name:      "Zero starting amount",
			requester: donor,
			req:       usecase.CreateAuctionRequest{Category: "blood"},
			kind:      errs.KindInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, LedgerConfig{})

			a, err := f.service.CreateAuction(context.Background(), tt.requester, tt.req)

			assert.Nil(t, a)
			requireOperationError(t, err, tt.kind)
			assert.Equal(t, 0, f.store.AuctionCount())
		})
	}

	t.Run("Valid request", func(t *testing.T) {
		f := newFixture(t, LedgerConfig{})
		a := openAuction(t, f, 50000)

		assert.Equal(t, "donor", a.OwnerID)
		assert.Equal(t, entity.CategoryPlasma, a.Category)
		assert.Equal(t, int64(50000), a.CurrentHighestBid)
		assert.True(t, a.IsActive())
	})
}

func TestService_CreateAuction_UnknownCategoryListsSupported(t *testing.T) {
	f := newFixture(t, LedgerConfig{})

	_, err := f.service.CreateAuction(context.Background(), donor, usecase.CreateAuctionRequest{Category: "kidney", StartingBidAmount: 1000})

	opErr := requireOperationError(t, err, errs.KindInvalidRequest)
	assert.Contains(t, opErr.Message, "Category must be one of: blood, sperm, eggs, plasma, bone_marrow")
}

func TestService_PlaceBid_RejectionCarriesMinimum(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		kind        errs.Kind
		minimum     int64
		messagePart string
	}{
		{
			name:        "Below highest",
			amount:      100000,
			kind:        errs.KindBidTooLow,
			minimum:     100550,
			messagePart: "1000.50",
		},
		{
			name:        "Increment too small",
			amount:      100100,
			kind:        errs.KindIncrementTooSmall,
			minimum:     100550,
			messagePart: "5.00",
		},
		{
			name:        "Above maximum",
			amount:      entity.MaxBidAmount + 500,
			kind:        errs.KindAmountOutOfRange,
			messagePart: "10000000.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, LedgerConfig{})
			a := openAuction(t, f, 100050)

			res, err := f.service.PlaceBid(context.Background(), alice, usecase.PlaceBidRequest{
				AuctionID: a.ID,
				Amount:    tt.amount,
			})

			assert.Nil(t, res)
			opErr := requireOperationError(t, err, tt.kind)
			if tt.minimum > 0 {
				assert.Equal(t, tt.minimum, opErr.MinimumAcceptable)
			}
			assert.Contains(t, opErr.Message, tt.messagePart)
			assert.False(t, opErr.Retryable)
		})
	}
}

func TestService_PlaceBid(t *testing.T) {
	f := newFixture(t, LedgerConfig{})
	ctx := context.Background()
	a := openAuction(t, f, 10000)

	res, err := f.service.PlaceBid(ctx, alice, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: 10100, Message: "good luck"})
	require.NoError(t, err)
	assert.Equal(t, int64(10100), res.CurrentHighestBid)
	assert.Equal(t, "alice", res.Bid.BidderID)
	assert.Equal(t, "Alice", res.Bid.BidderName)
	assert.False(t, res.Replayed)

	_, err = f.service.PlaceBid(ctx, nobody, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: 20000})
	requireOperationError(t, err, errs.KindNotAuthorized)

	_, err = f.service.PlaceBid(ctx, bob, usecase.PlaceBidRequest{Amount: 20000})
	requireOperationError(t, err, errs.KindInvalidRequest)

	_, err = f.service.PlaceBid(ctx, bob, usecase.PlaceBidRequest{AuctionID: "missing", Amount: 20000})
	requireOperationError(t, err, errs.KindNotFound)
}

func TestService_PlaceBid_NonPositiveAmount(t *testing.T) {
	f := newFixture(t, LedgerConfig{})
	a := openAuction(t, f, 10000)

	for _, amount := range []int64{0, -5, -20000} {
		res, err := f.service.PlaceBid(context.Background(), alice, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: amount})

		assert.Nil(t, res)
		opErr := requireOperationError(t, err, errs.KindInvalidRequest)
		assert.Contains(t, opErr.Message, "Amount must be greater than 0")
	}
	assert.Equal(t, 0, f.store.BidCount())
}

func TestService_ListBids_UnknownOrder(t *testing.T) {
	f := newFixture(t, LedgerConfig{})
	a := openAuction(t, f, 10000)

	_, err := f.service.ListBids(context.Background(), a.ID, entity.BidOrder("random"))

	requireOperationError(t, err, errs.KindInvalidRequest)
}

func TestService_ListActiveAuctions_Validation(t *testing.T) {
	f := newFixture(t, LedgerConfig{})

	_, err := f.service.ListActiveAuctions(context.Background(), usecase.ListAuctionsRequest{Limit: 500})
	requireOperationError(t, err, errs.KindInvalidRequest)

	_, err = f.service.ListActiveAuctions(context.Background(), usecase.ListAuctionsRequest{Category: "kidney"})
	requireOperationError(t, err, errs.KindInvalidRequest)
}

func TestService_AcceptBid(t *testing.T) {
	f := newFixture(t, LedgerConfig{})
	ctx := context.Background()
	a := openAuction(t, f, 10000)
	placed, err := f.service.PlaceBid(ctx, alice, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: 550500})
	require.NoError(t, err)

	_, err = f.service.AcceptBid(ctx, alice, usecase.AcceptBidRequest{AuctionID: a.ID, WinningBidID: placed.Bid.ID})
	requireOperationError(t, err, errs.KindNotAuthorized)

	_, err = f.service.AcceptBid(ctx, donor, usecase.AcceptBidRequest{AuctionID: a.ID})
	requireOperationError(t, err, errs.KindInvalidRequest)

	res, err := f.service.AcceptBid(ctx, donor, usecase.AcceptBidRequest{AuctionID: a.ID, WinningBidID: placed.Bid.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(55050), res.PlatformFee)
	assert.Equal(t, int64(495450), res.DonorPayout)

	_, err = f.service.AcceptBid(ctx, donor, usecase.AcceptBidRequest{AuctionID: a.ID, WinningBidID: placed.Bid.ID})
	opErr := requireOperationError(t, err, errs.KindAuctionNotActive)
	assert.Contains(t, opErr.Message, "you already completed")

	_, err = f.service.PlaceBid(ctx, bob, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: 600000})
	requireOperationError(t, err, errs.KindAuctionNotActive)
}

func TestService_CancelAuction(t *testing.T) {
	f := newFixture(t, LedgerConfig{})
	ctx := context.Background()
	a := openAuction(t, f, 10000)

	_, err := f.service.CancelAuction(ctx, donor, a.ID)
	requireOperationError(t, err, errs.KindNotAuthorized)

	cancelled, err := f.service.CancelAuction(ctx, admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuctionCancelled, cancelled.Status)

	_, err = f.service.CancelAuction(ctx, admin, a.ID)
	requireOperationError(t, err, errs.KindAuctionNotActive)

	_, err = f.service.PlaceBid(ctx, alice, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: 20000})
	requireOperationError(t, err, errs.KindAuctionNotActive)
}

func TestService_GetPayment_Visibility(t *testing.T) {
	f := newFixture(t, LedgerConfig{})
	ctx := context.Background()
	a := openAuction(t, f, 10000)
	placed, err := f.service.PlaceBid(ctx, alice, usecase.PlaceBidRequest{AuctionID: a.ID, Amount: 20000})
	require.NoError(t, err)

	_, err = f.service.GetPayment(ctx, donor, a.ID)
	requireOperationError(t, err, errs.KindNotFound)

	_, err = f.service.AcceptBid(ctx, donor, usecase.AcceptBidRequest{AuctionID: a.ID, WinningBidID: placed.Bid.ID})
	require.NoError(t, err)

	for _, r := range []usecase.Requester{donor, alice, admin} {
		p, err := f.service.GetPayment(ctx, r, a.ID)
		require.NoError(t, err, r.UserID)
		assert.Equal(t, int64(2000), p.PlatformFeeAmount)
		assert.Equal(t, int64(18000), p.DonorPayoutAmount)
	}

	_, err = f.service.GetPayment(ctx, bob, a.ID)
	requireOperationError(t, err, errs.KindNotAuthorized)

	_, err = f.service.GetPayment(ctx, nobody, a.ID)
	requireOperationError(t, err, errs.KindNotAuthorized)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      errs.Kind
		retryable bool
		message   string
	}{
		{
			name:      "Concurrent modification",
			err:       errs.ErrConcurrentModification,
			kind:      errs.KindConcurrentModification,
			retryable: true,
			message:   "The auction was updated by another request. Please refresh and try again.",
		},
		{
			name:      "Transient failure",
			err:       errs.ErrTransientFailure,
			kind:      errs.KindTransientFailure,
			retryable: true,
			message:   "The service is temporarily unavailable. Please try again.",
		},
		{
			name:    "Unclassified errors hide their details",
			err:     errors.New("pq: relation does not exist"),
			kind:    errs.KindInternal,
			message: errs.ErrInternalServer.Error(),
		},
		{
			name:    "Not found keeps its message",
			err:     errs.ErrAuctionNotFound,
			kind:    errs.KindNotFound,
			message: errs.ErrAuctionNotFound.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := normalize(tt.err)

			opErr := requireOperationError(t, out, tt.kind)
			assert.Equal(t, tt.retryable, opErr.Retryable)
			assert.Equal(t, tt.message, opErr.Message)
			assert.ErrorIs(t, out, tt.err)
		})
	}

	assert.NoError(t, normalize(nil))

	already := &usecase.OperationError{Kind: errs.KindNotFound, Message: "gone"}
	assert.Same(t, already, normalize(already))
}
