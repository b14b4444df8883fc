package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/memory"
	coremocks "github.com/amirhossein-jamali/donation-auction/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var settledAt = time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC)

type counterIDs struct {
	n atomic.Int64
}

func (g *counterIDs) NewID() string {
	return fmt.Sprintf("pay-%d", g.n.Add(1))
}

type engineFixture struct {
	store  *memory.Store
	uow    *memory.UnitOfWork
	engine *Engine
	payout *PayoutService
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	clock := coremocks.NewMockTimeProvider(t)
	clock.EXPECT().Now().Return(settledAt).Maybe()

	store := memory.NewStore(2 * time.Second)
	uow := memory.NewUnitOfWork(store)
	log := logger.NewNoopLogger()
	return &engineFixture{
		store:  store,
		uow:    uow,
		engine: NewEngine(uow, &counterIDs{}, clock, log),
		payout: NewPayoutService(uow, clock, log),
	}
}

// seedAuction stores an active auction owned by donor with the given accepted bids
func (f *engineFixture) seedAuction(t *testing.T, id, donor string, bids ...*entity.Bid) {
	t.Helper()
	ctx := context.Background()
	highest := int64(10000)
	for _, b := range bids {
		if b.Amount > highest {
			highest = b.Amount
		}
	}
	require.NoError(t, f.uow.GetAuctionRepository(ctx).Create(ctx, &entity.Auction{
		ID:                id,
		OwnerID:           donor,
		Category:          entity.CategoryBlood,
		StartingBidAmount: 10000,
		CurrentHighestBid: highest,
		Status:            entity.AuctionActive,
		CreatedAt:         settledAt.Add(-time.Hour),
	}))
	for _, b := range bids {
		require.NoError(t, f.uow.GetBidRepository(ctx).Create(ctx, b))
	}
}

func TestEngine_CompleteAuction_ScenarioB(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.seedAuction(t, "a1", "donor",
		&entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 550000},
		&entity.Bid{ID: "b2", AuctionID: "a1", BidderID: "u2", Amount: 550500},
	)

	res, err := f.engine.CompleteAuction(ctx, "a1", "b2", "donor")

	require.NoError(t, err)
	assert.Equal(t, "a1", res.AuctionID)
	assert.Equal(t, "b2", res.WinningBidID)
	assert.Equal(t, "u2", res.WinnerID)
	assert.Equal(t, int64(550500), res.WinningBidAmount)
	assert.Equal(t, int64(55050), res.PlatformFee)
	assert.Equal(t, int64(495450), res.DonorPayout)
	assert.Equal(t, res.WinningBidAmount, res.PlatformFee+res.DonorPayout)
	assert.Equal(t, settledAt, res.CompletedAt)

	auction, err := f.uow.GetAuctionRepository(ctx).GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, entity.AuctionCompleted, auction.Status)
	require.NotNil(t, auction.CompletedAt)

	payment, err := f.engine.GetPayment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, res.PaymentID, payment.ID)
	assert.Equal(t, entity.PaymentPending, payment.Status)
	assert.Equal(t, "donor", payment.DonorID)
	assert.Equal(t, "u2", payment.WinnerID)
	assert.True(t, payment.IsBalanced())
}

func TestEngine_CompleteAuction_AnyBidCanWin(t *testing.T) {
	f := newEngineFixture(t)
	f.seedAuction(t, "a1", "donor",
		&entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 1005},
		&entity.Bid{ID: "b2", AuctionID: "a1", BidderID: "u2", Amount: 20000},
	)

	res, err := f.engine.CompleteAuction(context.Background(), "a1", "b1", "donor")

	require.NoError(t, err)
	assert.Equal(t, int64(101), res.PlatformFee)
	assert.Equal(t, int64(904), res.DonorPayout)
}

func TestEngine_CompleteAuction_Failures(t *testing.T) {
	tests := []struct {
		name        string
		auctionID   string
		bidID       string
		requester   string
		expectedErr error
		setup       func(t *testing.T, f *engineFixture)
	}{
		{
			name:        "Unknown auction",
			auctionID:   "missing",
			bidID:       "b1",
			requester:   "donor",
			expectedErr: errs.ErrAuctionNotFound,
		},
		{
			name:        "Requester is not the owner",
			auctionID:   "a1",
			bidID:       "b1",
			requester:   "u1",
			expectedErr: errs.ErrNotAuthorized,
		},
		{
			name:        "Bid does not exist",
			auctionID:   "a1",
			bidID:       "nope",
			requester:   "donor",
			expectedErr: errs.ErrBidNotFound,
		},
		{
			name:        "Bid belongs to another auction",
			auctionID:   "a1",
			bidID:       "other-bid",
			requester:   "donor",
			expectedErr: errs.ErrBidNotFound,
			setup: func(t *testing.T, f *engineFixture) {
				f.seedAuction(t, "a2", "donor", &entity.Bid{ID: "other-bid", AuctionID: "a2", BidderID: "u9", Amount: 30000})
			},
		},
		{
			name:        "Status is checked before ownership",
			auctionID:   "a1",
			bidID:       "b1",
			requester:   "stranger",
			expectedErr: errs.ErrAuctionNotActive,
			setup: func(t *testing.T, f *engineFixture) {
				_, err := f.engine.CompleteAuction(context.Background(), "a1", "b1", "donor")
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t)
			f.seedAuction(t, "a1", "donor", &entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 20000})
			if tt.setup != nil {
				tt.setup(t, f)
			}
			paymentsBefore := f.store.PaymentCount()

			res, err := f.engine.CompleteAuction(context.Background(), tt.auctionID, tt.bidID, tt.requester)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, paymentsBefore, f.store.PaymentCount(), "failed completion writes nothing")
		})
	}
}

func TestEngine_CompleteAuction_Twice(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.seedAuction(t, "a1", "donor", &entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 20000})

	_, err := f.engine.CompleteAuction(ctx, "a1", "b1", "donor")
	require.NoError(t, err)

	_, err = f.engine.CompleteAuction(ctx, "a1", "b1", "donor")
	require.ErrorIs(t, err, errs.ErrAuctionNotActive)

	var settlementErr *errs.SettlementError
	require.True(t, errors.As(err, &settlementErr))
	assert.Contains(t, settlementErr.Reason, "you already completed")
	assert.Contains(t, settlementErr.Reason, "refresh")
	assert.Equal(t, 1, f.store.PaymentCount())
}

func TestEngine_CompleteAuction_CancelledAuction(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.seedAuction(t, "a1", "donor", &entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 20000})

	auction, err := f.uow.GetAuctionRepository(ctx).GetByID(ctx, "a1")
	require.NoError(t, err)
	auction.Status = entity.AuctionCancelled
	require.NoError(t, f.uow.GetAuctionRepository(ctx).Update(ctx, auction, entity.AuctionActive))

	_, err = f.engine.CompleteAuction(ctx, "a1", "b1", "donor")
	assert.ErrorIs(t, err, errs.ErrAuctionNotActive)
	assert.Equal(t, 0, f.store.PaymentCount())
}

func TestEngine_CompleteAuction_ConcurrentAccepts(t *testing.T) {
	f := newEngineFixture(t)
	f.seedAuction(t, "a1", "donor",
		&entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 20000},
		&entity.Bid{ID: "b2", AuctionID: "a1", BidderID: "u2", Amount: 30000},
	)

	const attempts = 10
	var wg sync.WaitGroup
	var succeeded atomic.Int64
	var notActive atomic.Int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bidID := "b1"
			if i%2 == 0 {
				bidID = "b2"
			}
			_, err := f.engine.CompleteAuction(context.Background(), "a1", bidID, "donor")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, errs.ErrAuctionNotActive):
				notActive.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded.Load())
	assert.Equal(t, int64(attempts-1), notActive.Load())
	assert.Equal(t, 1, f.store.PaymentCount())
}

func TestEngine_CompleteAuction_UsesInjectedIDs(t *testing.T) {
	clock := coremocks.NewMockTimeProvider(t)
	clock.EXPECT().Now().Return(settledAt).Maybe()
	ids := coremocks.NewMockIDGenerator(t)
	ids.EXPECT().NewID().Return("payment-42").Once()

	store := memory.NewStore(time.Second)
	uow := memory.NewUnitOfWork(store)
	f := &engineFixture{store: store, uow: uow, engine: NewEngine(uow, ids, clock, logger.NewNoopLogger())}
	f.seedAuction(t, "a1", "donor", &entity.Bid{ID: "b1", AuctionID: "a1", BidderID: "u1", Amount: 20000})

	res, err := f.engine.CompleteAuction(context.Background(), "a1", "b1", "donor")
	require.NoError(t, err)
	assert.Equal(t, "payment-42", res.PaymentID)
}

func TestEngine_LogsFailures(t *testing.T) {
	clock := coremocks.NewMockTimeProvider(t)
	clock.EXPECT().Now().Return(settledAt).Maybe()
	log := coremocks.NewMockLogger(t)
	log.EXPECT().Warn("Auction completion failed", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["auction_id"] == "missing" && fields["requester_id"] == "donor"
	})).Once()
	log.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()
	log.EXPECT().Error(mock.Anything, mock.Anything).Maybe()

	uow := memory.NewUnitOfWork(memory.NewStore(time.Second))
	engine := NewEngine(uow, &counterIDs{}, clock, log)

	_, err := engine.CompleteAuction(context.Background(), "missing", "b1", "donor")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
