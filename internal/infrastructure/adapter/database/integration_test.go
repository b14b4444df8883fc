package database_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/auction"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/id"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against the database named by DA_DB_* when DA_INTEGRATION=1
func newIntegrationStack(t *testing.T) (*auction.Ledger, *settlement.Engine, *database.UnitOfWork) {
	t.Helper()
	if os.Getenv("DA_INTEGRATION") != "1" {
		t.Skip("set DA_INTEGRATION=1 and DA_DB_* to run against PostgreSQL")
	}

	ctx := context.Background()
	log := logger.NewNoopLogger()
	clock := timeadapter.NewRealTimeProvider()

	cfg := database.DefaultConfig()
	cfg.LockTimeout = 2 * time.Second
	mgr := database.NewManager(cfg, log, clock)
	_, err := mgr.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.Migrate(ctx))

	uow := mgr.CreateUnitOfWork()
	ids := id.NewUUIDGenerator()
	ledger := auction.NewLedger(uow, auction.NewBidValidator(), ids, clock, log, auction.LedgerConfig{DuplicateBidWindow: 10 * time.Second})
	return ledger, settlement.NewEngine(uow, ids, clock, log), uow
}

func TestPostgres_ConcurrentEqualBids(t *testing.T) {
	ledger, engine, _ := newIntegrationStack(t)
	ctx := context.Background()

	a, err := ledger.CreateAuction(ctx, "donor", "blood", "integration", 10000)
	require.NoError(t, err)

	const bidders = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.RecordBid(ctx, auction.RecordBidRequest{
				AuctionID: a.ID,
				BidderID:  "bidder-" + string(rune('a'+i)),
				Amount:    10500,
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, errs.ErrBidTooLow) || errors.Is(err, errs.ErrConcurrentModification), err.Error())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	stored, err := ledger.GetAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), stored.CurrentHighestBid)

	bids, err := ledger.ListBids(ctx, a.ID, entity.OrderByAmount)
	require.NoError(t, err)
	require.Len(t, bids, 1)

	res, err := engine.CompleteAuction(ctx, a.ID, bids[0].ID, "donor")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), res.PlatformFee)
	assert.Equal(t, int64(9450), res.DonorPayout)

	_, err = engine.CompleteAuction(ctx, a.ID, bids[0].ID, "donor")
	assert.ErrorIs(t, err, errs.ErrAuctionNotActive)
}

func TestPostgres_IdempotencyKeyIsUnique(t *testing.T) {
	ledger, _, uow := newIntegrationStack(t)
	ctx := context.Background()

	a, err := ledger.CreateAuction(ctx, "donor", "plasma", "integration", 10000)
	require.NoError(t, err)

	key := "it-" + id.NewUUIDGenerator().NewID()
	first, err := ledger.RecordBid(ctx, auction.RecordBidRequest{AuctionID: a.ID, BidderID: "alice", Amount: 10100, IdempotencyKey: key})
	require.NoError(t, err)

	second, err := ledger.RecordBid(ctx, auction.RecordBidRequest{AuctionID: a.ID, BidderID: "alice", Amount: 10100, IdempotencyKey: key})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Bid.ID, second.Bid.ID)

	stored, err := uow.GetBidRepository(ctx).GetByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first.Bid.ID, stored.ID)
}
