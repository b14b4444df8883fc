package auction

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/memory"
)

// testClock is a manually advanced clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Since(t time.Time) core.Duration { return core.Duration(c.Now().Sub(t)) }

func (c *testClock) Sleep(d core.Duration) { c.Advance(d.Std()) }

func (c *testClock) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// sequentialIDs yields prefix-1, prefix-2, ...
type sequentialIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *sequentialIDs) NewID() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

type fixture struct {
	store   *memory.Store
	uow     *memory.UnitOfWork
	clock   *testClock
	ledger  *Ledger
	engine  *settlement.Engine
	service *Service
}

func newFixture(t *testing.T, cfg LedgerConfig) *fixture {
	t.Helper()
	store := memory.NewStore(2 * time.Second)
	uow := memory.NewUnitOfWork(store)
	clock := newTestClock()
	ids := &sequentialIDs{prefix: "id"}
	log := logger.NewNoopLogger()

	ledger := NewLedger(uow, NewBidValidator(), ids, clock, log, cfg)
	engine := settlement.NewEngine(uow, ids, clock, log)

	return &fixture{
		store:   store,
		uow:     uow,
		clock:   clock,
		ledger:  ledger,
		engine:  engine,
		service: NewService(ledger, engine, log),
	}
}
