package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"gorm.io/gorm"
)

// IndexManager manages PostgreSQL indexes the models cannot express
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

type indexDef struct {
	name string
	sql  string
}

var indexes = []indexDef{
	{
		// One bid per client retry token; NULL keys are not compared
		name: "idx_bids_idempotency_key",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_idempotency_key ON bids (idempotency_key) WHERE idempotency_key IS NOT NULL`,
	},
	{
		name: "idx_bids_auction_amount",
		sql:  `CREATE INDEX IF NOT EXISTS idx_bids_auction_amount ON bids (auction_id, amount DESC, created_at)`,
	},
	{
		// Natural duplicate lookup
		name: "idx_bids_auction_bidder_amount",
		sql:  `CREATE INDEX IF NOT EXISTS idx_bids_auction_bidder_amount ON bids (auction_id, bidder_id, amount, created_at DESC)`,
	},
	{
		name: "idx_auctions_active_category",
		sql:  `CREATE INDEX IF NOT EXISTS idx_auctions_active_category ON auctions (category, created_at DESC) WHERE status = 'active'`,
	},
	{
		name: "idx_payments_pending",
		sql:  `CREATE INDEX IF NOT EXISTS idx_payments_pending ON payments (created_at) WHERE status = 'pending'`,
	},
}

// CreateIndexes creates every index, stopping at the first failure
func (m *IndexManager) CreateIndexes(ctx context.Context) error {
	m.logger.Info("Creating database indexes", nil)

	for _, idx := range indexes {
		if err := m.db.WithContext(ctx).Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Database indexes created successfully", map[string]any{
		"count": len(indexes),
	})
	return nil
}

// ApplyPerformanceTweaks tunes the hot tables. Failures are logged and ignored.
func (m *IndexManager) ApplyPerformanceTweaks(ctx context.Context) {
	// auctions rows are updated on every accepted bid
	tweaks := []string{
		`ALTER TABLE auctions SET (fillfactor = 80)`,
		`ALTER TABLE bids ALTER COLUMN auction_id SET STATISTICS 1000`,
	}
	for _, stmt := range tweaks {
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Warn("Failed to apply performance tweak", map[string]any{
				"statement": stmt,
				"error":     err.Error(),
			})
		}
	}
}
