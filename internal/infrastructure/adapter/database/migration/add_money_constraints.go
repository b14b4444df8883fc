package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"gorm.io/gorm"
)

// AddMoneyConstraints adds check constraints that keep stored amounts consistent
type AddMoneyConstraints struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAddMoneyConstraints creates a new migration instance
func NewAddMoneyConstraints(db *gorm.DB, logger coreport.Logger) *AddMoneyConstraints {
	return &AddMoneyConstraints{
		db:     db,
		logger: logger,
	}
}

var moneyConstraints = []struct {
	table string
	name  string
	check string
}{
	{"auctions", "chk_auctions_amounts", "starting_bid_amount > 0 AND current_highest_bid >= starting_bid_amount"},
	{"auctions", "chk_auctions_status", "status IN ('active', 'completed', 'cancelled')"},
	{"bids", "chk_bids_amount", "amount > 0 AND amount <= 1000000000"},
	{"payments", "chk_payments_split", "platform_fee_amount >= 0 AND donor_payout_amount >= 0 AND platform_fee_amount + donor_payout_amount = winning_bid_amount"},
	{"payments", "chk_payments_status", "status IN ('pending', 'processed', 'failed')"},
}

// Run executes the migration
func (m *AddMoneyConstraints) Run(ctx context.Context) error {
	m.logger.Info("Adding money check constraints", nil)

	for _, c := range moneyConstraints {
		exists, err := m.constraintExists(ctx, c.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		// Identifiers come from the fixed list above
		stmt := "ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.check + ")"
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Error("Failed to add check constraint", map[string]any{
				"constraint": c.name,
				"error":      err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Successfully added money check constraints", nil)
	return nil
}

func (m *AddMoneyConstraints) constraintExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM information_schema.table_constraints
		WHERE constraint_name = ? AND constraint_type = 'CHECK'
	`, name).Scan(&count).Error
	if err != nil {
		m.logger.Error("Failed to check constraint existence", map[string]any{"error": err.Error()})
		return false, err
	}
	return count > 0, nil
}
