package unitofwork

import (
	"context"
	"fmt"

	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
)

// Run executes fn inside a transaction. The transaction commits only if fn
// returns nil; any error or panic rolls it back so no partial state is kept.
func Run(
	ctx context.Context,
	uow persistence.UnitOfWork,
	logger coreport.Logger,
	operation string,
	fn func(txCtx context.Context) error,
) (err error) {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		return fmt.Errorf("%s: begin transaction: %w", operation, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			_ = uow.Rollback(txCtx)
			panic(r)
		}
		if rbErr := uow.Rollback(txCtx); rbErr != nil {
			logger.Warn("Failed to roll back transaction", map[string]any{
				"operation": operation,
				"error":     rbErr.Error(),
			})
		}
	}()

	if err = fn(txCtx); err != nil {
		return err
	}

	if err = uow.Commit(txCtx); err != nil {
		logger.Error("Failed to commit transaction", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		return fmt.Errorf("%s: commit transaction: %w", operation, err)
	}
	committed = true
	return nil
}
