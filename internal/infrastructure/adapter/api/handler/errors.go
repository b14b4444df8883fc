package handler

import (
	"fmt"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
)

func invalidRequest(msg string) error {
	return fmt.Errorf("%w: %s", domainerr.ErrInvalidRequest, msg)
}

// amountInCents picks the amount of a request that may carry cents, a
// major-unit string, or both. When both are sent they must agree.
func amountInCents(cents int64, amount string, centsField, amountField string) (int64, error) {
	if amount == "" {
		if cents == 0 {
			return 0, invalidRequest(fmt.Sprintf("%s or %s is required", centsField, amountField))
		}
		return cents, nil
	}

	parsed, err := entity.ValidateAndConvertAmount(amount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", amountField, err)
	}
	if cents != 0 && cents != parsed {
		return 0, invalidRequest(fmt.Sprintf("%s and %s disagree", centsField, amountField))
	}
	return parsed, nil
}
