package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// MaxBidAmount is the platform ceiling for any amount, in cents (10,000,000.00)
const MaxBidAmount int64 = 1_000_000_000

// platformFeeRate is the share of a winning bid retained by the platform
var platformFeeRate = decimal.New(10, -2)

// ValidateAndConvertAmount parses a major-unit string such as "12.5" into cents.
// More than two decimal places is rejected rather than rounded.
func ValidateAndConvertAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	if d.Exponent() < -MaxDecimalPlaces && !d.Equal(d.Truncate(MaxDecimalPlaces)) {
		return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}

	cents := d.Shift(MaxDecimalPlaces)
	if cents.GreaterThan(decimal.NewFromInt(MaxBidAmount)) {
		return 0, fmt.Errorf("%w: exceeds %s", errs.ErrAmountOutOfRange, AmountInCentsToString(MaxBidAmount))
	}
	return cents.IntPart(), nil
}

// AmountInCentsToString converts integer amount to a decimal string
// For example:
// - 1015 becomes "10.15"
// - 1000 becomes "10.00"
func AmountInCentsToString(amountInCents int64) string {
	return decimal.New(amountInCents, -MaxDecimalPlaces).StringFixed(MaxDecimalPlaces)
}

// CalculateFeeSplit splits a winning amount into the platform fee and the donor payout.
// The fee is 10% rounded half-up to the nearest cent; the payout is the remainder so
// fee + payout always equals amount.
func CalculateFeeSplit(amount int64) (fee int64, payout int64) {
	fee = decimal.NewFromInt(amount).Mul(platformFeeRate).Round(0).IntPart()
	return fee, amount - fee
}
