package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/stretchr/testify/assert"
)

func TestValidateAndConvertAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"100.00", 10000},
			{"0.01", 1},
			{"0.10", 10},
			{"1", 100},
			{"1.5", 150},
			{"1234567.89", 123456789},
			{"0.00", 0},
			{" 12.30 ", 1230},
			{"10000000.00", 1000000000},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				cents, err := ValidateAndConvertAmount(tc.input)
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, cents)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		testCases := []struct {
			input       string
			errorType   error
			description string
		}{
			{"", errs.ErrInvalidAmount, "Empty string"},
			{"   ", errs.ErrInvalidAmount, "Whitespace only"},
			{"-1.00", errs.ErrNegativeAmount, "Negative amount"},
			{"1.234", errs.ErrInvalidAmount, "Too many decimal places"},
			{"abc", errs.ErrInvalidAmount, "Non-numeric"},
			{"1,000.00", errs.ErrInvalidAmount, "Comma as thousands separator"},
			{"1.00.00", errs.ErrInvalidAmount, "Multiple decimal points"},
			{"$100", errs.ErrInvalidAmount, "Currency symbol"},
			{"10000000.01", errs.ErrAmountOutOfRange, "Above platform maximum"},
		}

		for _, tc := range testCases {
			t.Run(tc.description, func(t *testing.T) {
				_, err := ValidateAndConvertAmount(tc.input)
				assert.Error(t, err)
				assert.ErrorIs(t, err, tc.errorType)
			})
		}
	})
}

func TestAmountInCentsToString(t *testing.T) {
	testCases := []struct {
		input    int64
		expected string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{10, "0.10"},
		{100, "1.00"},
		{1015, "10.15"},
		{100000, "1000.00"},
		{1000000000, "10000000.00"},
		{-150, "-1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, AmountInCentsToString(tc.input))
		})
	}
}

func TestCalculateFeeSplit(t *testing.T) {
	testCases := []struct {
		name           string
		amount         int64
		expectedFee    int64
		expectedPayout int64
	}{
		{"Round number", 100000, 10000, 90000},
		{"Scenario 20000", 20000, 2000, 18000},
		{"Half cent rounds up", 1005, 101, 904},
		{"Below half rounds down", 1004, 100, 904},
		{"Above half rounds up", 1006, 101, 905},
		{"Single cent", 1, 0, 1},
		{"Five cents", 5, 1, 4},
		{"Odd amount", 12345, 1235, 11110},
		{"Platform maximum", MaxBidAmount, 100000000, 900000000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, payout := CalculateFeeSplit(tc.amount)
			assert.Equal(t, tc.expectedFee, fee)
			assert.Equal(t, tc.expectedPayout, payout)
			assert.Equal(t, tc.amount, fee+payout)
		})
	}

	t.Run("Fee plus payout always equals amount", func(t *testing.T) {
		for amount := int64(1); amount <= 5000; amount++ {
			fee, payout := CalculateFeeSplit(amount)
			if fee+payout != amount {
				t.Fatalf("split of %d does not add up: fee=%d payout=%d", amount, fee, payout)
			}
			if fee < 0 || payout < 0 {
				t.Fatalf("negative share for %d: fee=%d payout=%d", amount, fee, payout)
			}
		}
	})
}
