package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/donation-auction/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuction(t *testing.T) {
	fixedTime := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Valid auction creation", func(t *testing.T) {
		auction, err := NewAuction("a-1", "donor-1", "blood", "  O negative  ", 10000, mockTime)

		require.NoError(t, err)
		assert.Equal(t, "a-1", auction.ID)
		assert.Equal(t, "donor-1", auction.OwnerID)
		assert.Equal(t, CategoryBlood, auction.Category)
		assert.Equal(t, "O negative", auction.Description)
		assert.Equal(t, int64(10000), auction.StartingBidAmount)
		assert.Equal(t, int64(10000), auction.CurrentHighestBid)
		assert.Equal(t, AuctionActive, auction.Status)
		assert.Equal(t, fixedTime, auction.CreatedAt)
		assert.Nil(t, auction.CompletedAt)
		assert.True(t, auction.IsActive())
		assert.True(t, auction.IsOwnedBy("donor-1"))
	})

	t.Run("Invalid input", func(t *testing.T) {
		testCases := []struct {
			name     string
			owner    string
			category string
			amount   int64
			expected error
		}{
			{"Missing owner", "", "blood", 100, errs.ErrInvalidRequest},
			{"Unknown category", "donor-1", "kidney", 100, errs.ErrInvalidCategory},
			{"Zero starting bid", "donor-1", "eggs", 0, errs.ErrInvalidAmount},
			{"Negative starting bid", "donor-1", "eggs", -5, errs.ErrInvalidAmount},
			{"Starting bid above maximum", "donor-1", "sperm", MaxBidAmount + 1, errs.ErrAmountOutOfRange},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				auction, err := NewAuction("a-1", tc.owner, tc.category, "", tc.amount, mockTime)
				assert.ErrorIs(t, err, tc.expected)
				assert.Nil(t, auction)
			})
		}
	})
}

func TestAuctionLifecycle(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	newAuction := func(t *testing.T) *Auction {
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(created).Once()
		auction, err := NewAuction("a-1", "donor-1", "eggs", "", 10000, mockTime)
		require.NoError(t, err)
		return auction
	}

	t.Run("ApplyBid advances highest bid", func(t *testing.T) {
		auction := newAuction(t)
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(later).Once()

		require.NoError(t, auction.ApplyBid(10100, mockTime))
		assert.Equal(t, int64(10100), auction.CurrentHighestBid)
		assert.Equal(t, later, auction.UpdatedAt)
	})

	t.Run("ApplyBid never moves the pointer down", func(t *testing.T) {
		auction := newAuction(t)
		mockTime := coremocks.NewMockTimeProvider(t)

		assert.ErrorIs(t, auction.ApplyBid(10000, mockTime), errs.ErrBidTooLow)
		assert.ErrorIs(t, auction.ApplyBid(9000, mockTime), errs.ErrBidTooLow)
		assert.Equal(t, int64(10000), auction.CurrentHighestBid)
	})

	t.Run("Complete is a one-way transition", func(t *testing.T) {
		auction := newAuction(t)
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(later).Once()

		require.NoError(t, auction.Complete(mockTime))
		assert.Equal(t, AuctionCompleted, auction.Status)
		require.NotNil(t, auction.CompletedAt)
		assert.Equal(t, later, *auction.CompletedAt)

		assert.ErrorIs(t, auction.Complete(mockTime), errs.ErrAuctionNotActive)
		assert.ErrorIs(t, auction.Cancel(mockTime), errs.ErrAuctionNotActive)
		assert.ErrorIs(t, auction.ApplyBid(20000, mockTime), errs.ErrAuctionNotActive)
	})

	t.Run("Cancel is a one-way transition", func(t *testing.T) {
		auction := newAuction(t)
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(later).Once()

		require.NoError(t, auction.Cancel(mockTime))
		assert.Equal(t, AuctionCancelled, auction.Status)
		require.NotNil(t, auction.CancelledAt)
		assert.ErrorIs(t, auction.Complete(mockTime), errs.ErrAuctionNotActive)
	})

	t.Run("Clone does not share timestamps", func(t *testing.T) {
		auction := newAuction(t)
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(later).Once()
		require.NoError(t, auction.Complete(mockTime))

		clone := auction.Clone()
		*clone.CompletedAt = created
		assert.Equal(t, later, *auction.CompletedAt)
	})
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, IsValidCategory(string(c)), string(c))
	}
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Blood"))
	assert.False(t, IsValidCategory("organ"))
}
