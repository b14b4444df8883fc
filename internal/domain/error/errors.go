package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest         = 4000
	CodeInvalidAmount          = 4002
	CodeInvalidCategory        = 4003
	CodeIdempotencyKeyReused   = 4004
	CodeConstraintViolation    = 4005
	CodeNotAuthorized          = 4030
	CodeNotFound               = 4040
	CodeAuctionNotFound        = 4041
	CodeBidNotFound            = 4042
	CodePaymentNotFound        = 4043
	CodeAuctionNotActive       = 4090
	CodeConcurrentModification = 4091
	CodeInvalidPaymentStatus   = 4092
	CodeBidTooLow              = 4220
	CodeIncrementTooSmall      = 4221
	CodeAmountOutOfRange       = 4222

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeTransientFailure   = 5030
	CodeDatabaseConnection = 5031
)

// Base error types
var (
	// ErrAuctionNotActive is returned when an auction is completed or cancelled
	ErrAuctionNotActive = errors.New("auction is not active")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAuctionNotFound is returned when the requested auction doesn't exist
	ErrAuctionNotFound = fmt.Errorf("auction %w", ErrNotFound)

	// ErrBidNotFound is returned when a bid doesn't exist or belongs to another auction
	ErrBidNotFound = fmt.Errorf("bid %w", ErrNotFound)

	// ErrPaymentNotFound is returned when no settlement record exists
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)

	// ErrNotAuthorized is returned when the requester may not perform the action
	ErrNotAuthorized = errors.New("not authorized")

	// ErrBidTooLow is returned when a bid does not exceed the current highest bid
	ErrBidTooLow = errors.New("bid must be higher than the current highest bid")

	// ErrIncrementTooSmall is returned when a bid exceeds the highest bid by less than the minimum increment
	ErrIncrementTooSmall = errors.New("bid increment is below the minimum")

	// ErrAmountOutOfRange is returned when a bid exceeds the platform maximum
	ErrAmountOutOfRange = errors.New("bid amount exceeds the maximum allowed")

	// ErrConcurrentModification is returned when a lock could not be obtained or a write conflicted
	ErrConcurrentModification = errors.New("auction was modified concurrently")

	// ErrTransientFailure is returned when storage is unavailable or the request ran out of time
	ErrTransientFailure = errors.New("temporary failure, please retry")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned when an amount is missing, malformed or not positive
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAmount is returned when an amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidCategory is returned for an unknown donation category
	ErrInvalidCategory = errors.New("invalid donation category")

	// ErrIdempotencyKeyReused is returned when an idempotency key is replayed with a different payload
	ErrIdempotencyKeyReused = errors.New("idempotency key was already used for a different bid")

	// ErrInvalidPaymentStatus is returned for a disallowed payment status transition
	ErrInvalidPaymentStatus = errors.New("invalid payment status transition")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrAuctionNotFound):
		return CodeAuctionNotFound
	case errors.Is(err, ErrBidNotFound):
		return CodeBidNotFound
	case errors.Is(err, ErrPaymentNotFound):
		return CodePaymentNotFound
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAuctionNotActive):
		return CodeAuctionNotActive
	case errors.Is(err, ErrNotAuthorized):
		return CodeNotAuthorized
	case errors.Is(err, ErrBidTooLow):
		return CodeBidTooLow
	case errors.Is(err, ErrIncrementTooSmall):
		return CodeIncrementTooSmall
	case errors.Is(err, ErrAmountOutOfRange):
		return CodeAmountOutOfRange
	case errors.Is(err, ErrConcurrentModification):
		return CodeConcurrentModification
	case errors.Is(err, ErrTransientFailure):
		return CodeTransientFailure
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidCategory):
		return CodeInvalidCategory
	case errors.Is(err, ErrIdempotencyKeyReused):
		return CodeIdempotencyKeyReused
	case errors.Is(err, ErrInvalidPaymentStatus):
		return CodeInvalidPaymentStatus
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	default:
		return CodeInternalServer
	}
}

// Kind is the caller-facing error category
type Kind string

// Error kinds
const (
	KindAuctionNotActive       Kind = "AuctionNotActive"
	KindNotFound               Kind = "NotFound"
	KindNotAuthorized          Kind = "NotAuthorized"
	KindBidTooLow              Kind = "BidTooLow"
	KindIncrementTooSmall      Kind = "IncrementTooSmall"
	KindAmountOutOfRange       Kind = "AmountOutOfRange"
	KindConcurrentModification Kind = "ConcurrentModification"
	KindTransientFailure       Kind = "TransientFailure"
	KindInvalidRequest         Kind = "InvalidRequest"
	KindInternal               Kind = "Internal"
)

// KindOf classifies an error into one of the caller-facing kinds
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAuctionNotActive):
		return KindAuctionNotActive
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrBidTooLow):
		return KindBidTooLow
	case errors.Is(err, ErrIncrementTooSmall):
		return KindIncrementTooSmall
	case errors.Is(err, ErrAmountOutOfRange):
		return KindAmountOutOfRange
	case errors.Is(err, ErrConcurrentModification):
		return KindConcurrentModification
	case errors.Is(err, ErrTransientFailure), errors.Is(err, ErrDatabaseConnection):
		return KindTransientFailure
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrIdempotencyKeyReused),
		errors.Is(err, ErrInvalidPaymentStatus):
		return KindInvalidRequest
	default:
		return KindInternal
	}
}

// IsRetryable reports whether the caller may retry the same request unchanged
func IsRetryable(err error) bool {
	k := KindOf(err)
	return k == KindConcurrentModification || k == KindTransientFailure
}

// BidRejectionError carries the validation context of a rejected bid
type BidRejectionError struct {
	AuctionID         string
	Amount            int64
	CurrentHighest    int64
	MinimumAcceptable int64
	Err               error
}

// Error implements the error interface for BidRejectionError
func (e *BidRejectionError) Error() string {
	return fmt.Sprintf("bid of %d cents rejected for auction %s (current highest: %d, minimum acceptable: %d): %v",
		e.Amount, e.AuctionID, e.CurrentHighest, e.MinimumAcceptable, e.Err)
}

// Unwrap returns the underlying error
func (e *BidRejectionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *BidRejectionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":         "bid_rejection",
		"auction_id":         e.AuctionID,
		"amount":             e.Amount,
		"current_highest":    e.CurrentHighest,
		"minimum_acceptable": e.MinimumAcceptable,
		"error":              e.Err.Error(),
		"error_code":         ErrorCode(e.Err),
	}
}

// NewBidRejectionError creates a detailed bid rejection error
func NewBidRejectionError(auctionID string, amount, currentHighest, minimumAcceptable int64, err error) error {
	return &BidRejectionError{
		AuctionID:         auctionID,
		Amount:            amount,
		CurrentHighest:    currentHighest,
		MinimumAcceptable: minimumAcceptable,
		Err:               err,
	}
}

// SettlementError represents a failed attempt to complete an auction
type SettlementError struct {
	AuctionID    string
	WinningBidID string
	RequesterID  string
	Reason       string
	Err          error
}

// Error implements the error interface for SettlementError
func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed for auction %s (bid: %s, requester: %s): %s - %v",
		e.AuctionID, e.WinningBidID, e.RequesterID, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *SettlementError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *SettlementError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "settlement_error",
		"auction_id":     e.AuctionID,
		"winning_bid_id": e.WinningBidID,
		"requester_id":   e.RequesterID,
		"reason":         e.Reason,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewSettlementError creates a detailed settlement error
func NewSettlementError(auctionID, winningBidID, requesterID, reason string, err error) error {
	return &SettlementError{
		AuctionID:    auctionID,
		WinningBidID: winningBidID,
		RequesterID:  requesterID,
		Reason:       reason,
		Err:          err,
	}
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBidRejection checks if the error is one of the bid validation rejections
func IsBidRejection(err error) bool {
	return errors.Is(err, ErrBidTooLow) ||
		errors.Is(err, ErrIncrementTooSmall) ||
		errors.Is(err, ErrAmountOutOfRange)
}

// LogFieldsOf returns structured log fields for err, using LogFields when available
func LogFieldsOf(err error) map[string]any {
	var lf interface{ LogFields() map[string]any }
	if errors.As(err, &lf) {
		return lf.LogFields()
	}
	return map[string]any{
		"error":      err.Error(),
		"error_code": ErrorCode(err),
	}
}
