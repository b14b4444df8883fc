package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	TransientError    ErrorType = "transient"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
	ConstraintError   ErrorType = "constraint"
	NotFoundError     ErrorType = "not_found"
)

// PostgreSQL SQLSTATE codes the repositories react to
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateCheckViolation       = "23514"
	sqlStateNotNullViolation     = "23502"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateQueryCanceled        = "57014"
	sqlStateTooManyConnections   = "53300"
	sqlStateAdminShutdown        = "57P01"
)

// ErrorClassifier classifies database errors by SQLSTATE, falling back to
// message matching for errors raised before the server answered
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	if err == nil {
		return ""
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return DuplicateKeyError
		case sqlStateForeignKeyViolation, sqlStateCheckViolation, sqlStateNotNullViolation:
			return ConstraintError
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return LockError
		case sqlStateQueryCanceled, sqlStateTooManyConnections, sqlStateAdminShutdown:
			return TransientError
		}
		return ""
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return TransientError
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return TransientError
	}
	if c.isConnectionMessage(err) {
		return ConnectionError
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a unique constraint violation
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	return c.Classify(err) == DuplicateKeyError
}

// IsLockError checks if the error is due to locking or serialization
func (c *ErrorClassifier) IsLockError(err error) bool {
	return c.Classify(err) == LockError
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	switch c.Classify(err) {
	case TransientError, ConnectionError, LockError:
		return true
	default:
		return false
	}
}

func (c *ErrorClassifier) isConnectionMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "dial")
}

// ToDomain maps a database error to a domain error. notFound is returned for
// missing rows so each repository can report its own entity.
func (c *ErrorClassifier) ToDomain(err error, notFound error, operation string) error {
	if err == nil {
		return nil
	}

	switch c.Classify(err) {
	case NotFoundError:
		return notFound
	case DuplicateKeyError, ConstraintError:
		return fmt.Errorf("%s: %w: %s", operation, errs.ErrConstraintViolation, err.Error())
	case LockError:
		return fmt.Errorf("%s: %w: %s", operation, errs.ErrConcurrentModification, err.Error())
	case TransientError:
		return fmt.Errorf("%s: %w: %s", operation, errs.ErrTransientFailure, err.Error())
	case ConnectionError:
		return fmt.Errorf("%s: %w: %s", operation, errs.ErrDatabaseConnection, err.Error())
	default:
		return fmt.Errorf("%s: %w: %s", operation, errs.ErrInternalServer, err.Error())
	}
}
