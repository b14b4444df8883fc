package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func pgError(code string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "server said no"})
}

func TestErrorClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"Nil", nil, ""},
		{"Record not found", gorm.ErrRecordNotFound, NotFoundError},
		{"Unique violation", pgError("23505"), DuplicateKeyError},
		{"Check violation", pgError("23514"), ConstraintError},
		{"Foreign key violation", pgError("23503"), ConstraintError},
		{"Serialization failure", pgError("40001"), LockError},
		{"Deadlock", pgError("40P01"), LockError},
		{"Lock timeout", pgError("55P03"), LockError},
		{"Query canceled", pgError("57014"), TransientError},
		{"Too many connections", pgError("53300"), TransientError},
		{"Unknown SQLSTATE", pgError("42P01"), ""},
		{"Context deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), TransientError},
		{"Connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), ConnectionError},
		{"Anything else", errors.New("syntax error"), ""},
	}

	c := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.err))
		})
	}
}

func TestErrorClassifier_ToDomain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"Missing row", gorm.ErrRecordNotFound, errs.ErrAuctionNotFound},
		{"Duplicate key", pgError("23505"), errs.ErrConstraintViolation},
		{"Lock timeout", pgError("55P03"), errs.ErrConcurrentModification},
		{"Deadlock", pgError("40P01"), errs.ErrConcurrentModification},
		{"Canceled query", pgError("57014"), errs.ErrTransientFailure},
		{"Connection", errors.New("write: broken pipe"), errs.ErrDatabaseConnection},
		{"Unclassified", errors.New("relation does not exist"), errs.ErrInternalServer},
	}

	c := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, c.ToDomain(tt.err, errs.ErrAuctionNotFound, "get auction"), tt.expected)
		})
	}

	assert.NoError(t, c.ToDomain(nil, errs.ErrAuctionNotFound, "get auction"))
}

func TestErrorClassifier_RetryableKinds(t *testing.T) {
	c := NewErrorClassifier()

	assert.True(t, c.IsTransientError(pgError("40001")))
	assert.True(t, c.IsTransientError(errors.New("connection reset by peer")))
	assert.False(t, c.IsTransientError(pgError("23505")))
	assert.True(t, c.IsDuplicateKeyError(pgError("23505")))
	assert.True(t, c.IsLockError(pgError("55P03")))
}
