package database

import (
	"fmt"

	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/repository"
)

// ErrorMapper maps errors raised outside the repositories (connect, begin,
// commit, migrations) to domain errors
type ErrorMapper struct {
	classifier *repository.ErrorClassifier
}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{classifier: repository.NewErrorClassifier()}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return m.classifier.ToDomain(err, fmt.Errorf("%s: %w", operation, errs.ErrNotFound), operation)
}

// IsTransient reports whether repeating the operation may succeed
func (m *ErrorMapper) IsTransient(err error) bool {
	return m.classifier.IsTransientError(err)
}
