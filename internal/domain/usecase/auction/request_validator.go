package auction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	errs "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	"github.com/go-playground/validator/v10"
)

// CategoryTag is the struct tag that checks a donation category
const CategoryTag = "donation_category"

// NewRequestValidator returns a validator with the auction-specific rules registered
func NewRequestValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		panic("failed to register request validations: " + err.Error())
	}
	return v
}

// RegisterValidations adds the auction-specific rules to an existing validator
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(CategoryTag, validateCategory)
}

func validateCategory(fl validator.FieldLevel) bool {
	return entity.IsValidCategory(fl.Field().String())
}

// validationError converts validator output into an ErrInvalidRequest with a readable message
func validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error())
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, validationMessage(e))
	}
	return fmt.Errorf("%w: %s", errs.ErrInvalidRequest, strings.Join(messages, "; "))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must be at most " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case CategoryTag:
		return e.Field() + " must be one of: " + supportedCategories()
	default:
		return e.Field() + " is invalid"
	}
}

func supportedCategories() string {
	categories := entity.Categories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
