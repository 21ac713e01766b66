package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNoData indicates that no valid population data remained after
	// filtering, so the requested analysis could not be performed.
	ErrNoData = errors.New("no valid population data available for analysis")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateYearRange checks that a requested year range is well formed.
// Both bounds are inclusive; the start year must not exceed the end year.
func ValidateYearRange(startYear, endYear int) error {
	if startYear <= 0 {
		return &ValidationError{Field: "start_year", Message: "must be a positive year"}
	}
	if endYear <= 0 {
		return &ValidationError{Field: "end_year", Message: "must be a positive year"}
	}
	if startYear > endYear {
		return &ValidationError{
			Field:   "start_year",
			Message: fmt.Sprintf("must not be after end_year (%d > %d)", startYear, endYear),
		}
	}
	return nil
}

// ValidateCountryCode checks that a country code looks like an ISO code.
// The World Bank API accepts both alpha-2 and alpha-3 codes.
func ValidateCountryCode(code string) error {
	if len(code) < 2 || len(code) > 3 {
		return &ValidationError{Field: "country", Message: "must be a 2 or 3 letter ISO country code"}
	}
	for _, c := range code {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return &ValidationError{Field: "country", Message: "must contain only letters"}
		}
	}
	return nil
}
