package validation

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"
)

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns ve when it holds errors and nil otherwise.
func (ve *ValidationErrors) Err() error {
	if !ve.HasErrors() {
		return nil
	}
	return ve
}

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidateDate checks a field is a valid date (YYYY-MM-DD) or RFC 3339 timestamp.
func ValidateDate(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err == nil {
		return
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return
	}
	ve.Add(field, "must be a valid date (YYYY-MM-DD)")
}

// ValidatePositiveFloat checks a field is > 0.
func ValidatePositiveFloat(ve *ValidationErrors, field string, value float64) {
	if value <= 0 {
		ve.Add(field, "must be a positive number")
	}
}

// ValidateFinite rejects NaN and infinities.
func ValidateFinite(ve *ValidationErrors, field string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		ve.Add(field, "must be a finite number")
	}
}

// ValidateNonNegativeFloat checks a field is >= 0.
func ValidateNonNegativeFloat(ve *ValidationErrors, field string, value float64) {
	if value < 0 {
		ve.Add(field, "must be non-negative")
	}
}

// ValidateNonNegativeInt checks a field is >= 0.
func ValidateNonNegativeInt(ve *ValidationErrors, field string, value int) {
	if value < 0 {
		ve.Add(field, "must be non-negative")
	}
}

// Maximum value constants to prevent overflow and ensure reasonable limits.
const (
	MaxQuantityLbs  = 100000000.0
	MaxPrice        = 1000000.0
	MaxStringLength = 10000
	MaxTextLength   = 100000
)

// ValidateMaxQuantity checks quantity doesn't exceed reasonable maximum.
func ValidateMaxQuantity(ve *ValidationErrors, field string, value float64) {
	if value > MaxQuantityLbs {
		ve.Add(field, fmt.Sprintf("exceeds maximum allowed quantity of %.0f", MaxQuantityLbs))
	}
}

// ValidateMaxPrice checks price doesn't exceed reasonable maximum.
func ValidateMaxPrice(ve *ValidationErrors, field string, value float64) {
	if value > MaxPrice {
		ve.Add(field, fmt.Sprintf("exceeds maximum allowed price of %.2f", MaxPrice))
	}
}

// ValidateEmail checks a field is a valid email (if non-empty).
func ValidateEmail(ve *ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	_, err := mail.ParseAddress(value)
	if err != nil {
		ve.Add(field, "must be a valid email address")
	}
}

// ValidateMaxLength checks string doesn't exceed max length.
func ValidateMaxLength(ve *ValidationErrors, field, value string, max int) {
	if len(value) > max {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// ValidateUniqueNames checks a list of names has no blanks or duplicates.
func ValidateUniqueNames(ve *ValidationErrors, field string, names []string) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			ve.Add(field, "must not contain empty names")
			return
		}
		if _, dup := seen[n]; dup {
			ve.Add(field, fmt.Sprintf("contains duplicate name %q", n))
			return
		}
		seen[n] = struct{}{}
	}
}
