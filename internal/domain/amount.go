package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits stored for money amounts.
const AmountScale = 2

// maxAmount is the exclusive upper bound of a stored amount, matching the
// NUMERIC(14, 2) columns.
var maxAmount = decimal.New(1, 14-AmountScale)

// ValidateTitle checks a required title and returns it trimmed.
func ValidateTitle(title *string) (string, error) {
	if title == nil {
		return "", NewValidationError("title", "Title is required")
	}
	trimmed := strings.TrimSpace(*title)
	if trimmed == "" {
		return "", NewValidationError("title", "Title should not be empty")
	}
	return trimmed, nil
}

// ParseAmount parses a required, strictly positive amount. The raw value
// comes from JSON numbers or form fields, so it is accepted as text.
func ParseAmount(raw *string) (decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return decimal.Zero, NewValidationError("amount", "Amount is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "Amount should be a number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, NewValidationError("amount", "Amount should be greater than 0")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, NewValidationError("amount", "Amount should be less than 1000000000000")
	}
	if amount.Exponent() < -AmountScale && !amount.Equal(amount.Truncate(AmountScale)) {
		return decimal.Zero, NewValidationError("amount", "Amount should have at most 2 decimal places")
	}
	return amount, nil
}
