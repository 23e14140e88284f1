package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

// ValidatePositiveAmount checks that an amount is strictly positive and fits
// the stored money scale.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	return ValidateMoneyScale(amount)
}

// ValidateMoneyScale rejects amounts with more than MoneyScale decimal places.
// Such amounts would be rounded on write and drift from the ledger.
func ValidateMoneyScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(MoneyScale)) {
		return fmt.Errorf("amount %s has more than %d decimal places", amount.String(), MoneyScale)
	}
	return nil
}

// CredentialsComplete reports whether none of the registration fields are blank.
func CredentialsComplete(username, email, password string) bool {
	return strings.TrimSpace(username) != "" && strings.TrimSpace(email) != "" && password != ""
}

// MethodOrUnknown is used in ledger descriptions when no method was supplied.
func MethodOrUnknown(method string) string {
	if method == "" {
		return "unknown"
	}
	return method
}
