package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxNameLength = 255
	MinNameLength = 1
	// MaxPostingAmount bounds a single line, in minor units.
	MaxPostingAmount = "1000000000000000000"
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"IDR": true, "USD": true, "EUR": true, "GBP": true,
	"JPY": true, "CNY": true, "AUD": true, "CAD": true,
	"CHF": true, "SGD": true, "HKD": true, "MYR": true,
	"INR": true, "KRW": true, "NZD": true, "SEK": true,
}

// ValidateName validates entity, account and project names
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %q is not a supported ISO 4217 code", ErrInvalidCurrency, currency)
	}

	return nil
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateMoney requires a non-negative whole number of minor units.
func ValidateMoney(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}

	if !amount.Equal(amount.Truncate(0)) {
		return fmt.Errorf("%w: %s has a fractional part", ErrInvalidAmount, amount)
	}

	maxAmount, _ := decimal.NewFromString(MaxPostingAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxPostingAmount)
	}

	return nil
}

// ValidatePositiveMoney is ValidateMoney that also rejects zero.
func ValidatePositiveMoney(amount decimal.Decimal) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	return ValidateMoney(amount)
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
