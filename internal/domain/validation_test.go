package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	if err := ValidateName("Tier 1 Capital"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateName("   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	if err := ValidateName(strings.Repeat("a", MaxNameLength+1)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency(NormalizeCurrency(" idr ")); err != nil {
		t.Fatalf("expected normalized IDR to pass, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidateMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		amount    decimal.Decimal
		errorType error
	}{
		{"zero", decimal.Zero, nil},
		{"whole amount", decimal.NewFromInt(10_000_000_000), nil},
		{"negative", decimal.NewFromInt(-1), ErrInvalidAmount},
		{"fractional", decimal.RequireFromString("1.5"), ErrInvalidAmount},
		{"too large", decimal.RequireFromString(MaxPostingAmount).Add(decimal.NewFromInt(1)), ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMoney(tt.amount)
			if tt.errorType == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.errorType != nil && !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}
		})
	}

	if err := ValidatePositiveMoney(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected zero to be rejected, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped at 1000, got %d", limit)
	}
}
