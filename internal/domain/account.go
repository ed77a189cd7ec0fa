package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the closed set of chart-of-accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in reporting order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	default:
		return false
	}
}

// ParseAccountType converts a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidAccountType, s)
	}

	return t, nil
}

// Balance applies the sign rule of the account type to summed debits and credits.
func (t AccountType) Balance(debit, credit decimal.Decimal) decimal.Decimal {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return debit.Sub(credit)
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return credit.Sub(debit)
	default:
		panic(fmt.Sprintf("unhandled account type %q", t))
	}
}

// Account belongs to exactly one Entity. Accounts are never deleted.
type Account struct {
	ID              string
	EntityID        string
	Name            string
	Type            AccountType
	Currency        string
	RiskCategory    string
	LiquidityClass  string
	ParentAccountID *string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidatePosting checks that a line in currency may be posted to the account
// within a ledger of entityID.
func (a *Account) ValidatePosting(entityID, currency string) error {
	if !a.Active {
		return fmt.Errorf("%w: %s", ErrAccountInactive, a.ID)
	}

	if a.EntityID != entityID {
		return fmt.Errorf("%w: %s", ErrAccountMismatch, a.ID)
	}

	if a.Currency != currency {
		return fmt.Errorf("%w: %s has %s, line has %s", ErrCurrencyMismatch, a.ID, a.Currency, currency)
	}

	return nil
}

// AccountBalance is the derived balance of one account.
type AccountBalance struct {
	AccountID string
	Type      AccountType
	Currency  string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Balance returns the signed balance for the account type.
func (b AccountBalance) Balance() decimal.Decimal {
	return b.Type.Balance(b.Debit, b.Credit)
}
