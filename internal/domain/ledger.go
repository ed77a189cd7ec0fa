package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// LedgerStatus is the lifecycle state of a Ledger. LOCKED is terminal.
type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "PENDING"
	LedgerStatusLocked  LedgerStatus = "LOCKED"
)

// Ledger is the event-sourced container for one entity and period [start, end).
type Ledger struct {
	ID                 string
	EntityID           string
	PeriodStart        time.Time
	PeriodEnd          time.Time
	OpeningBalanceHash string
	ClosingBalanceHash string
	HeadHash           string
	Status             LedgerStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LockedAt           *time.Time
}

// IsLocked reports whether the ledger no longer accepts entries.
func (l *Ledger) IsLocked() bool {
	return l.Status == LedgerStatusLocked
}

// Lock closes the ledger with the given closing fingerprint.
func (l *Ledger) Lock(closingHash string, now time.Time) error {
	if l.IsLocked() {
		return ErrLedgerLocked
	}

	l.Status = LedgerStatusLocked
	l.ClosingBalanceHash = closingHash
	l.UpdatedAt = now
	l.LockedAt = &now

	return nil
}

// ValidatePeriod checks that end is strictly after start.
func ValidatePeriod(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidPeriod
	}

	return nil
}

type balanceFingerprint struct {
	EntityID string          `json:"entity_id"`
	Label    string          `json:"label"`
	Balances []balanceRecord `json:"balances"`
}

type balanceRecord struct {
	AccountID string `json:"account_id"`
	Currency  string `json:"currency"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
}

// ComputeBalanceHash fingerprints a set of balances. Input order does not matter.
func ComputeBalanceHash(entityID, label string, balances []AccountBalance) string {
	records := make([]balanceRecord, len(balances))
	for i, b := range balances {
		records[i] = balanceRecord{
			AccountID: b.AccountID,
			Currency:  b.Currency,
			Debit:     b.Debit.String(),
			Credit:    b.Credit.String(),
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].AccountID < records[j].AccountID })

	// Marshal of plain string fields cannot fail.
	data, _ := json.Marshal(balanceFingerprint{EntityID: entityID, Label: label, Balances: records})
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}
