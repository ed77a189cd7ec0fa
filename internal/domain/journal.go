package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType classifies a TransactionEvent and the JournalEntry it authorizes.
type EventType string

const (
	EventTypeCapitalInjection EventType = "CAPITAL_INJECTION"
	EventTypeInflow           EventType = "INFLOW"
	EventTypeOutflow          EventType = "OUTFLOW"
	EventTypeInternalTransfer EventType = "INTERNAL_TRANSFER"
	EventTypeEscrowRelease    EventType = "ESCROW_RELEASE"
	EventTypeReversal         EventType = "REVERSAL"
	EventTypeAdjustment       EventType = "ADJUSTMENT"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeCapitalInjection, EventTypeInflow, EventTypeOutflow, EventTypeInternalTransfer,
		EventTypeEscrowRelease, EventTypeReversal, EventTypeAdjustment:
		return true
	default:
		return false
	}
}

// RequiresGovernance reports whether entries of type t move capital and may
// only be posted for a proposal approved by the gate chain.
func (t EventType) RequiresGovernance() bool {
	switch t {
	case EventTypeInflow, EventTypeOutflow, EventTypeInternalTransfer, EventTypeEscrowRelease:
		return true
	default:
		return false
	}
}

// ApprovalStatus records which authority approved a JournalEntry.
type ApprovalStatus string

const (
	ApprovalStatusGovernance ApprovalStatus = "APPROVED_FOR_EXECUTION"
	ApprovalStatusBoard      ApprovalStatus = "APPROVED_BY_BOARD"
	ApprovalStatusSystem     ApprovalStatus = "SYSTEM"
)

// TransactionEvent is the immutable authorization record for a posting.
type TransactionEvent struct {
	ID                     string
	LedgerID               string
	Type                   EventType
	SourceSystem           string
	DecisionReference      string
	AuthoritySignatureHash string
	Timestamp              time.Time
	PreviousHash           string
	EventHash              string
}

// JournalEntry is the atomic transaction header. TotalDebit always equals TotalCredit.
type JournalEntry struct {
	ID              string
	LedgerID        string
	EventID         string
	TransactionType EventType
	ApprovalStatus  ApprovalStatus
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	CreatedBy       string
	ApprovedBy      string
	ReversalOf      string
	CreatedAt       time.Time
	Lines           []*JournalLine
}

// JournalLine is one account movement within a JournalEntry.
type JournalLine struct {
	ID        string
	JournalID string
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Currency  string
	FXRateRef string
	RiskTag   string
}

// Validate enforces integer amounts with exactly one non-zero side.
func (l *JournalLine) Validate() error {
	if l.AccountID == "" {
		return fmt.Errorf("%w: account is required", ErrInvalidLine)
	}

	if err := ValidateMoney(l.Debit); err != nil {
		return err
	}

	if err := ValidateMoney(l.Credit); err != nil {
		return err
	}

	if l.Debit.IsZero() == l.Credit.IsZero() {
		return fmt.Errorf("%w: exactly one of debit or credit must be non-zero", ErrInvalidLine)
	}

	return ValidateCurrency(l.Currency)
}

// SumLines totals the debit and credit sides.
func SumLines(lines []*JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}

	return debit, credit
}

// CheckBalanced fails with ErrImbalancedEntry unless debits equal credits.
func CheckBalanced(lines []*JournalLine) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, fmt.Errorf("%w: entry has no lines", ErrInvalidLine)
	}

	debit, credit := SumLines(lines)
	if !debit.Equal(credit) {
		return decimal.Zero, fmt.Errorf("%w: debit %s, credit %s", ErrImbalancedEntry, debit, credit)
	}

	return debit, nil
}

// Validate checks header totals against the lines.
func (e *JournalEntry) Validate() error {
	if !e.TotalDebit.Equal(e.TotalCredit) {
		return ErrImbalancedEntry
	}

	debit, credit := SumLines(e.Lines)
	if !debit.Equal(e.TotalDebit) || !credit.Equal(e.TotalCredit) {
		return fmt.Errorf("%w: lines do not match header totals", ErrImbalancedEntry)
	}

	return nil
}

// Mirror returns lines with debit and credit swapped, for reversals.
func Mirror(lines []*JournalLine) []*JournalLine {
	out := make([]*JournalLine, len(lines))
	for i, l := range lines {
		out[i] = &JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Credit,
			Credit:    l.Debit,
			Currency:  l.Currency,
			FXRateRef: l.FXRateRef,
			RiskTag:   l.RiskTag,
		}
	}

	return out
}

type eventHashPayload struct {
	Type         EventType         `json:"type"`
	Origin       string            `json:"origin"`
	Amounts      []eventHashAmount `json:"amounts"`
	Timestamp    string            `json:"timestamp"`
	PreviousHash string            `json:"previous_hash"`
}

type eventHashAmount struct {
	AccountID string `json:"account_id"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
}

// ComputeEventHash fingerprints an event and its lines. The same inputs always
// produce the same hash, so audit tooling can re-derive it.
func ComputeEventHash(evt *TransactionEvent, lines []*JournalLine) string {
	amounts := make([]eventHashAmount, len(lines))
	for i, l := range lines {
		amounts[i] = eventHashAmount{
			AccountID: l.AccountID,
			Debit:     l.Debit.String(),
			Credit:    l.Credit.String(),
		}
	}

	data, _ := json.Marshal(eventHashPayload{
		Type:         evt.Type,
		Origin:       evt.SourceSystem,
		Amounts:      amounts,
		Timestamp:    evt.Timestamp.UTC().Format(time.RFC3339Nano),
		PreviousHash: evt.PreviousHash,
	})
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// HashAuthority fingerprints an authority signature so the raw value is never stored.
func HashAuthority(signature string) string {
	if signature == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(signature))

	return hex.EncodeToString(sum[:])
}
