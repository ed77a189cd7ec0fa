package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is the base for every missing-record error.
	ErrNotFound = errors.New("not found")

	ErrEntityNotFound   = fmt.Errorf("entity %w", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrLedgerNotFound   = fmt.Errorf("ledger %w", ErrNotFound)
	ErrJournalNotFound  = fmt.Errorf("journal entry %w", ErrNotFound)
	ErrProposalNotFound = fmt.Errorf("proposal %w", ErrNotFound)
	ErrContractNotFound = fmt.Errorf("escrow contract %w", ErrNotFound)

	// Entity errors
	ErrEntityCycle         = errors.New("entity parent chain contains a cycle")
	ErrInvalidEntityStatus = errors.New("invalid entity status")

	// Account errors
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountMismatch    = errors.New("account does not belong to ledger entity")
	ErrCurrencyMismatch   = errors.New("line currency does not match account currency")

	// Ledger and posting errors
	ErrLedgerLocked      = errors.New("ledger is locked")
	ErrInvalidPeriod     = errors.New("ledger period end must be after start")
	ErrImbalancedEntry   = errors.New("total debit does not equal total credit")
	ErrInvalidLine       = errors.New("invalid journal line")
	ErrInvalidAmount     = errors.New("amount must be a non-negative integer")
	ErrInvalidEventType  = errors.New("invalid event type")
	ErrAlreadyReversed   = errors.New("journal entry already reversed")
	ErrChainVerification = errors.New("event chain verification failed")

	// Vault errors
	ErrAuthenticationFailed = errors.New("signer authentication failed")
	ErrDuplicateSignature   = errors.New("signer already signed this proposal")
	ErrAlreadyExecuted      = errors.New("proposal already executed")

	// Escrow errors
	ErrInvalidIndex      = errors.New("milestone index out of range")
	ErrAlreadyReleased   = errors.New("milestone already released")
	ErrInvalidPercentage = errors.New("milestone percentage must be in (0, 100]")
	ErrOverAllocated     = errors.New("milestone percentages exceed 100")

	// Governance errors
	ErrGovernanceRejected = errors.New("governance rejected")
	ErrGovernanceRequired = errors.New("event type requires governance approval")
)

// GovernanceRejectedError carries every reason collected by the gate chain.
type GovernanceRejectedError struct {
	Reasons []Reason
}

func (e *GovernanceRejectedError) Error() string {
	msgs := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		msgs[i] = r.Message
	}

	return fmt.Sprintf("%s: %s", ErrGovernanceRejected, strings.Join(msgs, "; "))
}

func (e *GovernanceRejectedError) Is(target error) bool {
	return target == ErrGovernanceRejected
}
