package domain

import "time"

// Outbox event types
const (
	EventJournalPosted      = "journal.posted"
	EventLedgerLocked       = "ledger.locked"
	EventGovernanceRejected = "governance.rejected"
	EventVaultExecuted      = "vault.executed"
	EventEscrowReleased     = "escrow.released"
)

// Aggregate types
const (
	AggregateTypeJournal  = "journal"
	AggregateTypeLedger   = "ledger"
	AggregateTypeProposal = "proposal"
	AggregateTypeVault    = "vault"
	AggregateTypeEscrow   = "escrow"
)

// OutboxEvent is written in the same transaction as the change it describes
// and relayed to the journal stream afterwards.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// JournalPostedEvent payload
type JournalPostedEvent struct {
	JournalID       string `json:"journal_id"`
	LedgerID        string `json:"ledger_id"`
	EventID         string `json:"event_id"`
	EventHash       string `json:"event_hash"`
	TransactionType string `json:"transaction_type"`
	Total           string `json:"total"`
}

// LedgerLockedEvent payload
type LedgerLockedEvent struct {
	LedgerID           string `json:"ledger_id"`
	ClosingBalanceHash string `json:"closing_balance_hash"`
}

// VaultExecutedEvent payload. It is the release directive for a vault proposal.
type VaultExecutedEvent struct {
	ProposalID  string   `json:"proposal_id"`
	Amount      string   `json:"amount"`
	Destination string   `json:"destination"`
	Signers     []string `json:"signers"`
}

// EscrowReleasedEvent payload
type EscrowReleasedEvent struct {
	ContractID string `json:"contract_id"`
	Milestone  int    `json:"milestone"`
	Amount     string `json:"amount"`
	Auditor    string `json:"auditor"`
	ProofHash  string `json:"proof_hash"`
}
