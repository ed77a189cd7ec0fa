package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/governance"
)

// EntityRepository defines data access for entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	UpdateStatus(ctx context.Context, entity *domain.Entity) error
	List(ctx context.Context, limit, offset int) ([]*domain.Entity, error)
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDs loads accounts inside tx. Missing IDs are omitted from the result.
	GetByIDs(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	ListByEntity(ctx context.Context, entityID string, limit, offset int) ([]*domain.Account, error)
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	// Balance derives debit and credit totals from posted lines.
	Balance(ctx context.Context, accountID string) (*domain.AccountBalance, error)
	// BalancesByEntity derives balances for every account of an entity.
	// A nil tx reads outside any transaction.
	BalancesByEntity(ctx context.Context, tx Transaction, entityID string) ([]domain.AccountBalance, error)
}

// LedgerRepository defines data access for ledgers.
type LedgerRepository interface {
	Create(ctx context.Context, ledger *domain.Ledger) error
	GetByID(ctx context.Context, id string) (*domain.Ledger, error)
	// GetByIDForUpdate locks the ledger row until tx ends. This is the
	// per-ledger exclusive scope for postings.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Ledger, error)
	UpdateHead(ctx context.Context, tx Transaction, id, headHash string, updatedAt time.Time) error
	Lock(ctx context.Context, tx Transaction, ledger *domain.Ledger) error
}

// JournalRepository defines data access for events, entries and lines.
type JournalRepository interface {
	CreateEvent(ctx context.Context, tx Transaction, event *domain.TransactionEvent) error
	// CreateEntry persists the entry header and its lines in order.
	CreateEntry(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	// ListByLedger returns entries with lines in posting order.
	ListByLedger(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.JournalEntry, error)
	// ListEvents returns every event of a ledger in posting order.
	ListEvents(ctx context.Context, ledgerID string) ([]*domain.TransactionEvent, error)
	IsReversed(ctx context.Context, tx Transaction, journalID string) (bool, error)
}

// VaultRepository defines data access for signature proposals.
type VaultRepository interface {
	Create(ctx context.Context, proposal *domain.SignatureProposal) error
	GetByID(ctx context.Context, id string) (*domain.SignatureProposal, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.SignatureProposal, error)
	// Update persists status and appends signatures not yet stored.
	Update(ctx context.Context, tx Transaction, proposal *domain.SignatureProposal) error
}

// EscrowRepository defines data access for escrow contracts.
type EscrowRepository interface {
	Create(ctx context.Context, contract *domain.EscrowContract) error
	GetByID(ctx context.Context, id string) (*domain.EscrowContract, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.EscrowContract, error)
	// Update persists fund totals and upserts milestones.
	Update(ctx context.Context, tx Transaction, contract *domain.EscrowContract) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a pending key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// SignalProvider computes the external scores consumed by the constitutional gate.
type SignalProvider interface {
	Signals(ctx context.Context, req governance.SignalRequest) (governance.Signals, error)
}

// Evaluator runs the governance gate chain.
type Evaluator interface {
	Evaluate(ctx context.Context, p *domain.Proposal, s governance.Signals) (domain.Verdict, error)
}

// Recorder receives business metrics.
type Recorder interface {
	JournalPosted(eventType domain.EventType, amount decimal.Decimal, took time.Duration)
	PostingFailed(reason string)
	GovernanceVerdict(verdict domain.Verdict)
	VaultSigned(executed bool)
	EscrowReleased(amount decimal.Decimal)
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

func (NopRecorder) JournalPosted(domain.EventType, decimal.Decimal, time.Duration) {}
func (NopRecorder) PostingFailed(string)                                          {}
func (NopRecorder) GovernanceVerdict(domain.Verdict)                              {}
func (NopRecorder) VaultSigned(bool)                                              {}
func (NopRecorder) EscrowReleased(decimal.Decimal)                                {}
