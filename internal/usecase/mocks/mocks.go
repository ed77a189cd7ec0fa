package mocks

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

var errTxClosed = errors.New("mock transaction already closed")

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu    sync.Mutex
	begun int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.begun++
	m.mu.Unlock()
	return &MockTransaction{}, nil
}

// Begun returns how many transactions were started.
func (m *MockTransactionManager) Begun() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begun
}

// MockTransaction is a mock implementation of Transaction. Writes made
// through the in-memory repositories are staged and applied on Commit;
// row locks are held until Commit or Rollback.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu         sync.Mutex
	done       bool
	committed  bool
	rolledBack bool
	onCommit   []func()
	onFinish   []func()
	held       map[string]bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return errTxClosed
	}
	m.done, m.committed = true, true
	apply, finish := m.onCommit, m.onFinish
	m.onCommit, m.onFinish = nil, nil
	m.mu.Unlock()

	for _, f := range apply {
		f()
	}
	for _, f := range finish {
		f()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done, m.rolledBack = true, true
	finish := m.onFinish
	m.onCommit, m.onFinish = nil, nil
	m.mu.Unlock()

	for _, f := range finish {
		f()
	}

	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// Committed reports whether Commit succeeded.
func (m *MockTransaction) Committed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed
}

// RolledBack reports whether the transaction ended without commit.
func (m *MockTransaction) RolledBack() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rolledBack
}

// stage applies a write on commit, or immediately outside a mock transaction.
func stage(tx usecase.Transaction, apply func()) {
	t, ok := tx.(*MockTransaction)
	if !ok {
		apply()
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommit = append(t.onCommit, apply)
}

// rowLocks emulates SELECT ... FOR UPDATE: a lock taken inside a mock
// transaction is released when that transaction ends.
type rowLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *rowLocks) lock(tx usecase.Transaction, key string) {
	t, ok := tx.(*MockTransaction)
	if !ok {
		return
	}

	t.mu.Lock()
	if t.held[key] {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	r.mu.Lock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()

	t.mu.Lock()
	if t.held == nil {
		t.held = make(map[string]bool)
	}
	t.held[key] = true
	t.onFinish = append(t.onFinish, l.Unlock)
	t.mu.Unlock()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockEntityRepository is an in-memory EntityRepository.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*domain.Entity
	order    []string

	CreateFunc       func(ctx context.Context, entity *domain.Entity) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Entity, error)
	UpdateStatusFunc func(ctx context.Context, entity *domain.Entity) error
	ListFunc         func(ctx context.Context, limit, offset int) ([]*domain.Entity, error)
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		entities: make(map[string]*domain.Entity),
	}
}

func (m *MockEntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entity
	m.entities[entity.ID] = &cp
	m.order = append(m.order, entity.ID)
	return nil
}

func (m *MockEntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockEntityRepository) UpdateStatus(ctx context.Context, entity *domain.Entity) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[entity.ID]
	if !ok {
		return domain.ErrEntityNotFound
	}
	e.Status = entity.Status
	e.Version = entity.Version
	e.UpdatedAt = entity.UpdatedAt
	return nil
}

func (m *MockEntityRepository) List(ctx context.Context, limit, offset int) ([]*domain.Entity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entity
	for _, id := range page(m.order, limit, offset) {
		cp := *m.entities[id]
		out = append(out, &cp)
	}
	return out, nil
}

// MockAccountRepository is an in-memory AccountRepository. Balances are
// derived from the committed lines of Journal when it is set.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	order    []string

	Journal *MockJournalRepository

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsFunc         func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	ListByEntityFunc     func(ctx context.Context, entityID string, limit, offset int) ([]*domain.Account, error)
	DeactivateFunc       func(ctx context.Context, id string, updatedAt time.Time) error
	BalanceFunc          func(ctx context.Context, accountID string) (*domain.AccountBalance, error)
	BalancesByEntityFunc func(ctx context.Context, tx usecase.Transaction, entityID string) ([]domain.AccountBalance, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
	m.order = append(m.order, account.ID)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDs(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			cp := *acc
			accounts = append(accounts, &cp)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListByEntity(ctx context.Context, entityID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, entityID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, id := range m.order {
		if m.accounts[id].EntityID == entityID {
			ids = append(ids, id)
		}
	}
	var out []*domain.Account
	for _, id := range page(ids, limit, offset) {
		cp := *m.accounts[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockAccountRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Active = false
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) Balance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, accountID)
	}
	acc, err := m.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	b := m.derive(acc)
	return &b, nil
}

func (m *MockAccountRepository) BalancesByEntity(ctx context.Context, tx usecase.Transaction, entityID string) ([]domain.AccountBalance, error) {
	if m.BalancesByEntityFunc != nil {
		return m.BalancesByEntityFunc(ctx, tx, entityID)
	}
	m.mu.RLock()
	var accounts []domain.Account
	for _, id := range m.order {
		if acc := m.accounts[id]; acc.EntityID == entityID {
			accounts = append(accounts, *acc)
		}
	}
	m.mu.RUnlock()

	out := make([]domain.AccountBalance, 0, len(accounts))
	for i := range accounts {
		out = append(out, m.derive(&accounts[i]))
	}
	return out, nil
}

func (m *MockAccountRepository) derive(acc *domain.Account) domain.AccountBalance {
	b := domain.AccountBalance{
		AccountID: acc.ID,
		Type:      acc.Type,
		Currency:  acc.Currency,
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
	}
	if m.Journal == nil {
		return b
	}
	for _, l := range m.Journal.LinesByAccount(acc.ID) {
		b.Debit = b.Debit.Add(l.Debit)
		b.Credit = b.Credit.Add(l.Credit)
	}
	return b
}

// MockLedgerRepository is an in-memory LedgerRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[string]*domain.Ledger
	locks   rowLocks

	CreateFunc           func(ctx context.Context, ledger *domain.Ledger) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Ledger, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Ledger, error)
	UpdateHeadFunc       func(ctx context.Context, tx usecase.Transaction, id, headHash string, updatedAt time.Time) error
	LockFunc             func(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		ledgers: make(map[string]*domain.Ledger),
	}
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *domain.Ledger) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ledger)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ledger
	m.ledgers[ledger.ID] = &cp
	return nil
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id string) (*domain.Ledger, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.ledgers[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrLedgerNotFound
}

func (m *MockLedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Ledger, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.locks.lock(tx, "ledger:"+id)
	return m.GetByID(ctx, id)
}

func (m *MockLedgerRepository) UpdateHead(ctx context.Context, tx usecase.Transaction, id, headHash string, updatedAt time.Time) error {
	if m.UpdateHeadFunc != nil {
		return m.UpdateHeadFunc(ctx, tx, id, headHash, updatedAt)
	}
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if l, ok := m.ledgers[id]; ok {
			l.HeadHash = headHash
			l.UpdatedAt = updatedAt
		}
	})
	return nil
}

func (m *MockLedgerRepository) Lock(ctx context.Context, tx usecase.Transaction, ledger *domain.Ledger) error {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, tx, ledger)
	}
	cp := *ledger
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.ledgers[cp.ID] = &cp
	})
	return nil
}

// MockJournalRepository is an in-memory JournalRepository.
type MockJournalRepository struct {
	mu          sync.RWMutex
	events      map[string]*domain.TransactionEvent
	eventOrder  map[string][]string
	entries     map[string]*domain.JournalEntry
	entryOrder  map[string][]string
	reversed    map[string]bool
	linesByAcct map[string][]*domain.JournalLine

	CreateEventFunc  func(ctx context.Context, tx usecase.Transaction, event *domain.TransactionEvent) error
	CreateEntryFunc  func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListByLedgerFunc func(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.JournalEntry, error)
	ListEventsFunc   func(ctx context.Context, ledgerID string) ([]*domain.TransactionEvent, error)
	IsReversedFunc   func(ctx context.Context, tx usecase.Transaction, journalID string) (bool, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		events:      make(map[string]*domain.TransactionEvent),
		eventOrder:  make(map[string][]string),
		entries:     make(map[string]*domain.JournalEntry),
		entryOrder:  make(map[string][]string),
		reversed:    make(map[string]bool),
		linesByAcct: make(map[string][]*domain.JournalLine),
	}
}

func (m *MockJournalRepository) CreateEvent(ctx context.Context, tx usecase.Transaction, event *domain.TransactionEvent) error {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, tx, event)
	}
	cp := *event
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events[cp.ID] = &cp
		m.eventOrder[cp.LedgerID] = append(m.eventOrder[cp.LedgerID], cp.ID)
	})
	return nil
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateEntryFunc != nil {
		return m.CreateEntryFunc(ctx, tx, entry)
	}
	cp := copyEntry(entry)
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.entries[cp.ID] = cp
		m.entryOrder[cp.LedgerID] = append(m.entryOrder[cp.LedgerID], cp.ID)
		for _, l := range cp.Lines {
			m.linesByAcct[l.AccountID] = append(m.linesByAcct[l.AccountID], l)
		}
		if cp.ReversalOf != "" {
			m.reversed[cp.ReversalOf] = true
		}
	})
	return nil
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return copyEntry(e), nil
	}
	return nil, domain.ErrJournalNotFound
}

func (m *MockJournalRepository) ListByLedger(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.JournalEntry, error) {
	if m.ListByLedgerFunc != nil {
		return m.ListByLedgerFunc(ctx, ledgerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.JournalEntry
	for _, id := range page(m.entryOrder[ledgerID], limit, offset) {
		out = append(out, copyEntry(m.entries[id]))
	}
	return out, nil
}

func (m *MockJournalRepository) ListEvents(ctx context.Context, ledgerID string) ([]*domain.TransactionEvent, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, ledgerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.TransactionEvent, 0, len(m.eventOrder[ledgerID]))
	for _, id := range m.eventOrder[ledgerID] {
		cp := *m.events[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockJournalRepository) IsReversed(ctx context.Context, tx usecase.Transaction, journalID string) (bool, error) {
	if m.IsReversedFunc != nil {
		return m.IsReversedFunc(ctx, tx, journalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reversed[journalID], nil
}

// LinesByAccount returns committed lines posted to an account.
func (m *MockJournalRepository) LinesByAccount(accountID string) []*domain.JournalLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.JournalLine, len(m.linesByAcct[accountID]))
	copy(out, m.linesByAcct[accountID])
	return out
}

// EntryCount returns the number of committed entries.
func (m *MockJournalRepository) EntryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// EventCount returns the number of committed events.
func (m *MockJournalRepository) EventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// LineCount returns the number of committed lines.
func (m *MockJournalRepository) LineCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, lines := range m.linesByAcct {
		n += len(lines)
	}
	return n
}

// OverwriteEventHash replaces a stored event hash, simulating tampering.
func (m *MockJournalRepository) OverwriteEventHash(eventID, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[eventID]; ok {
		e.EventHash = hash
	}
}

// MockVaultRepository is an in-memory VaultRepository.
type MockVaultRepository struct {
	mu        sync.RWMutex
	proposals map[string]*domain.SignatureProposal
	locks     rowLocks

	CreateFunc           func(ctx context.Context, proposal *domain.SignatureProposal) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.SignatureProposal, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.SignatureProposal, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, proposal *domain.SignatureProposal) error
}

func NewMockVaultRepository() *MockVaultRepository {
	return &MockVaultRepository{
		proposals: make(map[string]*domain.SignatureProposal),
	}
}

func (m *MockVaultRepository) Create(ctx context.Context, proposal *domain.SignatureProposal) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, proposal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[proposal.ID] = copyProposal(proposal)
	return nil
}

func (m *MockVaultRepository) GetByID(ctx context.Context, id string) (*domain.SignatureProposal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.proposals[id]; ok {
		return copyProposal(p), nil
	}
	return nil, domain.ErrProposalNotFound
}

func (m *MockVaultRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SignatureProposal, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.locks.lock(tx, "vault:"+id)
	return m.GetByID(ctx, id)
}

func (m *MockVaultRepository) Update(ctx context.Context, tx usecase.Transaction, proposal *domain.SignatureProposal) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, proposal)
	}
	cp := copyProposal(proposal)
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.proposals[cp.ID] = cp
	})
	return nil
}

// MockEscrowRepository is an in-memory EscrowRepository.
type MockEscrowRepository struct {
	mu        sync.RWMutex
	contracts map[string]*domain.EscrowContract
	locks     rowLocks

	CreateFunc           func(ctx context.Context, contract *domain.EscrowContract) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.EscrowContract, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.EscrowContract, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, contract *domain.EscrowContract) error
}

func NewMockEscrowRepository() *MockEscrowRepository {
	return &MockEscrowRepository{
		contracts: make(map[string]*domain.EscrowContract),
	}
}

func (m *MockEscrowRepository) Create(ctx context.Context, contract *domain.EscrowContract) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contract)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[contract.ID] = copyContract(contract)
	return nil
}

func (m *MockEscrowRepository) GetByID(ctx context.Context, id string) (*domain.EscrowContract, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.contracts[id]; ok {
		return copyContract(c), nil
	}
	return nil, domain.ErrContractNotFound
}

func (m *MockEscrowRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.EscrowContract, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.locks.lock(tx, "escrow:"+id)
	return m.GetByID(ctx, id)
}

func (m *MockEscrowRepository) Update(ctx context.Context, tx usecase.Transaction, contract *domain.EscrowContract) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, contract)
	}
	cp := copyContract(contract)
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.contracts[cp.ID] = cp
	})
	return nil
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	cp := *event
	stage(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events = append(m.events, &cp)
	})
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			matched = append(matched, e)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// EventsOfType returns committed events with the given type.
func (m *MockOutboxRepository) EventsOfType(eventType string) []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyPending)
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func page(ids []string, limit, offset int) []string {
	if offset >= len(ids) {
		return nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return ids[offset:end]
}

func copyEntry(e *domain.JournalEntry) *domain.JournalEntry {
	cp := *e
	cp.Lines = make([]*domain.JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		lc := *l
		cp.Lines[i] = &lc
	}
	return &cp
}

func copyProposal(p *domain.SignatureProposal) *domain.SignatureProposal {
	cp := *p
	cp.Signatures = append([]domain.Signature(nil), p.Signatures...)
	return &cp
}

func copyContract(c *domain.EscrowContract) *domain.EscrowContract {
	cp := *c
	cp.Milestones = make([]*domain.Milestone, len(c.Milestones))
	for i, ms := range c.Milestones {
		mc := *ms
		cp.Milestones[i] = &mc
	}
	return &cp
}
