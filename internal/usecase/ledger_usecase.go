package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
)

// LedgerUseCase handles ledger lifecycle and the read side: balances,
// balance sheets, journal listing and chain verification.
type LedgerUseCase struct {
	txManager   TransactionManager
	entityRepo  EntityRepository
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
	logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. cache may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	entityRepo EntityRepository,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		entityRepo:  entityRepo,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
		logger:      logger,
	}
}

const (
	openingLabel = "opening"
	closingLabel = "closing"
)

// OpenLedgerInput represents input for opening a ledger.
type OpenLedgerInput struct {
	EntityID    string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// OpenLedger creates a PENDING ledger for [PeriodStart, PeriodEnd). The
// opening hash fingerprints the entity's balances at open time and seeds
// the event chain.
func (uc *LedgerUseCase) OpenLedger(ctx context.Context, input OpenLedgerInput) (*domain.Ledger, error) {
	if err := domain.ValidatePeriod(input.PeriodStart, input.PeriodEnd); err != nil {
		return nil, err
	}

	if _, err := uc.entityRepo.GetByID(ctx, input.EntityID); err != nil {
		return nil, err
	}

	balances, err := uc.accountRepo.BalancesByEntity(ctx, nil, input.EntityID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	openingHash := domain.ComputeBalanceHash(input.EntityID, openingLabel, balances)

	ledger := &domain.Ledger{
		ID:                 uc.idGen.Generate(),
		EntityID:           input.EntityID,
		PeriodStart:        input.PeriodStart.UTC(),
		PeriodEnd:          input.PeriodEnd.UTC(),
		OpeningBalanceHash: openingHash,
		HeadHash:           openingHash,
		Status:             domain.LedgerStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := uc.ledgerRepo.Create(ctx, ledger); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("ledger_id", ledger.ID).
		Str("entity_id", ledger.EntityID).
		Str("opening_hash", openingHash).
		Msg("ledger opened")

	return ledger, nil
}

// GetLedger retrieves a ledger by ID.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, id string) (*domain.Ledger, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// LockLedger closes a ledger. The ledger row lock excludes concurrent
// postings while the closing hash is computed.
func (uc *LedgerUseCase) LockLedger(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ledger, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, ledgerID)
	if err != nil {
		return nil, err
	}

	if ledger.IsLocked() {
		return nil, domain.ErrLedgerLocked
	}

	balances, err := uc.accountRepo.BalancesByEntity(ctx, tx, ledger.EntityID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	closingHash := domain.ComputeBalanceHash(ledger.EntityID, closingLabel, balances)

	if err := ledger.Lock(closingHash, now); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.Lock(ctx, tx, ledger); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   ledger.ID,
		AggregateType: domain.AggregateTypeLedger,
		EventType:     domain.EventLedgerLocked,
		Payload: map[string]any{
			"ledger_id":            ledger.ID,
			"closing_balance_hash": closingHash,
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().Str("ledger_id", ledger.ID).Str("closing_hash", closingHash).Msg("ledger locked")

	return ledger, nil
}

// GetAccountBalance returns the derived balance of an account, from cache when available.
func (uc *LedgerUseCase) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	key := balanceCacheKey(accountID)

	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, key); err == nil {
			var cached domain.AccountBalance
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	balance, err := uc.accountRepo.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(balance); err == nil {
			if err := uc.cache.Set(ctx, key, string(raw), BalanceCacheTTL); err != nil {
				uc.logger.Debug().Err(err).Str("account_id", accountID).Msg("balance cache write failed")
			}
		}
	}

	return balance, nil
}

// BalanceSheetLine is one account's contribution to a balance sheet.
type BalanceSheetLine struct {
	AccountID string
	Name      string
	Type      domain.AccountType
	Currency  string
	Balance   decimal.Decimal
}

// BalanceSheet is a structured snapshot of an entity's position.
type BalanceSheet struct {
	EntityID         string
	Totals           map[domain.AccountType]decimal.Decimal
	Lines            []BalanceSheetLine
	RetainedEarnings decimal.Decimal
	// Balanced is Assets == Liabilities + Equity + (Revenue - Expense).
	Balanced    bool
	GeneratedAt time.Time
}

// BalanceSheet derives per-type totals and checks the accounting identity.
func (uc *LedgerUseCase) BalanceSheet(ctx context.Context, entityID string) (*BalanceSheet, error) {
	if _, err := uc.entityRepo.GetByID(ctx, entityID); err != nil {
		return nil, err
	}

	balances, err := uc.accountRepo.BalancesByEntity(ctx, nil, entityID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(balances))
	for offset := 0; ; offset += chainPageSize {
		accounts, err := uc.accountRepo.ListByEntity(ctx, entityID, chainPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			names[a.ID] = a.Name
		}
		if len(accounts) < chainPageSize {
			break
		}
	}

	sheet := &BalanceSheet{
		EntityID:    entityID,
		Totals:      make(map[domain.AccountType]decimal.Decimal, len(domain.AccountTypes)),
		Lines:       make([]BalanceSheetLine, 0, len(balances)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, t := range domain.AccountTypes {
		sheet.Totals[t] = decimal.Zero
	}

	for _, b := range balances {
		amount := b.Balance()
		sheet.Totals[b.Type] = sheet.Totals[b.Type].Add(amount)
		sheet.Lines = append(sheet.Lines, BalanceSheetLine{
			AccountID: b.AccountID,
			Name:      names[b.AccountID],
			Type:      b.Type,
			Currency:  b.Currency,
			Balance:   amount,
		})
	}

	sheet.RetainedEarnings = sheet.Totals[domain.AccountTypeRevenue].Sub(sheet.Totals[domain.AccountTypeExpense])
	claims := sheet.Totals[domain.AccountTypeLiability].
		Add(sheet.Totals[domain.AccountTypeEquity]).
		Add(sheet.RetainedEarnings)
	sheet.Balanced = sheet.Totals[domain.AccountTypeAsset].Equal(claims)

	return sheet, nil
}

// ChainVerification is the result of re-deriving a ledger's event chain.
type ChainVerification struct {
	LedgerID string
	Events   int
	HeadHash string
	Valid    bool
	// FailedEventID and Reason are set when Valid is false.
	FailedEventID string
	Reason        string
}

// VerifyChain re-derives every event hash in posting order and checks that
// each event links to its predecessor and the last one matches the head.
func (uc *LedgerUseCase) VerifyChain(ctx context.Context, ledgerID string) (*ChainVerification, error) {
	ledger, err := uc.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	events, err := uc.journalRepo.ListEvents(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	linesByEvent := make(map[string][]*domain.JournalLine, len(events))
	for offset := 0; ; offset += chainPageSize {
		entries, err := uc.journalRepo.ListByLedger(ctx, ledgerID, chainPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			linesByEvent[e.EventID] = e.Lines
		}
		if len(entries) < chainPageSize {
			break
		}
	}

	result := &ChainVerification{
		LedgerID: ledger.ID,
		Events:   len(events),
		HeadHash: ledger.HeadHash,
		Valid:    true,
	}

	prev := ledger.OpeningBalanceHash
	for _, evt := range events {
		if evt.PreviousHash != prev {
			result.fail(evt.ID, "previous hash does not link to the prior event")
			break
		}

		if got := domain.ComputeEventHash(evt, linesByEvent[evt.ID]); got != evt.EventHash {
			result.fail(evt.ID, fmt.Sprintf("event hash mismatch: stored %s, derived %s", evt.EventHash, got))
			break
		}

		prev = evt.EventHash
	}

	if result.Valid && prev != ledger.HeadHash {
		result.fail("", "ledger head does not match the last event")
	}

	if !result.Valid {
		uc.logger.Error().
			Str("ledger_id", ledger.ID).
			Str("event_id", result.FailedEventID).
			Str("reason", result.Reason).
			Msg("event chain verification failed")
	}

	return result, nil
}

func (v *ChainVerification) fail(eventID, reason string) {
	v.Valid = false
	v.FailedEventID = eventID
	v.Reason = reason
}

// Err returns ErrChainVerification when the chain is broken.
func (v *ChainVerification) Err() error {
	if v.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrChainVerification, v.Reason)
}

// ListJournalEntries returns the posted-entry stream of a ledger.
func (uc *LedgerUseCase) ListJournalEntries(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.JournalEntry, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ledgerID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.journalRepo.ListByLedger(ctx, ledgerID, limit, offset)
}

// GetJournalEntry retrieves one journal entry with its lines.
func (uc *LedgerUseCase) GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetByID(ctx, id)
}
