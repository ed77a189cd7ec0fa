package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/governance"
)

// PostingUseCase is the transaction engine. It posts balanced journal
// entries atomically and extends the ledger's event hash chain.
type PostingUseCase struct {
	txManager   TransactionManager
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	vaultRepo   VaultRepository
	idGen       IDGenerator
	retrier     Retrier
	cache       Cache
	recorder    Recorder
	logger      zerolog.Logger
	now         func() time.Time
}

// PostingOption configures optional PostingUseCase collaborators.
type PostingOption func(*PostingUseCase)

// WithRetrier retries the whole posting unit on transient storage errors.
func WithRetrier(r Retrier) PostingOption {
	return func(uc *PostingUseCase) { uc.retrier = r }
}

// WithAuthorizations lets governed postings spend their vault proposal in
// the posting transaction. Without it governed postings fail.
func WithAuthorizations(vaults VaultRepository) PostingOption {
	return func(uc *PostingUseCase) { uc.vaultRepo = vaults }
}

// WithBalanceCache invalidates cached balances after each commit.
func WithBalanceCache(c Cache) PostingOption {
	return func(uc *PostingUseCase) { uc.cache = c }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) PostingOption {
	return func(uc *PostingUseCase) { uc.recorder = r }
}

// WithClock overrides the clock used for event timestamps.
func WithClock(now func() time.Time) PostingOption {
	return func(uc *PostingUseCase) { uc.now = now }
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	opts ...PostingOption,
) *PostingUseCase {
	uc := &PostingUseCase{
		txManager:   txManager,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		recorder:    NopRecorder{},
		logger:      logger,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// PostLine is one requested account movement.
type PostLine struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Currency  string
	RiskTag   string
	FXRateRef string
}

// PostMetadata describes the authorization behind a posting.
type PostMetadata struct {
	EventType          domain.EventType
	SourceSystem       string
	DecisionReference  string
	AuthoritySignature string
	CreatedBy          string
	ApprovedBy         string
	ApprovalStatus     domain.ApprovalStatus
}

// PostInput represents input for posting a journal entry.
type PostInput struct {
	LedgerID string
	Lines    []PostLine
	Metadata PostMetadata

	reversalOf string
	// authorization is the executed vault proposal spent by a governed
	// posting. Only GovernanceUseCase sets it.
	authorization string
}

// PostResult is a committed journal entry together with its event.
type PostResult struct {
	Entry *domain.JournalEntry
	Event *domain.TransactionEvent
}

// Post validates and commits a journal entry. Nothing is persisted unless
// every check passes.
func (uc *PostingUseCase) Post(ctx context.Context, input PostInput) (*PostResult, error) {
	start := time.Now()

	// 0. Validate line shape before opening a transaction
	if !input.Metadata.EventType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidEventType, input.Metadata.EventType)
	}

	if input.Metadata.ApprovalStatus == "" {
		input.Metadata.ApprovalStatus = domain.ApprovalStatusSystem
	}

	if err := checkAuthority(input); err != nil {
		uc.recorder.PostingFailed(failureReason(err))
		return nil, err
	}

	lines, err := buildLines(input.Lines)
	if err != nil {
		uc.recorder.PostingFailed(failureReason(err))
		return nil, err
	}

	var result *PostResult

	operation := func() error {
		r, err := uc.post(ctx, input, lines)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}

	if err != nil {
		uc.recorder.PostingFailed(failureReason(err))
		uc.logger.Warn().Err(err).Str("ledger_id", input.LedgerID).Msg("posting rejected")
		return nil, err
	}

	uc.invalidateBalances(ctx, lines)
	uc.recorder.JournalPosted(result.Entry.TransactionType, result.Entry.TotalDebit, time.Since(start))

	uc.logger.Info().
		Str("journal_id", result.Entry.ID).
		Str("ledger_id", result.Entry.LedgerID).
		Str("event_type", string(result.Entry.TransactionType)).
		Str("event_hash", result.Event.EventHash).
		Str("total", result.Entry.TotalDebit.String()).
		Msg("journal entry posted")

	return result, nil
}

func (uc *PostingUseCase) post(ctx context.Context, input PostInput, lines []*domain.JournalLine) (*PostResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	// 1. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 2. Lock the ledger row; postings to one ledger are serialized here
	ledger, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, input.LedgerID)
	if err != nil {
		return nil, err
	}

	if ledger.IsLocked() {
		return nil, domain.ErrLedgerLocked
	}

	total, err := domain.CheckBalanced(lines)
	if err != nil {
		return nil, err
	}

	// 3. Every account must exist, be active and belong to the ledger's entity
	if err := uc.checkAccounts(ctx, tx, ledger.EntityID, lines); err != nil {
		return nil, err
	}

	if input.reversalOf != "" {
		reversed, err := uc.journalRepo.IsReversed(ctx, tx, input.reversalOf)
		if err != nil {
			return nil, err
		}
		if reversed {
			return nil, domain.ErrAlreadyReversed
		}
	}

	// 4. Chain the event to the ledger head. Microsecond precision survives a
	// round trip through the database so the hash can be re-derived.
	now := uc.now().UTC().Truncate(time.Microsecond)

	event := &domain.TransactionEvent{
		ID:                     uc.idGen.Generate(),
		LedgerID:               ledger.ID,
		Type:                   input.Metadata.EventType,
		SourceSystem:           input.Metadata.SourceSystem,
		DecisionReference:      input.Metadata.DecisionReference,
		AuthoritySignatureHash: domain.HashAuthority(input.Metadata.AuthoritySignature),
		Timestamp:              now,
		PreviousHash:           ledger.HeadHash,
	}
	event.EventHash = domain.ComputeEventHash(event, lines)

	entry := &domain.JournalEntry{
		ID:              uc.idGen.Generate(),
		LedgerID:        ledger.ID,
		EventID:         event.ID,
		TransactionType: input.Metadata.EventType,
		ApprovalStatus:  input.Metadata.ApprovalStatus,
		TotalDebit:      total,
		TotalCredit:     total,
		CreatedBy:       input.Metadata.CreatedBy,
		ApprovedBy:      input.Metadata.ApprovedBy,
		ReversalOf:      input.reversalOf,
		CreatedAt:       now,
		Lines:           lines,
	}

	for _, l := range lines {
		l.ID = uc.idGen.Generate()
		l.JournalID = entry.ID
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	// 5. Persist event, entry, lines, head and outbox in one transaction
	if err := uc.journalRepo.CreateEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.journalRepo.CreateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if input.authorization != "" {
		if err := uc.consumeAuthorization(ctx, tx, input.authorization, entry, now); err != nil {
			return nil, err
		}
	}

	if err := uc.ledgerRepo.UpdateHead(ctx, tx, ledger.ID, event.EventHash, now); err != nil {
		return nil, err
	}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeJournal,
		EventType:     domain.EventJournalPosted,
		Payload: map[string]any{
			"journal_id":       entry.ID,
			"ledger_id":        ledger.ID,
			"event_id":         event.ID,
			"event_hash":       event.EventHash,
			"transaction_type": string(entry.TransactionType),
			"total":            total.String(),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, outboxEvent); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &PostResult{Entry: entry, Event: event}, nil
}

// Reverse posts a mirror of journalID with debits and credits swapped. An
// entry can be reversed once.
func (uc *PostingUseCase) Reverse(ctx context.Context, journalID, actor string) (*PostResult, error) {
	original, err := uc.journalRepo.GetByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	mirrored := domain.Mirror(original.Lines)
	lines := make([]PostLine, len(mirrored))
	for i, l := range mirrored {
		lines[i] = PostLine{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Currency:  l.Currency,
			RiskTag:   l.RiskTag,
			FXRateRef: l.FXRateRef,
		}
	}

	return uc.Post(ctx, PostInput{
		LedgerID: original.LedgerID,
		Lines:    lines,
		Metadata: PostMetadata{
			EventType:         domain.EventTypeReversal,
			SourceSystem:      ReversalSourceSystem,
			DecisionReference: original.ID,
			CreatedBy:         actor,
			ApprovedBy:        actor,
			ApprovalStatus:    domain.ApprovalStatusSystem,
		},
		reversalOf: original.ID,
	})
}

// checkAuthority keeps capital movements on the governance path. Reversals
// only come from Reverse.
func checkAuthority(input PostInput) error {
	t := input.Metadata.EventType

	if t == domain.EventTypeReversal && input.reversalOf == "" {
		return fmt.Errorf("%w: %s entries are posted by reversing a journal entry", domain.ErrInvalidEventType, t)
	}

	if t.RequiresGovernance() &&
		(input.authorization == "" || input.Metadata.ApprovalStatus != domain.ApprovalStatusGovernance) {
		return fmt.Errorf("%w: %s", domain.ErrGovernanceRequired, t)
	}

	return nil
}

// consumeAuthorization spends the vault proposal behind a governed entry.
// The proposal row lock makes a concurrent second use fail here even when
// both submissions passed the quorum gate.
func (uc *PostingUseCase) consumeAuthorization(ctx context.Context, tx Transaction, vaultID string, entry *domain.JournalEntry, now time.Time) error {
	if uc.vaultRepo == nil {
		return errors.New("posting: governed entries require a vault repository")
	}

	proposal, err := uc.vaultRepo.GetByIDForUpdate(ctx, tx, vaultID)
	if errors.Is(err, domain.ErrProposalNotFound) {
		return quorumRejection(fmt.Sprintf("vault proposal %s does not exist", vaultID))
	}
	if err != nil {
		return err
	}

	if msg := proposal.QuorumStatus().Authorizes(entry.TotalDebit, debitDestination(entry.Lines)); msg != "" {
		return quorumRejection(msg)
	}

	proposal.Consume(entry.ID, now)

	return uc.vaultRepo.Update(ctx, tx, proposal)
}

func quorumRejection(msg string) error {
	return &domain.GovernanceRejectedError{Reasons: []domain.Reason{{
		Gate:    domain.GateQuorum,
		Code:    governance.CodeQuorumNotMet,
		Message: msg,
	}}}
}

// debitDestination returns the account receiving the entry's debit.
func debitDestination(lines []*domain.JournalLine) string {
	for _, l := range lines {
		if l.Debit.IsPositive() {
			return l.AccountID
		}
	}
	return ""
}

func (uc *PostingUseCase) checkAccounts(ctx context.Context, tx Transaction, entityID string, lines []*domain.JournalLine) error {
	ids := collectAccountIDs(lines)

	accounts, err := uc.accountRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	for _, l := range lines {
		account, ok := byID[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, l.AccountID)
		}

		if err := account.ValidatePosting(entityID, l.Currency); err != nil {
			return fmt.Errorf("account %s: %w", account.ID, err)
		}
	}

	return nil
}

func (uc *PostingUseCase) invalidateBalances(ctx context.Context, lines []*domain.JournalLine) {
	if uc.cache == nil {
		return
	}

	for _, id := range collectAccountIDs(lines) {
		if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
			uc.logger.Warn().Err(err).Str("account_id", id).Msg("failed to invalidate balance cache")
		}
	}
}

func buildLines(in []PostLine) ([]*domain.JournalLine, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: entry has no lines", domain.ErrInvalidLine)
	}

	lines := make([]*domain.JournalLine, len(in))
	for i, l := range in {
		line := &domain.JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Currency:  domain.NormalizeCurrency(l.Currency),
			RiskTag:   l.RiskTag,
			FXRateRef: l.FXRateRef,
		}

		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}

		lines[i] = line
	}

	return lines, nil
}

// collectAccountIDs returns the distinct account IDs in sorted order.
func collectAccountIDs(lines []*domain.JournalLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))

	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}

	sort.Strings(ids)

	return ids
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrImbalancedEntry):
		return "imbalanced"
	case errors.Is(err, domain.ErrLedgerLocked):
		return "ledger_locked"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidLine), errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge), errors.Is(err, domain.ErrInvalidCurrency):
		return "invalid_line"
	case errors.Is(err, domain.ErrAccountInactive), errors.Is(err, domain.ErrAccountMismatch),
		errors.Is(err, domain.ErrCurrencyMismatch):
		return "account"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return "already_reversed"
	case errors.Is(err, domain.ErrGovernanceRejected), errors.Is(err, domain.ErrGovernanceRequired):
		return "governance"
	default:
		return "internal"
	}
}
