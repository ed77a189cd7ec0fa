package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/governance"
)

// JournalPoster posts approved journal entries.
type JournalPoster interface {
	Post(ctx context.Context, input PostInput) (*PostResult, error)
}

// GovernanceUseCase runs proposals through the gate chain and posts the
// approved ones. The transaction engine is never invoked for a rejection.
type GovernanceUseCase struct {
	chain       Evaluator
	signals     SignalProvider
	poster      JournalPoster
	txManager   TransactionManager
	entityRepo  EntityRepository
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	recorder    Recorder
	logger      zerolog.Logger
}

// NewGovernanceUseCase creates a new GovernanceUseCase. recorder may be nil.
func NewGovernanceUseCase(
	chain Evaluator,
	signals SignalProvider,
	poster JournalPoster,
	txManager TransactionManager,
	entityRepo EntityRepository,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	recorder Recorder,
	logger zerolog.Logger,
) *GovernanceUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &GovernanceUseCase{
		chain:       chain,
		signals:     signals,
		poster:      poster,
		txManager:   txManager,
		entityRepo:  entityRepo,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		recorder:    recorder,
		logger:      logger,
	}
}

// Decision is the structured outcome of a governance review.
type Decision struct {
	ProposalID string
	Verdict    domain.Verdict
	Signals    governance.Signals
	// Posting is set only when the proposal was approved and posted.
	Posting *PostResult
}

// Evaluate runs the gate chain without posting.
func (uc *GovernanceUseCase) Evaluate(ctx context.Context, p *domain.Proposal) (*Decision, error) {
	if err := validateProposal(p); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = uc.idGen.Generate()
	}

	ledger, err := uc.ledgerRepo.GetByID(ctx, p.LedgerID)
	if err != nil {
		return nil, err
	}

	req, err := uc.signalRequest(ctx, ledger, p)
	if err != nil {
		return nil, err
	}

	signals, err := uc.signals.Signals(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("gather signals: %w", err)
	}

	verdict, err := uc.chain.Evaluate(ctx, p, signals)
	if err != nil {
		return nil, fmt.Errorf("evaluate gates: %w", err)
	}

	uc.recorder.GovernanceVerdict(verdict)

	return &Decision{ProposalID: p.ID, Verdict: verdict, Signals: signals}, nil
}

// Submit evaluates a proposal and, on approval, posts it as a two-line
// entry that spends the referenced vault proposal. A rejection is recorded in the outbox and returned as a
// *domain.GovernanceRejectedError alongside the decision.
func (uc *GovernanceUseCase) Submit(ctx context.Context, p *domain.Proposal) (*Decision, error) {
	decision, err := uc.Evaluate(ctx, p)
	if err != nil {
		return nil, err
	}

	if !decision.Verdict.Approved() {
		uc.recordRejection(ctx, p, decision.Verdict)
		return decision, decision.Verdict.Err()
	}

	result, err := uc.poster.Post(ctx, PostInput{
		LedgerID: p.LedgerID,
		Lines: []PostLine{
			{AccountID: p.DebitAccountID, Debit: p.Amount, Credit: decimal.Zero, Currency: p.Currency, RiskTag: strings.Join(p.RiskTags, ",")},
			{AccountID: p.CreditAccountID, Debit: decimal.Zero, Credit: p.Amount, Currency: p.Currency, RiskTag: strings.Join(p.RiskTags, ",")},
		},
		Metadata: PostMetadata{
			EventType:          p.ResolvedEventType(),
			SourceSystem:       p.SourceSystem,
			DecisionReference:  decisionReference(p),
			AuthoritySignature: p.VaultProposalID,
			CreatedBy:          p.SubmittedBy,
			ApprovedBy:         string(domain.VerdictApproved),
			ApprovalStatus:     domain.ApprovalStatusGovernance,
		},
		authorization: p.VaultProposalID,
	})
	if err != nil {
		return decision, err
	}

	decision.Posting = result

	uc.logger.Info().
		Str("proposal_id", p.ID).
		Str("journal_id", result.Entry.ID).
		Str("flow", string(p.FlowType)).
		Str("amount", p.Amount.String()).
		Msg("proposal approved and posted")

	return decision, nil
}

func (uc *GovernanceUseCase) signalRequest(ctx context.Context, ledger *domain.Ledger, p *domain.Proposal) (governance.SignalRequest, error) {
	entity, err := uc.entityRepo.GetByID(ctx, ledger.EntityID)
	if err != nil {
		return governance.SignalRequest{}, err
	}

	balances, err := uc.accountRepo.BalancesByEntity(ctx, nil, entity.ID)
	if err != nil {
		return governance.SignalRequest{}, err
	}

	capital := decimal.Zero
	for _, b := range balances {
		if b.Type == domain.AccountTypeAsset {
			capital = capital.Add(b.Balance())
		}
	}

	jurisdiction := p.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = entity.Jurisdiction
	}

	return governance.SignalRequest{
		EntityID:        entity.ID,
		Jurisdiction:    jurisdiction,
		Capital:         capital.InexactFloat64(),
		CapitalMobility: p.CapitalMobility,
		Headlines:       p.Headlines,
	}, nil
}

// recordRejection writes the audit record. Failing to write it does not
// change the verdict.
func (uc *GovernanceUseCase) recordRejection(ctx context.Context, p *domain.Proposal, verdict domain.Verdict) {
	codes := make([]string, len(verdict.Reasons))
	for i, r := range verdict.Reasons {
		codes[i] = r.Code
	}

	uc.logger.Warn().
		Str("proposal_id", p.ID).
		Str("flow", string(p.FlowType)).
		Str("amount", p.Amount.String()).
		Strs("codes", codes).
		Msg("proposal rejected by governance")

	reasons := make([]map[string]any, len(verdict.Reasons))
	for i, r := range verdict.Reasons {
		reasons[i] = map[string]any{
			"gate":      string(r.Gate),
			"code":      r.Code,
			"principle": r.Principle,
			"message":   r.Message,
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   p.ID,
		AggregateType: domain.AggregateTypeProposal,
		EventType:     domain.EventGovernanceRejected,
		Payload: map[string]any{
			"proposal_id": p.ID,
			"ledger_id":   p.LedgerID,
			"flow_type":   string(p.FlowType),
			"amount":      p.Amount.String(),
			"reasons":     reasons,
		},
		CreatedAt: time.Now().UTC(),
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		uc.logger.Error().Err(err).Str("proposal_id", p.ID).Msg("failed to record rejection")
		return
	}
	defer tx.Rollback(ctx)

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		uc.logger.Error().Err(err).Str("proposal_id", p.ID).Msg("failed to record rejection")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		uc.logger.Error().Err(err).Str("proposal_id", p.ID).Msg("failed to record rejection")
	}
}

func validateProposal(p *domain.Proposal) error {
	if !p.FlowType.IsValid() {
		return fmt.Errorf("%w: flow type %q", domain.ErrInvalidEventType, p.FlowType)
	}

	if p.EventType != "" && !p.EventType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEventType, p.EventType)
	}

	if err := domain.ValidatePositiveMoney(p.Amount); err != nil {
		return err
	}

	if p.DebitAccountID == "" || p.CreditAccountID == "" {
		return fmt.Errorf("%w: debit and credit accounts are required", domain.ErrInvalidLine)
	}

	p.Currency = domain.NormalizeCurrency(p.Currency)

	return domain.ValidateCurrency(p.Currency)
}

func decisionReference(p *domain.Proposal) string {
	if p.DecisionReference != "" {
		return p.DecisionReference
	}
	return p.ID
}
