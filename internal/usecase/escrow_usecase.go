package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
)

// EscrowRiskTag marks proposals emitted by milestone releases.
const EscrowRiskTag = "ESCROW_RELEASE"

// ProposalSubmitter submits proposals for governance review.
type ProposalSubmitter interface {
	Submit(ctx context.Context, p *domain.Proposal) (*Decision, error)
}

// EscrowUseCase manages milestone-based escrow contracts.
type EscrowUseCase struct {
	txManager   TransactionManager
	escrowRepo  EscrowRepository
	ledgerRepo  LedgerRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	governance  ProposalSubmitter
	idGen       IDGenerator
	recorder    Recorder
	logger      zerolog.Logger
}

// NewEscrowUseCase creates a new EscrowUseCase. recorder may be nil.
func NewEscrowUseCase(
	txManager TransactionManager,
	escrowRepo EscrowRepository,
	ledgerRepo LedgerRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	governance ProposalSubmitter,
	idGen IDGenerator,
	recorder Recorder,
	logger zerolog.Logger,
) *EscrowUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &EscrowUseCase{
		txManager:   txManager,
		escrowRepo:  escrowRepo,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		governance:  governance,
		idGen:       idGen,
		recorder:    recorder,
		logger:      logger,
	}
}

// CreateContractInput represents input for creating an escrow contract.
type CreateContractInput struct {
	ProjectName      string
	TotalBudget      decimal.Decimal
	LedgerID         string
	FundingAccountID string
	PayoutAccountID  string
}

// CreateContract locks the whole budget. The currency is taken from the
// funding account.
func (uc *EscrowUseCase) CreateContract(ctx context.Context, input CreateContractInput) (*domain.EscrowContract, error) {
	if err := domain.ValidateName(input.ProjectName); err != nil {
		return nil, err
	}

	if err := domain.ValidatePositiveMoney(input.TotalBudget); err != nil {
		return nil, err
	}

	ledger, err := uc.ledgerRepo.GetByID(ctx, input.LedgerID)
	if err != nil {
		return nil, err
	}

	funding, err := uc.accountRepo.GetByID(ctx, input.FundingAccountID)
	if err != nil {
		return nil, err
	}

	payout, err := uc.accountRepo.GetByID(ctx, input.PayoutAccountID)
	if err != nil {
		return nil, err
	}

	for _, a := range []*domain.Account{funding, payout} {
		if a.EntityID != ledger.EntityID {
			return nil, fmt.Errorf("account %s: %w", a.ID, domain.ErrAccountMismatch)
		}
	}

	if funding.Currency != payout.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	now := time.Now().UTC()

	contract := &domain.EscrowContract{
		ID:               uc.idGen.Generate(),
		ProjectName:      input.ProjectName,
		TotalBudget:      input.TotalBudget,
		LockedFunds:      input.TotalBudget,
		ReleasedFunds:    decimal.Zero,
		Currency:         funding.Currency,
		LedgerID:         ledger.ID,
		FundingAccountID: funding.ID,
		PayoutAccountID:  payout.ID,
		Milestones:       []*domain.Milestone{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.escrowRepo.Create(ctx, contract); err != nil {
		return nil, err
	}

	return contract, nil
}

// Get retrieves a contract with its milestones.
func (uc *EscrowUseCase) Get(ctx context.Context, id string) (*domain.EscrowContract, error) {
	return uc.escrowRepo.GetByID(ctx, id)
}

// DefineMilestone appends a milestone. Cumulative percentages above 100 are rejected.
func (uc *EscrowUseCase) DefineMilestone(ctx context.Context, contractID, phase string, percentage decimal.Decimal) (*domain.Milestone, error) {
	if err := domain.ValidateName(phase); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := uc.escrowRepo.GetByIDForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}

	milestone, err := contract.DefineMilestone(phase, percentage, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uc.escrowRepo.Update(ctx, tx, contract); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return milestone, nil
}

// ReleaseInput represents an auditor's verification of a milestone.
type ReleaseInput struct {
	ContractID      string
	Index           int
	Auditor         string
	ProofHash       string
	VaultProposalID string
	Jurisdiction    string
	Headlines       []string
}

// ReleaseResult carries the escrow state after release and the outcome of
// the gated OUTFLOW proposal.
type ReleaseResult struct {
	Contract  *domain.EscrowContract
	Milestone *domain.Milestone
	Decision  *Decision
	// GovernanceErr is the error returned by governance, typically a
	// *domain.GovernanceRejectedError. It does not undo the release.
	GovernanceErr error
}

// VerifyAndRelease flips a milestone to RELEASED and moves its allocation
// from locked to released funds, then submits the payout as an OUTFLOW
// proposal. Releasing twice fails with ErrAlreadyReleased and leaves funds
// unchanged.
func (uc *EscrowUseCase) VerifyAndRelease(ctx context.Context, input ReleaseInput) (*ReleaseResult, error) {
	contract, milestone, err := uc.release(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.recorder.EscrowReleased(milestone.Allocation)

	uc.logger.Info().
		Str("contract_id", contract.ID).
		Int("milestone", milestone.Index).
		Str("amount", milestone.Allocation.String()).
		Str("locked", contract.LockedFunds.String()).
		Str("released", contract.ReleasedFunds.String()).
		Msg("escrow milestone released")

	proposal := &domain.Proposal{
		ID:                uc.idGen.Generate(),
		FlowType:          domain.FlowTypeOutflow,
		EventType:         domain.EventTypeEscrowRelease,
		LedgerID:          contract.LedgerID,
		DebitAccountID:    contract.PayoutAccountID,
		CreditAccountID:   contract.FundingAccountID,
		Amount:            milestone.Allocation,
		Currency:          contract.Currency,
		RiskTags:          []string{EscrowRiskTag},
		VaultProposalID:   input.VaultProposalID,
		DecisionReference: fmt.Sprintf("%s/%d", contract.ID, milestone.Index),
		SourceSystem:      EscrowSourceSystem,
		Jurisdiction:      input.Jurisdiction,
		Headlines:         input.Headlines,
		SubmittedBy:       input.Auditor,
	}

	decision, err := uc.governance.Submit(ctx, proposal)
	if err != nil {
		uc.logger.Warn().Err(err).Str("contract_id", contract.ID).Int("milestone", milestone.Index).
			Msg("escrow payout not posted")
	}

	return &ReleaseResult{
		Contract:      contract,
		Milestone:     milestone,
		Decision:      decision,
		GovernanceErr: err,
	}, nil
}

func (uc *EscrowUseCase) release(ctx context.Context, input ReleaseInput) (*domain.EscrowContract, *domain.Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := uc.escrowRepo.GetByIDForUpdate(ctx, tx, input.ContractID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()

	milestone, err := contract.Release(input.Index, input.Auditor, input.ProofHash, now)
	if err != nil {
		return nil, nil, err
	}

	if err := uc.escrowRepo.Update(ctx, tx, contract); err != nil {
		return nil, nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   contract.ID,
		AggregateType: domain.AggregateTypeEscrow,
		EventType:     domain.EventEscrowReleased,
		Payload: map[string]any{
			"contract_id": contract.ID,
			"milestone":   milestone.Index,
			"amount":      milestone.Allocation.String(),
			"auditor":     input.Auditor,
			"proof_hash":  input.ProofHash,
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return contract, milestone, nil
}
