package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/governance"
	"github.com/iho/govledger/internal/usecase"
	"github.com/iho/govledger/internal/usecase/mocks"
)

// newBridgeContract funds a 2.5B contract split 30/40/30.
func newBridgeContract(t *testing.T, f *fixture, b *books) *domain.EscrowContract {
	t.Helper()
	ctx := context.Background()

	contract, err := f.escrowUC.CreateContract(ctx, usecase.CreateContractInput{
		ProjectName:      "Bridge",
		TotalBudget:      amount(2_500_000_000),
		LedgerID:         b.ledger.ID,
		FundingAccountID: b.cash.ID,
		PayoutAccountID:  b.expense.ID,
	})
	require.NoError(t, err)

	for _, m := range []struct {
		phase string
		pct   int64
	}{{"Foundation", 30}, {"Structure", 40}, {"Finishing", 30}} {
		_, err := f.escrowUC.DefineMilestone(ctx, contract.ID, m.phase, decimal.NewFromInt(m.pct))
		require.NoError(t, err)
	}

	contract, err = f.escrowUC.Get(ctx, contract.ID)
	require.NoError(t, err)

	return contract
}

func TestEscrowUseCase_CreateContract(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	other := f.genesis(t)

	contract := newBridgeContract(t, f, b)
	assert.Equal(t, "IDR", contract.Currency)
	assert.True(t, contract.LockedFunds.Equal(amount(2_500_000_000)))
	assert.True(t, contract.ReleasedFunds.IsZero())
	require.Len(t, contract.Milestones, 3)
	assert.True(t, contract.Milestones[0].Allocation.Equal(amount(750_000_000)))
	assert.True(t, contract.Milestones[1].Allocation.Equal(amount(1_000_000_000)))

	tests := []struct {
		name    string
		input   usecase.CreateContractInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   usecase.CreateContractInput{TotalBudget: amount(1), LedgerID: b.ledger.ID, FundingAccountID: b.cash.ID, PayoutAccountID: b.expense.ID},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "zero budget",
			input:   usecase.CreateContractInput{ProjectName: "x", TotalBudget: amount(0), LedgerID: b.ledger.ID, FundingAccountID: b.cash.ID, PayoutAccountID: b.expense.ID},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown ledger",
			input:   usecase.CreateContractInput{ProjectName: "x", TotalBudget: amount(1), LedgerID: "missing", FundingAccountID: b.cash.ID, PayoutAccountID: b.expense.ID},
			wantErr: domain.ErrLedgerNotFound,
		},
		{
			name:    "payout owned by another entity",
			input:   usecase.CreateContractInput{ProjectName: "x", TotalBudget: amount(1), LedgerID: b.ledger.ID, FundingAccountID: b.cash.ID, PayoutAccountID: other.expense.ID},
			wantErr: domain.ErrAccountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.escrowUC.CreateContract(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEscrowUseCase_CreateContract_CurrencyMismatch(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)

	usd, err := f.accountUC.CreateAccount(context.Background(), usecase.CreateAccountInput{
		EntityID: b.entity.ID, Name: "USD Payouts", Type: domain.AccountTypeExpense, Currency: "USD",
	})
	require.NoError(t, err)

	_, err = f.escrowUC.CreateContract(context.Background(), usecase.CreateContractInput{
		ProjectName: "x", TotalBudget: amount(1), LedgerID: b.ledger.ID, FundingAccountID: b.cash.ID, PayoutAccountID: usd.ID,
	})
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestEscrowUseCase_DefineMilestone_Rejections(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	contract := newBridgeContract(t, f, b)
	ctx := context.Background()

	_, err := f.escrowUC.DefineMilestone(ctx, contract.ID, "Extra", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrOverAllocated)

	_, err = f.escrowUC.DefineMilestone(ctx, contract.ID, "Negative", decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidPercentage)

	_, err = f.escrowUC.DefineMilestone(ctx, "missing", "Phase", decimal.NewFromInt(5))
	assert.ErrorIs(t, err, domain.ErrContractNotFound)

	got, err := f.escrowUC.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, got.Milestones, 3)
}

func TestEscrowUseCase_VerifyAndRelease_PostsPayout(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	f.injectCapital(t, b, 10_000_000_000)
	contract := newBridgeContract(t, f, b)
	vault := f.executedVaultProposal(t, 750_000_000, b.expense.ID)
	ctx := context.Background()

	result, err := f.escrowUC.VerifyAndRelease(ctx, usecase.ReleaseInput{
		ContractID:      contract.ID,
		Index:           0,
		Auditor:         "auditor-7",
		ProofHash:       "sha256:foundation-report",
		VaultProposalID: vault.ID,
	})
	require.NoError(t, err)
	require.NoError(t, result.GovernanceErr)

	assert.Equal(t, domain.MilestoneStatusReleased, result.Milestone.Status)
	assert.Equal(t, "auditor-7", result.Milestone.Auditor)
	assert.True(t, result.Contract.LockedFunds.Equal(amount(1_750_000_000)))
	assert.True(t, result.Contract.ReleasedFunds.Equal(amount(750_000_000)))

	require.NotNil(t, result.Decision)
	require.NotNil(t, result.Decision.Posting)
	entry := result.Decision.Posting.Entry
	assert.Equal(t, domain.EventTypeEscrowRelease, entry.TransactionType)
	assert.Equal(t, usecase.EscrowRiskTag, entry.Lines[0].RiskTag)
	assert.Equal(t, contract.ID+"/0", result.Decision.Posting.Event.DecisionReference)
	assert.Equal(t, usecase.EscrowSourceSystem, result.Decision.Posting.Event.SourceSystem)

	assert.True(t, f.balance(t, b.cash.ID).Equal(amount(9_250_000_000)))
	assert.True(t, f.balance(t, b.expense.ID).Equal(amount(750_000_000)))
	assert.Len(t, f.outbox.EventsOfType(domain.EventEscrowReleased), 1)
}

func TestEscrowUseCase_VerifyAndRelease_Twice(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	contract := newBridgeContract(t, f, b)
	ctx := context.Background()

	input := usecase.ReleaseInput{ContractID: contract.ID, Index: 1, Auditor: "a", ProofHash: "p"}

	_, err := f.escrowUC.VerifyAndRelease(ctx, input)
	require.NoError(t, err)

	_, err = f.escrowUC.VerifyAndRelease(ctx, input)
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)

	got, err := f.escrowUC.Get(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, got.LockedFunds.Equal(amount(1_500_000_000)))
	assert.True(t, got.ReleasedFunds.Equal(amount(1_000_000_000)))
	assert.Len(t, f.outbox.EventsOfType(domain.EventEscrowReleased), 1)
}

func TestEscrowUseCase_VerifyAndRelease_InvalidIndex(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	contract := newBridgeContract(t, f, b)

	for _, index := range []int{-1, 3} {
		_, err := f.escrowUC.VerifyAndRelease(context.Background(), usecase.ReleaseInput{ContractID: contract.ID, Index: index})
		assert.ErrorIs(t, err, domain.ErrInvalidIndex)
	}

	_, err := f.escrowUC.VerifyAndRelease(context.Background(), usecase.ReleaseInput{ContractID: "missing"})
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
}

func TestEscrowUseCase_VerifyAndRelease_GovernanceRejectionKeepsRelease(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	f.injectCapital(t, b, 10_000_000_000)
	contract := newBridgeContract(t, f, b)

	// no vault proposal: the quorum gate rejects the payout
	result, err := f.escrowUC.VerifyAndRelease(context.Background(), usecase.ReleaseInput{
		ContractID: contract.ID, Index: 2, Auditor: "a", ProofHash: "p",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, result.GovernanceErr, domain.ErrGovernanceRejected)
	require.NotNil(t, result.Decision)
	assert.Nil(t, result.Decision.Posting)
	assert.Equal(t, domain.MilestoneStatusReleased, result.Milestone.Status)

	assert.True(t, f.balance(t, b.expense.ID).IsZero())
	assert.Len(t, f.outbox.EventsOfType(domain.EventGovernanceRejected), 1)
}

func TestEscrowUseCase_VerifyAndRelease_SubmitsOutflowProposal(t *testing.T) {
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockProposalSubmitter(ctrl)

	f := newFixture(t)
	b := f.genesis(t)
	contract := newBridgeContract(t, f, b)

	uc := usecase.NewEscrowUseCase(f.txMgr, f.escrows, f.ledgers, f.accounts, f.outbox, submitter, f.idGen, nil, zerolog.Nop())

	submitErr := errors.New("signals unavailable")
	submitter.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Proposal) (*usecase.Decision, error) {
			assert.Equal(t, domain.FlowTypeOutflow, p.FlowType)
			assert.Equal(t, domain.EventTypeEscrowRelease, p.EventType)
			assert.Equal(t, b.expense.ID, p.DebitAccountID)
			assert.Equal(t, b.cash.ID, p.CreditAccountID)
			assert.True(t, p.Amount.Equal(amount(1_000_000_000)))
			assert.Equal(t, []string{usecase.EscrowRiskTag}, p.RiskTags)
			assert.Equal(t, "vault-9", p.VaultProposalID)
			assert.Equal(t, "ID-NEUTRAL-ZONE", p.Jurisdiction)
			return nil, submitErr
		})

	result, err := uc.VerifyAndRelease(context.Background(), usecase.ReleaseInput{
		ContractID: contract.ID, Index: 1, Auditor: "a", ProofHash: "p",
		VaultProposalID: "vault-9", Jurisdiction: "ID-NEUTRAL-ZONE",
	})
	require.NoError(t, err)
	assert.ErrorIs(t, result.GovernanceErr, submitErr)
	assert.Nil(t, result.Decision)
}

func TestEscrowUseCase_VerifyAndRelease_UsesGovernanceThresholds(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	f.injectCapital(t, b, 10_000_000_000)

	contract, err := f.escrowUC.CreateContract(context.Background(), usecase.CreateContractInput{
		ProjectName: "Dam", TotalBudget: amount(5_000_000_000), LedgerID: b.ledger.ID,
		FundingAccountID: b.cash.ID, PayoutAccountID: b.expense.ID,
	})
	require.NoError(t, err)
	_, err = f.escrowUC.DefineMilestone(context.Background(), contract.ID, "All", decimal.NewFromInt(100))
	require.NoError(t, err)

	vault := f.executedVaultProposal(t, 5_000_000_000, b.expense.ID)

	result, err := f.escrowUC.VerifyAndRelease(context.Background(), usecase.ReleaseInput{
		ContractID: contract.ID, Index: 0, Auditor: "a", ProofHash: "p", VaultProposalID: vault.ID,
	})
	require.NoError(t, err)

	var rejected *domain.GovernanceRejectedError
	require.True(t, errors.As(result.GovernanceErr, &rejected))
	require.Len(t, rejected.Reasons, 1)
	assert.Equal(t, governance.CodeOutflowLimit, rejected.Reasons[0].Code)
}

func TestEscrowUseCase_VerifyAndRelease_AuthorizationCoversOneMilestone(t *testing.T) {
	f := newFixture(t)
	b := f.genesis(t)
	f.injectCapital(t, b, 10_000_000_000)
	contract := newBridgeContract(t, f, b)
	ctx := context.Background()

	// Foundation and Finishing are both 30% of the budget.
	vault := f.executedVaultProposal(t, 750_000_000, b.expense.ID)

	first, err := f.escrowUC.VerifyAndRelease(ctx, usecase.ReleaseInput{
		ContractID: contract.ID, Index: 0, Auditor: "a", ProofHash: "p0", VaultProposalID: vault.ID,
	})
	require.NoError(t, err)
	require.NoError(t, first.GovernanceErr)

	second, err := f.escrowUC.VerifyAndRelease(ctx, usecase.ReleaseInput{
		ContractID: contract.ID, Index: 2, Auditor: "a", ProofHash: "p2", VaultProposalID: vault.ID,
	})
	require.NoError(t, err)

	var rejected *domain.GovernanceRejectedError
	require.True(t, errors.As(second.GovernanceErr, &rejected))
	require.Len(t, rejected.Reasons, 1)
	assert.Equal(t, governance.CodeQuorumNotMet, rejected.Reasons[0].Code)

	assert.True(t, f.balance(t, b.expense.ID).Equal(amount(750_000_000)))
}
