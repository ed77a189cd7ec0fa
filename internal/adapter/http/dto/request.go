package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/usecase"
)

// CreateEntityRequest represents a request to register a legal entity.
type CreateEntityRequest struct {
	Name                string  `json:"name"`
	ParentID            *string `json:"parent_id,omitempty"`
	Jurisdiction        string  `json:"jurisdiction"`
	RiskAppetiteProfile string  `json:"risk_appetite_profile"`
	CapitalBufferRef    string  `json:"capital_buffer_ref"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntityRequest) ToUseCaseInput() usecase.CreateEntityInput {
	return usecase.CreateEntityInput{
		Name:                r.Name,
		ParentID:            r.ParentID,
		Jurisdiction:        r.Jurisdiction,
		RiskAppetiteProfile: r.RiskAppetiteProfile,
		CapitalBufferRef:    r.CapitalBufferRef,
	}
}

// UpdateEntityStatusRequest changes an entity's lifecycle status.
type UpdateEntityStatusRequest struct {
	Status domain.EntityStatus `json:"status"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	EntityID        string  `json:"entity_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Currency        string  `json:"currency"`
	RiskCategory    string  `json:"risk_category"`
	LiquidityClass  string  `json:"liquidity_class"`
	ParentAccountID *string `json:"parent_account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		EntityID:        r.EntityID,
		Name:            r.Name,
		Type:            domain.AccountType(r.Type),
		Currency:        r.Currency,
		RiskCategory:    r.RiskCategory,
		LiquidityClass:  r.LiquidityClass,
		ParentAccountID: r.ParentAccountID,
	}
}

// OpenLedgerRequest represents a request to open a reporting period.
type OpenLedgerRequest struct {
	EntityID    string    `json:"entity_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenLedgerRequest) ToUseCaseInput() usecase.OpenLedgerInput {
	return usecase.OpenLedgerInput{
		EntityID:    r.EntityID,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
	}
}

// JournalLineRequest is one requested account movement.
type JournalLineRequest struct {
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Currency  string          `json:"currency"`
	RiskTag   string          `json:"risk_tag,omitempty"`
	FXRateRef string          `json:"fx_rate_ref,omitempty"`
}

// PostJournalRequest posts a journal entry without the gate chain.
type PostJournalRequest struct {
	LedgerID           string               `json:"ledger_id"`
	EventType          string               `json:"event_type"`
	SourceSystem       string               `json:"source_system"`
	DecisionReference  string               `json:"decision_reference"`
	AuthoritySignature string               `json:"authority_signature"`
	ApprovedBy         string               `json:"approved_by"`
	Lines              []JournalLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input. createdBy is the caller.
func (r *PostJournalRequest) ToUseCaseInput(createdBy string) usecase.PostInput {
	lines := make([]usecase.PostLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.PostLine{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Currency:  l.Currency,
			RiskTag:   l.RiskTag,
			FXRateRef: l.FXRateRef,
		}
	}

	return usecase.PostInput{
		LedgerID: r.LedgerID,
		Lines:    lines,
		Metadata: usecase.PostMetadata{
			EventType:          domain.EventType(r.EventType),
			SourceSystem:       r.SourceSystem,
			DecisionReference:  r.DecisionReference,
			AuthoritySignature: r.AuthoritySignature,
			CreatedBy:          createdBy,
			ApprovedBy:         r.ApprovedBy,
			ApprovalStatus:     domain.ApprovalStatusBoard,
		},
	}
}

// ProposalRequest is a capital movement submitted for governance review.
type ProposalRequest struct {
	ID                string          `json:"id,omitempty"`
	FlowType          string          `json:"flow_type"`
	EventType         string          `json:"event_type,omitempty"`
	LedgerID          string          `json:"ledger_id"`
	DebitAccountID    string          `json:"debit_account_id"`
	CreditAccountID   string          `json:"credit_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	RiskTags          []string        `json:"risk_tags,omitempty"`
	VaultProposalID   string          `json:"vault_proposal_id,omitempty"`
	DecisionReference string          `json:"decision_reference,omitempty"`
	SourceSystem      string          `json:"source_system,omitempty"`
	Jurisdiction      string          `json:"jurisdiction,omitempty"`
	CapitalMobility   int             `json:"capital_mobility,omitempty"`
	Headlines         []string        `json:"headlines,omitempty"`
}

// ToDomain converts to a domain proposal. submittedBy is the caller.
func (r *ProposalRequest) ToDomain(submittedBy string) *domain.Proposal {
	return &domain.Proposal{
		ID:                r.ID,
		FlowType:          domain.FlowType(r.FlowType),
		EventType:         domain.EventType(r.EventType),
		LedgerID:          r.LedgerID,
		DebitAccountID:    r.DebitAccountID,
		CreditAccountID:   r.CreditAccountID,
		Amount:            r.Amount,
		Currency:          r.Currency,
		RiskTags:          r.RiskTags,
		VaultProposalID:   r.VaultProposalID,
		DecisionReference: r.DecisionReference,
		SourceSystem:      r.SourceSystem,
		Jurisdiction:      r.Jurisdiction,
		CapitalMobility:   r.CapitalMobility,
		Headlines:         r.Headlines,
		SubmittedBy:       submittedBy,
	}
}

// CreateVaultProposalRequest opens a multi-signature proposal.
type CreateVaultProposalRequest struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateVaultProposalRequest) ToUseCaseInput(createdBy string) usecase.CreateVaultProposalInput {
	return usecase.CreateVaultProposalInput{
		Title:       r.Title,
		Amount:      r.Amount,
		Destination: r.Destination,
		CreatedBy:   createdBy,
	}
}

// SignRequest carries a signer's credential.
type SignRequest struct {
	Signer     string `json:"signer"`
	Credential string `json:"credential"`
}

// CreateEscrowRequest opens an escrow contract.
type CreateEscrowRequest struct {
	ProjectName      string          `json:"project_name"`
	TotalBudget      decimal.Decimal `json:"total_budget"`
	LedgerID         string          `json:"ledger_id"`
	FundingAccountID string          `json:"funding_account_id"`
	PayoutAccountID  string          `json:"payout_account_id"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEscrowRequest) ToUseCaseInput() usecase.CreateContractInput {
	return usecase.CreateContractInput{
		ProjectName:      r.ProjectName,
		TotalBudget:      r.TotalBudget,
		LedgerID:         r.LedgerID,
		FundingAccountID: r.FundingAccountID,
		PayoutAccountID:  r.PayoutAccountID,
	}
}

// DefineMilestoneRequest adds a milestone to an escrow contract.
type DefineMilestoneRequest struct {
	Phase      string          `json:"phase"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ReleaseMilestoneRequest carries the audit proof for a release.
type ReleaseMilestoneRequest struct {
	ProofHash       string   `json:"proof_hash"`
	VaultProposalID string   `json:"vault_proposal_id"`
	Jurisdiction    string   `json:"jurisdiction,omitempty"`
	Headlines       []string `json:"headlines,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReleaseMilestoneRequest) ToUseCaseInput(contractID string, index int, auditor string) usecase.ReleaseInput {
	return usecase.ReleaseInput{
		ContractID:      contractID,
		Index:           index,
		Auditor:         auditor,
		ProofHash:       r.ProofHash,
		VaultProposalID: r.VaultProposalID,
		Jurisdiction:    r.Jurisdiction,
		Headlines:       r.Headlines,
	}
}
