package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/governance"
	"github.com/iho/govledger/internal/usecase"
)

// EntityResponse represents an entity in API responses.
type EntityResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	ParentID            *string   `json:"parent_id,omitempty"`
	Jurisdiction        string    `json:"jurisdiction"`
	RiskAppetiteProfile string    `json:"risk_appetite_profile,omitempty"`
	CapitalBufferRef    string    `json:"capital_buffer_ref,omitempty"`
	Status              string    `json:"status"`
	Version             int64     `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// EntityFromDomain converts a domain entity to a response.
func EntityFromDomain(e *domain.Entity) *EntityResponse {
	return &EntityResponse{
		ID:                  e.ID,
		Name:                e.Name,
		ParentID:            e.ParentID,
		Jurisdiction:        e.Jurisdiction,
		RiskAppetiteProfile: e.RiskAppetiteProfile,
		CapitalBufferRef:    e.CapitalBufferRef,
		Status:              string(e.Status),
		Version:             e.Version,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

// EntitiesFromDomain converts domain entities to responses.
func EntitiesFromDomain(entities []*domain.Entity) []*EntityResponse {
	result := make([]*EntityResponse, len(entities))
	for i, e := range entities {
		result[i] = EntityFromDomain(e)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID              string    `json:"id"`
	EntityID        string    `json:"entity_id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Currency        string    `json:"currency"`
	RiskCategory    string    `json:"risk_category,omitempty"`
	LiquidityClass  string    `json:"liquidity_class,omitempty"`
	ParentAccountID *string   `json:"parent_account_id,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		EntityID:        a.EntityID,
		Name:            a.Name,
		Type:            string(a.Type),
		Currency:        a.Currency,
		RiskCategory:    a.RiskCategory,
		LiquidityClass:  a.LiquidityClass,
		ParentAccountID: a.ParentAccountID,
		Active:          a.Active,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse is an account balance derived from its journal lines.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Currency  string          `json:"currency"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b *domain.AccountBalance) *BalanceResponse {
	return &BalanceResponse{
		AccountID: b.AccountID,
		Type:      string(b.Type),
		Currency:  b.Currency,
		Debit:     b.Debit,
		Credit:    b.Credit,
		Balance:   b.Balance(),
	}
}

// BalanceSheetLineResponse is one account on a balance sheet.
type BalanceSheetLineResponse struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceSheetResponse represents an entity's balance sheet.
type BalanceSheetResponse struct {
	EntityID         string                     `json:"entity_id"`
	Totals           map[string]decimal.Decimal `json:"totals"`
	RetainedEarnings decimal.Decimal            `json:"retained_earnings"`
	Balanced         bool                       `json:"balanced"`
	Lines            []BalanceSheetLineResponse `json:"lines"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// BalanceSheetFromUseCase converts a balance sheet to a response.
func BalanceSheetFromUseCase(s *usecase.BalanceSheet) *BalanceSheetResponse {
	totals := make(map[string]decimal.Decimal, len(s.Totals))
	for t, v := range s.Totals {
		totals[string(t)] = v
	}

	lines := make([]BalanceSheetLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = BalanceSheetLineResponse{
			AccountID: l.AccountID,
			Name:      l.Name,
			Type:      string(l.Type),
			Currency:  l.Currency,
			Balance:   l.Balance,
		}
	}

	return &BalanceSheetResponse{
		EntityID:         s.EntityID,
		Totals:           totals,
		RetainedEarnings: s.RetainedEarnings,
		Balanced:         s.Balanced,
		Lines:            lines,
		GeneratedAt:      s.GeneratedAt,
	}
}

// LedgerResponse represents a ledger in API responses.
type LedgerResponse struct {
	ID                 string     `json:"id"`
	EntityID           string     `json:"entity_id"`
	PeriodStart        time.Time  `json:"period_start"`
	PeriodEnd          time.Time  `json:"period_end"`
	OpeningBalanceHash string     `json:"opening_balance_hash"`
	ClosingBalanceHash string     `json:"closing_balance_hash,omitempty"`
	HeadHash           string     `json:"head_hash"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	LockedAt           *time.Time `json:"locked_at,omitempty"`
}

// LedgerFromDomain converts a domain ledger to a response.
func LedgerFromDomain(l *domain.Ledger) *LedgerResponse {
	return &LedgerResponse{
		ID:                 l.ID,
		EntityID:           l.EntityID,
		PeriodStart:        l.PeriodStart,
		PeriodEnd:          l.PeriodEnd,
		OpeningBalanceHash: l.OpeningBalanceHash,
		ClosingBalanceHash: l.ClosingBalanceHash,
		HeadHash:           l.HeadHash,
		Status:             string(l.Status),
		CreatedAt:          l.CreatedAt,
		LockedAt:           l.LockedAt,
	}
}

// JournalLineResponse is one line of a journal entry.
type JournalLineResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Currency  string          `json:"currency"`
	RiskTag   string          `json:"risk_tag,omitempty"`
	FXRateRef string          `json:"fx_rate_ref,omitempty"`
}

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	ID              string                `json:"id"`
	LedgerID        string                `json:"ledger_id"`
	EventID         string                `json:"event_id"`
	TransactionType string                `json:"transaction_type"`
	ApprovalStatus  string                `json:"approval_status"`
	TotalDebit      decimal.Decimal       `json:"total_debit"`
	TotalCredit     decimal.Decimal       `json:"total_credit"`
	CreatedBy       string                `json:"created_by"`
	ApprovedBy      string                `json:"approved_by,omitempty"`
	ReversalOf      string                `json:"reversal_of,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	Lines           []JournalLineResponse `json:"lines"`
}

// JournalEntryFromDomain converts a journal entry to a response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:        l.ID,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Currency:  l.Currency,
			RiskTag:   l.RiskTag,
			FXRateRef: l.FXRateRef,
		}
	}

	return &JournalEntryResponse{
		ID:              e.ID,
		LedgerID:        e.LedgerID,
		EventID:         e.EventID,
		TransactionType: string(e.TransactionType),
		ApprovalStatus:  string(e.ApprovalStatus),
		TotalDebit:      e.TotalDebit,
		TotalCredit:     e.TotalCredit,
		CreatedBy:       e.CreatedBy,
		ApprovedBy:      e.ApprovedBy,
		ReversalOf:      e.ReversalOf,
		CreatedAt:       e.CreatedAt,
		Lines:           lines,
	}
}

// JournalEntriesFromDomain converts journal entries to responses.
func JournalEntriesFromDomain(entries []*domain.JournalEntry) []*JournalEntryResponse {
	result := make([]*JournalEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = JournalEntryFromDomain(e)
	}
	return result
}

// EventResponse represents a transaction event in the hash chain.
type EventResponse struct {
	ID                     string    `json:"id"`
	Type                   string    `json:"type"`
	SourceSystem           string    `json:"source_system"`
	DecisionReference      string    `json:"decision_reference,omitempty"`
	AuthoritySignatureHash string    `json:"authority_signature_hash,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
	PreviousHash           string    `json:"previous_hash"`
	EventHash              string    `json:"event_hash"`
}

// PostingResponse is the outcome of a successful posting.
type PostingResponse struct {
	Entry *JournalEntryResponse `json:"entry"`
	Event *EventResponse        `json:"event"`
}

// PostingFromUseCase converts a posting result to a response.
func PostingFromUseCase(r *usecase.PostResult) *PostingResponse {
	if r == nil {
		return nil
	}

	resp := &PostingResponse{Entry: JournalEntryFromDomain(r.Entry)}
	if e := r.Event; e != nil {
		resp.Event = &EventResponse{
			ID:                     e.ID,
			Type:                   string(e.Type),
			SourceSystem:           e.SourceSystem,
			DecisionReference:      e.DecisionReference,
			AuthoritySignatureHash: e.AuthoritySignatureHash,
			Timestamp:              e.Timestamp,
			PreviousHash:           e.PreviousHash,
			EventHash:              e.EventHash,
		}
	}

	return resp
}

// ChainVerificationResponse is the result of re-deriving a ledger's chain.
type ChainVerificationResponse struct {
	LedgerID      string `json:"ledger_id"`
	Events        int    `json:"events"`
	HeadHash      string `json:"head_hash"`
	Valid         bool   `json:"valid"`
	FailedEventID string `json:"failed_event_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// ChainVerificationFromUseCase converts a verification result to a response.
func ChainVerificationFromUseCase(v *usecase.ChainVerification) *ChainVerificationResponse {
	return &ChainVerificationResponse{
		LedgerID:      v.LedgerID,
		Events:        v.Events,
		HeadHash:      v.HeadHash,
		Valid:         v.Valid,
		FailedEventID: v.FailedEventID,
		Reason:        v.Reason,
	}
}

// DecisionResponse is the outcome of a governance review.
type DecisionResponse struct {
	ProposalID string             `json:"proposal_id"`
	Verdict    domain.Verdict     `json:"verdict"`
	Signals    governance.Signals `json:"signals"`
	Posting    *PostingResponse   `json:"posting,omitempty"`
}

// DecisionFromUseCase converts a decision to a response.
func DecisionFromUseCase(d *usecase.Decision) *DecisionResponse {
	if d == nil {
		return nil
	}

	return &DecisionResponse{
		ProposalID: d.ProposalID,
		Verdict:    d.Verdict,
		Signals:    d.Signals,
		Posting:    PostingFromUseCase(d.Posting),
	}
}

// SignatureResponse is one recorded vault signature.
type SignatureResponse struct {
	Signer   string    `json:"signer"`
	SignedAt time.Time `json:"signed_at"`
}

// VaultProposalResponse represents a multi-signature proposal.
type VaultProposalResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Amount      decimal.Decimal     `json:"amount"`
	Destination string              `json:"destination"`
	CreatedBy   string              `json:"created_by"`
	Status      string              `json:"status"`
	Required    int                 `json:"required"`
	Signatures  []SignatureResponse `json:"signatures"`
	CreatedAt   time.Time           `json:"created_at"`
	ExecutedAt  *time.Time          `json:"executed_at,omitempty"`
}

// VaultProposalFromDomain converts a signature proposal to a response.
func VaultProposalFromDomain(p *domain.SignatureProposal) *VaultProposalResponse {
	sigs := make([]SignatureResponse, len(p.Signatures))
	for i, s := range p.Signatures {
		sigs[i] = SignatureResponse{Signer: s.Signer, SignedAt: s.SignedAt}
	}

	return &VaultProposalResponse{
		ID:          p.ID,
		Title:       p.Title,
		Amount:      p.Amount,
		Destination: p.Destination,
		CreatedBy:   p.CreatedBy,
		Status:      string(p.Status),
		Required:    p.Required,
		Signatures:  sigs,
		CreatedAt:   p.CreatedAt,
		ExecutedAt:  p.ExecutedAt,
	}
}

// MilestoneResponse represents an escrow milestone.
type MilestoneResponse struct {
	Index      int             `json:"index"`
	Phase      string          `json:"phase"`
	Percentage decimal.Decimal `json:"percentage"`
	Allocation decimal.Decimal `json:"allocation"`
	Status     string          `json:"status"`
	Auditor    string          `json:"auditor,omitempty"`
	ProofHash  string          `json:"proof_hash,omitempty"`
	ReleasedAt *time.Time      `json:"released_at,omitempty"`
}

// MilestoneFromDomain converts a milestone to a response.
func MilestoneFromDomain(m *domain.Milestone) *MilestoneResponse {
	return &MilestoneResponse{
		Index:      m.Index,
		Phase:      m.Phase,
		Percentage: m.Percentage,
		Allocation: m.Allocation,
		Status:     string(m.Status),
		Auditor:    m.Auditor,
		ProofHash:  m.ProofHash,
		ReleasedAt: m.ReleasedAt,
	}
}

// EscrowResponse represents an escrow contract.
type EscrowResponse struct {
	ID               string               `json:"id"`
	ProjectName      string               `json:"project_name"`
	TotalBudget      decimal.Decimal      `json:"total_budget"`
	LockedFunds      decimal.Decimal      `json:"locked_funds"`
	ReleasedFunds    decimal.Decimal      `json:"released_funds"`
	Currency         string               `json:"currency"`
	LedgerID         string               `json:"ledger_id"`
	FundingAccountID string               `json:"funding_account_id"`
	PayoutAccountID  string               `json:"payout_account_id"`
	Milestones       []*MilestoneResponse `json:"milestones"`
	CreatedAt        time.Time            `json:"created_at"`
}

// EscrowFromDomain converts an escrow contract to a response.
func EscrowFromDomain(c *domain.EscrowContract) *EscrowResponse {
	milestones := make([]*MilestoneResponse, len(c.Milestones))
	for i, m := range c.Milestones {
		milestones[i] = MilestoneFromDomain(m)
	}

	return &EscrowResponse{
		ID:               c.ID,
		ProjectName:      c.ProjectName,
		TotalBudget:      c.TotalBudget,
		LockedFunds:      c.LockedFunds,
		ReleasedFunds:    c.ReleasedFunds,
		Currency:         c.Currency,
		LedgerID:         c.LedgerID,
		FundingAccountID: c.FundingAccountID,
		PayoutAccountID:  c.PayoutAccountID,
		Milestones:       milestones,
		CreatedAt:        c.CreatedAt,
	}
}

// ReleaseResponse is the outcome of a milestone release. Governance is
// set when the payout proposal was rejected; the release still stands.
type ReleaseResponse struct {
	Contract   *EscrowResponse    `json:"contract"`
	Milestone  *MilestoneResponse `json:"milestone"`
	Decision   *DecisionResponse  `json:"decision,omitempty"`
	Governance *ErrorResponse     `json:"governance_error,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Message string          `json:"message,omitempty"`
	Reasons []domain.Reason `json:"reasons,omitempty"`
	// Decision is set when governance produced a verdict before failing.
	Decision *DecisionResponse `json:"decision,omitempty"`
}
