package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VaultStatus is the state of a signature proposal. EXECUTED is terminal.
type VaultStatus string

const (
	VaultStatusPending  VaultStatus = "PENDING"
	VaultStatusExecuted VaultStatus = "EXECUTED"
)

// Signature records one signer's approval.
type Signature struct {
	Signer   string
	SignedAt time.Time
}

// SignatureProposal collects signatures until quorum is reached.
type SignatureProposal struct {
	ID          string
	Title       string
	Amount      decimal.Decimal
	Destination string
	CreatedBy   string
	Status      VaultStatus
	Signatures  []Signature
	Required    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExecutedAt  *time.Time
	// ConsumedBy is the journal entry the executed proposal authorized. An
	// executed proposal authorizes exactly one posting.
	ConsumedBy string
	ConsumedAt *time.Time
}

// HasSigned reports whether signer already signed.
func (p *SignatureProposal) HasSigned(signer string) bool {
	for _, s := range p.Signatures {
		if s.Signer == signer {
			return true
		}
	}

	return false
}

// SignerCount returns the number of distinct signers.
func (p *SignatureProposal) SignerCount() int {
	seen := make(map[string]struct{}, len(p.Signatures))
	for _, s := range p.Signatures {
		seen[s.Signer] = struct{}{}
	}

	return len(seen)
}

// AddSignature records a signature and reports whether this call reached quorum.
// Authentication is the caller's job.
func (p *SignatureProposal) AddSignature(signer string, now time.Time) (bool, error) {
	if p.Status == VaultStatusExecuted {
		return false, ErrAlreadyExecuted
	}

	if p.HasSigned(signer) {
		return false, ErrDuplicateSignature
	}

	p.Signatures = append(p.Signatures, Signature{Signer: signer, SignedAt: now})
	p.UpdatedAt = now

	if p.SignerCount() >= p.Required {
		p.Status = VaultStatusExecuted
		p.ExecutedAt = &now

		return true, nil
	}

	return false, nil
}

// QuorumStatus returns the read model used to authorize a posting.
func (p *SignatureProposal) QuorumStatus() QuorumStatus {
	return QuorumStatus{
		ProposalID:  p.ID,
		Status:      p.Status,
		Signatures:  p.SignerCount(),
		Required:    p.Required,
		Amount:      p.Amount,
		Destination: p.Destination,
		ConsumedBy:  p.ConsumedBy,
	}
}

// Consume marks the proposal as spent by journalID. The caller holds the
// proposal row lock and has checked Authorizes.
func (p *SignatureProposal) Consume(journalID string, now time.Time) {
	p.ConsumedBy = journalID
	p.ConsumedAt = &now
	p.UpdatedAt = now
}

// QuorumStatus is the read model consumed by the quorum gate.
type QuorumStatus struct {
	ProposalID  string
	Status      VaultStatus
	Signatures  int
	Required    int
	Amount      decimal.Decimal
	Destination string
	ConsumedBy  string
}

// Met reports whether the proposal has executed.
func (q QuorumStatus) Met() bool {
	return q.Status == VaultStatusExecuted
}

// Authorizes returns why the proposal cannot authorize moving amount into
// destination, or "" when it can. An empty Destination matches any account.
func (q QuorumStatus) Authorizes(amount decimal.Decimal, destination string) string {
	switch {
	case !q.Met():
		return fmt.Sprintf("vault proposal %s has %d of %d required signatures",
			q.ProposalID, q.Signatures, q.Required)
	case q.ConsumedBy != "":
		return fmt.Sprintf("vault proposal %s already authorized journal entry %s", q.ProposalID, q.ConsumedBy)
	case !q.Amount.Equal(amount):
		return fmt.Sprintf("vault proposal %s authorizes %s, not %s", q.ProposalID, q.Amount, amount)
	case q.Destination != "" && q.Destination != destination:
		return fmt.Sprintf("vault proposal %s authorizes payment to %s, not %s", q.ProposalID, q.Destination, destination)
	default:
		return ""
	}
}
