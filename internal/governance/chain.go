// Package governance evaluates proposals against the gate chain. Evaluation
// never touches ledger state and is safe for concurrent use.
package governance

import (
	"context"

	"github.com/iho/govledger/internal/domain"
)

// Signals are the external scores consumed by the constitutional gate.
type Signals struct {
	StressScore      float64 `json:"stress_score"`
	SovereigntyScore float64 `json:"sovereignty_score"`
	AlertLevel       int     `json:"alert_level"`
}

// Gate is a single independent policy check. It returns every violation it
// finds, or nil when the proposal passes.
type Gate interface {
	Name() domain.Gate
	Check(ctx context.Context, p *domain.Proposal, s Signals) ([]domain.Reason, error)
}

// Chain runs gates in a fixed order and collects every reason.
type Chain struct {
	gates []Gate
}

// NewChain builds a chain that evaluates gates in the given order.
func NewChain(gates ...Gate) *Chain {
	return &Chain{gates: gates}
}

// New builds the standard envelope, quorum, constitution chain.
func New(cfg Config, quorum QuorumSource) *Chain {
	return NewChain(
		NewEnvelopeGate(cfg.Envelope),
		NewQuorumGate(quorum),
		NewConstitutionGate(cfg.Constitution),
	)
}

// Evaluate runs every gate without short-circuiting. A gate error aborts
// evaluation since the verdict would be incomplete.
func (c *Chain) Evaluate(ctx context.Context, p *domain.Proposal, s Signals) (domain.Verdict, error) {
	var reasons []domain.Reason

	for _, g := range c.gates {
		r, err := g.Check(ctx, p, s)
		if err != nil {
			return domain.Verdict{}, err
		}

		reasons = append(reasons, r...)
	}

	if len(reasons) > 0 {
		return domain.Verdict{Status: domain.VerdictRejected, Reasons: reasons}, nil
	}

	return domain.Verdict{Status: domain.VerdictApproved}, nil
}

// SignalRequest describes the context the external scorers need.
type SignalRequest struct {
	EntityID        string
	Jurisdiction    string
	Capital         float64
	CapitalMobility int
	Headlines       []string
}
