package governance

import (
	"context"
	"fmt"

	"github.com/iho/govledger/internal/domain"
)

// Reason codes for the envelope gate.
const (
	CodeOutflowLimit  = "RAE_OUTFLOW_LIMIT"
	CodeRestrictedTag = "RAE_RESTRICTED_TAG"
)

// EnvelopeGate enforces the risk appetite envelope. It is deterministic and
// makes no external calls.
type EnvelopeGate struct {
	cfg        EnvelopeConfig
	restricted map[string]struct{}
}

// NewEnvelopeGate creates an EnvelopeGate.
func NewEnvelopeGate(cfg EnvelopeConfig) *EnvelopeGate {
	restricted := make(map[string]struct{}, len(cfg.RestrictedRiskTags))
	for _, tag := range cfg.RestrictedRiskTags {
		restricted[tag] = struct{}{}
	}

	return &EnvelopeGate{cfg: cfg, restricted: restricted}
}

func (g *EnvelopeGate) Name() domain.Gate { return domain.GateEnvelope }

func (g *EnvelopeGate) Check(_ context.Context, p *domain.Proposal, _ Signals) ([]domain.Reason, error) {
	var reasons []domain.Reason

	if p.FlowType == domain.FlowTypeOutflow && p.Amount.GreaterThan(g.cfg.MaxSingleOutflow) {
		reasons = append(reasons, domain.Reason{
			Gate: domain.GateEnvelope,
			Code: CodeOutflowLimit,
			Message: fmt.Sprintf("RAE BREACH: outflow %s exceeds single outflow limit %s",
				p.Amount, g.cfg.MaxSingleOutflow),
		})
	}

	for _, tag := range p.RiskTags {
		if _, ok := g.restricted[tag]; ok {
			reasons = append(reasons, domain.Reason{
				Gate:    domain.GateEnvelope,
				Code:    CodeRestrictedTag,
				Message: fmt.Sprintf("RAE BREACH: risk tag %s is restricted", tag),
			})
		}
	}

	return reasons, nil
}
