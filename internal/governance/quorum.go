package governance

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/govledger/internal/domain"
)

// CodeQuorumNotMet is the reason code for the quorum gate.
const CodeQuorumNotMet = "QUORUM_NOT_MET"

// QuorumSource reports the signature state of a vault proposal.
type QuorumSource interface {
	QuorumStatus(ctx context.Context, proposalID string) (domain.QuorumStatus, error)
}

// QuorumGate passes only proposals backed by an executed, unspent vault
// proposal for the same amount and destination.
type QuorumGate struct {
	source QuorumSource
}

// NewQuorumGate creates a QuorumGate.
func NewQuorumGate(source QuorumSource) *QuorumGate {
	return &QuorumGate{source: source}
}

func (g *QuorumGate) Name() domain.Gate { return domain.GateQuorum }

func (g *QuorumGate) Check(ctx context.Context, p *domain.Proposal, _ Signals) ([]domain.Reason, error) {
	if p.VaultProposalID == "" {
		return []domain.Reason{{
			Gate:    domain.GateQuorum,
			Code:    CodeQuorumNotMet,
			Message: "no multi-signature authorization referenced",
		}}, nil
	}

	status, err := g.source.QuorumStatus(ctx, p.VaultProposalID)
	if errors.Is(err, domain.ErrProposalNotFound) {
		return []domain.Reason{{
			Gate:    domain.GateQuorum,
			Code:    CodeQuorumNotMet,
			Message: fmt.Sprintf("vault proposal %s does not exist", p.VaultProposalID),
		}}, nil
	}
	if err != nil {
		return nil, err
	}

	if msg := status.Authorizes(p.Amount, p.DebitAccountID); msg != "" {
		return []domain.Reason{{
			Gate:    domain.GateQuorum,
			Code:    CodeQuorumNotMet,
			Message: msg,
		}}, nil
	}

	return nil, nil
}
