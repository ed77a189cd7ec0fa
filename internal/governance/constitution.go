package governance

import (
	"context"
	"fmt"

	"github.com/iho/govledger/internal/domain"
)

// Constitutional principles, in order of precedence.
const (
	PrincipleSurvival     = 1 // Institutional Survival > Short-Term Profit
	PrincipleIntegrity    = 2 // Capital Integrity > Growth Speed
	PrincipleTransparency = 3 // Transparency > Tactical Opacity
	PrincipleSovereignty  = 4 // Sovereignty > Jurisdictional Convenience
	PrincipleLegitimacy   = 5 // Legitimacy > Regulatory Arbitrage
)

// Reason codes for the constitutional gate.
const (
	CodeStressBuffer = "CONSTITUTION_STRESS_BUFFER"
	CodeSovereignty  = "CONSTITUTION_SOVEREIGNTY"
	CodeIntelligence = "CONSTITUTION_INTELLIGENCE"
)

// ConstitutionGate compares external scores against hard thresholds. It never
// computes the scores itself.
type ConstitutionGate struct {
	cfg ConstitutionConfig
}

// NewConstitutionGate creates a ConstitutionGate.
func NewConstitutionGate(cfg ConstitutionConfig) *ConstitutionGate {
	return &ConstitutionGate{cfg: cfg}
}

func (g *ConstitutionGate) Name() domain.Gate { return domain.GateConstitution }

func (g *ConstitutionGate) Check(_ context.Context, _ *domain.Proposal, s Signals) ([]domain.Reason, error) {
	var reasons []domain.Reason

	if s.StressScore < g.cfg.MinStressScore {
		reasons = append(reasons, domain.Reason{
			Gate:      domain.GateConstitution,
			Code:      CodeStressBuffer,
			Principle: PrincipleIntegrity,
			Message: fmt.Sprintf("VIOLATION Principles 1 & 2: capital buffer stress score %.2f below minimum %.2f",
				s.StressScore, g.cfg.MinStressScore),
		})
	}

	if s.SovereigntyScore > g.cfg.MaxSovereigntyScore {
		reasons = append(reasons, domain.Reason{
			Gate:      domain.GateConstitution,
			Code:      CodeSovereignty,
			Principle: PrincipleSovereignty,
			Message: fmt.Sprintf("VIOLATION Principle 4: sovereignty exposure %.1f above maximum %.1f",
				s.SovereigntyScore, g.cfg.MaxSovereigntyScore),
		})
	}

	if s.AlertLevel > g.cfg.MaxAlertLevel {
		reasons = append(reasons, domain.Reason{
			Gate:      domain.GateConstitution,
			Code:      CodeIntelligence,
			Principle: PrincipleSurvival,
			Message: fmt.Sprintf("VIOLATION Principle 1: intelligence alert level %d above maximum %d",
				s.AlertLevel, g.cfg.MaxAlertLevel),
		})
	}

	return reasons, nil
}
