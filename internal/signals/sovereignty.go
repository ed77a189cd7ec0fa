package signals

import (
	"math"
)

// JurisdictionProfile holds the 0-100 risk components for one jurisdiction.
type JurisdictionProfile struct {
	PoliticalRisk      float64
	CapitalControlRisk float64
	LegalDependency    float64
}

// SovereigntyConfig configures the sovereignty exposure index (SEI).
type SovereigntyConfig struct {
	Jurisdictions         map[string]JurisdictionProfile
	WeightPolitical       float64
	WeightCapitalControl  float64
	WeightLegal           float64
	MaxMobilityDiscount   float64
	UnknownJurisdictionAs JurisdictionProfile
}

// DefaultSovereigntyConfig returns the reference jurisdiction table.
func DefaultSovereigntyConfig() SovereigntyConfig {
	return SovereigntyConfig{
		Jurisdictions: map[string]JurisdictionProfile{
			"ID-NEUTRAL-ZONE":  {PoliticalRisk: 10, CapitalControlRisk: 5, LegalDependency: 20},
			"US-MAINLAND":      {PoliticalRisk: 40, CapitalControlRisk: 10, LegalDependency: 80},
			"HIGH-RISK-NATION": {PoliticalRisk: 90, CapitalControlRisk: 85, LegalDependency: 95},
		},
		WeightPolitical:       0.4,
		WeightCapitalControl:  0.4,
		WeightLegal:           0.2,
		MaxMobilityDiscount:   20,
		UnknownJurisdictionAs: JurisdictionProfile{PoliticalRisk: 100, CapitalControlRisk: 100, LegalDependency: 100},
	}
}

// SovereigntyCalculator scores jurisdictional exposure in [0, 100].
type SovereigntyCalculator struct {
	cfg SovereigntyConfig
}

// NewSovereigntyCalculator creates a SovereigntyCalculator.
func NewSovereigntyCalculator(cfg SovereigntyConfig) *SovereigntyCalculator {
	return &SovereigntyCalculator{cfg: cfg}
}

// Score weights the jurisdiction profile and discounts it by capital
// mobility (0-100). Unknown jurisdictions use the worst-case profile.
func (c *SovereigntyCalculator) Score(jurisdiction string, mobility int) float64 {
	profile, ok := c.cfg.Jurisdictions[jurisdiction]
	if !ok {
		profile = c.cfg.UnknownJurisdictionAs
	}

	base := profile.PoliticalRisk*c.cfg.WeightPolitical +
		profile.CapitalControlRisk*c.cfg.WeightCapitalControl +
		profile.LegalDependency*c.cfg.WeightLegal

	m := math.Max(0, math.Min(100, float64(mobility)))
	discount := m / 100 * c.cfg.MaxMobilityDiscount

	return math.Max(0, math.Min(100, base-discount))
}
