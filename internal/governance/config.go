package governance

import (
	"github.com/shopspring/decimal"
)

// Config holds every gate threshold. Each institution gets its own value.
type Config struct {
	Envelope     EnvelopeConfig
	Constitution ConstitutionConfig
}

// EnvelopeConfig configures the risk appetite envelope.
type EnvelopeConfig struct {
	MaxSingleOutflow   decimal.Decimal
	RestrictedRiskTags []string
}

// ConstitutionConfig configures the constitutional thresholds.
type ConstitutionConfig struct {
	MinStressScore      float64
	MaxSovereigntyScore float64
	MaxAlertLevel       int
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Envelope: EnvelopeConfig{
			MaxSingleOutflow: decimal.NewFromInt(2_000_000_000),
			RestrictedRiskTags: []string{
				"HIGH_RISK_SPECULATION",
				"UNVERIFIED_JURISDICTION",
				"POLITICAL_DONATION",
			},
		},
		Constitution: ConstitutionConfig{
			MinStressScore:      1.0,
			MaxSovereigntyScore: 70,
			MaxAlertLevel:       3,
		},
	}
}
