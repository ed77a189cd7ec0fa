// Package signals implements the external scorers feeding the constitutional
// gate: capital stress, sovereignty exposure and intelligence alerts.
package signals

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// StressConfig parameterizes the Monte Carlo capital stress simulation.
type StressConfig struct {
	Iterations      int
	HorizonDays     int
	DailyVolatility float64
	ShockProb       float64
	ShockMean       float64
	ShockStd        float64
	Percentile      float64
	Seed            int64
}

// DefaultStressConfig returns the calibrated defaults.
func DefaultStressConfig() StressConfig {
	return StressConfig{
		Iterations:      5000,
		HorizonDays:     365,
		DailyVolatility: 0.002,
		ShockProb:       0.01,
		ShockMean:       -0.05,
		ShockStd:        0.02,
		Percentile:      95,
		Seed:            42,
	}
}

// MaxStressScore caps the CBSS so scores stay finite and JSON-encodable
// when the simulated tail loss is zero or negligible.
const MaxStressScore = 1e6

// StressSimulator computes the capital buffer stress score (CBSS): current
// capital divided by the simulated tail loss. Runs are seeded and repeatable.
type StressSimulator struct {
	cfg StressConfig
}

// NewStressSimulator creates a StressSimulator.
func NewStressSimulator(cfg StressConfig) *StressSimulator {
	return &StressSimulator{cfg: cfg}
}

// Score returns the CBSS for capital. Non-positive capital scores zero and
// the result never exceeds MaxStressScore.
func (s *StressSimulator) Score(ctx context.Context, capital float64) (float64, error) {
	if capital <= 0 {
		return 0, nil
	}

	rng := rand.New(rand.NewSource(s.cfg.Seed))
	losses := make([]float64, s.cfg.Iterations)

	for i := range losses {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		growth := 1.0
		for d := 0; d < s.cfg.HorizonDays; d++ {
			r := rng.NormFloat64() * s.cfg.DailyVolatility
			if rng.Float64() < s.cfg.ShockProb {
				r += s.cfg.ShockMean + rng.NormFloat64()*s.cfg.ShockStd
			}
			growth *= 1 + r
		}

		losses[i] = capital - capital*growth
	}

	tail := percentile(losses, s.cfg.Percentile)
	if tail <= 0 {
		return MaxStressScore, nil
	}

	return math.Min(capital/tail, MaxStressScore), nil
}

// percentile uses linear interpolation between closest ranks. values is sorted in place.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sort.Float64s(values)

	rank := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return values[lo]
	}

	frac := rank - float64(lo)

	return values[lo] + (values[hi]-values[lo])*frac
}
