package signals

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/govledger/internal/governance"
)

func smallStressConfig() StressConfig {
	cfg := DefaultStressConfig()
	cfg.Iterations = 400
	cfg.HorizonDays = 60
	return cfg
}

func TestStressSimulator_Deterministic(t *testing.T) {
	sim := NewStressSimulator(smallStressConfig())

	first, err := sim.Score(context.Background(), 10_000_000_000)
	require.NoError(t, err)
	second, err := sim.Score(context.Background(), 10_000_000_000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Greater(t, first, 0.0)
}

func TestStressSimulator_ZeroCapital(t *testing.T) {
	score, err := NewStressSimulator(smallStressConfig()).Score(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestStressSimulator_NoLossIsCapped(t *testing.T) {
	cfg := smallStressConfig()
	cfg.DailyVolatility = 0
	cfg.ShockProb = 0

	score, err := NewStressSimulator(cfg).Score(context.Background(), 1000)
	require.NoError(t, err)
	assert.False(t, math.IsInf(score, 0))
	assert.Equal(t, MaxStressScore, score)

	body, err := json.Marshal(governance.Signals{StressScore: score})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"stress_score":1000000`)
}

func TestStressSimulator_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStressSimulator(smallStressConfig()).Score(ctx, 1000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 3.0, percentile(values, 50))
	assert.InDelta(t, 4.8, percentile([]float64{1, 2, 3, 4, 5}, 95), 1e-9)
	assert.Equal(t, 0.0, percentile(nil, 95))
}

func TestSovereigntyCalculator_Score(t *testing.T) {
	calc := NewSovereigntyCalculator(DefaultSovereigntyConfig())

	tests := []struct {
		name         string
		jurisdiction string
		mobility     int
		want         float64
	}{
		// 10*0.4 + 5*0.4 + 20*0.2 = 10, minus 18
		{"neutral zone high mobility clamps to zero", "ID-NEUTRAL-ZONE", 90, 0},
		{"neutral zone no mobility", "ID-NEUTRAL-ZONE", 0, 10},
		// 90*0.4 + 85*0.4 + 95*0.2 = 89, minus 2
		{"high risk nation", "HIGH-RISK-NATION", 10, 87},
		{"unknown jurisdiction", "ATLANTIS", 0, 100},
		{"mobility above range is capped", "US-MAINLAND", 250, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calc.Score(tt.jurisdiction, tt.mobility), 1e-9)
		})
	}
}

func TestIntelligenceScanner_Scan(t *testing.T) {
	scanner := NewIntelligenceScanner(DefaultIntelligenceConfig())

	tests := []struct {
		name      string
		headlines []string
		score     int
		level     int
	}{
		{"stable", []string{"Cultural preservation program receives support"}, 0, 0},
		{"narrative drift", []string{"Talks of Foreign Interference continue"}, 2, 1},
		{"structural realignment", []string{"New sanction announced", "retroactive tax rule"}, 8, 3},
		{"regime disruption", []string{
			"Emergency powers invoked",
			"Capital control and asset freeze ordered",
			"Sanction list expanded",
		}, 18, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scanner.Scan(tt.headlines)
			assert.Equal(t, tt.score, a.Score)
			assert.Equal(t, tt.level, a.Level)
		})
	}
}

func TestComposite_Signals(t *testing.T) {
	provider := NewComposite(
		NewStressSimulator(smallStressConfig()),
		NewSovereigntyCalculator(DefaultSovereigntyConfig()),
		NewIntelligenceScanner(DefaultIntelligenceConfig()),
		time.Second,
		zerolog.Nop(),
	)

	got, err := provider.Signals(context.Background(), governance.SignalRequest{
		Jurisdiction:    "HIGH-RISK-NATION",
		Capital:         10_000_000_000,
		CapitalMobility: 10,
		Headlines:       []string{"capital control imposed"},
	})
	require.NoError(t, err)

	assert.Greater(t, got.StressScore, 0.0)
	assert.InDelta(t, 87, got.SovereigntyScore, 1e-9)
	assert.Equal(t, 2, got.AlertLevel)
}

func TestStatic_Signals(t *testing.T) {
	want := governance.Signals{StressScore: 2, SovereigntyScore: 30, AlertLevel: 1}

	got, err := Static{Value: want}.Signals(context.Background(), governance.SignalRequest{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
