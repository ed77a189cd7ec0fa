package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/govledger/internal/governance"
)

const defaultSignalTimeout = 10 * time.Second

// Composite gathers all three scores in parallel.
type Composite struct {
	stress       *StressSimulator
	sovereignty  *SovereigntyCalculator
	intelligence *IntelligenceScanner
	timeout      time.Duration
	logger       zerolog.Logger
}

// NewComposite creates a Composite provider. A zero timeout uses the default.
func NewComposite(
	stress *StressSimulator,
	sovereignty *SovereigntyCalculator,
	intelligence *IntelligenceScanner,
	timeout time.Duration,
	logger zerolog.Logger,
) *Composite {
	if timeout <= 0 {
		timeout = defaultSignalTimeout
	}

	return &Composite{
		stress:       stress,
		sovereignty:  sovereignty,
		intelligence: intelligence,
		timeout:      timeout,
		logger:       logger,
	}
}

// Signals computes every score. The first failure cancels the others.
func (c *Composite) Signals(ctx context.Context, req governance.SignalRequest) (governance.Signals, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var out governance.Signals

	g.Go(func() error {
		start := time.Now()
		score, err := c.stress.Score(ctx, req.Capital)
		if err != nil {
			return fmt.Errorf("stress simulation: %w", err)
		}
		out.StressScore = score
		c.logger.Debug().Float64("cbss", score).Dur("took", time.Since(start)).Msg("stress score computed")
		return nil
	})

	g.Go(func() error {
		out.SovereigntyScore = c.sovereignty.Score(req.Jurisdiction, req.CapitalMobility)
		return nil
	})

	g.Go(func() error {
		a := c.intelligence.Scan(req.Headlines)
		out.AlertLevel = a.Level
		if len(a.Detections) > 0 {
			c.logger.Info().
				Str("jurisdiction", req.Jurisdiction).
				Int("score", a.Score).
				Int("level", a.Level).
				Int("detections", len(a.Detections)).
				Msg("intelligence signals detected")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return governance.Signals{}, err
	}

	return out, nil
}

// Static returns fixed signals. Useful for manual overrides and tests.
type Static struct {
	Value governance.Signals
}

// Signals returns the configured value.
func (s Static) Signals(context.Context, governance.SignalRequest) (governance.Signals, error) {
	return s.Value, nil
}
