package sim

import (
	"context"
	"fmt"
)

// RunConfig controls a headless run.
type RunConfig struct {
	Ticks int
	Dt    float64
	// SampleEvery records total energy every n ticks; 0 disables sampling.
	SampleEvery int
}

func (c RunConfig) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", c.Ticks)
	}
	return nil
}

// Run ticks the simulation cfg.Ticks times, stopping early if ctx is done.
func (s *Simulation) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Metrics: make(map[string]float64),
	}
	if cfg.SampleEvery > 0 {
		result.Energy = make([]float64, 0, cfg.Ticks/cfg.SampleEvery+1)
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			s.summarize(result)
			return result, ctx.Err()
		default:
		}

		r, err := s.Tick(cfg.Dt)
		if err != nil {
			s.summarize(result)
			return result, fmt.Errorf("tick %d: %w", r.Tick, err)
		}
		result.Ticks++
		result.StaleTotal += r.Stale

		if cfg.SampleEvery > 0 && i%cfg.SampleEvery == 0 {
			result.Energy = append(result.Energy, s.Energy().Total())
		}
	}

	s.summarize(result)
	return result, nil
}

func (s *Simulation) summarize(result *Result) {
	result.Scene = s.LoadedName()
	result.Elapsed = s.clock.Elapsed()
	result.Bodies = s.world.Len()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback ticks until ctx is done or callback returns false.
func (s *Simulation) RunWithCallback(ctx context.Context, dt float64, callback func(Report) bool) error {
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", dt)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, err := s.Tick(dt)
		if err != nil {
			return err
		}
		if !callback(r) {
			return nil
		}
	}
}
