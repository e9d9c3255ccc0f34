package sim

import (
	"context"
	"sync"

	"github.com/san-kum/gravsim/internal/config"
)

// Ensemble runs independent copies of one configuration with consecutive
// seeds. Each member owns its world, so members run concurrently.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart int64
	metrics   func(cfg *config.Config) []Metric
}

func NewEnsemble(base *config.Config, numRuns int, metrics func(cfg *config.Config) []Metric) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: base.Seed, metrics: metrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			member := e.base.Clone()
			member.Seed = e.seedStart + int64(idx)

			s, err := New(member)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.metrics != nil {
				for _, m := range e.metrics(member) {
					s.AddMetric(m)
				}
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
