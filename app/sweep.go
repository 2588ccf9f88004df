package app

import (
	"context"
	"io"
	"time"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/analysis/describe"
	"mmmsynth/internal/analysis/ols"
	"mmmsynth/internal/errors"
	"mmmsynth/internal/synth"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SweepResult collects the fitted coefficients of consecutive seeds
type SweepResult struct {
	Seeds []int64
	Names []string
	// Params[i] are the coefficients fitted for Seeds[i]
	Params [][]float64
	// Coefficients summarizes each regressor's estimates across seeds
	Coefficients []describe.Summary
}

// Sweep regenerates and refits the dataset for runs consecutive seeds starting
// at the configured one, at most workers at a time, and writes the spread of
// every coefficient to w.
func (p *Pipeline) Sweep(ctx context.Context, runs, workers int, w io.Writer) (*SweepResult, error) {
	if runs < 1 || workers < 1 {
		return nil, errors.ValidationError("sweep needs at least one run and one worker")
	}
	base, err := GeneratorSettings(p.cfg.Generator)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		Seeds:  make([]int64, runs),
		Names:  mmm.RegressorColumns(),
		Params: make([][]float64, runs),
	}

	started := time.Now()
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < runs; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		cfg := base
		cfg.Seed = base.Seed + int64(i)
		result.Seeds[i] = cfg.Seed

		g.Go(func() error {
			defer sem.Release(1)
			table, err := synth.GenerateSeeded(cfg)
			if err != nil {
				return errors.Wrapf(err, "seed %d", cfg.Seed)
			}
			res, err := ols.FitSales(table)
			if err != nil {
				return errors.Wrapf(err, "seed %d", cfg.Seed)
			}
			result.Params[i] = res.Params
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logger.Info("swept %d seeds with %d workers in %v", runs, workers, time.Since(started))

	for j, name := range result.Names {
		values := make([]float64, runs)
		for i := range result.Params {
			values[i] = result.Params[i][j]
		}
		s, err := describe.Column(name, values)
		if err != nil {
			return nil, err
		}
		result.Coefficients = append(result.Coefficients, s)
	}

	if w != nil {
		if err := describe.Render(w, result.Coefficients); err != nil {
			return nil, errors.Wrap(err, "write sweep table")
		}
	}
	return result, nil
}
