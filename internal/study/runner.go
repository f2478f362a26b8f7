// Package study drives a complete market-selection study: the unpermuted
// walk, the permuted replications and their aggregation.
package study

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/internal/criteria"
	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/permutation"
	"github.com/wonny/chooser/internal/significance"
	"github.com/wonny/chooser/internal/walkforward"
	"github.com/wonny/chooser/pkg/logger"
)

// Options configures a Runner
type Options struct {
	ISLength      int
	OOS1Length    int
	Replications  int           // < 1 is treated as 1
	Seed          uint32        // worker w draws from seed + w
	Workers       int           // < 1 is treated as 1
	ProgressEvery time.Duration // minimum gap between progress logs
}

// Params returns the walk-forward window lengths
func (o Options) Params() walkforward.Params {
	return walkforward.Params{ISLength: o.ISLength, OOS1Length: o.OOS1Length}
}

// Result is everything a report needs
type Result struct {
	RunID         string                `json:"run_id"`
	Options       Options               `json:"options"`
	NCases        int                   `json:"n_cases"`
	Benchmarks    []MarketBenchmark     `json:"benchmarks"`
	BenchmarkMean float64               `json:"benchmark_mean"`
	Summary       *significance.Summary `json:"summary"`
	StartedAt     time.Time             `json:"started_at"`
	Elapsed       time.Duration         `json:"elapsed"`
}

// Runner runs studies over aligned log-price matrices
type Runner struct {
	lib    *criteria.Library
	log    *logger.Logger
	opts   Options
	newRNG func(seed uint32) permutation.Uniform
}

// NewRunner creates a Runner
func NewRunner(lib *criteria.Library, log *logger.Logger, opts Options) *Runner {
	if opts.Replications < 1 {
		opts.Replications = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 5 * time.Second
	}

	return &Runner{
		lib:  lib,
		log:  log.WithComponent("study"),
		opts: opts,
		newRNG: func(seed uint32) permutation.Uniform {
			return permutation.NewMWC256(seed)
		},
	}
}

// Run executes replication 0 on mx and every permuted replication on
// private copies. mx itself is never modified.
// ⭐ SSOT: S2 → S3 → S4 실행 흐름
func (r *Runner) Run(ctx context.Context, mx *marketdata.Matrix) (*Result, error) {
	if !mx.IsLog {
		return nil, contracts.Violation("study needs a log-price matrix")
	}

	params := r.opts.Params()
	if err := params.Validate(mx.NCases()); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.New().String(),
		Options:   r.opts,
		NCases:    mx.NCases(),
		StartedAt: time.Now(),
	}
	log := r.log.WithRun(result.RunID)

	log.WithFields(map[string]interface{}{
		"markets":      mx.NMarkets(),
		"cases":        mx.NCases(),
		"is_n":         params.ISLength,
		"oos1_n":       params.OOS1Length,
		"replications": r.opts.Replications,
		"workers":      r.opts.Workers,
		"seed":         r.opts.Seed,
	}).Info("Starting study")

	result.Benchmarks, result.BenchmarkMean = Benchmarks(mx, params)

	reps, err := r.replicate(ctx, mx, params, log)
	if err != nil {
		return nil, err
	}

	agg := significance.NewAggregator(r.lib.Names(), r.opts.Replications)
	for i, rep := range reps {
		if err := agg.Observe(i, rep); err != nil {
			return nil, err
		}
	}

	result.Summary, err = agg.Summary()
	if err != nil {
		return nil, err
	}
	result.Elapsed = time.Since(result.StartedAt)

	log.WithFields(map[string]interface{}{
		"final_perf": result.Summary.FinalPerf,
		"elapsed":    result.Elapsed.String(),
	}).Info("Study completed")

	return result, nil
}

// replicate returns one Replication per index. Worker w owns a matrix copy,
// a permuter and a generator seeded seed+w, and runs replications
// w+1, w+1+W, ... in order.
func (r *Runner) replicate(ctx context.Context, mx *marketdata.Matrix, params walkforward.Params, log *logger.Logger) ([]*walkforward.Replication, error) {
	nReps := r.opts.Replications
	results := make([]*walkforward.Replication, nReps)

	unpermuted, err := walkforward.NewEngine(params, r.lib, mx.NMarkets(), mx.NCases())
	if err != nil {
		return nil, err
	}
	results[0], err = unpermuted.Run(ctx, mx.Prices)
	if err != nil {
		return nil, fmt.Errorf("replication 0: %w", err)
	}

	if nReps == 1 {
		return results, nil
	}

	workers := r.opts.Workers
	if workers > nReps-1 {
		workers = nReps - 1
	}

	progress := &rate.Sometimes{Interval: r.opts.ProgressEvery}
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		worker := w
		g.Go(func() error {
			prices := mx.Clone().Prices
			ranges := permutation.StudyRanges(params.ISLength, params.OOS1Length, mx.NCases())

			perm, err := permutation.New(mx.NMarkets(), mx.NCases(), ranges, r.newRNG(r.opts.Seed+uint32(worker)))
			if err != nil {
				return err
			}
			if err := perm.Prepare(prices); err != nil {
				return err
			}

			engine, err := walkforward.NewEngine(params, r.lib, mx.NMarkets(), mx.NCases())
			if err != nil {
				return err
			}

			for rep := worker + 1; rep < nReps; rep += workers {
				if err := perm.Shuffle(prices); err != nil {
					return fmt.Errorf("replication %d: %w", rep, err)
				}

				res, err := engine.Run(gctx, prices)
				if err != nil {
					return fmt.Errorf("replication %d: %w", rep, err)
				}
				results[rep] = res

				progress.Do(func() {
					log.WithFields(map[string]interface{}{
						"stage":       contracts.StagePermutation.ShortName(),
						"worker":      worker,
						"replication": rep,
						"of":          nReps,
					}).Info("Replication progress")
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Study aborted, replication results discarded")
		return nil, err
	}

	return results, nil
}
