// Package walkforward runs the nested walk-forward selection: each criterion
// picks a market from its in-sample window, and the criterion with the best
// recent out-of-sample record decides the traded market.
package walkforward

import (
	"context"

	"github.com/wonny/chooser/internal/contracts"
)

// Annualization scales a mean one-bar log return to roughly annual percent
// for daily bars
const Annualization = 25200.0

// Scorer is the criterion set the engine selects with, addressed by index
type Scorer interface {
	Len() int
	Score(i int, window []float64) float64
}

// Params sets the window lengths
type Params struct {
	ISLength   int // bars scored per market selection
	OOS1Length int // bars of criterion track record
}

// MinCases is the smallest case count that completes one step
func (p Params) MinCases() int {
	return p.ISLength + p.OOS1Length + 1
}

// Validate checks the window lengths against the case count
func (p Params) Validate(nCases int) error {
	if p.ISLength < 2 {
		return contracts.NewPreconditionError("is_n", "must be >= 2, got %d", p.ISLength)
	}
	if p.OOS1Length < 1 {
		return contracts.NewPreconditionError("oos1_n", "must be >= 1, got %d", p.OOS1Length)
	}
	if nCases < p.MinCases() {
		return contracts.NewPreconditionError("n_cases", "%d aligned cases, need at least %d", nCases, p.MinCases())
	}
	return nil
}

// Step describes one pass of the walk
type Step struct {
	OOS1Case      int                   // case whose per-criterion returns were recorded
	BestCriterion int                   // -1 while OOS1 is warming up or at the halt
	OOS2Case      int                   // -1 when no OOS2 return was recorded
	Window        contracts.WindowState // state after the step
}

// Replication is the outcome of one walk over a price grid
type Replication struct {
	CriterionPerf []float64 // Annualization * mean OOS1 return over the OOS2 cases
	FinalPerf     float64   // Annualization * mean OOS2 return
	ChosenCount   []int     // times each criterion was the best recent criterion
	OOS2Returns   []float64 // cases [OOS2Start, OOS2End)
	Window        contracts.WindowState
}

// Option configures an Engine
type Option func(*Engine)

// WithStepObserver calls fn after every step
func WithStepObserver(fn func(Step)) Option {
	return func(e *Engine) {
		e.observe = fn
	}
}

// Engine owns the OOS buffers for one grid shape. Not safe for concurrent
// use; each worker needs its own.
type Engine struct {
	params   Params
	scorer   Scorer
	nMarkets int
	nCases   int
	oos1     [][]float64 // [criterion][case]
	oos2     []float64   // [case]
	observe  func(Step)
}

// NewEngine allocates an engine for nMarkets x nCases grids
func NewEngine(params Params, scorer Scorer, nMarkets, nCases int, opts ...Option) (*Engine, error) {
	if err := params.Validate(nCases); err != nil {
		return nil, err
	}
	if nMarkets < 1 {
		return nil, contracts.NewPreconditionError("n_markets", "need at least one market")
	}
	if scorer.Len() < 1 {
		return nil, contracts.NewPreconditionError("criteria", "need at least one criterion")
	}

	e := &Engine{
		params:   params,
		scorer:   scorer,
		nMarkets: nMarkets,
		nCases:   nCases,
		oos1:     make([][]float64, scorer.Len()),
		oos2:     make([]float64, nCases),
	}
	for c := range e.oos1 {
		e.oos1[c] = make([]float64, nCases)
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// bestMarket returns the argmax market for criterion over [start, start+IS_n).
// Ties keep the lowest index.
func (e *Engine) bestMarket(prices [][]float64, criterion, start int) int {
	best, bestScore := 0, -1.e60
	for m := 0; m < e.nMarkets; m++ {
		score := e.scorer.Score(criterion, prices[m][start:start+e.params.ISLength])
		if score > bestScore {
			bestScore = score
			best = m
		}
	}
	return best
}

// bestCriterion returns the criterion with the largest OOS1 sum over
// [from, to). Ties keep the lowest index.
func (e *Engine) bestCriterion(from, to int) int {
	best, bestSum := 0, -1.e60
	for c, series := range e.oos1 {
		sum := 0.0
		for i := from; i < to; i++ {
			sum += series[i]
		}
		if sum > bestSum {
			bestSum = sum
			best = c
		}
	}
	return best
}

// Run walks prices (log prices, [market][case]) to exhaustion. ctx is polled
// between bars; a cancelled walk returns ctx.Err() and no result.
func (e *Engine) Run(ctx context.Context, prices [][]float64) (*Replication, error) {
	if len(prices) != e.nMarkets {
		return nil, contracts.Violation("engine built for %d markets, got %d", e.nMarkets, len(prices))
	}
	for m, row := range prices {
		if len(row) != e.nCases {
			return nil, contracts.Violation("engine built for %d cases, market %d has %d", e.nCases, m, len(row))
		}
	}

	isN, oos1N := e.params.ISLength, e.params.OOS1Length
	nCriteria := e.scorer.Len()
	chosen := make([]int, nCriteria)
	w := contracts.InitialWindow(isN, oos1N)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		step := Step{OOS1Case: w.OOS1End, BestCriterion: -1, OOS2Case: -1}

		for c := 0; c < nCriteria; c++ {
			m := e.bestMarket(prices, c, w.ISStart)
			e.oos1[c][w.OOS1End] = prices[m][w.OOS1End] - prices[m][w.OOS1End-1]
		}

		if w.OOS1End >= e.nCases-1 {
			step.Window = w
			e.notify(step)
			break
		}

		w.ISStart++
		w.OOS1End++

		if w.OOS1End-w.ISStart != isN {
			return nil, contracts.Violation("IS window out of step: IS_start=%d OOS1_end=%d IS_n=%d",
				w.ISStart, w.OOS1End, isN)
		}

		if w.OOS1Filled() < oos1N {
			step.Window = w
			e.notify(step)
			continue
		}
		if w.OOS1Filled() > oos1N {
			return nil, contracts.Violation("OOS1 window holds %d cases, OOS1_n=%d", w.OOS1Filled(), oos1N)
		}

		best := e.bestCriterion(w.OOS1Start, w.OOS1End)
		chosen[best]++

		m := e.bestMarket(prices, best, w.OOS2End-isN)
		e.oos2[w.OOS2End] = prices[m][w.OOS2End] - prices[m][w.OOS2End-1]

		step.BestCriterion = best
		step.OOS2Case = w.OOS2End

		w.OOS1Start++
		w.OOS2End++

		step.Window = w
		e.notify(step)
	}

	if w.OOS1End != e.nCases-1 || w.OOS2End != e.nCases {
		return nil, contracts.Violation("walk ended at OOS1_end=%d OOS2_end=%d, want %d and %d",
			w.OOS1End, w.OOS2End, e.nCases-1, e.nCases)
	}

	return e.summarize(w, chosen), nil
}

func (e *Engine) notify(step Step) {
	if e.observe != nil {
		e.observe(step)
	}
}

func (e *Engine) summarize(w contracts.WindowState, chosen []int) *Replication {
	n := float64(w.OOS2End - w.OOS2Start)

	rep := &Replication{
		CriterionPerf: make([]float64, len(e.oos1)),
		ChosenCount:   chosen,
		OOS2Returns:   append([]float64(nil), e.oos2[w.OOS2Start:w.OOS2End]...),
		Window:        w,
	}

	for c, series := range e.oos1 {
		sum := 0.0
		for i := w.OOS2Start; i < w.OOS2End; i++ {
			sum += series[i]
		}
		rep.CriterionPerf[c] = Annualization * sum / n
	}

	sum := 0.0
	for _, r := range rep.OOS2Returns {
		sum += r
	}
	rep.FinalPerf = Annualization * sum / n

	return rep
}
