package walkforward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/internal/criteria"
)

// linear returns log prices start, start+step, ...
func linear(n int, start, step float64) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = start + float64(i)*step
	}
	return row
}

type constScorer struct{ n int }

func (s constScorer) Len() int                      { return s.n }
func (s constScorer) Score(int, []float64) float64 { return 1 }

// lastSeenScorer records the last case index of every scored window when
// prices equal their case index
type lastSeenScorer struct{ maxSeen float64 }

func (s *lastSeenScorer) Len() int { return 2 }
func (s *lastSeenScorer) Score(_ int, w []float64) float64 {
	if last := w[len(w)-1]; last > s.maxSeen {
		s.maxSeen = last
	}
	return 0
}

func TestScenarioTwoMarketsTenBars(t *testing.T) {
	prices := [][]float64{
		linear(10, 0, -0.01),
		linear(10, 0, 0.02),
	}

	var steps []Step
	e, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, criteria.Default(), 2, 10,
		WithStepObserver(func(s Step) { steps = append(steps, s) }))
	require.NoError(t, err)

	rep, err := e.Run(context.Background(), prices)
	require.NoError(t, err)

	var oos1Cases, oos2Cases []int
	for _, s := range steps {
		oos1Cases = append(oos1Cases, s.OOS1Case)
		if s.OOS2Case >= 0 {
			oos2Cases = append(oos2Cases, s.OOS2Case)
		}
	}
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, oos1Cases)
	assert.Equal(t, []int{5, 6, 7, 8, 9}, oos2Cases)

	assert.Equal(t, contracts.WindowState{ISStart: 6, OOS1Start: 8, OOS1End: 9, OOS2Start: 5, OOS2End: 10}, rep.Window)
	assert.Len(t, rep.OOS2Returns, 5)

	// every criterion prefers the rising market
	for c, perf := range rep.CriterionPerf {
		assert.InDelta(t, Annualization*0.02, perf, 1e-9, "criterion %d", c)
	}
	assert.InDelta(t, Annualization*0.02, rep.FinalPerf, 1e-9)

	// equal OOS1 sums: the lowest criterion index wins every time
	assert.Equal(t, []int{5, 0, 0}, rep.ChosenCount)
}

func TestWindowInvariantsEveryStep(t *testing.T) {
	const isN, oos1N, nc = 5, 3, 40
	prices := [][]float64{
		linear(nc, 0, 0.001),
		linear(nc, 1, -0.002),
		linear(nc, 2, 0.0005),
	}
	for c := 0; c < nc; c += 3 {
		prices[1][c] += 0.01
	}

	e, err := NewEngine(Params{ISLength: isN, OOS1Length: oos1N}, criteria.Default(), 3, nc,
		WithStepObserver(func(s Step) {
			w := s.Window
			assert.Equal(t, isN, w.OOS1End-w.ISStart, "IS_start + IS_n - 1 == OOS1_end - 1")
			assert.LessOrEqual(t, w.OOS1Filled(), oos1N)
			assert.LessOrEqual(t, w.ISStart, w.OOS1Start)
			assert.LessOrEqual(t, w.OOS1Start, w.OOS1End)
			assert.LessOrEqual(t, w.OOS2Start, w.OOS2End)
			assert.LessOrEqual(t, w.OOS2End, nc)
			if s.OOS2Case >= 0 {
				assert.Equal(t, oos1N, w.OOS1Filled())
				assert.GreaterOrEqual(t, s.BestCriterion, 0)
			}
		}))
	require.NoError(t, err)

	rep, err := e.Run(context.Background(), prices)
	require.NoError(t, err)
	assert.Equal(t, nc-1, rep.Window.OOS1End)
	assert.Equal(t, nc, rep.Window.OOS2End)
	assert.Len(t, rep.OOS2Returns, nc-isN-oos1N)

	total := 0
	for _, n := range rep.ChosenCount {
		total += n
	}
	assert.Equal(t, nc-isN-oos1N, total)
}

func TestNoLookAhead(t *testing.T) {
	const nc = 20
	prices := [][]float64{linear(nc, 0, 1), linear(nc, 0, 1)}
	scorer := &lastSeenScorer{maxSeen: -1}

	e, err := NewEngine(Params{ISLength: 4, OOS1Length: 3}, scorer, 2, nc,
		WithStepObserver(func(s Step) {
			if s.OOS2Case >= 0 {
				assert.Equal(t, float64(s.OOS2Case-1), scorer.maxSeen, "OOS2 case %d", s.OOS2Case)
			} else {
				assert.Equal(t, float64(s.OOS1Case-1), scorer.maxSeen, "OOS1 case %d", s.OOS1Case)
			}
			scorer.maxSeen = -1
		}))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), prices)
	require.NoError(t, err)
}

func TestTieBreakKeepsLowestIndex(t *testing.T) {
	const nc = 12
	prices := [][]float64{
		linear(nc, 0, 0.01),
		linear(nc, 0, 0.05),
	}

	e, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, constScorer{n: 2}, 2, nc)
	require.NoError(t, err)

	rep, err := e.Run(context.Background(), prices)
	require.NoError(t, err)

	assert.InDelta(t, Annualization*0.01, rep.FinalPerf, 1e-9, "market 0 wins every tie")
	assert.Equal(t, []int{nc - 5, 0}, rep.ChosenCount)
}

func TestRunIsRepeatable(t *testing.T) {
	prices := [][]float64{
		{0, 0.1, 0.05, 0.2, 0.1, 0.3, 0.25, 0.2, 0.4, 0.35, 0.5, 0.45},
		{0, -0.1, 0.05, 0.1, 0.2, 0.15, 0.3, 0.35, 0.3, 0.4, 0.38, 0.6},
	}
	e, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, criteria.Default(), 2, 12)
	require.NoError(t, err)

	first, err := e.Run(context.Background(), prices)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), prices)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPreconditions(t *testing.T) {
	lib := criteria.Default()
	tests := []struct {
		name   string
		params Params
		nCases int
		field  string
	}{
		{name: "is_n below 2", params: Params{ISLength: 1, OOS1Length: 2}, nCases: 100, field: "is_n"},
		{name: "oos1_n below 1", params: Params{ISLength: 3, OOS1Length: 0}, nCases: 100, field: "oos1_n"},
		{name: "too few cases", params: Params{ISLength: 3, OOS1Length: 2}, nCases: 5, field: "n_cases"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.params, lib, 2, tt.nCases)
			var pe *contracts.PreconditionError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}

	_, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, lib, 2, 6)
	assert.NoError(t, err, "IS_n + OOS1_n + 1 cases is enough")
}

func TestRunShapeMismatch(t *testing.T) {
	e, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, criteria.Default(), 2, 10)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), [][]float64{linear(10, 0, 1)})
	assert.True(t, contracts.IsInvariantViolation(err))

	_, err = e.Run(context.Background(), [][]float64{linear(10, 0, 1), linear(9, 0, 1)})
	assert.True(t, contracts.IsInvariantViolation(err))
}

func TestRunCancelled(t *testing.T) {
	e, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, criteria.Default(), 1, 50)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := e.Run(ctx, [][]float64{linear(50, 0, 0.01)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rep)
}

func TestCancelledMidWalk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	steps := 0
	e, err := NewEngine(Params{ISLength: 3, OOS1Length: 2}, criteria.Default(), 1, 50,
		WithStepObserver(func(Step) {
			steps++
			if steps == 10 {
				cancel()
			}
		}))
	require.NoError(t, err)

	rep, err := e.Run(ctx, [][]float64{linear(50, 0, 0.01)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rep)
	assert.Equal(t, 10, steps)
}
