package criteria

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monotone rising log prices, no losing bar
var rising = []float64{0.0, 0.01, 0.025, 0.03, 0.05, 0.07}

func TestTotalReturn(t *testing.T) {
	assert.Equal(t, rising[len(rising)-1]-rising[0], Score(TotalReturn, rising))
	assert.Equal(t, -0.5, Score(TotalReturn, []float64{1.0, 0.7, 0.5}))
}

func TestMonotoneSeries(t *testing.T) {
	pf := Score(ProfitFactor, rising)
	assert.False(t, math.IsInf(pf, 0))
	assert.False(t, math.IsNaN(pf))
	assert.Greater(t, pf, 1e50, "no losses should give a huge but finite profit factor")

	sr := Score(SharpeRatio, rising)
	assert.False(t, math.IsInf(sr, 0))
	assert.Greater(t, sr, 0.0)
}

func TestFlatAndFallingWindows(t *testing.T) {
	flat := []float64{2, 2, 2, 2}

	sr := Score(SharpeRatio, flat)
	assert.Equal(t, 0.0, sr, "zero mean over floored variance")

	pf := Score(ProfitFactor, flat)
	assert.InDelta(t, 1.0, pf, 1e-12)

	falling := []float64{1.0, 0.9, 0.8}
	pf = Score(ProfitFactor, falling)
	assert.GreaterOrEqual(t, pf, 0.0)
	assert.Less(t, pf, 1e-50)
	assert.Less(t, Score(SharpeRatio, falling), 0.0)
}

func TestSharpeRatioValue(t *testing.T) {
	// deltas: +0.1, -0.1, +0.3 -> mean 0.1, squared deviations 0, 0.04, 0.04
	w := []float64{0, 0.1, 0.0, 0.3}
	want := 0.1 / math.Sqrt(0.08/3)
	assert.InDelta(t, want, Score(SharpeRatio, w), 1e-12)
}

func TestProfitFactorValue(t *testing.T) {
	w := []float64{0, 0.2, 0.1, 0.4}
	// wins 0.2+0.3, losses 0.1
	assert.InDelta(t, 5.0, Score(ProfitFactor, w), 1e-9)
}

func TestUnknownKind(t *testing.T) {
	assert.Equal(t, -1.e60, Score(Kind(42), rising))
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestDefaultLibrary(t *testing.T) {
	lib := Default()
	require.Equal(t, 3, lib.Len())
	assert.Equal(t, []string{"Total return", "Sharpe ratio", "Profit factor"}, lib.Names())

	for i, k := range []Kind{TotalReturn, SharpeRatio, ProfitFactor} {
		assert.Equal(t, Score(k, rising), lib.Score(i, rising), k.String())
	}
}

func TestRegister(t *testing.T) {
	lib := Default()
	idx := lib.Register("Last bar", func(w []float64) float64 { return w[len(w)-1] - w[len(w)-2] })

	assert.Equal(t, 3, idx)
	assert.Equal(t, "Last bar", lib.Name(idx))
	assert.InDelta(t, 0.02, lib.Score(idx, rising), 1e-12)
}
