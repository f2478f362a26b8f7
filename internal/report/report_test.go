package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/significance"
	"github.com/wonny/chooser/internal/study"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func fixture(pvalues bool) *Input {
	var p, fp *float64
	if pvalues {
		a, b := 0.25, 0.04
		p, fp = &a, &b
	}

	reps := 1
	if pvalues {
		reps = 25
	}

	return &Input{
		Files: []marketdata.FileSummary{
			{Name: "SPY", Source: "SPY.TXT", Records: 5000, First: day(2000, 1, 3), Last: day(2019, 12, 31)},
			{Name: "GLD", Source: "GLD.TXT", Records: 3800, First: day(2004, 11, 18), Last: day(2019, 12, 31)},
		},
		Matrix: &marketdata.Matrix{
			Names: []string{"SPY", "GLD"},
			Dates: []time.Time{day(2004, 11, 18), day(2019, 12, 31)},
		},
		Result: &study.Result{
			RunID:         "run-1",
			Options:       study.Options{ISLength: 1000, OOS1Length: 100, Seed: 123456789, Workers: 1},
			Benchmarks:    []study.MarketBenchmark{{Name: "SPY", Perf: 7.5}, {Name: "GLD", Perf: 5.25}},
			BenchmarkMean: 6.375,
			Summary: &significance.Summary{
				Replications: reps,
				Criteria: []significance.CriterionSummary{
					{Name: "Total return", Perf: 8.1234, PValue: p, ChosenPct: 50},
					{Name: "Sharpe ratio", Perf: -1.5, PValue: p, ChosenPct: 30},
					{Name: "Profit factor", Perf: 2, PValue: p, ChosenPct: 20},
				},
				FinalPerf:   9.87654,
				FinalPValue: fp,
			},
		},
	}
}

func TestWriteWithPValues(t *testing.T) {
	var buf bytes.Buffer
	in := fixture(true)
	in.StudyHash = "abc123"
	require.NoError(t, Write(&buf, in))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "CHOOSER log with IS_n=1000  OOS1_n=100  Reps=25\n"))
	assert.Contains(t, out, "Study abc123\n")
	assert.Contains(t, out, "Market file SPY.TXT had 5000 records from date 20000103 to 20191231\n")
	assert.Contains(t, out, "Merged database has 2 records from date 20041118 to 20191231\n")
	assert.Contains(t, out, "            SPY    7.5000\n")
	assert.Contains(t, out, "Mean =    6.3750\n")
	assert.Contains(t, out, "p-value, and percent of times chosen...")
	assert.Contains(t, out, "   Total return    8.1234  p=0.250  Chosen 50.0 pct\n")
	assert.Contains(t, out, "25200 * mean return of final system = 9.8765  p=0.040\n")
}

func TestWriteWithoutPValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, fixture(false)))

	out := buf.String()
	assert.NotContains(t, out, "p=")
	assert.NotContains(t, out, "Study ")
	assert.Contains(t, out, "25200 * mean return of each criterion, and percent of times chosen...")
	assert.Contains(t, out, "   Sharpe ratio   -1.5000  Chosen 30.0 pct\n")
	assert.True(t, strings.HasSuffix(out, "25200 * mean return of final system = 9.8765\n"))
}

func TestWriteCheck(t *testing.T) {
	var buf bytes.Buffer
	in := fixture(false)
	require.NoError(t, WriteCheck(&buf, in.Files, in.Matrix))

	assert.Equal(t,
		"Market file SPY.TXT had 5000 records from date 20000103 to 20191231\n"+
			"Market file GLD.TXT had 3800 records from date 20041118 to 20191231\n"+
			"\nMerged database has 2 records from date 20041118 to 20191231\n",
		buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesErrors(t *testing.T) {
	assert.EqualError(t, Write(failingWriter{}, fixture(true)), "disk full")
}
