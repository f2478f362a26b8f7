// Package report writes the plain-text study log.
package report

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/study"
)

// Input gathers everything printed in a report
type Input struct {
	StudyHash string // empty when no study file was used
	Files     []marketdata.FileSummary
	Matrix    *marketdata.Matrix
	Result    *study.Result
}

// Write renders the report
func Write(w io.Writer, in *Input) error {
	bw := bufio.NewWriter(w)
	res := in.Result
	opts := res.Options
	s := res.Summary

	fmt.Fprintf(bw, "CHOOSER log with IS_n=%d  OOS1_n=%d  Reps=%d\n", opts.ISLength, opts.OOS1Length, s.Replications)
	fmt.Fprintf(bw, "Run %s  seed=%d  workers=%d\n", res.RunID, opts.Seed, opts.Workers)
	if in.StudyHash != "" {
		fmt.Fprintf(bw, "Study %s\n", in.StudyHash)
	}

	fmt.Fprintln(bw)
	for _, f := range in.Files {
		fmt.Fprintf(bw, "Market file %s had %d records from date %s to %s\n",
			f.Source, f.Records, date(f.First), date(f.Last))
	}

	fmt.Fprintf(bw, "\nMerged database has %d records from date %s to %s\n",
		in.Matrix.NCases(), date(in.Matrix.FirstDate()), date(in.Matrix.LastDate()))

	fmt.Fprintf(bw, "\n25200 * mean return of each market in OOS2 period...\n")
	for _, b := range res.Benchmarks {
		fmt.Fprintf(bw, "%15s %9.4f\n", b.Name, b.Perf)
	}
	fmt.Fprintf(bw, "Mean = %9.4f\n", res.BenchmarkMean)

	withP := s.FinalPValue != nil
	if withP {
		fmt.Fprintf(bw, "\n25200 * mean return of each criterion, p-value, and percent of times chosen...\n")
	} else {
		fmt.Fprintf(bw, "\n25200 * mean return of each criterion, and percent of times chosen...\n")
	}
	for _, c := range s.Criteria {
		if c.PValue != nil {
			fmt.Fprintf(bw, "%15s %9.4f  p=%.3f  Chosen %.1f pct\n", c.Name, c.Perf, *c.PValue, c.ChosenPct)
		} else {
			fmt.Fprintf(bw, "%15s %9.4f  Chosen %.1f pct\n", c.Name, c.Perf, c.ChosenPct)
		}
	}

	if withP {
		fmt.Fprintf(bw, "\n25200 * mean return of final system = %.4f  p=%.3f\n", s.FinalPerf, *s.FinalPValue)
	} else {
		fmt.Fprintf(bw, "\n25200 * mean return of final system = %.4f\n", s.FinalPerf)
	}

	return bw.Flush()
}

// WriteCheck renders the ingestion-only summary of the check command
func WriteCheck(w io.Writer, files []marketdata.FileSummary, mx *marketdata.Matrix) error {
	bw := bufio.NewWriter(w)

	for _, f := range files {
		fmt.Fprintf(bw, "Market file %s had %d records from date %s to %s\n",
			f.Source, f.Records, date(f.First), date(f.Last))
	}
	fmt.Fprintf(bw, "\nMerged database has %d records from date %s to %s\n",
		mx.NCases(), date(mx.FirstDate()), date(mx.LastDate()))

	return bw.Flush()
}

func date(t time.Time) string {
	return marketdata.FormatDate(t)
}
