// Package significance turns replication results into Monte-Carlo
// permutation p-values.
package significance

import (
	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/internal/walkforward"
)

// CriterionSummary is one criterion's row of the study summary
type CriterionSummary struct {
	Name        string   `json:"name"`
	Perf        float64  `json:"perf"`
	PValue      *float64 `json:"p_value,omitempty"`
	ChosenCount int      `json:"chosen_count"`
	ChosenPct   float64  `json:"chosen_pct"`
}

// Summary is the aggregated study outcome
type Summary struct {
	Replications int                `json:"replications"`
	Criteria     []CriterionSummary `json:"criteria"`
	FinalPerf    float64            `json:"final_perf"`
	FinalPValue  *float64           `json:"final_p_value,omitempty"`
}

// Aggregator compares permuted replications with the unpermuted one.
// Replication 0 sets the references and counts toward every counter.
type Aggregator struct {
	names        []string
	replications int
	observed     int

	critRef    []float64
	critCount  []int
	finalRef   float64
	finalCount int
	chosen     []int
}

// NewAggregator creates an Aggregator. replications < 1 is treated as 1.
func NewAggregator(criterionNames []string, replications int) *Aggregator {
	if replications < 1 {
		replications = 1
	}
	return &Aggregator{
		names:        criterionNames,
		replications: replications,
		critRef:      make([]float64, len(criterionNames)),
		critCount:    make([]int, len(criterionNames)),
	}
}

// Observe folds in replication rep. Replications must arrive in order.
func (a *Aggregator) Observe(rep int, r *walkforward.Replication) error {
	if rep != a.observed {
		return contracts.Violation("replication %d observed, expected %d", rep, a.observed)
	}
	if rep >= a.replications {
		return contracts.Violation("replication %d beyond %d requested", rep, a.replications)
	}
	if len(r.CriterionPerf) != len(a.names) {
		return contracts.Violation("replication has %d criteria, want %d", len(r.CriterionPerf), len(a.names))
	}

	if rep == 0 {
		copy(a.critRef, r.CriterionPerf)
		for i := range a.critCount {
			a.critCount[i] = 1
		}
		a.finalRef = r.FinalPerf
		a.finalCount = 1
		a.chosen = append([]int(nil), r.ChosenCount...)
	} else {
		for i, perf := range r.CriterionPerf {
			if perf >= a.critRef[i] {
				a.critCount[i]++
			}
		}
		if r.FinalPerf >= a.finalRef {
			a.finalCount++
		}
	}

	a.observed++
	return nil
}

// Done reports whether every requested replication has been observed
func (a *Aggregator) Done() bool {
	return a.observed == a.replications
}

// Summary reports per-criterion and final results. P-values are nil when
// only one replication was requested.
func (a *Aggregator) Summary() (*Summary, error) {
	if !a.Done() {
		return nil, contracts.Violation("summary after %d of %d replications", a.observed, a.replications)
	}

	totalChosen := 0
	for _, n := range a.chosen {
		totalChosen += n
	}

	s := &Summary{
		Replications: a.replications,
		Criteria:     make([]CriterionSummary, len(a.names)),
		FinalPerf:    a.finalRef,
		FinalPValue:  a.pValue(a.finalCount),
	}

	for i, name := range a.names {
		cs := CriterionSummary{
			Name:   name,
			Perf:   a.critRef[i],
			PValue: a.pValue(a.critCount[i]),
		}
		if i < len(a.chosen) {
			cs.ChosenCount = a.chosen[i]
		}
		if totalChosen > 0 {
			cs.ChosenPct = 100.0 * float64(cs.ChosenCount) / float64(totalChosen)
		}
		s.Criteria[i] = cs
	}

	return s, nil
}

func (a *Aggregator) pValue(count int) *float64 {
	if a.replications == 1 {
		return nil
	}
	p := float64(count) / float64(a.replications)
	return &p
}
