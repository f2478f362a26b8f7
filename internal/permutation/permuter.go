// Package permutation builds null-hypothesis price histories by shuffling
// same-day log-price changes together across all markets.
package permutation

import (
	"sort"

	"github.com/wonny/chooser/internal/contracts"
)

// Range is a half-open case range [Offset, End). Case Offset-1 anchors the
// rebuild and is never written; case End-1 keeps its level because the
// shuffled changes sum to the same total.
type Range struct {
	Offset int
	End    int
}

// Len returns the number of changes shuffled in the range
func (r Range) Len() int {
	return r.End - r.Offset
}

// StudyRanges returns the three ranges a nested walk-forward study permutes:
// the first selection window, the criterion warm-up extension and the rest.
func StudyRanges(isN, oos1N, nCases int) []Range {
	return []Range{
		{Offset: 1, End: isN},
		{Offset: isN, End: isN + oos1N},
		{Offset: isN + oos1N, End: nCases},
	}
}

// ValidateRanges checks that every range sits inside the case grid and that
// no anchor or changed case of one range is changed by another.
func ValidateRanges(ranges []Range, nCases int) error {
	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Offset < sorted[b].Offset })

	for k, r := range sorted {
		if r.Offset < 1 {
			return contracts.Violation("permutation range [%d, %d) has offset below 1", r.Offset, r.End)
		}
		if r.End < r.Offset || r.End > nCases {
			return contracts.Violation("permutation range [%d, %d) outside [1, %d]", r.Offset, r.End, nCases)
		}
		if k > 0 && r.Offset < sorted[k-1].End {
			return contracts.Violation("permutation range [%d, %d) overlaps [%d, %d)",
				r.Offset, r.End, sorted[k-1].Offset, sorted[k-1].End)
		}
	}
	return nil
}

// Permuter shuffles a price grid in place. Prepare records the changes once;
// every Shuffle reorders those changes again and rebuilds the prices.
type Permuter struct {
	nMarkets int
	nCases   int
	ranges   []Range
	changes  [][]float64
	rng      Uniform
	prepared bool
}

// New creates a Permuter over nMarkets x nCases grids
func New(nMarkets, nCases int, ranges []Range, rng Uniform) (*Permuter, error) {
	if err := ValidateRanges(ranges, nCases); err != nil {
		return nil, err
	}

	changes := make([][]float64, nMarkets)
	for i := range changes {
		changes[i] = make([]float64, nCases)
	}

	return &Permuter{
		nMarkets: nMarkets,
		nCases:   nCases,
		ranges:   ranges,
		changes:  changes,
		rng:      rng,
	}, nil
}

// Prepare computes bar-to-bar changes of prices within every range
func (p *Permuter) Prepare(prices [][]float64) error {
	if err := p.checkShape(prices); err != nil {
		return err
	}

	for _, r := range p.ranges {
		for m := 0; m < p.nMarkets; m++ {
			row, ch := prices[m], p.changes[m]
			for c := r.Offset; c < r.End; c++ {
				ch[c] = row[c] - row[c-1]
			}
		}
	}
	p.prepared = true

	return nil
}

// Shuffle permutes every range and rebuilds prices from each anchor
func (p *Permuter) Shuffle(prices [][]float64) error {
	if !p.prepared {
		return contracts.Violation("shuffle before prepare")
	}
	if err := p.checkShape(prices); err != nil {
		return err
	}

	for _, r := range p.ranges {
		p.shuffleRange(r)
		p.rebuildRange(prices, r)
	}

	return nil
}

// shuffleRange runs one Fisher-Yates pass, one draw per position shared by
// every market
func (p *Permuter) shuffleRange(r Range) {
	i := r.Len()
	for i > 1 {
		j := int(p.rng.Float64() * float64(i))
		if j >= i {
			j = i - 1
		}
		i--

		a, b := i+r.Offset, j+r.Offset
		for m := 0; m < p.nMarkets; m++ {
			ch := p.changes[m]
			ch[a], ch[b] = ch[b], ch[a]
		}
	}
}

func (p *Permuter) rebuildRange(prices [][]float64, r Range) {
	for m := 0; m < p.nMarkets; m++ {
		row, ch := prices[m], p.changes[m]
		for c := r.Offset; c < r.End; c++ {
			row[c] = row[c-1] + ch[c]
		}
	}
}

func (p *Permuter) checkShape(prices [][]float64) error {
	if len(prices) != p.nMarkets {
		return contracts.Violation("permuter built for %d markets, got %d", p.nMarkets, len(prices))
	}
	for m, row := range prices {
		if len(row) != p.nCases {
			return contracts.Violation("permuter built for %d cases, market %d has %d", p.nCases, m, len(row))
		}
	}
	return nil
}
