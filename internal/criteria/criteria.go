// Package criteria scores a log-price window. The walk-forward engine only
// ever sees criteria as indices into a Library.
package criteria

import (
	"fmt"
	"math"
)

// Kind identifies a built-in criterion
type Kind int

const (
	TotalReturn Kind = iota
	SharpeRatio
	ProfitFactor
)

// floor keeps denominators positive on flat or one-sided windows
const floor = 1.e-60

// String returns the display name used in reports
func (k Kind) String() string {
	switch k {
	case TotalReturn:
		return "Total return"
	case SharpeRatio:
		return "Sharpe ratio"
	case ProfitFactor:
		return "Profit factor"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Func scores a window of log prices, len(window) >= 2
type Func func(window []float64) float64

// Score evaluates a built-in criterion. Unknown kinds score -1e60 so they never win.
func Score(kind Kind, window []float64) float64 {
	switch kind {
	case TotalReturn:
		return totalReturn(window)
	case SharpeRatio:
		return sharpeRatio(window)
	case ProfitFactor:
		return profitFactor(window)
	default:
		return -1.e60
	}
}

func totalReturn(prices []float64) float64 {
	return prices[len(prices)-1] - prices[0]
}

func sharpeRatio(prices []float64) float64 {
	n := len(prices)
	mean := (prices[n-1] - prices[0]) / float64(n-1)

	variance := floor
	for i := 1; i < n; i++ {
		diff := (prices[i] - prices[i-1]) - mean
		variance += diff * diff
	}

	return mean / math.Sqrt(variance/float64(n-1))
}

func profitFactor(prices []float64) float64 {
	winSum, loseSum := floor, floor

	for i := 1; i < len(prices); i++ {
		ret := prices[i] - prices[i-1]
		if ret > 0.0 {
			winSum += ret
		} else {
			loseSum -= ret
		}
	}

	return winSum / loseSum
}

type entry struct {
	name string
	fn   Func
}

// Library is an ordered, index-addressed set of criteria
type Library struct {
	entries []entry
}

// Default returns TotalReturn, SharpeRatio, ProfitFactor at indices 0, 1, 2
func Default() *Library {
	lib := &Library{}
	for _, k := range []Kind{TotalReturn, SharpeRatio, ProfitFactor} {
		kind := k
		lib.Register(kind.String(), func(w []float64) float64 { return Score(kind, w) })
	}
	return lib
}

// Register appends a criterion and returns its index
func (l *Library) Register(name string, fn Func) int {
	l.entries = append(l.entries, entry{name: name, fn: fn})
	return len(l.entries) - 1
}

// Len returns the number of criteria
func (l *Library) Len() int {
	return len(l.entries)
}

// Name returns the display name of criterion i
func (l *Library) Name(i int) string {
	return l.entries[i].name
}

// Names returns all display names in index order
func (l *Library) Names() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.name
	}
	return names
}

// Score evaluates criterion i on window
func (l *Library) Score(i int, window []float64) float64 {
	return l.entries[i].fn(window)
}
