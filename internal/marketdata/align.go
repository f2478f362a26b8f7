package marketdata

import (
	"math"
	"time"

	"github.com/wonny/chooser/internal/contracts"
)

// Matrix is the date-aligned price grid, Prices[market][case].
// Every market shares Dates[case].
type Matrix struct {
	Names  []string
	Dates  []time.Time
	Prices [][]float64
	IsLog  bool
}

// MinCases is the smallest case count that completes one walk-forward step
func MinCases(isN, oos1N int) int {
	return isN + oos1N + 1
}

// Align intersects the markets' date sets with one cursor per market and
// returns the close prices on the common dates. Fewer than minCases common
// dates is an InputError.
// ⭐ SSOT: S0 → S1 날짜 정렬
func Align(markets []*contracts.Market, minCases int) (*Matrix, error) {
	if len(markets) == 0 {
		return nil, contracts.NewInputError("alignment", 0, "no markets to align")
	}

	nm := len(markets)
	cursor := make([]int, nm)
	mx := &Matrix{
		Names:  make([]string, nm),
		Prices: make([][]float64, nm),
	}
	for i, m := range markets {
		mx.Names[i] = m.Name
	}

	for {
		var maxDate time.Time
		for i, m := range markets {
			if cursor[i] >= len(m.Bars) {
				return finishAlign(mx, minCases)
			}
			if d := m.Bars[cursor[i]].Date; d.After(maxDate) {
				maxDate = d
			}
		}

		allSame := true
		for i, m := range markets {
			for cursor[i] < len(m.Bars) && m.Bars[cursor[i]].Date.Before(maxDate) {
				cursor[i]++
			}
			if cursor[i] >= len(m.Bars) {
				return finishAlign(mx, minCases)
			}
			if !m.Bars[cursor[i]].Date.Equal(maxDate) {
				allSame = false
			}
		}

		if !allSame {
			continue
		}

		for i, m := range markets {
			bar := m.Bars[cursor[i]]
			if !bar.Date.Equal(maxDate) {
				return nil, contracts.Violation("market %s at %s, aligned date %s",
					m.Name, FormatDate(bar.Date), FormatDate(maxDate))
			}
			mx.Prices[i] = append(mx.Prices[i], bar.Close)
			cursor[i]++
		}
		mx.Dates = append(mx.Dates, maxDate)
	}
}

func finishAlign(mx *Matrix, minCases int) (*Matrix, error) {
	if minCases < 2 {
		minCases = 2
	}
	if len(mx.Dates) < minCases {
		return nil, contracts.NewInputError("alignment", 0,
			"only %d common dates across %d markets, need at least %d",
			len(mx.Dates), len(mx.Names), minCases)
	}
	return mx, nil
}

// NMarkets returns the number of markets
func (mx *Matrix) NMarkets() int {
	return len(mx.Names)
}

// NCases returns the number of aligned cases
func (mx *Matrix) NCases() int {
	return len(mx.Dates)
}

// FirstDate returns the first aligned date
func (mx *Matrix) FirstDate() time.Time {
	return mx.Dates[0]
}

// LastDate returns the last aligned date
func (mx *Matrix) LastDate() time.Time {
	return mx.Dates[len(mx.Dates)-1]
}

// ToLog converts prices to natural logs. It runs exactly once per matrix.
func (mx *Matrix) ToLog() error {
	if mx.IsLog {
		return contracts.Violation("matrix already holds log prices")
	}

	for i, row := range mx.Prices {
		for j, p := range row {
			if p <= 0 {
				return contracts.NewInputError(mx.Names[i], 0, "non-positive price %g on %s",
					p, FormatDate(mx.Dates[j]))
			}
		}
	}

	for _, row := range mx.Prices {
		for j := range row {
			row[j] = math.Log(row[j])
		}
	}
	mx.IsLog = true

	return nil
}

// Clone returns a deep copy of the price grid. Names and Dates are shared
// read-only.
func (mx *Matrix) Clone() *Matrix {
	out := &Matrix{
		Names:  mx.Names,
		Dates:  mx.Dates,
		Prices: make([][]float64, len(mx.Prices)),
		IsLog:  mx.IsLog,
	}
	for i, row := range mx.Prices {
		out.Prices[i] = append([]float64(nil), row...)
	}
	return out
}

// Markets converts the matrix back into flat-bar markets, one bar per case
func (mx *Matrix) Markets() []*contracts.Market {
	out := make([]*contracts.Market, len(mx.Names))
	for i, name := range mx.Names {
		m := &contracts.Market{Name: name, Source: "matrix", Bars: make([]contracts.Bar, len(mx.Dates))}
		for j, d := range mx.Dates {
			p := mx.Prices[i][j]
			m.Bars[j] = contracts.Bar{Date: d, Open: p, High: p, Low: p, Close: p}
		}
		out[i] = m
	}
	return out
}

// FileSummary describes one ingested market
type FileSummary struct {
	Name    string
	Source  string
	Records int
	First   time.Time
	Last    time.Time
}

// Summarize returns one FileSummary per market in input order
func Summarize(markets []*contracts.Market) []FileSummary {
	out := make([]FileSummary, len(markets))
	for i, m := range markets {
		out[i] = FileSummary{
			Name:    m.Name,
			Source:  m.Source,
			Records: m.Len(),
			First:   m.FirstDate(),
			Last:    m.LastDate(),
		}
	}
	return out
}
