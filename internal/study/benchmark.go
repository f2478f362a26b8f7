package study

import (
	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/walkforward"
)

// MarketBenchmark is one market's buy-and-hold return over the OOS2 period
type MarketBenchmark struct {
	Name string  `json:"name"`
	Perf float64 `json:"perf"`
}

// Benchmarks returns Annualization * mean log return of each market over the
// OOS2 cases, measured from case IS_n+OOS1_n-1, and their mean
func Benchmarks(mx *marketdata.Matrix, params walkforward.Params) ([]MarketBenchmark, float64) {
	base := params.ISLength + params.OOS1Length - 1
	last := mx.NCases() - 1
	n := float64(last - base)

	out := make([]MarketBenchmark, mx.NMarkets())
	sum := 0.0
	for i, name := range mx.Names {
		perf := walkforward.Annualization * (mx.Prices[i][last] - mx.Prices[i][base]) / n
		out[i] = MarketBenchmark{Name: name, Perf: perf}
		sum += perf
	}

	return out, sum / float64(len(out))
}
