package study

import (
	"context"
	"fmt"

	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/pkg/logger"
)

// Outcome is a finished study with the data it ran on
type Outcome struct {
	Files  []marketdata.FileSummary
	Matrix *marketdata.Matrix
	Result *Result
}

// Prepare loads, aligns and log-converts the markets of src. The matrix is
// trimmed to the common dates and holds log prices.
func Prepare(ctx context.Context, src marketdata.Source, minCases int, log *logger.Logger) ([]marketdata.FileSummary, *marketdata.Matrix, error) {
	markets, err := src.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load markets: %w", err)
	}
	files := marketdata.Summarize(markets)

	for _, f := range files {
		log.WithFields(map[string]interface{}{
			"stage":   contracts.StageIngest.ShortName(),
			"market":  f.Name,
			"records": f.Records,
			"first":   marketdata.FormatDate(f.First),
			"last":    marketdata.FormatDate(f.Last),
		}).Debug("Market loaded")
	}

	mx, err := marketdata.Align(markets, minCases)
	if err != nil {
		return nil, nil, fmt.Errorf("align markets: %w", err)
	}
	if err := mx.ToLog(); err != nil {
		return nil, nil, err
	}

	log.WithFields(map[string]interface{}{
		"stage":   contracts.StageAlign.ShortName(),
		"markets": mx.NMarkets(),
		"cases":   mx.NCases(),
		"first":   marketdata.FormatDate(mx.FirstDate()),
		"last":    marketdata.FormatDate(mx.LastDate()),
	}).Info("Markets aligned")

	return files, mx, nil
}

// Execute prepares the data of src and runs the study on it
func (r *Runner) Execute(ctx context.Context, src marketdata.Source) (*Outcome, error) {
	params := r.opts.Params()
	if err := params.Validate(params.MinCases()); err != nil {
		return nil, err
	}

	files, mx, err := Prepare(ctx, src, params.MinCases(), r.log)
	if err != nil {
		return nil, err
	}

	res, err := r.Run(ctx, mx)
	if err != nil {
		return nil, err
	}

	return &Outcome{Files: files, Matrix: mx, Result: res}, nil
}
