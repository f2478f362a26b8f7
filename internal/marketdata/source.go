package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/pkg/logger"
)

// Source loads the competing market histories for a study
type Source interface {
	Load(ctx context.Context) ([]*contracts.Market, error)
}

// HistoryLoader loads one market's bars over a date range
type HistoryLoader interface {
	LoadHistory(ctx context.Context, code string, from, to time.Time) (*contracts.Market, error)
}

// FileListSource reads market files named in a list file
type FileListSource struct {
	ListPath string
}

// NewFileListSource creates a FileListSource
func NewFileListSource(listPath string) *FileListSource {
	return &FileListSource{ListPath: listPath}
}

// Load reads and validates every market in the list
func (s *FileListSource) Load(ctx context.Context) ([]*contracts.Market, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markets, err := ReadMarketList(s.ListPath)
	if err != nil {
		return nil, err
	}

	if err := ValidateMarkets(markets); err != nil {
		return nil, err
	}

	return markets, nil
}

// DatabaseSource loads markets by code through a HistoryLoader
type DatabaseSource struct {
	loader HistoryLoader
	codes  []string
	from   time.Time
	to     time.Time
	log    *logger.Logger
}

// NewDatabaseSource creates a DatabaseSource over [from, to]
func NewDatabaseSource(loader HistoryLoader, codes []string, from, to time.Time, log *logger.Logger) *DatabaseSource {
	return &DatabaseSource{
		loader: loader,
		codes:  codes,
		from:   from,
		to:     to,
		log:    log.WithField("stage", contracts.StageIngest.ShortName()),
	}
}

// Load fetches each code in order and validates the result
func (s *DatabaseSource) Load(ctx context.Context) ([]*contracts.Market, error) {
	if len(s.codes) == 0 {
		return nil, contracts.NewInputError("database", 0, "no market codes requested")
	}

	markets := make([]*contracts.Market, 0, len(s.codes))
	for _, code := range s.codes {
		m, err := s.loader.LoadHistory(ctx, code, s.from, s.to)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", code, err)
		}

		s.log.WithFields(map[string]interface{}{
			"code":    code,
			"records": m.Len(),
		}).Debug("Market history loaded")

		markets = append(markets, m)
	}

	if err := ValidateMarkets(markets); err != nil {
		return nil, err
	}

	return markets, nil
}
