package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/chooser/internal/criteria"
	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/study"
	"github.com/wonny/chooser/internal/studyconfig"
	"github.com/wonny/chooser/pkg/config"
	"github.com/wonny/chooser/pkg/database"
	"github.com/wonny/chooser/pkg/logger"
	"github.com/wonny/chooser/pkg/redis"
)

// allCodes selects every code in data.daily_prices with enough bars
const allCodes = "*"

// studyFlags are shared by run, check and schedule
type studyFlags struct {
	studyFile string

	list  string
	codes []string
	from  string
	to    string
	cache bool

	isN     int
	oos1N   int
	reps    int
	seed    uint32
	workers int
	report  string
}

func (f *studyFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.studyFile, "study", "", "study definition YAML")
	fs.StringVar(&f.list, "list", "", "market list file (one history file per line)")
	fs.StringSliceVar(&f.codes, "codes", nil, `stock codes loaded from data.daily_prices ("*" = all)`)
	fs.StringVar(&f.from, "from", "", "first date for --codes (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "last date for --codes (YYYY-MM-DD)")
	fs.BoolVar(&f.cache, "cache", false, "cache database histories in Redis")
	fs.IntVar(&f.isN, "is", 0, "IS_n: bars scored when picking a market (default CHOOSER_IS_N)")
	fs.IntVar(&f.oos1N, "oos1", 0, "OOS1_n: bars of criterion track record (default CHOOSER_OOS1_N)")
	fs.IntVar(&f.reps, "reps", 0, "replications, 1 = no permutation test (default CHOOSER_REPS)")
	fs.Uint32Var(&f.seed, "seed", 0, "generator seed (default CHOOSER_SEED)")
	fs.IntVar(&f.workers, "workers", 0, "parallel replication workers (default CHOOSER_WORKERS)")
	fs.StringVar(&f.report, "report", "", `report path, "-" for stdout (default CHOOSER_REPORT)`)
}

// applyPositional accepts the classic "LIST IS_n OOS1_n REPS" arguments
func (f *studyFlags) applyPositional(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 4 {
		return fmt.Errorf("expected LIST IS_n OOS1_n REPS, got %d arguments", len(args))
	}

	for i, name := range []string{"is", "oos1", "reps"} {
		if err := cmd.Flags().Set(name, args[i+1]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return cmd.Flags().Set("list", args[0])
}

// resolve builds the effective study: the YAML file or the source flags,
// then environment defaults, then explicit numeric flags
func (f *studyFlags) resolve(cmd *cobra.Command, defaults config.StudyConfig) (*studyconfig.Config, string, error) {
	fs := cmd.Flags()

	var sc *studyconfig.Config
	var hash string
	if f.studyFile != "" {
		if fs.Changed("list") || fs.Changed("codes") {
			return nil, "", fmt.Errorf("--study cannot be combined with --list or --codes")
		}
		loaded, _, err := studyconfig.Load(f.studyFile)
		if err != nil {
			return nil, "", err
		}
		sc = loaded
	} else {
		sc = &studyconfig.Config{Name: "cli"}
		sc.Source.List = f.list
		if len(f.codes) > 0 {
			sc.Source.Database = &studyconfig.DatabaseSource{
				Codes: f.codes,
				From:  f.from,
				To:    f.to,
				Cache: f.cache,
			}
		}
	}

	sc.ApplyDefaults(defaults)

	if fs.Changed("is") {
		sc.WalkForward.ISLength = f.isN
	}
	if fs.Changed("oos1") {
		sc.WalkForward.OOS1Length = f.oos1N
	}
	if fs.Changed("reps") {
		sc.Permutation.Replications = f.reps
	}
	if fs.Changed("seed") {
		sc.Permutation.Seed = f.seed
	}
	if fs.Changed("workers") {
		sc.Permutation.Workers = f.workers
	}
	if fs.Changed("report") {
		sc.Report = f.report
	}
	if fs.Changed("cache") && sc.Source.Database != nil {
		sc.Source.Database.Cache = f.cache
	}

	if err := studyconfig.Validate(sc); err != nil {
		return nil, "", err
	}

	if f.studyFile != "" {
		h, err := studyconfig.Hash(sc)
		if err != nil {
			return nil, "", fmt.Errorf("hash study: %w", err)
		}
		hash = h
	}

	return sc, hash, nil
}

// runnerOptions maps a study definition to runner options
func runnerOptions(sc *studyconfig.Config) study.Options {
	return study.Options{
		ISLength:     sc.WalkForward.ISLength,
		OOS1Length:   sc.WalkForward.OOS1Length,
		Replications: sc.Permutation.Replications,
		Seed:         sc.Permutation.Seed,
		Workers:      sc.Permutation.Workers,
	}
}

// newRunner creates a runner over the default criterion library
func newRunner(sc *studyconfig.Config, log *logger.Logger) *study.Runner {
	return study.NewRunner(criteria.Default(), log, runnerOptions(sc))
}

// openSource builds the market source of sc. The returned cleanup closes
// any connection it opened.
func openSource(ctx context.Context, cfg *config.Config, sc *studyconfig.Config, log *logger.Logger) (marketdata.Source, func(), error) {
	if sc.Source.Database == nil {
		return marketdata.NewFileListSource(sc.Source.List), func() {}, nil
	}

	dbSrc := sc.Source.Database
	from, to, err := dbSrc.Range()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	cleanup := []func(){db.Close}
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	repo := marketdata.NewPriceRepository(db.Pool)

	codes := dbSrc.Codes
	if len(codes) == 1 && codes[0] == allCodes {
		minCases := marketdata.MinCases(sc.WalkForward.ISLength, sc.WalkForward.OOS1Length)
		codes, err = repo.ListCodes(ctx, from, to, minCases)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("list codes: %w", err)
		}
		log.WithField("codes", len(codes)).Info("Selected all codes with enough history")
	}

	var loader marketdata.HistoryLoader = repo
	if dbSrc.Cache {
		rc, err := redis.New(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		cleanup = append(cleanup, func() { _ = rc.Close() })

		if rc.Enabled() {
			loader = marketdata.NewCachedLoader(repo, redis.NewCache(rc, "chooser"), cfg.Redis.CacheTTL, log)
		} else {
			log.Warn("Redis is disabled (REDIS_ENABLED=false), loading without cache")
		}
	}

	return marketdata.NewDatabaseSource(loader, codes, from, to, log), closeAll, nil
}
