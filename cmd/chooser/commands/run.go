package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/chooser/internal/report"
)

var (
	runCmd = &cobra.Command{
		Use:   "run [LIST IS_n OOS1_n REPS]",
		Short: "Run a market-selection study",
		Long: `Loads the markets, aligns them on common dates, runs the nested
walk-forward selection and, when REPS > 1, the permutation test.

The study comes from --study, or from --list / --codes plus the numeric
flags. Numeric flags override the study file, which overrides the
CHOOSER_* environment defaults.

Flags:
  --study     study definition YAML
  --list      market list file
  --codes     stock codes from data.daily_prices ("*" = all), with --from / --to
  --cache     cache database histories in Redis
  --is        IS_n
  --oos1      OOS1_n
  --reps      replications (1 = no permutation test)
  --seed      generator seed
  --workers   parallel replication workers
  --report    report path ("-" for stdout)

Example:
  go run ./cmd/chooser run markets.txt 1000 100 100
  go run ./cmd/chooser run --list markets.txt --is 250 --oos1 50 --reps 1000 --workers 8
  go run ./cmd/chooser run --codes 005930,000660 --from 2015-01-01 --to 2024-12-31 --cache
  go run ./cmd/chooser run --study study.yaml --report -`,
		Args: cobra.MaximumNArgs(4),
		RunE: runStudy,
	}

	runFlags studyFlags
)

func init() {
	rootCmd.AddCommand(runCmd)
	runFlags.bind(runCmd)
}

func runStudy(cmd *cobra.Command, args []string) error {
	if err := runFlags.applyPositional(cmd, args); err != nil {
		return err
	}

	cfg, log, err := loadRuntime()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sc, hash, err := runFlags.resolve(cmd, cfg.Study)
	if err != nil {
		log.WithError(err).Error("Invalid study")
		return err
	}
	if hash != "" {
		log.WithFields(map[string]interface{}{
			"study": sc.Name,
			"hash":  hash,
		}).Info("Study definition loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, cleanup, err := openSource(ctx, cfg, sc, log)
	if err != nil {
		log.WithError(err).Error("Open market source failed")
		return err
	}
	defer cleanup()

	outcome, err := newRunner(sc, log).Execute(ctx, src)
	if err != nil {
		log.WithError(err).Error("Study failed")
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.WriteFile(sc.Report, out, &report.Input{
		StudyHash: hash,
		Files:     outcome.Files,
		Matrix:    outcome.Matrix,
		Result:    outcome.Result,
	}); err != nil {
		log.WithError(err).Error("Write report failed")
		return err
	}

	// stdout already carries the report
	if sc.Report != "-" {
		PrintStudySummary(out, outcome, sc.Report)
	}

	return nil
}
