package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/report"
	"github.com/wonny/chooser/internal/study"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Ingest, validate and align markets without running a study",
		Long: `Reads every market, validates its bars, aligns the markets on common
dates and prints the per-market and merged summaries. The alignment uses
the same minimum case count a study with the given IS_n / OOS1_n needs.

Example:
  go run ./cmd/chooser check --list markets.txt
  go run ./cmd/chooser check --study study.yaml`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	checkFlags studyFlags
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkFlags.bind(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sc, _, err := checkFlags.resolve(cmd, cfg.Study)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, cleanup, err := openSource(ctx, cfg, sc, log)
	if err != nil {
		return err
	}
	defer cleanup()

	minCases := marketdata.MinCases(sc.WalkForward.ISLength, sc.WalkForward.OOS1Length)
	files, mx, err := study.Prepare(ctx, src, minCases, log)
	if err != nil {
		log.WithError(err).Error("Check failed")
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.WriteCheck(out, files, mx); err != nil {
		return err
	}

	fmt.Fprintln(out)
	PrintSuccess(out, fmt.Sprintf("%d markets aligned on %d common dates (need %d)",
		mx.NMarkets(), mx.NCases(), minCases))
	return nil
}
