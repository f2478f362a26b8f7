package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/chooser/internal/scheduler"
	"github.com/wonny/chooser/internal/scheduler/jobs"
	"github.com/wonny/chooser/internal/studyconfig"
	"github.com/wonny/chooser/pkg/config"
	"github.com/wonny/chooser/pkg/logger"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-run a study on a cron schedule",
	Long: `Re-runs a study on a cron schedule and rewrites its report after every run.

Schedules have a leading seconds field ("0 30 18 * * 1-5") or are
descriptors such as "@daily". The schedule comes from --cron or from the
study file's schedule field.

Subcommands:
  start   - run the scheduler until interrupted
  list    - show the job and its next run times
  run     - run the job once now

Example:
  go run ./cmd/chooser schedule start --study study.yaml
  go run ./cmd/chooser schedule start --list markets.txt --reps 500 --cron "@daily"
  go run ./cmd/chooser schedule list --study study.yaml`,
}

var (
	scheduleStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and runs the study on every tick until Ctrl+C.
Runs of the study never overlap; a tick that arrives while the previous
run is still going is skipped.`,
		Args: cobra.NoArgs,
		RunE: runScheduler,
	}

	scheduleListCmd = &cobra.Command{
		Use:   "list",
		Short: "Show the scheduled job",
		Args:  cobra.NoArgs,
		RunE:  listJobs,
	}

	scheduleRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled job once now",
		Args:  cobra.NoArgs,
		RunE:  runJobOnce,
	}

	scheduleFlags studyFlags
	cronExpr      string
	listCount     int
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)

	for _, c := range []*cobra.Command{scheduleStartCmd, scheduleListCmd, scheduleRunCmd} {
		scheduleFlags.bind(c)
		c.Flags().StringVar(&cronExpr, "cron", "", "cron expression with seconds field (overrides the study schedule)")
	}
	scheduleListCmd.Flags().IntVar(&listCount, "next", 5, "number of upcoming runs to show")
}

// scheduledStudy is a resolved study plus its schedule
type scheduledStudy struct {
	cfg      *config.Config
	log      *logger.Logger
	study    *studyconfig.Config
	hash     string
	schedule string
}

func (ss *scheduledStudy) jobName() string {
	return "study:" + ss.study.Name
}

func resolveScheduled(cmd *cobra.Command) (*scheduledStudy, error) {
	cfg, log, err := loadRuntime()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sc, hash, err := scheduleFlags.resolve(cmd, cfg.Study)
	if err != nil {
		return nil, err
	}

	schedule := sc.Schedule
	if cmd.Flags().Changed("cron") {
		schedule = cronExpr
	}
	if schedule == "" {
		return nil, fmt.Errorf("no schedule: set --cron or the study's schedule field")
	}
	if _, err := studyconfig.CronParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	return &scheduledStudy{
		cfg:      cfg,
		log:      log,
		study:    sc,
		hash:     hash,
		schedule: schedule,
	}, nil
}

// initScheduler opens the market source and registers the study job
func initScheduler(ctx context.Context, ss *scheduledStudy, stdout io.Writer) (*scheduler.Scheduler, func(), error) {
	src, cleanup, err := openSource(ctx, ss.cfg, ss.study, ss.log)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(ctx, ss.log)
	job := jobs.NewStudyJob(
		ss.jobName(),
		ss.schedule,
		src,
		newRunner(ss.study, ss.log),
		ss.study.Report,
		ss.hash,
		stdout,
		ss.log,
	)
	if err := sched.AddJob(job); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("add job: %w", err)
	}

	return sched, cleanup, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ss, err := resolveScheduled(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	sched, cleanup, err := initScheduler(ctx, ss, out)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	PrintSuccess(out, "Scheduler started")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Fprintf(out, "  - %s (%s, next %s)\n", jobName, ss.schedule, next.Format(time.DateTime))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	printStats(out, sched.GetJobStats())

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ss, err := resolveScheduled(cmd)
	if err != nil {
		return err
	}

	sched, err := studyconfig.CronParser.Parse(ss.schedule)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	PrintHeader(out, ss.jobName(), []KeyValue{
		{"Schedule", ss.schedule},
		{"Report", ss.study.Report},
		{"IS_n / OOS1_n", fmt.Sprintf("%d / %d", ss.study.WalkForward.ISLength, ss.study.WalkForward.OOS1Length)},
		{"Replications", fmt.Sprintf("%d", ss.study.Permutation.Replications)},
	})

	fmt.Fprintln(out, "Next runs:")
	t := time.Now()
	for i := 0; i < listCount; i++ {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		fmt.Fprintf(out, "   %d. %s\n", i+1, t.Format(time.DateTime))
	}

	return nil
}

func runJobOnce(cmd *cobra.Command, args []string) error {
	ss, err := resolveScheduled(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	sched, cleanup, err := initScheduler(ctx, ss, out)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Fprintf(out, "Running job: %s\n", ss.jobName())
	result, err := sched.RunJob(ss.jobName())
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	printStats(out, sched.GetJobStats())
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", result.JobName, result.Error)
	}
	return nil
}

func printStats(out io.Writer, stats map[string]scheduler.JobStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nJob Statistics:")
	fmt.Fprintln(out)

	for _, jobName := range names {
		stat := stats[jobName]
		fmt.Fprintf(out, "📊 %s\n", jobName)
		fmt.Fprintf(out, "   Schedule: %s\n", stat.Schedule)
		fmt.Fprintf(out, "   Total Runs: %d\n", stat.TotalRuns)
		fmt.Fprintf(out, "   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Fprintf(out, "   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Fprintf(out, "   Last Run: %s\n", stat.LastRun.Format(time.DateTime))
		}
		if stat.LastError != "" {
			fmt.Fprintf(out, "   Last Error: %s\n", stat.LastError)
		}
		if stat.NextRun != nil {
			fmt.Fprintf(out, "   Next Run: %s\n", stat.NextRun.Format(time.DateTime))
		}

		fmt.Fprintln(out)
	}
}
