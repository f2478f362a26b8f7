package jobs

import (
	"context"
	"io"

	"github.com/wonny/chooser/internal/marketdata"
	"github.com/wonny/chooser/internal/report"
	"github.com/wonny/chooser/internal/study"
	"github.com/wonny/chooser/pkg/logger"
)

// StudyJob re-runs a study on a schedule and rewrites its report
type StudyJob struct {
	name       string
	schedule   string
	source     marketdata.Source
	runner     *study.Runner
	reportPath string
	studyHash  string
	stdout     io.Writer
	logger     *logger.Logger
}

// NewStudyJob creates a new study job
func NewStudyJob(name, schedule string, source marketdata.Source, runner *study.Runner,
	reportPath, studyHash string, stdout io.Writer, log *logger.Logger) *StudyJob {
	return &StudyJob{
		name:       name,
		schedule:   schedule,
		source:     source,
		runner:     runner,
		reportPath: reportPath,
		studyHash:  studyHash,
		stdout:     stdout,
		logger:     log,
	}
}

// Name returns the job name
func (j *StudyJob) Name() string {
	return j.name
}

// Schedule returns the cron schedule
func (j *StudyJob) Schedule() string {
	return j.schedule
}

// Run executes the study and writes the report
func (j *StudyJob) Run(ctx context.Context) error {
	outcome, err := j.runner.Execute(ctx, j.source)
	if err != nil {
		return err
	}

	if err := report.WriteFile(j.reportPath, j.stdout, &report.Input{
		StudyHash: j.studyHash,
		Files:     outcome.Files,
		Matrix:    outcome.Matrix,
		Result:    outcome.Result,
	}); err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"job":        j.name,
		"run_id":     outcome.Result.RunID,
		"final_perf": outcome.Result.Summary.FinalPerf,
		"report":     j.reportPath,
	}).Info("Scheduled study written")

	return nil
}
