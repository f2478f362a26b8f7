package studyconfig

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CronParser parses schedules the same way the scheduler does
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the fields a study definition must get right.
// Zero numeric fields are left for ApplyDefaults.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return ValidationError{"name", "required"}
	}

	hasList := cfg.Source.List != ""
	hasDB := cfg.Source.Database != nil
	if hasList == hasDB {
		return ValidationError{"source", "exactly one of list or database is required"}
	}

	if hasDB {
		db := cfg.Source.Database
		if len(db.Codes) == 0 {
			return ValidationError{"source.database.codes", "at least one code is required"}
		}
		from, to, err := db.Range()
		if err != nil {
			return ValidationError{"source.database", fmt.Sprintf("dates must be %s: %v", DateLayout, err)}
		}
		if !from.Before(to) {
			return ValidationError{"source.database", "from must be before to"}
		}
	}

	if cfg.WalkForward.ISLength != 0 && cfg.WalkForward.ISLength < 2 {
		return ValidationError{"walkforward.is_n", "must be >= 2"}
	}
	if cfg.WalkForward.OOS1Length < 0 {
		return ValidationError{"walkforward.oos1_n", "must be >= 1"}
	}
	if cfg.Permutation.Replications < 0 {
		return ValidationError{"permutation.replications", "must be >= 0"}
	}
	if cfg.Permutation.Workers < 0 {
		return ValidationError{"permutation.workers", "must be >= 0"}
	}

	if cfg.Schedule != "" {
		if _, err := CronParser.Parse(cfg.Schedule); err != nil {
			return ValidationError{"schedule", err.Error()}
		}
	}

	return nil
}
