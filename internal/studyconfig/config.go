package studyconfig

import (
	"time"

	"github.com/wonny/chooser/pkg/config"
)

// Config is a saved study definition
type Config struct {
	Name        string      `yaml:"name" json:"name"`
	Source      Source      `yaml:"source" json:"source"`
	WalkForward WalkForward `yaml:"walkforward" json:"walkforward"`
	Permutation Permutation `yaml:"permutation" json:"permutation"`
	Report      string      `yaml:"report" json:"report"`     // "-" for stdout
	Schedule    string      `yaml:"schedule" json:"schedule"` // cron with seconds field
}

// Source names exactly one market source
type Source struct {
	List     string          `yaml:"list" json:"list"`
	Database *DatabaseSource `yaml:"database" json:"database,omitempty"`
}

// DatabaseSource selects markets from data.daily_prices
type DatabaseSource struct {
	Codes []string `yaml:"codes" json:"codes"`
	From  string   `yaml:"from" json:"from"` // YYYY-MM-DD
	To    string   `yaml:"to" json:"to"`     // YYYY-MM-DD
	Cache bool     `yaml:"cache" json:"cache"`
}

// WalkForward holds the window lengths
type WalkForward struct {
	ISLength   int `yaml:"is_n" json:"is_n"`
	OOS1Length int `yaml:"oos1_n" json:"oos1_n"`
}

// Permutation holds the Monte-Carlo settings
type Permutation struct {
	Replications int    `yaml:"replications" json:"replications"`
	Seed         uint32 `yaml:"seed" json:"seed"`
	Workers      int    `yaml:"workers" json:"workers"`
}

// DateLayout is the date format of database ranges
const DateLayout = "2006-01-02"

// Range parses the database date range
func (d *DatabaseSource) Range() (time.Time, time.Time, error) {
	from, err := time.Parse(DateLayout, d.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(DateLayout, d.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// ApplyDefaults fills unset numeric fields and the report path from the
// environment defaults
func (c *Config) ApplyDefaults(d config.StudyConfig) {
	if c.WalkForward.ISLength == 0 {
		c.WalkForward.ISLength = d.ISLength
	}
	if c.WalkForward.OOS1Length == 0 {
		c.WalkForward.OOS1Length = d.OOS1Length
	}
	if c.Permutation.Replications == 0 {
		c.Permutation.Replications = d.Replications
	}
	if c.Permutation.Seed == 0 {
		c.Permutation.Seed = d.Seed
	}
	if c.Permutation.Workers == 0 {
		c.Permutation.Workers = d.Workers
	}
	if c.Report == "" {
		c.Report = d.ReportPath
	}
}
