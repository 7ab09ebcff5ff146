// Package config loads the delinq.yaml configuration: store connection
// strings, calendar constants, the excluded-loan list and the
// expected-amount override table.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lendline/delinq/internal/delinquency"
)

const dateFormat = "2006-01-02"

// Config represents the top-level delinq.yaml configuration.
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Reporting ReportingConfig `yaml:"reporting"`
	LogLevel  string          `yaml:"log_level"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Loans     LoansConfig     `yaml:"loans"`
	Overrides []OverrideSpec  `yaml:"overrides,omitempty"`
}

// WarehouseConfig points at the upstream data warehouse.
type WarehouseConfig struct {
	DSN string `yaml:"dsn"`
}

// ReportingConfig points at the downstream reporting store.
type ReportingConfig struct {
	DSN string `yaml:"dsn"`
}

// CalendarConfig holds the business-calendar constants.
type CalendarConfig struct {
	HolidayBaseYear int    `yaml:"holiday_base_year"`
	InceptionCutoff string `yaml:"inception_cutoff"` // "YYYY-MM-DD"
}

// LoansConfig holds loan-level data-quality exclusions.
type LoansConfig struct {
	ExcludedIDs []int64 `yaml:"excluded_ids,omitempty"`
}

// OverrideSpec is one externally configured expected-amount override.
// Kind selects the formula; the remaining fields parameterize it.
type OverrideSpec struct {
	LoanID int64  `yaml:"loan_id"`
	Kind   string `yaml:"kind"` // "weekly_accrual" | "two_rate_daily"

	// weekly_accrual parameters.
	Base   float64 `yaml:"base,omitempty"`
	Rate   float64 `yaml:"rate,omitempty"`
	Anchor string  `yaml:"anchor,omitempty"` // "YYYY-MM-DD"

	// two_rate_daily parameters.
	PivotDays  float64 `yaml:"pivot_days,omitempty"`
	FirstRate  float64 `yaml:"first_rate,omitempty"`
	SecondRate float64 `yaml:"second_rate,omitempty"`
	Piecewise  bool    `yaml:"piecewise,omitempty"`
}

// Load reads a delinq.yaml file from disk and applies environment
// overrides: DELINQ_WAREHOUSE_DSN, DELINQ_REPORTING_DSN and LOG_LEVEL.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Warehouse.DSN = getEnv("DELINQ_WAREHOUSE_DSN", cfg.Warehouse.DSN)
	cfg.Reporting.DSN = getEnv("DELINQ_REPORTING_DSN", cfg.Reporting.DSN)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if cfg.Warehouse.DSN == "" {
		return nil, fmt.Errorf("warehouse DSN is required")
	}
	if cfg.Reporting.DSN == "" {
		return nil, fmt.Errorf("reporting DSN is required")
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config carrying the documented constants: the 2009
// holiday base year, the 2011-01-01 inception cutoff, the four excluded
// loan ids and the three historical expected-amount overrides.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Calendar: CalendarConfig{
			HolidayBaseYear: 2009,
			InceptionCutoff: "2011-01-01",
		},
		Loans: LoansConfig{
			ExcludedIDs: []int64{1, 34, 57, 312},
		},
		Overrides: []OverrideSpec{
			{LoanID: 27, Kind: "weekly_accrual", Base: 50600, Rate: 4500, Anchor: "2020-07-15"},
			{LoanID: 99, Kind: "two_rate_daily", PivotDays: 55, FirstRate: 213, SecondRate: 700},
			{LoanID: 56, Kind: "two_rate_daily", PivotDays: 103, FirstRate: 200, SecondRate: 500, Piecewise: true},
		},
	}
}

// InceptionCutoff parses the configured program-inception date.
func (c *Config) InceptionCutoff() (time.Time, error) {
	t, err := time.Parse(dateFormat, c.Calendar.InceptionCutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing inception_cutoff: %w", err)
	}
	return t, nil
}

// OverrideTable builds the delinquency override table from the configured
// specs.
func (c *Config) OverrideTable() (delinquency.Table, error) {
	table := make(delinquency.Table, len(c.Overrides))
	for _, spec := range c.Overrides {
		switch spec.Kind {
		case "weekly_accrual":
			anchor, err := time.Parse(dateFormat, spec.Anchor)
			if err != nil {
				return nil, fmt.Errorf("override for loan %d: parsing anchor: %w", spec.LoanID, err)
			}
			table[spec.LoanID] = delinquency.WeeklyAccrual{Base: spec.Base, Rate: spec.Rate, Anchor: anchor}
		case "two_rate_daily":
			table[spec.LoanID] = delinquency.TwoRateDaily{
				PivotDays:  spec.PivotDays,
				FirstRate:  spec.FirstRate,
				SecondRate: spec.SecondRate,
				Piecewise:  spec.Piecewise,
			}
		default:
			return nil, fmt.Errorf("override for loan %d: unknown kind %q", spec.LoanID, spec.Kind)
		}
	}
	return table, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
