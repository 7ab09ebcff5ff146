package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lendline/delinq/internal/calendar"
	"github.com/lendline/delinq/internal/config"
	"github.com/lendline/delinq/internal/delinquency"
	"github.com/lendline/delinq/internal/pipeline"
	"github.com/lendline/delinq/internal/reporting"
	"github.com/lendline/delinq/internal/runlog"
	"github.com/lendline/delinq/internal/warehouse"
)

func newRunCommand() *cobra.Command {
	var configPath string
	var logDir string

	cmd := &cobra.Command{
		Use:   "run <mode>",
		Short: "Run the delinquency pipeline once (mode: daily or historical)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pipeline.ParseMode(args[0])
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), configPath, logDir, mode, time.Now().UTC())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "delinq.yaml", "path to delinq.yaml")
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "run log directory")

	return cmd
}

func runPipeline(ctx context.Context, configPath, logDir string, mode pipeline.Mode, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyLogLevel(cfg.LogLevel)

	p, cleanup, err := buildPipeline(cfg, mode, now)
	if err != nil {
		return err
	}
	defer cleanup()

	res, runErr := p.Run(ctx, mode, now)

	entry := runlog.Entry{
		Timestamp:    now,
		Mode:         string(mode),
		AnalysisDate: pipeline.AnalysisDate(mode, now),
		RowsDeleted:  res.RowsDeleted,
		RowsInserted: res.RowsInserted,
		Status:       "ok",
	}
	if runErr != nil {
		entry.Status = runErr.Error()
	}
	if err := runlog.Append(logDir, []runlog.Entry{entry}); err != nil {
		logrus.WithError(err).Warn("writing run log")
	}

	return runErr
}

// buildPipeline assembles the calendar, calculator and both stores from
// configuration. The returned cleanup closes the database handles.
func buildPipeline(cfg *config.Config, mode pipeline.Mode, now time.Time) (*pipeline.Pipeline, func(), error) {
	cutoff, err := cfg.InceptionCutoff()
	if err != nil {
		return nil, nil, err
	}
	overrides, err := cfg.OverrideTable()
	if err != nil {
		return nil, nil, err
	}

	analysisDate := pipeline.AnalysisDate(mode, now)
	holidays := calendar.FederalHolidays(cfg.Calendar.HolidayBaseYear, analysisDate)
	calc := &delinquency.Calculator{
		Holidays:        holidays,
		Backdater:       calendar.MinuteStepper{Holidays: holidays},
		Overrides:       overrides,
		InceptionCutoff: cutoff,
	}

	warehouseDB, err := sql.Open("postgres", cfg.Warehouse.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening warehouse connection: %w", err)
	}
	reportingDB, err := sql.Open("postgres", cfg.Reporting.DSN)
	if err != nil {
		warehouseDB.Close()
		return nil, nil, fmt.Errorf("opening reporting connection: %w", err)
	}
	cleanup := func() {
		warehouseDB.Close()
		reportingDB.Close()
	}

	p := pipeline.New(
		warehouse.NewStore(warehouseDB),
		reporting.NewStore(reportingDB),
		calc,
		cfg.Loans.ExcludedIDs,
	)
	return p, cleanup, nil
}

func applyLogLevel(level string) {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
