package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lendline/delinq/internal/pipeline"
)

func newScheduleCommand() *cobra.Command {
	var configPath string
	var logDir string
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule <mode>",
		Short: "Run the pipeline on a cron schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pipeline.ParseMode(args[0])
			if err != nil {
				return err
			}
			return runSchedule(cmd.Context(), configPath, logDir, mode, spec)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "delinq.yaml", "path to delinq.yaml")
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "run log directory")
	cmd.Flags().StringVar(&spec, "cron", "30 6 * * *", "cron schedule")

	return cmd
}

func runSchedule(ctx context.Context, configPath, logDir string, mode pipeline.Mode, spec string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := runPipeline(ctx, configPath, logDir, mode, time.Now().UTC()); err != nil {
			logrus.WithError(err).WithField("mode", string(mode)).Error("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("parsing cron spec %q: %w", spec, err)
	}

	logrus.WithFields(logrus.Fields{"mode": string(mode), "cron": spec}).Info("scheduler started")
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return ctx.Err()
}
