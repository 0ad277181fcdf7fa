package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"theaterwatch/lib/serviceutil"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/timezone"
	"theaterwatch/services/theaterwatch"
	"time"

	"github.com/spf13/cobra"
)

var (
	watchSchedule *string
	watchNoEmail  *bool
	watchNow      *bool
)

func init() {
	watchSchedule = watchCmd.Flags().String("schedule", "", "A 5 field cron spec in London time, overrides the configured schedule.")
	watchNoEmail = watchCmd.Flags().Bool("no-email", false, "Do not send email reports.")
	watchNow = watchCmd.Flags().Bool("now", false, "Also run once immediately.")
	rootCmd.AddCommand(watchCmd)
}

func scheduledRun(ctx context.Context, service theaterwatch.Service, noEmail bool) {
	result, err := service.Run(ctx, theaterwatch.RunOptions{NoEmail: noEmail})
	if err != nil {
		slog.ErrorContext(ctx, "scheduled run failed", "err", err)
		return
	}
	slog.InfoContext(
		ctx, "scheduled run finished",
		"date", result.Date.Format(timezone.DateLayout),
		"changes", result.ChangeSet.Counts().String(),
		"errors", len(result.Errors),
		"emailed", result.Emailed,
	)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--schedule <cron spec>] [--now]",
	Short: "Runs the pipeline on a schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		if *watchSchedule != "" {
			config.Schedule = *watchSchedule
		}
		if config.Schedule == "" {
			return errors.New("cannot watch: no schedule configured")
		}
		if *watchNoEmail {
			config.Email.Enabled = false
		}

		deps, err := openService(ctx, theaterwatch.OpenOptions{})
		if err != nil {
			return fmt.Errorf("failed to open service: %w", err)
		}
		defer deps.Close()

		cron := timezone.NewCron(telemetry.SlogAPI{})
		err = cron.Add(config.Schedule, func() {
			scheduledRun(ctx, deps.Service, *watchNoEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule run: %w", err)
		}

		telemetry.InstrumentPerfStats(ctx, time.Minute)
		cron.Start()
		slog.InfoContext(ctx, "watching theaters", "schedule", config.Schedule, "theaters", len(deps.Service.Sources()))

		if *watchNow {
			scheduledRun(ctx, deps.Service, *watchNoEmail)
		}

		<-ctx.Done()
		slog.Info("shutting down, waiting for a running scrape to finish")
		cron.Stop()
		return nil
	},
}
