package commands

import (
	"errors"
	"fmt"
	"theaterwatch/lib/runlog"
	"theaterwatch/lib/timezone"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "The number of runs to show, 0 shows all.")
	rootCmd.AddCommand(historyCmd)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(timezone.Location).Format(timezone.DateLayout)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Lists past runs, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !config.RunLog.Enabled() {
			return errors.New("cannot show history: run log is disabled")
		}

		db, err := config.RunLog.OpenDB()
		if err != nil {
			return fmt.Errorf("failed to open run log: %w", err)
		}
		store, err := runlog.NewStore(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to open run log: %w", err)
		}
		defer store.Close()

		runs, err := store.List(ctx, *historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{
			"#", "Date", "Previous", "Status", "Scraped",
			"New", "Updated", "Removed", "Unchanged", "Errors",
			"Emailed", "Took", "Message",
		})
		for _, run := range runs {
			t.AppendRow(table.Row{
				run.ID,
				formatDay(run.RunDate),
				formatDay(run.PreviousDate),
				run.Status,
				run.Scraped,
				run.Added,
				run.Updated,
				run.Removed,
				run.Unchanged,
				run.Errors,
				run.Emailed,
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
				run.Message,
			})
		}
		t.Render()
		return nil
	},
}
