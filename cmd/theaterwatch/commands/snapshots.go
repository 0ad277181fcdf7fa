package commands

import (
	"fmt"
	"path/filepath"
	"theaterwatch/lib/snapshotstore"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var snapshotsPrune *int

func init() {
	snapshotsPrune = snapshotsCmd.Flags().Int("prune", 0, "Delete all but the newest n snapshots first.")
	rootCmd.AddCommand(snapshotsCmd)
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots [--prune <n>]",
	Short: "Lists the stored snapshots.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := snapshotstore.New(config.SnapshotDir, telemetry.SlogAPI{})

		if *snapshotsPrune > 0 {
			pruned, err := store.Prune(ctx, *snapshotsPrune)
			if err != nil {
				return fmt.Errorf("failed to prune snapshots: %w", err)
			}
			fmt.Printf("Pruned %d snapshots\n", len(pruned))
		}

		dates, err := store.Dates(ctx)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Date", "Shows", "File"})
		for _, date := range dates {
			shows, err := store.Load(ctx, date)
			count := fmt.Sprint(len(shows))
			if err != nil {
				count = err.Error()
			}
			t.AppendRow(table.Row{
				date.Format(timezone.DateLayout),
				count,
				filepath.Join(store.Dir(), snapshotstore.FileName(date)),
			})
		}
		t.Render()
		return nil
	},
}
