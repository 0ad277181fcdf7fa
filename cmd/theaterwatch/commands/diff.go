package commands

import (
	"fmt"
	"theaterwatch/lib/report"
	"theaterwatch/lib/showdiff"
	"theaterwatch/lib/snapshotstore"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/timezone"

	"github.com/spf13/cobra"
)

var (
	diffUnchanged *bool
	diffReport    *bool
)

func init() {
	diffUnchanged = diffCmd.Flags().Bool("unchanged", false, "Also list unchanged shows.")
	diffReport = diffCmd.Flags().Bool("report", false, "Print the email report instead of a table.")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff <from YYYY-MM-DD> <to YYYY-MM-DD>",
	Short: "Compares two stored snapshots.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, err := timezone.ParseDate(args[0])
		if err != nil {
			return fmt.Errorf("invalid from date: %w", err)
		}
		to, err := timezone.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("invalid to date: %w", err)
		}
		fields, err := config.Fields()
		if err != nil {
			return fmt.Errorf("invalid compare fields: %w", err)
		}

		store := snapshotstore.New(config.SnapshotDir, telemetry.SlogAPI{})
		previous, err := store.Load(ctx, from)
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		current, err := store.Load(ctx, to)
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}

		cs, err := showdiff.NewComparer(fields...).Compare(previous, current)
		if err != nil {
			return fmt.Errorf("failed to compare snapshots: %w", err)
		}
		hints := showdiff.RenameHints(cs, config.HintThreshold)

		if !*diffReport {
			printChangeSet(cs, hints, *diffUnchanged)
			return nil
		}
		r, err := report.Build(report.Input{
			SubjectPrefix: config.Email.SubjectPrefix,
			Date:          to,
			PreviousDate:  from,
			ChangeSet:     cs,
			Hints:         hints,
		})
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		fmt.Println(r.Subject)
		fmt.Println()
		fmt.Print(r.Body)
		return nil
	},
}
