package commands

import (
	"errors"
	"fmt"
	"strings"
	"theaterwatch/lib/serviceutil"
	"theaterwatch/lib/timezone"
	"theaterwatch/lib/venues"
	"theaterwatch/services/theaterwatch"

	"github.com/spf13/cobra"
)

var (
	runNoEmail  *bool
	runTheaters *[]string
	runDate     *string
	runDumpHttp *string
)

func init() {
	runNoEmail = runCmd.Flags().Bool("no-email", false, "Do not send the email report.")
	runTheaters = runCmd.Flags().StringSlice(
		"theaters", nil,
		fmt.Sprintf("Only scrape these theater ids (%s).", strings.Join(venues.IDs(), ", ")),
	)
	runDate = runCmd.Flags().String("date", "", "The snapshot date as YYYY-MM-DD, today in London by default.")
	runDumpHttp = runCmd.Flags().String("dump-http", "", "Write every static request and response to a new dump-* directory inside this one.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--no-email] [--theaters <id,...>] [--date <YYYY-MM-DD>]",
	Short: "Scrapes every theater once, stores the snapshot and reports what changed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		opts := theaterwatch.RunOptions{
			Theaters: *runTheaters,
			NoEmail:  *runNoEmail,
		}
		if *runDate != "" {
			date, err := timezone.ParseDate(*runDate)
			if err != nil {
				return err
			}
			opts.Date = date
		}
		if *runNoEmail {
			config.Email.Enabled = false
		}

		deps, err := openService(ctx, theaterwatch.OpenOptions{DumpHttp: *runDumpHttp})
		if err != nil {
			return err
		}
		defer deps.Close()

		result, err := deps.Service.Run(ctx, opts)
		if err == nil || errors.Is(err, theaterwatch.ErrNothingScraped) {
			printResult(result)
		}
		return err
	},
}
