package commands

import (
	"fmt"
	"theaterwatch/lib/venues"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(theatersCmd)
}

var theatersCmd = &cobra.Command{
	Use:   "theaters",
	Short: "Lists the monitored theaters after config overrides.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := config.ResolveSources(venues.Defaults())
		if err != nil {
			return fmt.Errorf("invalid source overrides: %w", err)
		}
		parsers := venues.Parsers()

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Venue", "Kind", "Parser", "Origin", "URL"})
		for _, src := range sources {
			_, ok := parsers[src.ID]
			origin := "config"
			if builtin, found := venues.Lookup(src.ID); found {
				origin = "built in"
				if builtin != src {
					origin = "overridden"
				}
			}
			t.AppendRow(table.Row{src.ID, src.Venue, src.Kind, ok, origin, src.URL})
		}
		t.Render()
		return nil
	},
}
