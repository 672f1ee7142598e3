package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/engine"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show indexing statistics",
		Long:  `Index everything and report per-shard sizes, drops by reason and icon resolution counts.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			eng := newEngine(cfg, log, false)
			defer eng.Close()

			if err := startIndexed(ctx, eng, cmd.ErrOrStderr(), !jsonOutput); err != nil {
				return err
			}

			stats := eng.Stats()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			printStats(cmd, stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func printStats(cmd *cobra.Command, s engine.Stats) {
	out := cmd.OutOrStdout()

	counters := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Counter", "Value"}),
		tablewriter.WithAlignment(tw.Alignment{tw.AlignLeft, tw.AlignRight}),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)
	counters.Append("discovered", fmt.Sprint(s.Discovered))
	counters.Append("skipped (unreadable)", fmt.Sprint(s.WalkSkipped))
	counters.Append("cached", fmt.Sprint(s.Parsed))
	counters.Append("dropped", fmt.Sprint(s.TotalDropped()))
	for _, d := range s.Dropped {
		counters.Append("  "+d.Kind, fmt.Sprint(d.Count))
	}
	counters.Append("icons resolved", fmt.Sprint(s.IconsResolved))
	counters.Append("icons missing", fmt.Sprint(s.IconsMissing))
	counters.Append("icon lookups", fmt.Sprint(s.IconLookups))
	counters.Render()

	fmt.Fprintln(out)

	shards := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Shard", "Entries"}),
		tablewriter.WithAlignment(tw.Alignment{tw.AlignLeft, tw.AlignRight}),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)
	for i, n := range s.ShardSizes {
		shards.Append(strconv.Itoa(i), strconv.Itoa(n))
	}
	shards.Render()

	if !s.Indexed {
		ui.PrintWarning("initial walk did not complete")
	}
}
