package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/appseek/internal/cache"
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type listedEntry struct {
	Shard int    `json:"shard"`
	Seq   int    `json:"seq"`
	Kind  string `json:"kind"`
	core.ResultView
}

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput  bool
		filterKind  string
		filterName  string
		filterShard int
		showDetails bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed entries",
		Long:  `Index everything and list the cached entries shard by shard, in insertion order.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch filterKind {
			case "", string(core.KindDesktop), string(core.KindBinary):
			default:
				return fmt.Errorf("invalid --source %q: must be %q or %q", filterKind, core.KindDesktop, core.KindBinary)
			}

			ctx := commandContext(cmd)
			eng := newEngine(cfg, log, false)
			defer eng.Close()

			if err := startIndexed(ctx, eng, cmd.ErrOrStderr(), !jsonOutput); err != nil {
				return err
			}

			entries := collectEntries(eng.Caches(), filterShard, filterKind, filterName)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			if len(entries) == 0 {
				ui.PrintWarning("No entries found matching filters")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d entries\n\n", len(entries))
			if showDetails {
				printDetailedTable(cmd, entries)
			} else {
				printCompactTable(cmd, entries)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filterKind, "source", "", "filter by source (desktop, bin)")
	cmd.Flags().StringVar(&filterName, "name", "", "filter by name (partial match)")
	cmd.Flags().IntVar(&filterShard, "shard", -1, "only list one shard")
	cmd.Flags().BoolVarP(&showDetails, "details", "d", false, "show detailed information")

	return cmd
}

// collectEntries flattens the shard caches, applying the filters
func collectEntries(caches cache.Set, shard int, kind, name string) []listedEntry {
	entries := make([]listedEntry, 0)
	name = strings.ToLower(name)

	for i, c := range caches {
		if shard >= 0 && i != shard {
			continue
		}
		for seq, e := range c.Snapshot() {
			if kind != "" && string(e.Kind()) != kind {
				continue
			}
			if name != "" && !strings.Contains(strings.ToLower(e.DisplayName), name) {
				continue
			}
			entries = append(entries, listedEntry{
				Shard:      i,
				Seq:        seq,
				Kind:       string(e.Kind()),
				ResultView: core.RankedResult{Entry: e}.View(),
			})
		}
	}

	return entries
}

// printCompactTable prints a compact table view
func printCompactTable(cmd *cobra.Command, entries []listedEntry) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Name", "Kind", "Shard", "Command"}),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, e := range entries {
		table.Append(
			e.Name,
			ui.ColorizeKind(e.Kind),
			strconv.Itoa(e.Shard),
			truncate(e.Command, 50),
		)
	}

	table.Render()
}

// printDetailedTable prints a detailed table view
func printDetailedTable(cmd *cobra.Command, entries []listedEntry) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Name", "Kind", "Shard", "Seq", "Command", "Icon", "Source"}),
		tablewriter.WithAlignment(tw.MakeAlign(7, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for _, e := range entries {
		icon := e.IconPath
		if icon == "" {
			icon = "-"
		}
		source := e.Source
		if source == "" {
			source = "-"
		}

		table.Append(
			e.Name,
			ui.ColorizeKind(e.Kind),
			strconv.Itoa(e.Shard),
			strconv.Itoa(e.Seq),
			truncate(e.Command, 40),
			truncate(icon, 40),
			truncate(source, 40),
		)
	}

	table.Render()
}

// truncate shortens s from the left, keeping its end
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-(max-3):]
}
