package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/desktop"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command
func NewSearchCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		quiet      bool
		first      bool
	)

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search applications once",
		Long: `Index every application and executable, then print the entries matching
the query, best first. Words are joined with single spaces.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			query := strings.Join(args, " ")

			searchCfg := *cfg
			if limit > 0 {
				searchCfg.Search.Limit = limit
			}
			eng := newEngine(&searchCfg, log, false)
			defer eng.Close()

			if err := startIndexed(ctx, eng, cmd.ErrOrStderr(), !jsonOutput && !quiet); err != nil {
				return err
			}

			results, err := eng.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			log.Debug().Str("query", query).Int("results", len(results)).Msg("search complete")

			out := cmd.OutOrStdout()
			switch {
			case first:
				if len(results) == 0 {
					return ErrNoMatch
				}
				fmt.Fprintln(out, desktop.StripFieldCodes(results[0].Entry.Command))
				return nil
			case jsonOutput:
				return writeJSON(out, views(results))
			}

			if len(results) == 0 {
				if !quiet {
					ui.PrintWarning("No entries match %q", query)
				}
				return ErrNoMatch
			}
			printResults(out, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress or warnings")
	cmd.Flags().BoolVar(&first, "first", false, "print only the best match's command")

	return cmd
}

func views(results []core.RankedResult) []core.ResultView {
	out := make([]core.ResultView, len(results))
	for i, r := range results {
		out[i] = r.View()
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResults prints one block per result: rank, highlighted name, kind and
// score, then the description and command
func printResults(w io.Writer, results []core.RankedResult) {
	for i, r := range results {
		e := r.Entry
		fmt.Fprintf(w, "%3d. %s  %s %s\n",
			i+1,
			ui.HighlightMatches(e.DisplayName, r.MatchedIndices),
			ui.ColorizeKind(string(e.Kind())),
			ui.Muted.Sprintf("(%d)", r.Score),
		)
		if e.Description != "" && e.Description != e.Command {
			fmt.Fprintf(w, "     %s\n", ui.Muted.Sprint(e.Description))
		}
		fmt.Fprintf(w, "     %s %s\n", ui.Arrow, e.Command)
	}
}
