package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/engine"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type streamUpdate struct {
	Query   string            `json:"query"`
	Indexed bool              `json:"indexed"`
	Total   int               `json:"total"`
	Results []core.ResultView `json:"results"`
}

// NewStreamCmd creates the stream command
func NewStreamCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Answer queries read line by line from stdin",
		Long: `Read one query per line from stdin and print the results of the most recent
query whenever they change: on every new line and while indexing adds entries.
Older queries still waiting are dropped in favour of the newest one.
Applications installed while it runs are picked up, including ones in
directories created after startup.
Stops at end of input, after printing the final results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			eng := newEngine(cfg, log, true)
			updates := eng.Subscribe()
			if err := eng.Start(ctx); err != nil {
				return fmt.Errorf("start engine: %w", err)
			}

			printed := make(chan struct{})
			go func() {
				defer close(printed)
				printUpdates(cmd.OutOrStdout(), updates, jsonOutput)
			}()

			lines := make(chan string)
			scanErr := make(chan error, 1)
			go func() {
				defer close(lines)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					select {
					case lines <- scanner.Text():
					case <-ctx.Done():
						return
					}
				}
				scanErr <- scanner.Err()
			}()

			var (
				last      string
				submitted bool
			)
		read:
			for {
				select {
				case <-ctx.Done():
					break read
				case line, ok := <-lines:
					if !ok {
						break read
					}
					if err := eng.Submit(line); err != nil {
						return fmt.Errorf("submit query: %w", err)
					}
					last, submitted = line, true
				}
			}

			// the last query is evaluated once more against the complete index
			if submitted && ctx.Err() == nil {
				if err := eng.WaitIndexed(ctx); err == nil {
					_ = eng.Submit(last)
				}
			}

			closeErr := eng.Close()
			<-printed

			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case err := <-scanErr:
				if err != nil {
					return fmt.Errorf("read queries: %w", err)
				}
			default:
			}
			return closeErr
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print one JSON object per update")

	return cmd
}

// printUpdates writes every distinct update until updates is closed
func printUpdates(w io.Writer, updates <-chan engine.Update, jsonOutput bool) {
	var prev *streamUpdate
	enc := json.NewEncoder(w)

	for u := range updates {
		su := streamUpdate{
			Query:   u.Query,
			Indexed: u.Indexed,
			Total:   u.Total,
			Results: views(u.Results),
		}
		if prev != nil && sameUpdate(*prev, su) {
			continue
		}
		prev = &su

		if jsonOutput {
			_ = enc.Encode(su)
			continue
		}

		state := "indexed"
		if !u.Indexed {
			state = "indexing"
		}
		fmt.Fprintf(w, "%s %s %s\n",
			ui.Arrow,
			ui.Bold.Sprintf("%q", u.Query),
			ui.Muted.Sprintf("(%d matches in %d entries, %s)", len(u.Results), u.Total, state),
		)
		printResults(w, u.Results)
	}
}

func sameUpdate(a, b streamUpdate) bool {
	if a.Query != b.Query || a.Indexed != b.Indexed || a.Total != b.Total || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Results {
		if a.Results[i].Command != b.Results[i].Command || a.Results[i].Score != b.Results[i].Score {
			return false
		}
	}
	return true
}
