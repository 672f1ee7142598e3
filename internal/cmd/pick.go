package cmd

import (
	"fmt"
	"strings"

	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/desktop"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewPickCmd creates the pick command
func NewPickCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "pick [query...]",
		Short: "Interactively choose an application",
		Long: `Prompt for a query (unless given as arguments), then let you choose among the
ranked matches. The chosen entry's command is printed to stdout with desktop
field codes removed, ready to be run by the caller.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			eng := newEngine(cfg, log, false)
			defer eng.Close()

			if err := startIndexed(ctx, eng, cmd.ErrOrStderr(), true); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			if query == "" {
				q, err := ui.InputPrompt("Search", "", ui.ValidateNonEmpty)
				if err != nil {
					return err
				}
				query = q
			}

			results, err := eng.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if len(results) == 0 {
				ui.PrintWarning("No entries match %q", query)
				return ErrNoMatch
			}

			_, choice, err := ui.SelectPromptDetailed("Launch", selectOptions(results, raw))
			if err != nil {
				return err
			}

			log.Debug().Str("query", query).Str("command", choice.Value).Msg("entry picked")
			fmt.Fprintln(cmd.OutOrStdout(), choice.Value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the command with field codes intact")

	return cmd
}

func selectOptions(results []core.RankedResult, raw bool) []ui.SelectOption {
	options := make([]ui.SelectOption, len(results))
	for i, r := range results {
		command := r.Entry.Command
		if !raw {
			command = desktop.StripFieldCodes(command)
		}
		options[i] = ui.SelectOption{
			Label:  r.Entry.DisplayName,
			Detail: r.Entry.Description,
			Value:  command,
		}
	}
	return options
}
