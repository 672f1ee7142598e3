package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/paths"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "Print the directories that will be searched",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			res := paths.NewResolver(cfg)
			out := cmd.OutOrStdout()

			sections := []struct {
				title string
				dirs  []string
			}{
				{"Data directories", res.DataDirs()},
				{"PATH directories", res.PathDirs()},
				{"Icon roots", res.IconRoots()},
			}
			for _, s := range sections {
				fmt.Fprintln(out, ui.Bold.Sprint(s.title))
				for _, d := range s.dirs {
					fmt.Fprintf(out, "  %s %s\n", ui.Bullet, d)
				}
			}

			log.Debug().Msg("printed search paths")
		},
	})

	return cmd
}
