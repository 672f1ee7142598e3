package cmd

import (
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appseek",
		Short: "Live application launcher search",
		Long: `Index desktop applications and executables on PATH, and fuzzy-search them
as you type. The selected entry's command is printed, never executed.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			ui.InitColors(cfg.Logging.Color)
		},
	}

	// Add subcommands
	cmd.AddCommand(NewSearchCmd(cfg, log))
	cmd.AddCommand(NewStreamCmd(cfg, log))
	cmd.AddCommand(NewPickCmd(cfg, log))
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewStatsCmd(cfg, log))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewConfigCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
