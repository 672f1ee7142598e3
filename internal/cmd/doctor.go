package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/fsops"
	"github.com/quantmind-br/appseek/internal/paths"
	"github.com/quantmind-br/appseek/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the directories appseek reads",
		Long:  `Check that data, PATH and icon directories exist and are readable, and report the environment they were derived from.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fs := afero.NewOsFs()
			res := paths.NewResolver(cfg)

			ui.PrintHeader("System Diagnostics")

			var issues []string
			var warnings []string

			// 1. Data directories
			ui.PrintSubheader("Data Directories")
			dataOK := checkDirs(fs, res.DataDirs(), verbose, &warnings)
			if dataOK == 0 {
				issues = append(issues, "No readable data directory: desktop applications cannot be discovered")
			}

			// 2. PATH directories
			ui.PrintSubheader("PATH Directories")
			pathOK := checkDirs(fs, res.PathDirs(), verbose, &warnings)
			if pathOK == 0 {
				issues = append(issues, "No readable PATH directory: executables cannot be discovered")
			}
			if verbose {
				for _, dir := range res.PathDirs() {
					if n := nonExecutable(fs, dir); n > 0 {
						ui.PrintInfo("%s: %d entries not executable by you (still listed)", dir, n)
					}
				}
			}

			// 3. Icon roots
			ui.PrintSubheader("Icon Roots")
			iconOK := 0
			for _, root := range res.IconRoots() {
				if fsops.Exists(fs, root) {
					iconOK++
					ui.PrintSuccess("%s", root)
				} else if verbose {
					ui.PrintInfo("%s: not present", root)
				}
			}
			if iconOK == 0 {
				warnings = append(warnings, "No icon root found: every icon_path will be unset")
			}

			// 4. Environment
			ui.PrintSubheader("Environment")
			checkEnvironment()

			// Summary
			ui.PrintHeader("Summary")

			if len(issues) == 0 {
				ui.PrintSuccess("All critical checks passed!")
			} else {
				ui.PrintError("Found %d issue(s):", len(issues))
				ui.PrintList(issues)
			}

			if len(warnings) > 0 {
				ui.PrintWarning("Found %d warning(s):", len(warnings))
				ui.PrintList(warnings)
			}

			log.Debug().Int("issues", len(issues)).Int("warnings", len(warnings)).Msg("doctor finished")

			if len(issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also report missing optional directories")

	return cmd
}

// checkDirs reports each directory and returns how many can be enumerated.
// Missing directories are normal for XDG defaults and only shown in verbose
// mode; unreadable ones are warnings.
func checkDirs(fs afero.Fs, dirs []string, verbose bool, warnings *[]string) int {
	ok := 0
	for _, dir := range dirs {
		status := fsops.InspectDir(fs, dir)
		switch {
		case status.OK():
			if err := fsops.CheckAccess(dir); err != nil {
				ui.PrintWarning("%s: %v", dir, err)
				*warnings = append(*warnings, fmt.Sprintf("Directory not searchable: %s", dir))
				continue
			}
			ok++
			ui.PrintSuccess("%s (%d entries)", dir, status.Entries)
		case !status.Exists:
			if verbose {
				ui.PrintInfo("%s: not present", dir)
			}
		default:
			ui.PrintWarning("%s: %v", dir, status.Err)
			*warnings = append(*warnings, fmt.Sprintf("Directory not readable: %s", dir))
		}
	}
	return ok
}

// nonExecutable counts regular files in dir the current user cannot execute
func nonExecutable(fs afero.Fs, dir string) int {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Mode().IsRegular() && !fsops.IsExecutable(filepath.Join(dir, e.Name())) {
			n++
		}
	}
	return n
}

// checkEnvironment prints the variables directory lists are derived from
func checkEnvironment() {
	for _, name := range []string{"XDG_DATA_HOME", "XDG_DATA_DIRS", "PATH"} {
		value := os.Getenv(name)
		if value != "" {
			ui.PrintSuccess("%s: %s", name, value)
		} else {
			ui.PrintInfo("%s: not set (using defaults)", name)
		}
	}
}
