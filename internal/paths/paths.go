package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/appseek/internal/config"
)

// Resolver centralizes the directories appseek searches.
// Values come from the configuration when set, otherwise from the XDG and PATH
// environment of the current user.
type Resolver struct {
	homeDir string
	cfg     *config.Config
	getenv  func(string) string
}

// NewResolver creates a Resolver using the current user's HOME and environment.
func NewResolver(cfg *config.Config) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
		getenv:  os.Getenv,
	}
}

// NewResolverWithEnv creates a Resolver with an explicit home and environment (useful for tests).
func NewResolverWithEnv(cfg *config.Config, homeDir string, getenv func(string) string) *Resolver {
	return &Resolver{
		homeDir: homeDir,
		cfg:     cfg,
		getenv:  getenv,
	}
}

// HomeDir returns the resolved HOME directory.
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// DataHome returns $XDG_DATA_HOME, defaulting to ~/.local/share.
func (r *Resolver) DataHome() string {
	if v := r.getenv("XDG_DATA_HOME"); v != "" && filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(r.homeDir, ".local", "share")
}

// DataDirs returns the data directories searched for desktop descriptors:
// the data home first, then $XDG_DATA_DIRS (default /usr/local/share:/usr/share).
func (r *Resolver) DataDirs() []string {
	if r.cfg != nil && len(r.cfg.Paths.DataDirs) > 0 {
		return dedupe(r.cfg.Paths.DataDirs)
	}

	dirs := []string{r.DataHome()}
	system := r.getenv("XDG_DATA_DIRS")
	if system == "" {
		system = "/usr/local/share:/usr/share"
	}
	dirs = append(dirs, splitList(system)...)
	return dedupe(dirs)
}

// PathDirs returns the directories listed for bare executables.
func (r *Resolver) PathDirs() []string {
	if r.cfg != nil && len(r.cfg.Paths.PathDirs) > 0 {
		return dedupe(r.cfg.Paths.PathDirs)
	}
	return dedupe(splitList(r.getenv("PATH")))
}

// IconRoots returns the ordered icon-theme roots: configured icon dirs, then
// each theme under ~/.icons and every data dir, then the generic fallbacks last.
func (r *Resolver) IconRoots() []string {
	var roots []string
	if r.cfg != nil {
		roots = append(roots, r.cfg.Paths.IconDirs...)
	}

	themes := []string{"hicolor"}
	var fallbacks []string
	if r.cfg != nil {
		if len(r.cfg.Icons.Themes) > 0 {
			themes = r.cfg.Icons.Themes
		}
		fallbacks = r.cfg.Icons.FallbackDirs
	}

	bases := append([]string{filepath.Join(r.homeDir, ".icons")}, iconBases(r.DataDirs())...)
	for _, theme := range themes {
		for _, base := range bases {
			roots = append(roots, filepath.Join(base, theme))
		}
	}

	roots = append(roots, fallbacks...)
	return dedupe(roots)
}

// GetLogDir returns the directory holding the log file.
func (r *Resolver) GetLogDir() string {
	if r.cfg != nil && r.cfg.Paths.LogFile != "" {
		return filepath.Dir(r.cfg.Paths.LogFile)
	}
	return filepath.Join(r.homeDir, ".local", "state", "appseek")
}

func iconBases(dataDirs []string) []string {
	bases := make([]string, 0, len(dataDirs))
	for _, d := range dataDirs {
		bases = append(bases, filepath.Join(d, "icons"))
	}
	return bases
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = filepath.Clean(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
