package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantmind-br/appseek/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const firefoxDesktop = `[Desktop Entry]
Name=Firefox
Comment=Web Browser
Icon=firefox
Exec=firefox %u
`

// testEnv is a temporary data dir and PATH dir with a config pointing at them
type testEnv struct {
	cfg     *config.Config
	dataDir string
	binDir  string
	log     *zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmpDir := t.TempDir()

	env := &testEnv{
		dataDir: filepath.Join(tmpDir, "share"),
		binDir:  filepath.Join(tmpDir, "bin"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(env.dataDir, "applications"), 0o755))
	require.NoError(t, os.MkdirAll(env.binDir, 0o755))

	env.cfg = &config.Config{
		Paths: config.PathsConfig{
			DataDirs: []string{env.dataDir},
			PathDirs: []string{env.binDir},
			IconDirs: []string{filepath.Join(tmpDir, "icons")},
		},
		Search: config.SearchConfig{
			Workers:            2,
			DescriptorBonus:    20,
			EmptyQuery:         config.EmptyQueryNone,
			IncludeDesktopStem: true,
		},
		Watch: config.WatchConfig{
			RefreshRate: 50,
		},
		Logging: config.LoggingConfig{
			Color: "never",
		},
	}

	logger := zerolog.New(io.Discard)
	env.log = &logger
	return env
}

func (e *testEnv) writeDesktop(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, "applications", name), []byte(content), 0o644))
}

func (e *testEnv) writeBinary(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.binDir, name), []byte("#!/bin/sh\n"), 0o755))
}

// run executes the root command with args and returns stdout
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *testEnv) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(e.cfg, e.log, "test")

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(bytes.NewBufferString(input))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func findCommand(root *cobra.Command, name string) *cobra.Command {
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
