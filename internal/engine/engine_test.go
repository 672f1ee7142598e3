package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/appseek/internal/cache"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/logging"
	"github.com/quantmind-br/appseek/internal/matcher"
)

const firefoxDesktop = `[Desktop Entry]
Name=Firefox
Comment=Web Browser
Icon=firefox
Exec=firefox %u
`

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o755))
	}
	return fs
}

func testOptions() Options {
	return Options{
		DataDirs:     []string{"/share"},
		PathDirs:     []string{"/bin"},
		IconRoots:    []string{"/icons/hicolor", "/pixmaps"},
		Workers:      4,
		Matcher:      matcher.Matcher{Bonus: matcher.DefaultBonus, IncludeSourceStem: true},
		RefreshRate:  100,
		PollInterval: 5 * time.Millisecond,
	}
}

func startEngine(t *testing.T, fs afero.Fs, opts Options) *Engine {
	t.Helper()
	e := New(fs, opts, logging.NewTestLogger(io.Discard))
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// awaitUpdate reads updates until one satisfies done
func awaitUpdate(t *testing.T, updates <-chan Update, done func(Update) bool) Update {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			require.True(t, ok, "update channel closed early")
			if done(u) {
				return u
			}
		case <-timeout:
			t.Fatal("timed out waiting for update")
		}
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/share/applications/firefox.desktop":   firefoxDesktop,
		"/bin/firefox-bin":                      "",
		"/bin/gimp":                             "",
		"/icons/hicolor/48x48/apps/firefox.png": "",
		"/pixmaps/terminal.png":                 "",
	})
	e := startEngine(t, fs, testOptions())

	updates := e.Subscribe()
	require.NoError(t, e.Submit("firefox"))

	u := awaitUpdate(t, updates, func(u Update) bool {
		return u.Indexed && len(u.Results) == 2
	})

	assert.Equal(t, "firefox", u.Query)
	assert.Equal(t, 3, u.Total)

	first, second := u.Results[0], u.Results[1]
	assert.Equal(t, "Firefox", first.Entry.DisplayName)
	assert.Equal(t, "firefox %u", first.Entry.Command)
	iconPath, ok := first.Entry.IconPath()
	assert.True(t, ok)
	assert.Equal(t, "/icons/hicolor/48x48/apps/firefox.png", iconPath)

	assert.Equal(t, "firefox-bin", second.Entry.DisplayName)
	assert.Equal(t, "/bin/firefox-bin", second.Entry.Command)
	iconPath, ok = second.Entry.IconPath()
	assert.True(t, ok)
	assert.Equal(t, "/pixmaps/terminal.png", iconPath)

	latest, ok := e.Results()
	require.True(t, ok)
	assert.Equal(t, "firefox", latest.Query)
}

func TestEngine_MissingIconLeavesPathUnset(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/share/applications/tool.desktop": "[Desktop Entry]\nName=Tool\nComment=c\nIcon=no-such-icon\nExec=tool\n",
	})
	e := startEngine(t, fs, testOptions())

	results, err := e.Search(context.Background(), "tool")
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, ok := results[0].Entry.IconPath()
	assert.False(t, ok)

	stats := e.Stats()
	assert.Equal(t, int64(1), stats.IconsMissing)
	assert.Equal(t, int64(1), stats.Parsed)
}

func TestEngine_DropsInvalidCandidates(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/share/applications/good.desktop":   firefoxDesktop,
		"/share/applications/noexec.desktop": "[Desktop Entry]\nName=N\nComment=c\nIcon=i\n",
		"/share/applications/other.desktop":  "[Something]\nName=N\n",
		"/share/.hidden/skip.desktop":        firefoxDesktop,
	})
	e := startEngine(t, fs, testOptions())

	require.NoError(t, e.WaitIndexed(context.Background()))

	stats := e.Stats()
	assert.True(t, stats.Indexed)
	assert.Equal(t, int64(3), stats.Discovered)
	assert.Equal(t, int64(1), stats.Parsed)
	assert.Equal(t, int64(2), stats.TotalDropped())
	assert.Equal(t, []DropCount{
		{Kind: core.ErrFieldMissing.Error(), Count: 1},
		{Kind: core.ErrSectionMissing.Error(), Count: 1},
	}, stats.Dropped)

	total := 0
	for _, n := range stats.ShardSizes {
		total += n
	}
	assert.Equal(t, 1, total)
}

func TestEngine_LatestQueryWins(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/share/applications/firefox.desktop": firefoxDesktop,
		"/bin/fish":                           "",
	})
	e := New(fs, testOptions(), nil)
	updates := e.Subscribe()

	require.NoError(t, e.Submit("fi"))
	require.NoError(t, e.Submit("firefox"))
	require.NoError(t, e.Start(context.Background()))
	defer e.Close()

	first := awaitUpdate(t, updates, func(Update) bool { return true })
	assert.Equal(t, "firefox", first.Query)
}

func TestEngine_ReevaluatesAsCacheGrows(t *testing.T) {
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "fish"), []byte("#!/bin/sh\n"), 0o755))

	opts := testOptions()
	opts.DataDirs = nil
	opts.PathDirs = []string{bin}
	opts.IconRoots = nil
	opts.Watch = true
	opts.Debounce = 10 * time.Millisecond

	e := startEngine(t, afero.NewOsFs(), opts)
	updates := e.Subscribe()
	require.NoError(t, e.Submit("fi"))

	first := awaitUpdate(t, updates, func(u Update) bool {
		return u.Indexed && len(u.Results) == 1
	})
	assert.Equal(t, "fi", first.Query)

	require.Eventually(t, func() bool { return e.Stats().Watching }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(bin, "fig"), []byte("#!/bin/sh\n"), 0o755))

	grown := awaitUpdate(t, updates, func(u Update) bool { return len(u.Results) == 2 })
	assert.Equal(t, "fi", grown.Query)
	assert.Equal(t, 2, grown.Total)
	assert.Equal(t, uint64(1), e.Stats().Submitted)
}

func TestEngine_DropsStaleEvaluation(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/share/applications/firefox.desktop": firefoxDesktop,
		"/bin/slowpoke":                       "",
	})
	e := New(fs, testOptions(), nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	e.match = func(q string, caches cache.Set) []core.RankedResult {
		if q == "slow" {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		return e.opts.Matcher.Match(q, caches)
	}

	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	require.NoError(t, e.WaitIndexed(context.Background()))

	updates := e.Subscribe()
	require.NoError(t, e.Submit("slow"))
	<-entered
	require.NoError(t, e.Submit("firefox"))
	close(release)

	u := awaitUpdate(t, updates, func(u Update) bool {
		assert.NotEqual(t, "slow", u.Query, "stale result published")
		return u.Query == "firefox"
	})
	require.Len(t, u.Results, 1)
	assert.GreaterOrEqual(t, e.Stats().Superseded, int64(1))

	latest, ok := e.Results()
	require.True(t, ok)
	assert.Equal(t, "firefox", latest.Query)
}

func TestEngine_EmptyQueryPolicy(t *testing.T) {
	fs := newTestFs(t, map[string]string{
		"/bin/a": "",
		"/bin/b": "",
	})

	opts := testOptions()
	e := startEngine(t, fs, opts)
	results, err := e.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, results)

	opts.Matcher.EmptyQuery = matcher.EmptyQueryAll
	e = startEngine(t, fs, opts)
	results, err = e.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEngine_Lifecycle(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/bin/a": ""})
	e := New(fs, testOptions(), nil)

	assert.ErrorIs(t, e.WaitIndexed(context.Background()), ErrNotStarted)

	require.NoError(t, e.Start(context.Background()))
	assert.ErrorIs(t, e.Start(context.Background()), ErrAlreadyStarted)

	updates := e.Subscribe()
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	for range updates {
	}
	assert.ErrorIs(t, e.Submit("late"), core.ErrChannelClosed)

	_, open := <-e.Subscribe()
	assert.False(t, open)
}

func TestEngine_StartAfterClose(t *testing.T) {
	e := New(newTestFs(t, map[string]string{"/bin/a": ""}), testOptions(), nil)

	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Start(context.Background()), ErrClosed)
	assert.False(t, e.started.Load())
}

func TestEngine_ConcurrentStartClose(t *testing.T) {
	for range 20 {
		e := New(newTestFs(t, map[string]string{"/bin/a": ""}), testOptions(), nil)

		var wg sync.WaitGroup
		var startErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			startErr = e.Start(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = e.Close()
		}()
		wg.Wait()

		if startErr == nil {
			// started first; Close must have cancelled it
			assert.NoError(t, e.Close())
		} else {
			assert.ErrorIs(t, startErr, ErrClosed)
		}
	}
}

func TestEngine_CancelledBeforeIndexed(t *testing.T) {
	fs := newTestFs(t, map[string]string{"/share/applications/firefox.desktop": firefoxDesktop})
	e := New(fs, testOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Start(ctx))
	defer e.Close()

	assert.ErrorIs(t, e.WaitIndexed(context.Background()), context.Canceled)
	assert.False(t, e.Indexed())
}
