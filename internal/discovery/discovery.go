// Package discovery enumerates candidate launch targets: desktop descriptors
// under the data directories and every entry of the PATH directories.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/appseek/internal/core"
)

// DesktopExt is the extension that marks a desktop descriptor
const DesktopExt = ".desktop"

// Stats counts what one walk produced
type Stats struct {
	Emitted int64
	Skipped int64
}

// Source walks data and PATH directories and emits raw paths
type Source struct {
	fs       afero.Fs
	dataDirs []string
	pathDirs []string
	log      *zerolog.Logger

	emitted atomic.Int64
	skipped atomic.Int64

	desktopDirs map[string]struct{}
}

// NewSource creates a discovery source over the given directories
func NewSource(fs afero.Fs, dataDirs, pathDirs []string, log *zerolog.Logger) *Source {
	return &Source{
		fs:          fs,
		dataDirs:    dataDirs,
		pathDirs:    pathDirs,
		log:         log,
		desktopDirs: make(map[string]struct{}),
	}
}

// Walk emits every candidate path on out. It returns when all directories are
// enumerated or ctx is cancelled. Unreadable directories and entries are
// counted and skipped. out is never closed by Walk.
func (s *Source) Walk(ctx context.Context, out chan<- string) (Stats, error) {
	for _, dir := range s.dataDirs {
		if err := s.walkDataDir(ctx, dir, out); err != nil {
			return s.Stats(), err
		}
	}

	for _, dir := range s.pathDirs {
		if err := s.listPathDir(ctx, dir, out); err != nil {
			return s.Stats(), err
		}
	}

	return s.Stats(), nil
}

// Stats returns the counters accumulated so far
func (s *Source) Stats() Stats {
	return Stats{
		Emitted: s.emitted.Load(),
		Skipped: s.skipped.Load(),
	}
}

// DesktopDirs returns the directories in which descriptors were found.
// Only meaningful once Walk has returned.
func (s *Source) DesktopDirs() []string {
	dirs := make([]string, 0, len(s.desktopDirs))
	for d := range s.desktopDirs {
		dirs = append(dirs, d)
	}
	return dirs
}

// WatchDirs returns the directories live discovery follows for descriptors:
// every data dir, its applications directory, and each directory in which
// descriptors were found. Directories that do not exist are left to the
// watcher to report.
func (s *Source) WatchDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(d string) {
		d = filepath.Clean(d)
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}

	for _, d := range s.dataDirs {
		add(d)
		add(filepath.Join(d, "applications"))
	}
	for _, d := range s.DesktopDirs() {
		add(d)
	}
	return dirs
}

// PathDirs returns the PATH directories this source lists
func (s *Source) PathDirs() []string {
	return s.pathDirs
}

func (s *Source) walkDataDir(ctx context.Context, root string, out chan<- string) error {
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			s.skip(path, err)
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && IsHidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() || !IsDesktopFile(path) {
			return nil
		}

		s.desktopDirs[filepath.Dir(path)] = struct{}{}
		return s.emit(ctx, path, out)
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.skip(root, err)
		return nil
	}
	return err
}

func (s *Source) listPathDir(ctx context.Context, dir string, out chan<- string) error {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.skip(dir, err)
		return nil
	}

	for _, info := range infos {
		if err := s.emit(ctx, filepath.Join(dir, info.Name()), out); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) emit(ctx context.Context, path string, out chan<- string) error {
	select {
	case out <- path:
		s.emitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Source) skip(path string, err error) {
	s.skipped.Add(1)
	if s.log != nil {
		s.log.Debug().
			Err(fmt.Errorf("%w: %v", core.ErrDiscoveryIO, err)).
			Str("path", path).
			Msg("skipping unreadable path")
	}
}

// IsHidden reports whether a path component is hidden
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsDesktopFile reports whether the path has exactly the desktop extension
func IsDesktopFile(path string) bool {
	return filepath.Ext(path) == DesktopExt
}
