package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reports paths created after the initial walk. Created files in PATH
// directories are emitted as-is; elsewhere only non-hidden descriptors are.
// Non-hidden directories created under a watched data directory are watched
// too, and descriptors already inside them are emitted. Removals are ignored
// since caches are append-only.
type Watcher struct {
	watcher  *fsnotify.Watcher
	pathDirs map[string]struct{}
	debounce time.Duration
	log      *zerolog.Logger
}

// NewWatcher starts watching desktopDirs and pathDirs. The watcher is released
// when Run returns. Directories that cannot
// be watched are logged and skipped.
func NewWatcher(desktopDirs, pathDirs []string, debounce time.Duration, log *zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		pathDirs: make(map[string]struct{}, len(pathDirs)),
		debounce: debounce,
		log:      log,
	}

	for _, dir := range pathDirs {
		w.pathDirs[filepath.Clean(dir)] = struct{}{}
		w.add(dir)
	}
	for _, dir := range desktopDirs {
		w.add(dir)
	}

	return w, nil
}

func (w *Watcher) add(dir string) {
	if err := w.watcher.Add(dir); err != nil && w.log != nil {
		w.log.Debug().Err(err).Str("dir", dir).Msg("cannot watch directory")
	}
}

// Run forwards created candidates to out until ctx is cancelled or the
// underlying watcher is closed. Events for the same path are debounced.
func (w *Watcher) Run(ctx context.Context, out chan<- string) error {
	defer w.watcher.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		fire    = make(chan string, 64)
		done    = make(chan struct{})
	)
	defer close(done)
	schedule := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		if timer, exists := pending[name]; exists {
			timer.Stop()
		}
		pending[name] = time.AfterFunc(w.debounce, func() {
			mu.Lock()
			delete(pending, name)
			mu.Unlock()
			select {
			case fire <- name:
			case <-ctx.Done():
			case <-done:
			}
		})
	}
	defer func() {
		mu.Lock()
		for _, timer := range pending {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-fire:
			select {
			case out <- path:
			case <-ctx.Done():
				return ctx.Err()
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			if w.isNewDataDir(event.Name) {
				w.follow(event.Name, schedule)
				continue
			}
			if w.accepts(event.Name) {
				schedule(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.log != nil {
				w.log.Warn().Err(err).Msg("watcher error")
			}
		}
	}
}

// isNewDataDir reports whether path is a directory created outside the PATH
// directories that should be followed
func (w *Watcher) isNewDataDir(path string) bool {
	if _, ok := w.pathDirs[filepath.Dir(path)]; ok {
		return false
	}
	if IsHidden(filepath.Base(path)) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// follow watches root and every non-hidden directory below it, and schedules
// the descriptors they already hold. Files created before the watch was added
// would otherwise be missed.
func (w *Watcher) follow(root string, schedule func(string)) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != root && IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			w.add(path)
			return nil
		}
		if IsDesktopFile(path) {
			schedule(path)
		}
		return nil
	})
}

func (w *Watcher) accepts(path string) bool {
	if _, ok := w.pathDirs[filepath.Dir(path)]; ok {
		return true
	}
	return IsDesktopFile(path) && !IsHidden(filepath.Base(path))
}
