package icons

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var errFound = errors.New("icon found")

// Resolver looks up logical icon names across ordered theme roots
type Resolver struct {
	fs    afero.Fs
	roots []string
}

// NewResolver creates a resolver searching roots in order; the generic
// fallback root belongs last.
func NewResolver(fs afero.Fs, roots []string) *Resolver {
	return &Resolver{
		fs:    fs,
		roots: roots,
	}
}

// Resolve returns the first regular file whose stem equals name, searching
// each root recursively in order. Absolute names that exist resolve to
// themselves. Unreadable or missing roots are skipped.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	if filepath.IsAbs(name) {
		info, err := r.fs.Stat(name)
		if err == nil && !info.IsDir() {
			return name, true
		}
		return "", false
	}

	for _, root := range r.roots {
		if ctx.Err() != nil {
			return "", false
		}
		if path, ok := r.searchRoot(ctx, root, name); ok {
			return path, true
		}
	}

	return "", false
}

func (r *Resolver) searchRoot(ctx context.Context, root, name string) (string, bool) {
	var found string

	err := afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		if Stem(info.Name()) == name {
			found = path
			return errFound
		}
		return nil
	})

	if errors.Is(err, errFound) {
		return found, true
	}
	return "", false
}

// Stem strips the final extension from a file name
func Stem(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
