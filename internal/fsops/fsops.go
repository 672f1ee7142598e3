package fsops

import (
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// DirStatus summarizes a directory the pipeline reads from
type DirStatus struct {
	Path     string
	Exists   bool
	IsDir    bool
	Readable bool
	Entries  int
	Err      error
}

// OK reports whether the directory can be enumerated
func (s DirStatus) OK() bool {
	return s.Exists && s.IsDir && s.Readable
}

// InspectDir stats path and lists it once
func InspectDir(fs afero.Fs, path string) DirStatus {
	status := DirStatus{Path: path}

	info, err := fs.Stat(path)
	if err != nil {
		status.Err = err
		return status
	}
	status.Exists = true
	status.IsDir = info.IsDir()
	if !status.IsDir {
		status.Err = fmt.Errorf("%s: not a directory", path)
		return status
	}

	entries, err := afero.ReadDir(fs, path)
	if err != nil {
		status.Err = fmt.Errorf("list directory: %w", err)
		return status
	}
	status.Readable = true
	status.Entries = len(entries)
	return status
}

// CheckAccess reports whether the current user may read and search path on
// the host filesystem
func CheckAccess(path string) error {
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("access %s: %w", path, err)
	}
	return nil
}

// IsExecutable reports whether the current user may execute path on the host
// filesystem
func IsExecutable(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
