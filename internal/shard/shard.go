// Package shard routes discovered paths to a fixed number of workers.
package shard

import (
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Partitioner maps paths to shard indices in [0, Width)
type Partitioner struct {
	Width int
}

// New creates a partitioner over width shards; width below one is treated as one
func New(width int) Partitioner {
	if width < 1 {
		width = 1
	}
	return Partitioner{Width: width}
}

// Partition returns the shard for path. The result depends only on the
// cleaned path and the width.
func (p Partitioner) Partition(path string) int {
	if p.Width <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(filepath.Clean(path)) % uint64(p.Width))
}
