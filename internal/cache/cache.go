// Package cache holds the per-shard, append-only store of parsed entries.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/quantmind-br/appseek/internal/core"
)

// Cache is an insertion-ordered, append-only sequence of entries. One
// goroutine appends; any number read. Readers always observe a prefix of the
// final sequence and never block the writer.
type Cache struct {
	mu       sync.Mutex // serializes writers
	entries  []*core.CandidateEntry
	snapshot atomic.Pointer[[]*core.CandidateEntry]
	version  atomic.Uint64
}

// New creates an empty cache
func New() *Cache {
	c := &Cache{}
	empty := make([]*core.CandidateEntry, 0)
	c.snapshot.Store(&empty)
	return c
}

// Append adds entry at the end and returns its sequence number
func (c *Cache) Append(entry *core.CandidateEntry) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, entry)
	seq := len(c.entries) - 1

	// the published header is capped so later appends never alias it
	published := c.entries[:len(c.entries):len(c.entries)]
	c.snapshot.Store(&published)
	c.version.Add(1)

	return seq
}

// Snapshot returns the entries appended so far. The slice must not be modified.
func (c *Cache) Snapshot() []*core.CandidateEntry {
	return *c.snapshot.Load()
}

// Len returns the number of entries appended so far
func (c *Cache) Len() int {
	return len(*c.snapshot.Load())
}

// Version increases by one on every append
func (c *Cache) Version() uint64 {
	return c.version.Load()
}

// Set is the fixed group of shard caches, one per worker
type Set []*Cache

// NewSet creates n empty caches
func NewSet(n int) Set {
	set := make(Set, n)
	for i := range set {
		set[i] = New()
	}
	return set
}

// Version sums the versions of all caches; it changes whenever any cache grows
func (s Set) Version() uint64 {
	var v uint64
	for _, c := range s {
		v += c.Version()
	}
	return v
}

// Len sums the lengths of all caches
func (s Set) Len() int {
	n := 0
	for _, c := range s {
		n += c.Len()
	}
	return n
}
