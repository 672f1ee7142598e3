package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/quantmind-br/appseek/internal/core"
	"github.com/quantmind-br/appseek/internal/discovery"
)

const unknownKind = "other"

type counters struct {
	discovered    atomic.Int64
	parsed        atomic.Int64
	iconsResolved atomic.Int64
	iconsMissing  atomic.Int64
	evaluations   atomic.Int64
	superseded    atomic.Int64

	mu      sync.Mutex
	walk    discovery.Stats
	dropped map[string]int64
}

func (c *counters) drop(err error) {
	kind := unknownKind
	if k := core.KindOf(err); k != nil {
		kind = k.Error()
	}

	c.mu.Lock()
	if c.dropped == nil {
		c.dropped = make(map[string]int64)
	}
	c.dropped[kind]++
	c.mu.Unlock()
}

func (c *counters) setWalk(s discovery.Stats) {
	c.mu.Lock()
	c.walk = s
	c.mu.Unlock()
}

// DropCount is the number of candidates dropped for one error kind
type DropCount struct {
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// Stats is a point-in-time view of the pipeline counters
type Stats struct {
	Indexed bool `json:"indexed"`
	// Discovered counts every path routed to a shard, including live additions
	Discovered int64 `json:"discovered"`
	// WalkEmitted and WalkSkipped describe the initial walk only
	WalkEmitted int64       `json:"walk_emitted"`
	WalkSkipped int64       `json:"walk_skipped"`
	Parsed      int64       `json:"parsed"`
	Dropped     []DropCount `json:"dropped"`

	IconsResolved int64 `json:"icons_resolved"`
	IconsMissing  int64 `json:"icons_missing"`
	IconMemoHits  int64 `json:"icon_memo_hits"`
	IconLookups   int64 `json:"icon_lookups"`

	// Watching is true while live discovery follows the filesystem
	Watching bool `json:"watching"`

	Submitted   uint64 `json:"submitted"`
	Evaluations int64  `json:"evaluations"`
	Superseded  int64  `json:"superseded"`

	// ShardSizes holds the number of cached entries per shard
	ShardSizes []int `json:"shard_sizes"`
}

// TotalDropped sums drops over all kinds
func (s Stats) TotalDropped() int64 {
	var n int64
	for _, d := range s.Dropped {
		n += d.Count
	}
	return n
}

// Stats returns the current counters
func (e *Engine) Stats() Stats {
	hits, lookups := e.icons.Stats()

	s := Stats{
		Indexed:       e.Indexed(),
		Discovered:    e.stats.discovered.Load(),
		Parsed:        e.stats.parsed.Load(),
		IconsResolved: e.stats.iconsResolved.Load(),
		IconsMissing:  e.stats.iconsMissing.Load(),
		IconMemoHits:  hits,
		IconLookups:   lookups,
		Watching:      e.watching.Load(),
		Submitted:     e.queries.Submitted(),
		Evaluations:   e.stats.evaluations.Load(),
		Superseded:    e.stats.superseded.Load(),
		ShardSizes:    make([]int, len(e.caches)),
	}
	for i, c := range e.caches {
		s.ShardSizes[i] = c.Len()
	}

	e.stats.mu.Lock()
	s.WalkEmitted = e.stats.walk.Emitted
	s.WalkSkipped = e.stats.walk.Skipped
	for kind, n := range e.stats.dropped {
		s.Dropped = append(s.Dropped, DropCount{Kind: kind, Count: n})
	}
	e.stats.mu.Unlock()

	sort.Slice(s.Dropped, func(i, j int) bool {
		return s.Dropped[i].Kind < s.Dropped[j].Kind
	})
	return s
}
