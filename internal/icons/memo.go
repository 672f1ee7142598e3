package icons

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/quantmind-br/appseek/internal/core"
)

var (
	_ core.IconLookup = (*Resolver)(nil)
	_ core.IconLookup = (*Memo)(nil)
)

type lookup struct {
	path string
	ok   bool
}

// Memo is a read-through cache in front of a Resolver. Concurrent lookups of
// the same name share one walk; misses are remembered as well as hits.
type Memo struct {
	resolver *Resolver
	cache    sync.Map // map[string]lookup
	group    singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo wraps resolver with a memo
func NewMemo(resolver *Resolver) *Memo {
	return &Memo{resolver: resolver}
}

// Resolve returns the memoized result for name, resolving it on first use
func (m *Memo) Resolve(ctx context.Context, name string) (string, bool) {
	if cached, ok := m.cache.Load(name); ok {
		m.hits.Add(1)
		res := cached.(lookup)
		return res.path, res.ok
	}

	v, _, _ := m.group.Do(name, func() (interface{}, error) {
		if cached, ok := m.cache.Load(name); ok {
			return cached.(lookup), nil
		}
		m.misses.Add(1)
		path, ok := m.resolver.Resolve(ctx, name)
		res := lookup{path: path, ok: ok}
		// a cancelled walk says nothing about the name
		if ctx.Err() == nil {
			m.cache.Store(name, res)
		}
		return res, nil
	})

	res := v.(lookup)
	return res.path, res.ok
}

// Stats reports memo hits and underlying resolutions
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
