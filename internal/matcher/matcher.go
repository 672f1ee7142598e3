// Package matcher scores cached entries against a query and ranks them.
package matcher

import (
	"sort"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/quantmind-br/appseek/internal/cache"
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
)

const (
	// DefaultBonus is added to the score of descriptor-backed entries
	DefaultBonus = 20
	// MaxBonus caps the descriptor bonus. The bonus is a plain additive
	// offset: a binary whose raw score exceeds a descriptor's by more than
	// the bonus still ranks first. Only equal totals fall to the tie-breaks.
	MaxBonus = 100
)

// EmptyQueryPolicy decides what an empty query returns
type EmptyQueryPolicy string

const (
	EmptyQueryNone EmptyQueryPolicy = config.EmptyQueryNone
	EmptyQueryAll  EmptyQueryPolicy = config.EmptyQueryAll
)

// Matcher ranks entries for a query. The zero value uses no bonus, returns
// nothing for an empty query and does not limit results.
type Matcher struct {
	Bonus             int
	IncludeSourceStem bool
	EmptyQuery        EmptyQueryPolicy
	Limit             int
}

// New creates a matcher from search settings
func New(cfg config.SearchConfig) Matcher {
	return Matcher{
		Bonus:             cfg.DescriptorBonus,
		IncludeSourceStem: cfg.IncludeDesktopStem,
		EmptyQuery:        EmptyQueryPolicy(cfg.EmptyQuery),
		Limit:             cfg.Limit,
	}
}

// EffectiveBonus returns the bonus clamped to [0, MaxBonus]
func (m Matcher) EffectiveBonus() int {
	switch {
	case m.Bonus < 0:
		return 0
	case m.Bonus > MaxBonus:
		return MaxBonus
	default:
		return m.Bonus
	}
}

// SearchKey returns the text an entry is matched against
func (m Matcher) SearchKey(e *core.CandidateEntry) string {
	if !m.IncludeSourceStem || !e.HasSource() {
		return e.DisplayName
	}
	stem := e.SourceStem()
	if stem == "" || stem == strings.ToLower(e.DisplayName) {
		return e.DisplayName
	}
	return e.DisplayName + " " + stem
}

type candidate struct {
	entry *core.CandidateEntry
	key   string
	shard int
	seq   int
}

type candidates []candidate

func (c candidates) String(i int) string { return c[i].key }
func (c candidates) Len() int            { return len(c) }

// Match scores every entry visible in caches against query and returns the
// ranked matches. Caches are read through snapshots and never modified, so
// Match may run concurrently with appends.
func (m Matcher) Match(query string, caches cache.Set) []core.RankedResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return m.matchEmpty(caches)
	}

	var pool candidates
	for shard, c := range caches {
		for seq, e := range c.Snapshot() {
			key := m.SearchKey(e)
			if !fuzzysearch.MatchNormalizedFold(query, key) {
				continue
			}
			pool = append(pool, candidate{entry: e, key: key, shard: shard, seq: seq})
		}
	}
	if len(pool) == 0 {
		return nil
	}

	bonus := m.EffectiveBonus()
	matches := fuzzy.FindFrom(query, pool)
	results := make([]core.RankedResult, 0, len(matches))
	for _, match := range matches {
		cand := pool[match.Index]
		score := match.Score
		if cand.entry.HasSource() {
			score += bonus
		}
		results = append(results, core.RankedResult{
			Entry:          cand.entry,
			Score:          score,
			RawScore:       match.Score,
			MatchedIndices: match.MatchedIndexes,
			Shard:          cand.shard,
			Seq:            cand.seq,
		})
	}

	Sort(results)
	return m.truncate(results)
}

func (m Matcher) matchEmpty(caches cache.Set) []core.RankedResult {
	if m.EmptyQuery != EmptyQueryAll {
		return nil
	}

	var results []core.RankedResult
	for shard, c := range caches {
		for seq, e := range c.Snapshot() {
			results = append(results, core.RankedResult{Entry: e, Shard: shard, Seq: seq})
		}
	}
	return m.truncate(results)
}

func (m Matcher) truncate(results []core.RankedResult) []core.RankedResult {
	if m.Limit > 0 && len(results) > m.Limit {
		return results[:m.Limit]
	}
	return results
}

// Sort orders results by total score, then raw score, then descriptor before
// binary, then shard and insertion order. The order does not depend on the
// order in which results were produced.
func Sort(results []core.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.RawScore != b.RawScore {
			return a.RawScore > b.RawScore
		}
		if ah, bh := a.Entry.HasSource(), b.Entry.HasSource(); ah != bh {
			return ah
		}
		if a.Shard != b.Shard {
			return a.Shard < b.Shard
		}
		return a.Seq < b.Seq
	})
}
