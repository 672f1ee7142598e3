package matcher

import (
	"testing"

	"github.com/quantmind-br/appseek/internal/cache"
	"github.com/quantmind-br/appseek/internal/config"
	"github.com/quantmind-br/appseek/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desktopEntry(name, source string) *core.CandidateEntry {
	return core.NewDesktopEntry(name, name+" application", "icon", name, source)
}

func binaryEntry(name string) *core.CandidateEntry {
	return core.NewBinaryEntry(name, "/usr/bin/"+name)
}

func newSet(shards ...[]*core.CandidateEntry) cache.Set {
	set := cache.NewSet(len(shards))
	for i, entries := range shards {
		for _, e := range entries {
			set[i].Append(e)
		}
	}
	return set
}

func names(results []core.RankedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Entry.DisplayName
	}
	return out
}

func TestMatch_DescriptorOutranksBinary(t *testing.T) {
	set := newSet(
		[]*core.CandidateEntry{binaryEntry("firefox-bin")},
		[]*core.CandidateEntry{desktopEntry("Firefox", "/usr/share/applications/firefox.desktop")},
	)
	m := Matcher{Bonus: DefaultBonus, IncludeSourceStem: true}

	results := m.Match("firefox", set)
	require.Len(t, results, 2)
	assert.Equal(t, "Firefox", results[0].Entry.DisplayName)
	assert.Equal(t, results[0].RawScore+DefaultBonus, results[0].Score)
	assert.Equal(t, results[1].RawScore, results[1].Score)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, results[0].MatchedIndices)
	assert.Equal(t, 1, results[0].Shard)
	assert.Equal(t, 0, results[1].Shard)
}

func TestMatch_BonusIsClampedOffset(t *testing.T) {
	set := newSet([]*core.CandidateEntry{
		desktopEntry("Firefox", "/usr/share/applications/firefox.desktop"),
		binaryEntry("firefox"),
	})

	for _, tc := range []struct {
		bonus, want int
	}{
		{-5, 0},
		{0, 0},
		{DefaultBonus, DefaultBonus},
		{MaxBonus * 5, MaxBonus},
	} {
		results := Matcher{Bonus: tc.bonus}.Match("fire", set)
		require.Len(t, results, 2)
		for _, r := range results {
			want := 0
			if r.Entry.HasSource() {
				want = tc.want
			}
			assert.Equal(t, r.RawScore+want, r.Score, "bonus %d", tc.bonus)
		}
	}
}

func TestMatch_TieBreaks(t *testing.T) {
	t.Run("descriptor before binary on equal scores", func(t *testing.T) {
		set := newSet(
			[]*core.CandidateEntry{binaryEntry("htop")},
			[]*core.CandidateEntry{desktopEntry("htop", "/usr/share/applications/htop.desktop")},
		)
		m := Matcher{Bonus: 0, IncludeSourceStem: true}

		results := m.Match("htop", set)
		require.Len(t, results, 2)
		assert.Equal(t, results[0].Score, results[1].Score)
		assert.True(t, results[0].Entry.HasSource())
		assert.False(t, results[1].Entry.HasSource())
	})

	t.Run("shard then insertion order", func(t *testing.T) {
		first := binaryEntry("tool")
		second := binaryEntry("tool")
		third := binaryEntry("tool")
		set := newSet(
			[]*core.CandidateEntry{binaryEntry("other"), first},
			[]*core.CandidateEntry{second, third},
		)

		results := Matcher{}.Match("tool", set)
		require.Len(t, results, 3)
		assert.Same(t, first, results[0].Entry)
		assert.Same(t, second, results[1].Entry)
		assert.Same(t, third, results[2].Entry)
		assert.Equal(t, 1, results[0].Seq)
	})
}

func TestMatch_ExcludesNonMatches(t *testing.T) {
	set := newSet([]*core.CandidateEntry{
		binaryEntry("firefox"),
		binaryEntry("gimp"),
		desktopEntry("Text Editor", "/usr/share/applications/org.gnome.TextEditor.desktop"),
	})

	m := Matcher{Bonus: DefaultBonus}
	assert.Equal(t, []string{"firefox"}, names(m.Match("fx", set)))
	assert.Empty(t, m.Match("zzz", set))
}

func TestMatch_SourceStem(t *testing.T) {
	set := newSet([]*core.CandidateEntry{
		desktopEntry("Web Browser", "/usr/share/applications/org.mozilla.firefox.desktop"),
	})

	assert.Empty(t, Matcher{}.Match("mozilla", set))
	assert.Equal(t, []string{"Web Browser"}, names(Matcher{IncludeSourceStem: true}.Match("mozilla", set)))
}

func TestMatch_EmptyQuery(t *testing.T) {
	set := newSet(
		[]*core.CandidateEntry{binaryEntry("a"), binaryEntry("b")},
		[]*core.CandidateEntry{binaryEntry("c")},
	)

	assert.Empty(t, Matcher{}.Match("", set))
	assert.Empty(t, Matcher{EmptyQuery: EmptyQueryNone}.Match("   ", set))

	all := Matcher{EmptyQuery: EmptyQueryAll}.Match(" ", set)
	assert.Equal(t, []string{"a", "b", "c"}, names(all))
	for _, r := range all {
		assert.Zero(t, r.Score)
	}

	limited := Matcher{EmptyQuery: EmptyQueryAll, Limit: 2}.Match("", set)
	assert.Len(t, limited, 2)
}

func TestMatch_Limit(t *testing.T) {
	set := newSet([]*core.CandidateEntry{
		binaryEntry("code"), binaryEntry("codium"), binaryEntry("cod"),
	})

	assert.Len(t, Matcher{}.Match("cod", set), 3)
	assert.Len(t, Matcher{Limit: 1}.Match("cod", set), 1)
}

func TestMatch_Idempotent(t *testing.T) {
	set := newSet(
		[]*core.CandidateEntry{binaryEntry("firefox"), binaryEntry("fish")},
		[]*core.CandidateEntry{desktopEntry("Files", "/usr/share/applications/nautilus.desktop")},
	)
	m := Matcher{Bonus: DefaultBonus, IncludeSourceStem: true}

	first := m.Match("fi", set)
	second := m.Match("fi", set)
	assert.Equal(t, names(first), names(second))
	assert.Len(t, set[0].Snapshot(), 2, "matching must not modify caches")
}

func TestSort_IndependentOfInputOrder(t *testing.T) {
	set := newSet(
		[]*core.CandidateEntry{binaryEntry("term"), binaryEntry("terminator")},
		[]*core.CandidateEntry{desktopEntry("Terminal", "/usr/share/applications/terminal.desktop"), binaryEntry("term")},
	)
	results := Matcher{Bonus: 5}.Match("term", set)
	require.NotEmpty(t, results)

	reversed := make([]core.RankedResult, len(results))
	for i, r := range results {
		reversed[len(results)-1-i] = r
	}
	Sort(reversed)

	assert.Equal(t, results, reversed)
}

func TestEffectiveBonus(t *testing.T) {
	assert.Equal(t, 0, Matcher{Bonus: -10}.EffectiveBonus())
	assert.Equal(t, 20, Matcher{Bonus: 20}.EffectiveBonus())
	assert.Equal(t, MaxBonus, Matcher{Bonus: 1000}.EffectiveBonus())
}

func TestSearchKey(t *testing.T) {
	m := Matcher{IncludeSourceStem: true}

	assert.Equal(t, "Firefox", m.SearchKey(desktopEntry("Firefox", "/a/firefox.desktop")))
	assert.Equal(t, "Files nautilus", m.SearchKey(desktopEntry("Files", "/a/nautilus.desktop")))
	assert.Equal(t, "htop", m.SearchKey(binaryEntry("htop")))
	assert.Equal(t, "Files", Matcher{}.SearchKey(desktopEntry("Files", "/a/nautilus.desktop")))
}

func TestNew(t *testing.T) {
	m := New(config.SearchConfig{
		DescriptorBonus:    15,
		EmptyQuery:         config.EmptyQueryAll,
		Limit:              7,
		IncludeDesktopStem: true,
	})

	assert.Equal(t, Matcher{Bonus: 15, IncludeSourceStem: true, EmptyQuery: EmptyQueryAll, Limit: 7}, m)
}
