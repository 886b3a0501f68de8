package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scopedMapText has an outer scope spanning lines 1-10 and an inner one
// spanning lines 3-5. The outer scope declares a hidden "a", the inner one
// declares "b", renamed from "x".
const scopedMapText = `{
  "version": 3,
  "file": "out.js",
  "sources": ["a.ts"],
  "names": ["a", "b", "x"],
  "mappings": "AAAA;;;;EAOA",
  "x_ms_scopes": "CA>EA>EA<KA<",
  "x_ms_locals": "A;CC"
}`

func TestScopeTree(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, scopedMapText)
	require.NoError(t, sm.Err())

	scopes := sm.Scopes()
	require.Len(t, scopes, 2)

	outer, inner := scopes[0], scopes[1]
	assert.Equal(t, -1, outer.Parent)
	assert.Equal(t, []int{1}, outer.Nested)
	assert.Equal(t, Position{1, 0}, outer.Start)
	assert.Equal(t, Position{10, 0}, outer.End)
	assert.Equal(t, 0, inner.Parent)
	assert.Empty(t, inner.Nested)
	assert.Equal(t, Position{3, 0}, inner.Start)
	assert.Equal(t, Position{5, 0}, inner.End)

	assert.Equal(t, []*Scope{outer}, sm.TopLevelScopes())
	assert.Equal(t, []*Scope{outer}, sm.TopLevelScopesInSection(0))

	for _, s := range scopes {
		assert.LessOrEqual(t, s.Start.Compare(s.End), 0, "scope %d", s.Index)
		for _, child := range s.Nested {
			c := mustScope(t, sm, child)
			assert.Equal(t, s.Index, c.Parent)
			assert.True(t, s.Contains(c.Start) && s.Contains(c.End), "scope %d within %d", c.Index, s.Index)
		}
	}
}

func TestZeroWidthScope(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, `{"version":3,"sources":[],"mappings":"","x_ms_scopes":">AA<"}`)
	require.NoError(t, sm.Err())

	scopes := sm.Scopes()
	require.Len(t, scopes, 1)
	assert.Equal(t, Position{0, 0}, scopes[0].Start)
	assert.Equal(t, Position{0, 0}, scopes[0].End)

	s, ok := sm.NarrowestScopeAt(0, 0)
	require.True(t, ok)
	assert.Same(t, scopes[0], s)
	_, ok = sm.NarrowestScopeAt(0, 1)
	assert.False(t, ok)
}

func TestNarrowestScopeAt(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, scopedMapText)

	tests := []struct {
		line, column int
		want         int
	}{
		{4, 0, 1},
		{3, 0, 1},
		{5, 0, 1},
		{5, 1, 0},
		{2, 7, 0},
		{10, 0, 0},
		{0, 0, -1},
		{10, 1, -1},
	}
	for _, tc := range tests {
		s, ok := sm.NarrowestScopeAt(tc.line, tc.column)
		if tc.want < 0 {
			assert.False(t, ok, "%d:%d", tc.line, tc.column)
			continue
		}
		require.True(t, ok, "%d:%d", tc.line, tc.column)
		assert.Equal(t, tc.want, s.Index, "%d:%d", tc.line, tc.column)
	}
}

func TestNarrowestScopeOrderIndependent(t *testing.T) {
	t.Parallel()
	a := &Scope{Index: 0, Start: Position{1, 0}, End: Position{10, 0}}
	b := &Scope{Index: 1, Start: Position{3, 0}, End: Position{5, 0}}

	s, ok := narrowest([]*Scope{a, b}, Position{4, 0})
	require.True(t, ok)
	assert.Same(t, b, s)

	s, ok = narrowest([]*Scope{b, a}, Position{4, 0})
	require.True(t, ok)
	assert.Same(t, b, s)
}

func TestLocals(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, scopedMapText)

	locals := sm.Locals()
	require.Len(t, locals, 2)

	hidden := locals[0]
	assert.Equal(t, 0, hidden.Scope)
	assert.Equal(t, "a", hidden.GeneratedName.Text)
	assert.Nil(t, hidden.SourceName)
	assert.True(t, hidden.IsHidden)
	assert.False(t, hidden.IsRenamed)

	renamed := locals[1]
	assert.Equal(t, 1, renamed.Scope)
	assert.Equal(t, "b", renamed.GeneratedName.Text)
	assert.Equal(t, "x", renamed.SourceName.Text)
	assert.False(t, renamed.IsHidden)
	assert.True(t, renamed.IsRenamed)

	assert.Equal(t, []int{0}, mustScope(t, sm, 0).Locals)
	assert.Equal(t, []*Local{renamed}, sm.LocalsOf(mustScope(t, sm, 1)))
}

func TestLocalsHiddenAndUnrenamed(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, `{"version":3,"sources":[],"names":["a"],"mappings":"","x_ms_scopes":">AA<","x_ms_locals":"A"}`)
	l, ok := sm.Local(0)
	require.True(t, ok)
	assert.True(t, l.IsHidden)
	assert.Nil(t, l.SourceName)
	assert.Equal(t, "a", l.GeneratedName.Text)

	// "AA" is a two-value segment [0, 0]: generated and source name are both "a".
	sm = decodeText(t, `{"version":3,"sources":[],"names":["a"],"mappings":"","x_ms_scopes":">AA<","x_ms_locals":"AA"}`)
	l, ok = sm.Local(0)
	require.True(t, ok)
	assert.False(t, l.IsHidden)
	assert.False(t, l.IsRenamed)
	assert.Equal(t, "a", l.SourceName.Text)
}

func TestLocalAt(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, scopedMapText)

	l, ok := sm.LocalAt(4, 0, "b", GeneratedName)
	require.True(t, ok)
	assert.Equal(t, 1, l.Index)

	l, ok = sm.LocalAt(4, 0, "x", SourceName)
	require.True(t, ok)
	assert.Equal(t, 1, l.Index)

	_, ok = sm.LocalAt(4, 0, "a", GeneratedName)
	assert.False(t, ok, "locals of enclosing scopes are not searched")

	l, ok = sm.LocalAt(2, 0, "a", GeneratedName)
	require.True(t, ok)
	assert.Equal(t, 0, l.Index)

	_, ok = sm.LocalAt(2, 0, "a", SourceName)
	assert.False(t, ok, "hidden locals have no source name")

	_, ok = sm.LocalAt(0, 0, "a", GeneratedName)
	assert.False(t, ok)
}

func TestCandidateQueries(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, scopedMapText)

	m := mustMapping(t, sm, 1)
	assert.Equal(t, Position{4, 2}, m.Generated())
	assert.Equal(t, Position{7, 0}, m.Original())

	assert.Equal(t, []*Mapping{m}, sm.CandidateMappingsAtSourceLine(0, 7))
	assert.Equal(t, []*Mapping{m}, sm.CandidateMappingsAt(0, 7, 0))
	assert.Empty(t, sm.CandidateMappingsAt(0, 7, 1))
	assert.Equal(t, []*Mapping{m}, sm.CandidateMappingsAtInSection(0, 0, 7, 0))
	assert.Empty(t, sm.CandidateMappingsAtInSection(0, 1, 7, 0))

	scopes := sm.CandidateNarrowestScopesAt(0, 7, 0)
	require.Len(t, scopes, 1)
	assert.Equal(t, 1, scopes[0].Index)
	assert.Equal(t, scopes, sm.CandidateNarrowestScopesAtInSection(0, 0, 7, 0))
	assert.Empty(t, sm.CandidateNarrowestScopesAt(0, 0, 0), "mapping at 0:0 is outside every scope")

	locals := sm.CandidateLocalsAt(0, 7, 0, "x", SourceName)
	require.Len(t, locals, 1)
	assert.Equal(t, 1, locals[0].Index)
	assert.Equal(t, locals, sm.CandidateLocalsAtInSection(0, 0, 7, 0, "b", GeneratedName))
	assert.Empty(t, sm.CandidateLocalsAt(0, 7, 0, "nope", SourceName))
}

func TestMappingLookups(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, `{"version":3,"sources":["a.ts"],"mappings":"AAAA,IAAE,IAAE;AACA"}`)

	m, ok := sm.MappingAt(0, 4)
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	_, ok = sm.MappingAt(0, 5)
	assert.False(t, ok, "only exact columns match")
	_, ok = sm.MappingAt(7, 0)
	assert.False(t, ok)

	tests := []struct {
		line, column, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{0, 4, 1},
		{0, 7, 1},
		{0, 8, 2},
		{0, 100, 2},
		{1, 0, 3},
		{2, 0, -1},
	}
	for _, tc := range tests {
		m, ok := sm.NearestMappingAt(tc.line, tc.column)
		if tc.want < 0 {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok, "%d:%d", tc.line, tc.column)
		assert.Equal(t, tc.want, m.Index, "%d:%d", tc.line, tc.column)
	}
}

func TestSectionQueriesProjectGlobalOnes(t *testing.T) {
	t.Parallel()
	sm := decodeFiles(t, indexMapFiles(), "/app/index.js.map")

	for _, s := range sm.Sections() {
		for i, m := range sm.MappingsInSection(s.Index) {
			got, ok := sm.MappingInSection(s.Index, i)
			require.True(t, ok)
			assert.Same(t, m, got)
			assert.Equal(t, s.Base.Mappings+i, m.Index)

			at, ok := sm.MappingAtInSection(s.Index, m.SectionGeneratedLine, m.SectionGeneratedColumn)
			require.True(t, ok)
			assert.Same(t, m, at)

			global, ok := sm.MappingAt(m.GeneratedLine, m.GeneratedColumn)
			require.True(t, ok)
			assert.Same(t, m, global)
		}
		for i, src := range sm.SourcesInSection(s.Index) {
			got, ok := sm.SourceInSection(s.Index, i)
			require.True(t, ok)
			assert.Same(t, src, got)
		}
		for i, n := range sm.NamesInSection(s.Index) {
			got, ok := sm.NameInSection(s.Index, i)
			require.True(t, ok)
			assert.Same(t, n, got)
		}
		for i, sc := range sm.ScopesInSection(s.Index) {
			got, ok := sm.ScopeInSection(s.Index, i)
			require.True(t, ok)
			assert.Same(t, sc, got)
		}
	}

	scope, ok := sm.NarrowestScopeAtInSection(1, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, scope.Index)
	_, ok = sm.NarrowestScopeAtInSection(0, 0, 0)
	assert.False(t, ok, "section 0 has no scopes")

	m, ok := sm.NearestMappingAtInSection(1, 1, 9)
	require.True(t, ok)
	assert.Equal(t, 3, m.Index)
	assert.Len(t, sm.MappingsAtGeneratedLineInSection(1, 1), 1)

	_, ok = sm.NameInSection(0, 1)
	assert.False(t, ok, "section-relative index past the section's names")
	_, ok = sm.MappingInSection(9, 0)
	assert.False(t, ok)
	assert.Empty(t, sm.MappingsInSection(2))
	assert.Empty(t, sm.LocalsInSection(-1))
}

func TestEnumerationsAreIdempotent(t *testing.T) {
	t.Parallel()
	sm := decodeFiles(t, indexMapFiles(), "/app/index.js.map")

	assert.Equal(t, sm.Sections(), sm.Sections())
	assert.Equal(t, sm.Names(), sm.Names())
	assert.Equal(t, sm.Sources(), sm.Sources())
	assert.Equal(t, sm.Mappings(), sm.Mappings())
	assert.Equal(t, sm.Scopes(), sm.Scopes())
	assert.Equal(t, sm.Locals(), sm.Locals())
	assert.Equal(t, sm.MediaTypes(), sm.MediaTypes())

	names := sm.Names()
	names[0] = nil
	n, ok := sm.Name(0)
	require.True(t, ok, "callers get copies")
	assert.Equal(t, "foo", n.Text)
}
