package sourcemap

import "slices"

// window returns the part of a global table a section contributed.
func window[T any](table []*T, base, count int) []*T {
	if count == 0 {
		return []*T{}
	}
	return slices.Clone(table[base : base+count])
}

func clone[T any](s []*T) []*T {
	if len(s) == 0 {
		return []*T{}
	}
	return slices.Clone(s)
}

func lookup[T any](table []*T, i int) (*T, bool) {
	v := at(table, i)
	return v, v != nil
}

// lookupInSection translates a section-relative index of one space into a
// global one and looks it up.
func lookupInSection[T any](sm *SourceMap, table []*T, section, i int, space func(Offsets) int) (*T, bool) {
	s, ok := sm.Section(section)
	if !ok || i < 0 || i >= space(s.Count) {
		return nil, false
	}
	return lookup(table, space(s.Base)+i)
}

func namesSpace(o Offsets) int    { return o.Names }
func sourcesSpace(o Offsets) int  { return o.Sources }
func mappingsSpace(o Offsets) int { return o.Mappings }
func scopesSpace(o Offsets) int   { return o.Scopes }
func localsSpace(o Offsets) int   { return o.Locals }

// Sections returns every section in document order.
func (sm *SourceMap) Sections() []*Section { return clone(sm.sections) }

// Section returns a section by index.
func (sm *SourceMap) Section(section int) (*Section, bool) { return lookup(sm.sections, section) }

// Names returns the names table of every section, concatenated.
func (sm *SourceMap) Names() []*Name { return clone(sm.names) }

// NamesInSection returns the names of one section.
func (sm *SourceMap) NamesInSection(section int) []*Name {
	s, ok := sm.Section(section)
	if !ok {
		return []*Name{}
	}
	return window(sm.names, s.Base.Names, s.Count.Names)
}

// Name returns a name by global index.
func (sm *SourceMap) Name(name int) (*Name, bool) { return lookup(sm.names, name) }

// NameInSection returns a name by section-relative index.
func (sm *SourceMap) NameInSection(section, name int) (*Name, bool) {
	return lookupInSection(sm, sm.names, section, name, namesSpace)
}

// Sources returns the sources of every section, concatenated.
func (sm *SourceMap) Sources() []*Source { return clone(sm.sources) }

// SourcesInSection returns the sources of one section.
func (sm *SourceMap) SourcesInSection(section int) []*Source {
	s, ok := sm.Section(section)
	if !ok {
		return []*Source{}
	}
	return window(sm.sources, s.Base.Sources, s.Count.Sources)
}

// Source returns a source by global index.
func (sm *SourceMap) Source(source int) (*Source, bool) { return lookup(sm.sources, source) }

// SourceInSection returns a source by section-relative index.
func (sm *SourceMap) SourceInSection(section, source int) (*Source, bool) {
	return lookupInSection(sm, sm.sources, section, source, sourcesSpace)
}

// Mappings returns every mapping in decode order.
func (sm *SourceMap) Mappings() []*Mapping { return clone(sm.mappings) }

// MappingsInSection returns the mappings of one section.
func (sm *SourceMap) MappingsInSection(section int) []*Mapping {
	s, ok := sm.Section(section)
	if !ok {
		return []*Mapping{}
	}
	return window(sm.mappings, s.Base.Mappings, s.Count.Mappings)
}

// Mapping returns a mapping by global index.
func (sm *SourceMap) Mapping(mapping int) (*Mapping, bool) { return lookup(sm.mappings, mapping) }

// MappingInSection returns a mapping by section-relative index.
func (sm *SourceMap) MappingInSection(section, mapping int) (*Mapping, bool) {
	return lookupInSection(sm, sm.mappings, section, mapping, mappingsSpace)
}

// MappingsAtGeneratedLine returns the mappings on a generated line ordered by
// column.
func (sm *SourceMap) MappingsAtGeneratedLine(line int) []*Mapping {
	return clone(sm.byGeneratedLine[line])
}

// MappingsAtGeneratedLineInSection returns the mappings of a section on a
// section-relative generated line.
func (sm *SourceMap) MappingsAtGeneratedLineInSection(section, line int) []*Mapping {
	if section < 0 || section >= len(sm.data) {
		return []*Mapping{}
	}
	return clone(sm.data[section].lines[line])
}

// MappingAt returns the mapping that starts exactly at a generated position.
// A column inside a segment has no mapping of its own, see NearestMappingAt.
func (sm *SourceMap) MappingAt(line, column int) (*Mapping, bool) {
	return exactColumn(sm.byGeneratedLine[line], column, func(m *Mapping) int { return m.GeneratedColumn })
}

// MappingAtInSection is MappingAt for section-relative coordinates.
func (sm *SourceMap) MappingAtInSection(section, line, column int) (*Mapping, bool) {
	if section < 0 || section >= len(sm.data) {
		return nil, false
	}
	return exactColumn(sm.data[section].lines[line], column, func(m *Mapping) int { return m.SectionGeneratedColumn })
}

// NearestMappingAt returns the last mapping on a generated line that starts at
// or before column, which is the mapping whose segment covers the column.
func (sm *SourceMap) NearestMappingAt(line, column int) (*Mapping, bool) {
	return nearestColumn(sm.byGeneratedLine[line], column, func(m *Mapping) int { return m.GeneratedColumn })
}

// NearestMappingAtInSection is NearestMappingAt for section-relative
// coordinates.
func (sm *SourceMap) NearestMappingAtInSection(section, line, column int) (*Mapping, bool) {
	if section < 0 || section >= len(sm.data) {
		return nil, false
	}
	return nearestColumn(sm.data[section].lines[line], column, func(m *Mapping) int { return m.SectionGeneratedColumn })
}

func exactColumn(line []*Mapping, column int, col func(*Mapping) int) (*Mapping, bool) {
	for _, m := range line {
		c := col(m)
		if c > column {
			break
		}
		if c == column {
			return m, true
		}
	}
	return nil, false
}

func nearestColumn(line []*Mapping, column int, col func(*Mapping) int) (*Mapping, bool) {
	i, _ := slices.BinarySearchFunc(line, column+1, func(m *Mapping, target int) int {
		return col(m) - target
	})
	if i == 0 {
		return nil, false
	}
	return line[i-1], true
}

// CandidateMappingsAtSourceLine returns every mapping, from any section, that
// points at a source line, ordered by source column.
func (sm *SourceMap) CandidateMappingsAtSourceLine(source, line int) []*Mapping {
	return clone(sm.bySourceLine[sourceLineKey{source: source, line: line}])
}

// CandidateMappingsAtSourceLineInSection is CandidateMappingsAtSourceLine for
// a section-relative source index.
func (sm *SourceMap) CandidateMappingsAtSourceLineInSection(section, source, line int) []*Mapping {
	src, ok := sm.SourceInSection(section, source)
	if !ok {
		return []*Mapping{}
	}
	return sm.CandidateMappingsAtSourceLine(src.Index, line)
}

// CandidateMappingsAt returns every mapping that points at a source
// position.
func (sm *SourceMap) CandidateMappingsAt(source, line, column int) []*Mapping {
	out := []*Mapping{}
	for _, m := range sm.bySourceLine[sourceLineKey{source: source, line: line}] {
		if m.SourceColumn > column {
			break
		}
		if m.SourceColumn == column {
			out = append(out, m)
		}
	}
	return out
}

// CandidateMappingsAtInSection is CandidateMappingsAt for a section-relative
// source index.
func (sm *SourceMap) CandidateMappingsAtInSection(section, source, line, column int) []*Mapping {
	src, ok := sm.SourceInSection(section, source)
	if !ok {
		return []*Mapping{}
	}
	return sm.CandidateMappingsAt(src.Index, line, column)
}

// Scopes returns every scope in creation order.
func (sm *SourceMap) Scopes() []*Scope { return clone(sm.scopes) }

// TopLevelScopes returns the scopes without a parent.
func (sm *SourceMap) TopLevelScopes() []*Scope { return topLevel(sm.scopes) }

// ScopesInSection returns the scopes of one section.
func (sm *SourceMap) ScopesInSection(section int) []*Scope {
	s, ok := sm.Section(section)
	if !ok {
		return []*Scope{}
	}
	return window(sm.scopes, s.Base.Scopes, s.Count.Scopes)
}

// TopLevelScopesInSection returns the scopes of one section without a
// parent.
func (sm *SourceMap) TopLevelScopesInSection(section int) []*Scope {
	return topLevel(sm.ScopesInSection(section))
}

func topLevel(scopes []*Scope) []*Scope {
	out := []*Scope{}
	for _, s := range scopes {
		if s.Parent < 0 {
			out = append(out, s)
		}
	}
	return out
}

// Scope returns a scope by global index.
func (sm *SourceMap) Scope(scope int) (*Scope, bool) { return lookup(sm.scopes, scope) }

// ScopeInSection returns a scope by section-relative index.
func (sm *SourceMap) ScopeInSection(section, scope int) (*Scope, bool) {
	return lookupInSection(sm, sm.scopes, section, scope, scopesSpace)
}

// NarrowestScopeAt returns the most specific scope containing a generated
// position.
func (sm *SourceMap) NarrowestScopeAt(line, column int) (*Scope, bool) {
	return narrowest(sm.scopes, Position{Line: line, Column: column})
}

// NarrowestScopeAtInSection is NarrowestScopeAt for section-relative
// coordinates, considering the section's scopes only.
func (sm *SourceMap) NarrowestScopeAtInSection(section, line, column int) (*Scope, bool) {
	s, ok := sm.Section(section)
	if !ok {
		return nil, false
	}
	return narrowest(sm.scopes[s.Base.Scopes:s.Base.Scopes+s.Count.Scopes], s.ToAbsolute(line, column))
}

// narrowest scans scopes for the ones containing p. A candidate replaces the
// best so far when it starts later or ends earlier.
func narrowest(scopes []*Scope, p Position) (*Scope, bool) {
	var best *Scope
	for _, s := range scopes {
		if !s.Contains(p) {
			continue
		}
		if best == nil || s.Start.Compare(best.Start) > 0 || s.End.Compare(best.End) < 0 {
			best = s
		}
	}
	return best, best != nil
}

// CandidateNarrowestScopesAt returns the narrowest scope at the generated
// position of every mapping that points at a source position, without
// duplicates.
func (sm *SourceMap) CandidateNarrowestScopesAt(source, line, column int) []*Scope {
	return sm.candidateScopes(sm.CandidateMappingsAt(source, line, column))
}

// CandidateNarrowestScopesAtInSection is CandidateNarrowestScopesAt for a
// section-relative source index.
func (sm *SourceMap) CandidateNarrowestScopesAtInSection(section, source, line, column int) []*Scope {
	return sm.candidateScopes(sm.CandidateMappingsAtInSection(section, source, line, column))
}

func (sm *SourceMap) candidateScopes(mappings []*Mapping) []*Scope {
	out := []*Scope{}
	seen := make(map[int]bool)
	for _, m := range mappings {
		if s, ok := sm.NarrowestScopeAt(m.GeneratedLine, m.GeneratedColumn); ok && !seen[s.Index] {
			seen[s.Index] = true
			out = append(out, s)
		}
	}
	return out
}

// Locals returns every local in decode order.
func (sm *SourceMap) Locals() []*Local { return clone(sm.locals) }

// LocalsInSection returns the locals of one section.
func (sm *SourceMap) LocalsInSection(section int) []*Local {
	s, ok := sm.Section(section)
	if !ok {
		return []*Local{}
	}
	return window(sm.locals, s.Base.Locals, s.Count.Locals)
}

// Local returns a local by global index.
func (sm *SourceMap) Local(local int) (*Local, bool) { return lookup(sm.locals, local) }

// LocalInSection returns a local by section-relative index.
func (sm *SourceMap) LocalInSection(section, local int) (*Local, bool) {
	return lookupInSection(sm, sm.locals, section, local, localsSpace)
}

// LocalsOf returns the locals declared directly in a scope.
func (sm *SourceMap) LocalsOf(scope *Scope) []*Local {
	out := make([]*Local, 0, len(scope.Locals))
	for _, i := range scope.Locals {
		out = append(out, sm.locals[i])
	}
	return out
}

// LocalAt resolves a variable name at a generated position. Only the locals
// declared directly in the narrowest scope are searched.
func (sm *SourceMap) LocalAt(line, column int, name string, side NameSide) (*Local, bool) {
	scope, ok := sm.NarrowestScopeAt(line, column)
	if !ok {
		return nil, false
	}
	return sm.localIn(scope, name, side)
}

// LocalAtInSection is LocalAt for section-relative coordinates.
func (sm *SourceMap) LocalAtInSection(section, line, column int, name string, side NameSide) (*Local, bool) {
	scope, ok := sm.NarrowestScopeAtInSection(section, line, column)
	if !ok {
		return nil, false
	}
	return sm.localIn(scope, name, side)
}

func (sm *SourceMap) localIn(scope *Scope, name string, side NameSide) (*Local, bool) {
	for _, i := range scope.Locals {
		l := sm.locals[i]
		if n := l.name(side); n != nil && n.Text == name {
			return l, true
		}
	}
	return nil, false
}

// CandidateLocalsAt resolves a variable name at the generated position of
// every mapping that points at a source position, without duplicates.
func (sm *SourceMap) CandidateLocalsAt(source, line, column int, name string, side NameSide) []*Local {
	return sm.candidateLocals(sm.CandidateMappingsAt(source, line, column), name, side)
}

// CandidateLocalsAtInSection is CandidateLocalsAt for a section-relative
// source index.
func (sm *SourceMap) CandidateLocalsAtInSection(section, source, line, column int, name string, side NameSide) []*Local {
	return sm.candidateLocals(sm.CandidateMappingsAtInSection(section, source, line, column), name, side)
}

func (sm *SourceMap) candidateLocals(mappings []*Mapping, name string, side NameSide) []*Local {
	out := []*Local{}
	seen := make(map[int]bool)
	for _, m := range mappings {
		if l, ok := sm.LocalAt(m.GeneratedLine, m.GeneratedColumn, name, side); ok && !seen[l.Index] {
			seen[l.Index] = true
			out = append(out, l)
		}
	}
	return out
}

// MediaTypes returns the x_ms_mediaTypes tables of every section,
// concatenated.
func (sm *SourceMap) MediaTypes() []string {
	out := []string{}
	for i := range sm.data {
		out = append(out, sm.MediaTypesInSection(i)...)
	}
	return out
}

// MediaTypesInSection returns the x_ms_mediaTypes table of one section.
func (sm *SourceMap) MediaTypesInSection(section int) []string {
	if section < 0 || section >= len(sm.data) || sm.data[section].doc == nil {
		return []string{}
	}
	return append([]string{}, sm.data[section].doc.MediaTypes...)
}
