package server

import (
	"github.com/yousuf/mapindex/internal/sourcemap"
)

// The views below are the wire shapes of tool results. They carry yaml tags
// too since the CLI prints the same shapes.

// SectionView describes one section of a decoded map.
type SectionView struct {
	Index         int                `json:"index" yaml:"index"`
	Offset        sourcemap.Position `json:"offset" yaml:"offset"`
	URL           string             `json:"url,omitempty" yaml:"url,omitempty"`
	GeneratedFile string             `json:"generatedFile,omitempty" yaml:"generatedFile,omitempty"`
	Base          sourcemap.Offsets  `json:"base" yaml:"base"`
	Count         sourcemap.Offsets  `json:"count" yaml:"count"`
	Error         string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// SourceView describes one source.
type SourceView struct {
	Index     int    `json:"index" yaml:"index"`
	Section   int    `json:"section" yaml:"section"`
	URL       string `json:"url" yaml:"url"`
	MediaType string `json:"mediaType,omitempty" yaml:"mediaType,omitempty"`
}

// MapSummary is the result of decode_source_map.
type MapSummary struct {
	Map           string        `json:"map" yaml:"map"`
	GeneratedFile string        `json:"generatedFile,omitempty" yaml:"generatedFile,omitempty"`
	IndexMap      bool          `json:"indexMap" yaml:"indexMap"`
	Sections      []SectionView `json:"sections" yaml:"sections"`
	Sources       []SourceView  `json:"sources" yaml:"sources"`
	Names         int           `json:"names" yaml:"names"`
	Mappings      int           `json:"mappings" yaml:"mappings"`
	Scopes        int           `json:"scopes" yaml:"scopes"`
	Locals        int           `json:"locals" yaml:"locals"`
}

// MappingView describes one mapping.
type MappingView struct {
	Index     int                 `json:"index" yaml:"index"`
	Section   int                 `json:"section" yaml:"section"`
	Generated sourcemap.Position  `json:"generated" yaml:"generated"`
	Source    string              `json:"source,omitempty" yaml:"source,omitempty"`
	Original  *sourcemap.Position `json:"original,omitempty" yaml:"original,omitempty"`
	Name      string              `json:"name,omitempty" yaml:"name,omitempty"`
}

// LocalView describes one local binding.
type LocalView struct {
	Index         int    `json:"index" yaml:"index"`
	GeneratedName string `json:"generatedName,omitempty" yaml:"generatedName,omitempty"`
	SourceName    string `json:"sourceName,omitempty" yaml:"sourceName,omitempty"`
	Hidden        bool   `json:"hidden" yaml:"hidden"`
	Renamed       bool   `json:"renamed" yaml:"renamed"`
}

// ScopeView describes one scope with the locals it declares.
type ScopeView struct {
	Index   int                `json:"index" yaml:"index"`
	Section int                `json:"section" yaml:"section"`
	Start   sourcemap.Position `json:"start" yaml:"start"`
	End     sourcemap.Position `json:"end" yaml:"end"`
	Locals  []LocalView        `json:"locals" yaml:"locals"`
}

// Summarize describes a decoded map.
func Summarize(sm *sourcemap.SourceMap) MapSummary {
	summary := MapSummary{
		Map:           sm.MapFile(),
		GeneratedFile: sm.GeneratedFileURL(),
		IndexMap:      sm.IsIndexMap(),
		Sections:      []SectionView{},
		Sources:       []SourceView{},
		Names:         len(sm.Names()),
		Mappings:      len(sm.Mappings()),
		Scopes:        len(sm.Scopes()),
		Locals:        len(sm.Locals()),
	}
	for _, s := range sm.Sections() {
		view := SectionView{
			Index:         s.Index,
			Offset:        sourcemap.Position{Line: s.GeneratedLine, Column: s.GeneratedColumn},
			URL:           s.URL,
			GeneratedFile: s.GeneratedFile,
			Base:          s.Base,
			Count:         s.Count,
		}
		if s.Err != nil {
			view.Error = s.Err.Error()
		}
		summary.Sections = append(summary.Sections, view)
	}
	for _, src := range sm.Sources() {
		summary.Sources = append(summary.Sources, SourceView{
			Index:     src.Index,
			Section:   src.Section,
			URL:       src.URL,
			MediaType: src.MediaType,
		})
	}
	return summary
}

// DescribeMapping describes m.
func DescribeMapping(m *sourcemap.Mapping) MappingView {
	view := MappingView{Index: m.Index, Section: m.Section, Generated: m.Generated()}
	if m.Source != nil {
		view.Source = m.Source.URL
		original := m.Original()
		view.Original = &original
	}
	if m.Name != nil {
		view.Name = m.Name.Text
	}
	return view
}

// DescribeMappings describes every mapping of ms.
func DescribeMappings(ms []*sourcemap.Mapping) []MappingView {
	out := make([]MappingView, len(ms))
	for i, m := range ms {
		out[i] = DescribeMapping(m)
	}
	return out
}

// DescribeLocal describes l.
func DescribeLocal(l *sourcemap.Local) LocalView {
	view := LocalView{Index: l.Index, Hidden: l.IsHidden, Renamed: l.IsRenamed}
	if l.GeneratedName != nil {
		view.GeneratedName = l.GeneratedName.Text
	}
	if l.SourceName != nil {
		view.SourceName = l.SourceName.Text
	}
	return view
}

// DescribeScopeChain describes s and its ancestors, innermost first.
func DescribeScopeChain(sm *sourcemap.SourceMap, s *sourcemap.Scope) []ScopeView {
	chain := []ScopeView{}
	for s != nil {
		view := ScopeView{Index: s.Index, Section: s.Section, Start: s.Start, End: s.End, Locals: []LocalView{}}
		for _, l := range sm.LocalsOf(s) {
			view.Locals = append(view.Locals, DescribeLocal(l))
		}
		chain = append(chain, view)

		parent, ok := sm.Scope(s.Parent)
		if !ok {
			break
		}
		s = parent
	}
	return chain
}
