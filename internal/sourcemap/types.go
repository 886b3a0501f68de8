package sourcemap

import "fmt"

// Position is a zero-based line and column. Columns count UTF-16 code units.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Compare orders positions by line, then column.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Column < o.Column:
		return -1
	case p.Column > o.Column:
		return 1
	}
	return 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Offsets holds one count per global index space.
type Offsets struct {
	Names    int `json:"names" yaml:"names"`
	Sources  int `json:"sources" yaml:"sources"`
	Mappings int `json:"mappings" yaml:"mappings"`
	Scopes   int `json:"scopes" yaml:"scopes"`
	Locals   int `json:"locals" yaml:"locals"`
}

func (o Offsets) add(c Offsets) Offsets {
	return Offsets{
		Names:    o.Names + c.Names,
		Sources:  o.Sources + c.Sources,
		Mappings: o.Mappings + c.Mappings,
		Scopes:   o.Scopes + c.Scopes,
		Locals:   o.Locals + c.Locals,
	}
}

// Section is one physical source map and where its output starts.
type Section struct {
	Index           int
	GeneratedLine   int
	GeneratedColumn int
	// GeneratedFile is the resolved file the section's map describes.
	GeneratedFile string
	// URL is the resolved locator of a section loaded by reference, empty
	// for inline sections.
	URL string
	// Base is the global index of the section's first record in each space.
	Base Offsets
	// Count is the number of records the section contributes to each space.
	Count Offsets
	// Err is set when the section failed to load or one of its streams was
	// malformed. Such a section contributes no mappings, scopes or locals.
	Err error
}

// ToAbsolute converts a section-relative generated position into a document
// position. The column offset applies to the section's first line only.
func (s *Section) ToAbsolute(line, column int) Position {
	if line == 0 {
		return Position{Line: s.GeneratedLine, Column: s.GeneratedColumn + column}
	}
	return Position{Line: s.GeneratedLine + line, Column: column}
}

// Name is an entry of a map's names table.
type Name struct {
	Index        int
	Section      int
	SectionIndex int
	Text         string
}

// Source is an original file referenced by a map.
type Source struct {
	Index        int
	Section      int
	SectionIndex int
	// URL is the source as written when its content is embedded, otherwise
	// it is resolved against sourceRoot and the map's directory.
	URL       string
	MediaType string
}

// Mapping links a generated position to an optional source position.
type Mapping struct {
	Index        int
	Section      int
	SectionIndex int

	GeneratedLine          int
	GeneratedColumn        int
	SectionGeneratedLine   int
	SectionGeneratedColumn int
	GeneratedColumnDelta   int

	// HasSource is set for four and five field segments. Source is nil when
	// the encoded index is outside the section's sources.
	HasSource    bool
	Source       *Source
	SourceLine   int
	SourceColumn int
	Name         *Name
}

// Generated returns the absolute generated position.
func (m *Mapping) Generated() Position {
	return Position{Line: m.GeneratedLine, Column: m.GeneratedColumn}
}

// Original returns the source position. It is only meaningful when
// HasSource is set.
func (m *Mapping) Original() Position {
	return Position{Line: m.SourceLine, Column: m.SourceColumn}
}

// Scope is a lexical region of the generated output. Parent, Nested and
// Locals hold global indices.
type Scope struct {
	Index        int
	Section      int
	SectionIndex int
	// Parent is -1 for a top level scope.
	Parent int
	Nested []int
	Locals []int

	Start        Position
	End          Position
	SectionStart Position
	SectionEnd   Position
}

// Contains reports whether p lies within the scope, both ends inclusive.
func (s *Scope) Contains(p Position) bool {
	return s.Start.Compare(p) <= 0 && p.Compare(s.End) <= 0
}

// Local is a variable binding declared in a scope.
type Local struct {
	Index        int
	Section      int
	SectionIndex int
	Scope        int
	// GeneratedName is nil when the encoded index is outside the names
	// table.
	GeneratedName *Name
	SourceName    *Name
	IsHidden      bool
	IsRenamed     bool
}

// NameSide selects which name of a local a query matches.
type NameSide int

const (
	GeneratedName NameSide = iota
	SourceName
)

func (l *Local) name(side NameSide) *Name {
	if side == SourceName {
		return l.SourceName
	}
	return l.GeneratedName
}
