package sourcemap

import (
	"fmt"

	"github.com/yousuf/mapindex/internal/vlq"
)

// decodeMappings decodes a mappings stream. names and sources are the
// section's own tables.
//
// A segment has 1, 4 or 5 fields. The generated column restarts at zero on
// every line, the other fields are running deltas over the whole section.
func decodeMappings(section *Section, text string, names []*Name, sources []*Source) ([]*Mapping, error) {
	var (
		mappings []*Mapping
		segment  []int
		err      error
	)
	var line, column int
	var source, sourceLine, sourceCol, name int

	start := 0
	for pos := 0; pos <= len(text); pos++ {
		if pos < len(text) && text[pos] != ',' && text[pos] != ';' {
			continue
		}

		if pos > start {
			segment, err = vlq.AppendRange(segment[:0], text, start, pos)
			if err != nil {
				return nil, &MalformedMappingError{streamError{
					Section: section.Index, Offset: start, Reason: "invalid segment", Err: err,
				}}
			}
			if n := len(segment); n != 1 && n != 4 && n != 5 {
				return nil, &MalformedMappingError{streamError{
					Section: section.Index, Offset: start, Reason: fmt.Sprintf("segment has %d fields", n),
				}}
			}

			column += segment[0]
			generated := section.ToAbsolute(line, column)
			m := &Mapping{
				Index:                  section.Base.Mappings + len(mappings),
				Section:                section.Index,
				SectionIndex:           len(mappings),
				GeneratedLine:          generated.Line,
				GeneratedColumn:        generated.Column,
				SectionGeneratedLine:   line,
				SectionGeneratedColumn: column,
				GeneratedColumnDelta:   segment[0],
			}

			if len(segment) >= 4 {
				source += segment[1]
				sourceLine += segment[2]
				sourceCol += segment[3]
				m.HasSource = true
				m.Source = at(sources, source)
				m.SourceLine = sourceLine
				m.SourceColumn = sourceCol
			}
			if len(segment) == 5 {
				name += segment[4]
				m.Name = at(names, name)
			}
			mappings = append(mappings, m)
		}

		start = pos + 1
		if pos < len(text) && text[pos] == ';' {
			line++
			column = 0
		}
	}
	return mappings, nil
}

type sourceLineKey struct {
	source, line int
}

// commitMappings adds a section's mappings to the global table and the line
// caches.
func (sm *SourceMap) commitMappings(sd *sectionData, mappings []*Mapping) {
	if sm.byGeneratedLine == nil {
		sm.byGeneratedLine = make(map[int][]*Mapping)
		sm.bySourceLine = make(map[sourceLineKey][]*Mapping)
	}
	if len(mappings) > 0 {
		sd.lines = make(map[int][]*Mapping)
	}

	for _, m := range mappings {
		sm.byGeneratedLine[m.GeneratedLine] = append(sm.byGeneratedLine[m.GeneratedLine], m)
		sd.lines[m.SectionGeneratedLine] = append(sd.lines[m.SectionGeneratedLine], m)
		if m.Source != nil {
			key := sourceLineKey{source: m.Source.Index, line: m.SourceLine}
			sm.bySourceLine[key] = append(sm.bySourceLine[key], m)
		}
	}
	sm.mappings = append(sm.mappings, mappings...)
}

func compareGeneratedColumn(a, b *Mapping) int {
	return a.GeneratedColumn - b.GeneratedColumn
}

func compareSourceColumn(a, b *Mapping) int {
	return a.SourceColumn - b.SourceColumn
}
