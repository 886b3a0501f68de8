package sourcemap

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
)

// ErrUnknownFile is returned by FileAt for a locator that is neither the
// generated file nor a source of the map.
var ErrUnknownFile = errors.New("file is not part of the source map")

// File is the text of a generated or source file split into lines and
// segments.
type File struct {
	URL     string
	Content string
	// Source is nil for the generated file.
	Source *Source
	Lines  []FileLine
}

// FileLine is one line of a File.
type FileLine struct {
	Line     int
	Text     string
	Segments []Segment
}

// Segment is a run of columns starting at column zero or at a column with
// mappings. EndColumn is exclusive.
type Segment struct {
	Line        int
	StartColumn int
	EndColumn   int
	Text        string
	// Mappings start at StartColumn. On the source side several sections
	// may map the same column.
	Mappings []*Mapping
}

// GeneratedFile returns the generated file with a segment boundary at every
// mapped column.
func (sm *SourceMap) GeneratedFile() (*File, error) {
	return sm.generatedView.get(func() (*File, error) {
		content, err := sm.GeneratedContent()
		if err != nil {
			return nil, err
		}
		f := project(content, func(line int) []*Mapping { return sm.byGeneratedLine[line] },
			func(m *Mapping) int { return m.GeneratedColumn })
		f.URL = sm.generatedFile
		return f, nil
	})
}

// SourceFile returns a source file with a segment boundary at every column
// some mapping points at.
func (sm *SourceMap) SourceFile(source int) (*File, error) {
	if source < 0 || source >= len(sm.sources) {
		return nil, &UnresolvedReferenceError{Kind: "source", Index: source}
	}
	return sm.sourceViews[source].get(func() (*File, error) {
		content, err := sm.SourceContent(source)
		if err != nil {
			return nil, err
		}
		f := project(content, func(line int) []*Mapping {
			return sm.bySourceLine[sourceLineKey{source: source, line: line}]
		}, func(m *Mapping) int { return m.SourceColumn })
		f.URL = sm.sources[source].URL
		f.Source = sm.sources[source]
		return f, nil
	})
}

// SourceFileInSection is SourceFile for a section-relative index.
func (sm *SourceMap) SourceFileInSection(section, source int) (*File, error) {
	src, ok := sm.SourceInSection(section, source)
	if !ok {
		return nil, &UnresolvedReferenceError{Kind: "source", Index: source}
	}
	return sm.SourceFile(src.Index)
}

// SourceFiles returns the files of all sources whose content is available.
func (sm *SourceMap) SourceFiles() []*File {
	return sm.sourceFiles(sm.sources)
}

// SourceFilesInSection returns the files of a section's sources whose
// content is available.
func (sm *SourceMap) SourceFilesInSection(section int) []*File {
	return sm.sourceFiles(sm.SourcesInSection(section))
}

func (sm *SourceMap) sourceFiles(sources []*Source) []*File {
	out := []*File{}
	for _, src := range sources {
		if f, err := sm.SourceFile(src.Index); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// FileAt returns the projection of the file at locator, which is matched
// against the generated file and the source URLs, first as given and then
// resolved against the map's directory.
func (sm *SourceMap) FileAt(locator string) (*File, error) {
	for _, candidate := range sm.candidates(locator) {
		if candidate == sm.generatedFile && candidate != "" {
			return sm.GeneratedFile()
		}
	}
	if src, ok := sm.SourceByURL(locator); ok {
		return sm.SourceFile(src.Index)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFile, locator)
}

// SourceByURL returns the first source whose URL is locator, as given or
// resolved against the map's directory.
func (sm *SourceMap) SourceByURL(locator string) (*Source, bool) {
	for _, candidate := range sm.candidates(locator) {
		for _, src := range sm.sources {
			if src.URL == candidate {
				return src, true
			}
		}
	}
	return nil, false
}

func (sm *SourceMap) candidates(locator string) []string {
	return []string{locator, sm.host.Resolve(sm.mapRoot, locator)}
}

// project splits content into lines and segments. mappingsAt returns the
// mappings of a line ordered by the column col reads.
func project(content string, mappingsAt func(line int) []*Mapping, col func(*Mapping) int) *File {
	texts := splitLines(content)
	f := &File{Content: content, Lines: make([]FileLine, len(texts))}
	for n, text := range texts {
		f.Lines[n] = FileLine{Line: n, Text: text, Segments: segmentLine(n, text, mappingsAt(n), col)}
	}
	return f
}

func segmentLine(line int, text string, mappings []*Mapping, col func(*Mapping) int) []Segment {
	units := utf16.Encode([]rune(text))
	if len(units) == 0 {
		return nil
	}

	segments := []Segment{{Line: line}}
	for _, m := range mappings {
		c := col(m)
		if c < 0 || c >= len(units) {
			continue
		}
		last := &segments[len(segments)-1]
		if c == last.StartColumn {
			last.Mappings = append(last.Mappings, m)
			continue
		}
		segments = append(segments, Segment{Line: line, StartColumn: c, Mappings: []*Mapping{m}})
	}

	for i := range segments {
		end := len(units)
		if i+1 < len(segments) {
			end = segments[i+1].StartColumn
		}
		segments[i].EndColumn = end
		segments[i].Text = string(utf16.Decode(units[segments[i].StartColumn:end]))
	}
	return segments
}

// splitLines splits on \r\n, \r and \n.
func splitLines(s string) []string {
	var lines []string
	for {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			return append(lines, s)
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
}
