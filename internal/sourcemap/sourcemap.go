package sourcemap

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// SourceMap is a decoded source map. It is safe for concurrent use; the
// tables never change after decode and derived views are computed once.
type SourceMap struct {
	host   Host
	logger logrus.FieldLogger

	mapFile       string
	mapRoot       string
	generatedFile string
	content       string
	index         *IndexDocument

	sections []*Section
	data     []*sectionData
	names    []*Name
	sources  []*Source
	mappings []*Mapping
	scopes   []*Scope
	locals   []*Local

	byGeneratedLine map[int][]*Mapping
	bySourceLine    map[sourceLineKey][]*Mapping

	generatedContent lazy[string]
	generatedView    lazy[*File]
	sourceContents   []lazy[string]
	sourceViews      []lazy[*File]
}

// sectionData is what a section keeps beside its public record.
type sectionData struct {
	doc     *Document
	content string
	// lines caches mappings by section-relative generated line.
	lines            map[int][]*Mapping
	generatedContent lazy[string]
}

type lazy[T any] struct {
	once sync.Once
	v    T
	err  error
}

func (l *lazy[T]) get(f func() (T, error)) (T, error) {
	l.once.Do(func() { l.v, l.err = f() })
	return l.v, l.err
}

func (sm *SourceMap) finalize() {
	for _, ms := range sm.byGeneratedLine {
		slices.SortStableFunc(ms, compareGeneratedColumn)
	}
	for _, sd := range sm.data {
		for _, ms := range sd.lines {
			slices.SortStableFunc(ms, compareGeneratedColumn)
		}
	}
	for _, ms := range sm.bySourceLine {
		slices.SortStableFunc(ms, compareSourceColumn)
	}
	sm.sourceContents = make([]lazy[string], len(sm.sources))
	sm.sourceViews = make([]lazy[*File], len(sm.sources))
}

// Err joins the errors of every section that failed to load or decode. It
// is nil when every section decoded.
func (sm *SourceMap) Err() error {
	var errs []error
	for _, s := range sm.sections {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}

// MapFile returns the locator the map was decoded from.
func (sm *SourceMap) MapFile() string { return sm.mapFile }

// GeneratedFileURL returns the resolved generated file of the map.
func (sm *SourceMap) GeneratedFileURL() string { return sm.generatedFile }

// IsIndexMap reports whether the map is an index map.
func (sm *SourceMap) IsIndexMap() bool { return sm.index != nil }

// IndexDocument returns the parsed index map.
func (sm *SourceMap) IndexDocument() (*IndexDocument, bool) {
	return sm.index, sm.index != nil
}

// IndexContent returns the text of an index map as read.
func (sm *SourceMap) IndexContent() (string, bool) {
	if sm.index == nil {
		return "", false
	}
	return sm.content, true
}

// Documents returns the parsed document of every section, nil for sections
// that failed to load.
func (sm *SourceMap) Documents() []*Document {
	docs := make([]*Document, len(sm.data))
	for i, sd := range sm.data {
		docs[i] = sd.doc
	}
	return docs
}

// Document returns the parsed document of a section.
func (sm *SourceMap) Document(section int) (*Document, bool) {
	if section < 0 || section >= len(sm.data) || sm.data[section].doc == nil {
		return nil, false
	}
	return sm.data[section].doc, true
}

// DocumentContent returns the text of a section's document: the whole file
// for a flat map or a url section, the inline JSON for an inline section.
func (sm *SourceMap) DocumentContent(section int) (string, bool) {
	if section < 0 || section >= len(sm.data) || sm.data[section].doc == nil {
		return "", false
	}
	return sm.data[section].content, true
}

// GeneratedContent returns the text of the generated file.
func (sm *SourceMap) GeneratedContent() (string, error) {
	return sm.generatedContent.get(func() (string, error) {
		return sm.readContent(sm.generatedFile)
	})
}

// SectionGeneratedContent returns the text of the generated file a section
// describes.
func (sm *SourceMap) SectionGeneratedContent(section int) (string, error) {
	if section < 0 || section >= len(sm.sections) {
		return "", &UnresolvedReferenceError{Kind: "section", Index: section}
	}
	if sm.index == nil {
		return sm.GeneratedContent()
	}
	return sm.data[section].generatedContent.get(func() (string, error) {
		return sm.readContent(sm.sections[section].GeneratedFile)
	})
}

// SourceContent returns the text of a source: its sourcesContent entry when
// embedded, otherwise the file read from the source URL.
func (sm *SourceMap) SourceContent(source int) (string, error) {
	if source < 0 || source >= len(sm.sources) {
		return "", &UnresolvedReferenceError{Kind: "source", Index: source}
	}
	return sm.sourceContents[source].get(func() (string, error) {
		src := sm.sources[source]
		if doc := sm.data[src.Section].doc; doc != nil {
			if text, ok := doc.embeddedContent(src.SectionIndex); ok {
				return text, nil
			}
		}
		return sm.readContent(src.URL)
	})
}

// SourceContentInSection is SourceContent for a section-relative index.
func (sm *SourceMap) SourceContentInSection(section, source int) (string, error) {
	s, ok := sm.Section(section)
	if !ok {
		return "", &UnresolvedReferenceError{Kind: "section", Index: section}
	}
	if source < 0 || source >= s.Count.Sources {
		return "", &UnresolvedReferenceError{Kind: "source", Index: source}
	}
	return sm.SourceContent(s.Base.Sources + source)
}

func (sm *SourceMap) readContent(locator string) (string, error) {
	if locator == "" {
		return "", &ContentUnavailableError{Err: errors.New("no file is named")}
	}
	text, err := sm.host.ReadText(locator)
	if err != nil {
		sm.logger.WithError(err).WithField("file", locator).Debug("Content unavailable")
		return "", &ContentUnavailableError{Locator: locator, Err: err}
	}
	return text, nil
}

func (sm *SourceMap) String() string {
	return fmt.Sprintf("sourcemap(%s: %d sections, %d mappings)", sm.mapFile, len(sm.sections), len(sm.mappings))
}
