// Package sourcemap decodes version 3 source maps, index maps included, with
// the x_ms_scopes, x_ms_locals and x_ms_mediaTypes extensions into a
// queryable index.
//
// Every record lives in a global index space that concatenates the spaces of
// all sections in document order. Section-relative indices are translated
// with the section's Base offsets.
package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yousuf/mapindex/internal/host"
	"github.com/yousuf/mapindex/internal/jsonc"
)

// Host loads documents and resolves references between them.
type Host interface {
	ReadText(locator string) (string, error)
	Resolve(base, rel string) string
}

// Options bound and tune a decode.
type Options struct {
	// Strict makes a malformed section stream or an unloadable section fail
	// the whole decode.
	Strict bool
	// MaxSections rejects index maps with more sections. Zero means no limit.
	MaxSections int
	// MaxDocumentBytes rejects larger root or section documents. Zero means
	// no limit.
	MaxDocumentBytes int
}

// Decoder decodes source maps read through a Host.
type Decoder struct {
	host   Host
	logger logrus.FieldLogger
	opts   Options
}

// NewDecoder returns a decoder.
func NewDecoder(h Host, logger logrus.FieldLogger, opts Options) *Decoder {
	return &Decoder{host: h, logger: logger, opts: opts}
}

// Decode reads and decodes the map at mapFile.
func (d *Decoder) Decode(mapFile string) (*SourceMap, error) {
	text, err := d.host.ReadText(mapFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read source map: %w", err)
	}
	return d.DecodeText(mapFile, text)
}

// DecodeText decodes text as the map located at mapFile. mapFile is used to
// resolve relative references.
func (d *Decoder) DecodeText(mapFile, text string) (*SourceMap, error) {
	if err := d.checkSize(mapFile, text); err != nil {
		return nil, err
	}

	abs, err := host.Absolute(mapFile)
	if err != nil {
		return nil, err
	}

	logger := d.logger.WithField("map", mapFile)
	logger.Debug("Decoding source map")

	sm := &SourceMap{
		host:    d.host,
		logger:  logger,
		mapFile: mapFile,
		mapRoot: host.Dir(abs),
		content: text,
	}
	b := &builder{Decoder: d, sm: sm, logger: logger}

	stripped := jsonc.Strip(text)
	if isIndexMap(stripped) {
		err = b.decodeIndexMap(stripped)
	} else {
		err = b.decodeFlatMap(stripped)
	}
	if err != nil {
		return nil, err
	}

	sm.finalize()
	logger.WithFields(logrus.Fields{
		"sections": len(sm.sections),
		"sources":  len(sm.sources),
		"names":    len(sm.names),
		"mappings": len(sm.mappings),
		"scopes":   len(sm.scopes),
		"locals":   len(sm.locals),
	}).Debug("Decoded source map")
	return sm, nil
}

func (d *Decoder) checkSize(locator, text string) error {
	if d.opts.MaxDocumentBytes > 0 && len(text) > d.opts.MaxDocumentBytes {
		return fmt.Errorf("%w: %q is %d bytes, the limit is %d",
			ErrLimitExceeded, locator, len(text), d.opts.MaxDocumentBytes)
	}
	return nil
}

// builder carries the running state of one decode.
type builder struct {
	*Decoder
	sm     *SourceMap
	logger logrus.FieldLogger
	next   Offsets
}

func (b *builder) decodeFlatMap(stripped string) error {
	var doc Document
	if err := unmarshal(b.sm.mapFile, stripped, &doc); err != nil {
		return err
	}

	b.sm.generatedFile = b.generatedFileOf(&doc)
	section := &Section{GeneratedFile: b.sm.generatedFile}
	return b.addSection(section, &doc, b.sm.content, b.sm.mapRoot)
}

func (b *builder) decodeIndexMap(stripped string) error {
	var index IndexDocument
	if err := unmarshal(b.sm.mapFile, stripped, &index); err != nil {
		return err
	}
	if b.opts.MaxSections > 0 && len(index.Sections) > b.opts.MaxSections {
		return fmt.Errorf("%w: %q has %d sections, the limit is %d",
			ErrLimitExceeded, b.sm.mapFile, len(index.Sections), b.opts.MaxSections)
	}

	b.sm.index = &index
	if index.File != "" {
		b.sm.generatedFile = b.host.Resolve(b.sm.mapRoot, index.File)
	} else {
		b.sm.generatedFile = defaultGeneratedFile(b.sm.mapFile)
	}

	for i, entry := range index.Sections {
		section := &Section{
			Index:           i,
			GeneratedLine:   entry.Offset.Line,
			GeneratedColumn: entry.Offset.Column,
		}

		doc, content, root, err := b.loadSection(section, entry)
		if err != nil {
			section.Err = &SectionError{Section: i, URL: section.URL, Err: err}
			if b.opts.Strict {
				return section.Err
			}
			b.logger.WithError(err).WithField("section", i).Warn("Skipping index map section")
			doc = nil
		}
		if err := b.addSection(section, doc, content, root); err != nil {
			return err
		}
	}
	return nil
}

// loadSection returns the document of an index map section, its text and the
// directory its relative references resolve against.
func (b *builder) loadSection(section *Section, entry IndexSection) (*Document, string, string, error) {
	if len(entry.Map) > 0 && string(entry.Map) != "null" {
		content := string(entry.Map)
		if isIndexMap(content) {
			return nil, content, b.sm.mapRoot, errNestedIndexMap
		}
		var doc Document
		if err := json.Unmarshal(entry.Map, &doc); err != nil {
			return nil, content, b.sm.mapRoot, &MalformedDocumentError{Locator: b.sm.mapFile, Offset: -1, Err: err}
		}
		section.GeneratedFile = b.generatedFileOf(&doc)
		return &doc, content, b.sm.mapRoot, nil
	}

	if entry.URL == "" {
		return nil, "", b.sm.mapRoot, errors.New("section has neither map nor url")
	}

	section.URL = b.host.Resolve(b.sm.mapRoot, entry.URL)
	content, err := b.host.ReadText(section.URL)
	if err != nil {
		return nil, "", b.sm.mapRoot, err
	}
	if err := b.checkSize(section.URL, content); err != nil {
		return nil, content, b.sm.mapRoot, err
	}

	root := host.Dir(section.URL)
	doc, err := parseSectionDocument(section.URL, content)
	if err != nil {
		return nil, content, root, err
	}
	if doc.File != "" {
		section.GeneratedFile = b.host.Resolve(root, doc.File)
	}
	return doc, content, root, nil
}

func (b *builder) generatedFileOf(doc *Document) string {
	if doc.File == "" {
		return defaultGeneratedFile(b.sm.mapFile)
	}
	return b.host.Resolve(b.sm.mapRoot, doc.File)
}

// defaultGeneratedFile guesses the generated file of a map that names none,
// following the app.js.map naming convention.
func defaultGeneratedFile(mapFile string) string {
	if abs, err := host.Absolute(mapFile); err == nil && strings.HasSuffix(abs, ".map") {
		return strings.TrimSuffix(abs, ".map")
	}
	return ""
}

// addSection assigns base offsets, materialises names and sources, and
// decodes the section streams. A nil doc adds an empty section.
func (b *builder) addSection(section *Section, doc *Document, content, root string) error {
	section.Base = b.next
	sd := &sectionData{doc: doc, content: content}
	b.sm.sections = append(b.sm.sections, section)
	b.sm.data = append(b.sm.data, sd)

	if doc != nil {
		names := b.addNames(section, doc)
		sources := b.addSources(section, doc, root)

		if err := b.decodeStreams(section, sd, doc, names, sources); err != nil {
			if b.opts.Strict {
				return err
			}
			section.Err = err
			b.logger.WithError(err).WithField("section", section.Index).
				Warn("Dropping malformed section streams")
		}
	}

	section.Count = Offsets{
		Names:    len(b.sm.names) - section.Base.Names,
		Sources:  len(b.sm.sources) - section.Base.Sources,
		Mappings: len(b.sm.mappings) - section.Base.Mappings,
		Scopes:   len(b.sm.scopes) - section.Base.Scopes,
		Locals:   len(b.sm.locals) - section.Base.Locals,
	}
	b.next = b.next.add(section.Count)
	return nil
}

func (b *builder) addNames(section *Section, doc *Document) []*Name {
	names := make([]*Name, len(doc.Names))
	for i, text := range doc.Names {
		names[i] = &Name{
			Index:        section.Base.Names + i,
			Section:      section.Index,
			SectionIndex: i,
			Text:         text,
		}
	}
	b.sm.names = append(b.sm.names, names...)
	return names
}

func (b *builder) addSources(section *Section, doc *Document, root string) []*Source {
	sources := make([]*Source, len(doc.Sources))
	for i, url := range doc.Sources {
		if _, embedded := doc.embeddedContent(i); !embedded {
			if doc.SourceRoot != "" {
				url = b.host.Resolve(doc.SourceRoot, url)
			}
			url = b.host.Resolve(root, url)
		}
		sources[i] = &Source{
			Index:        section.Base.Sources + i,
			Section:      section.Index,
			SectionIndex: i,
			URL:          url,
		}
	}
	b.sm.sources = append(b.sm.sources, sources...)
	return sources
}

// decodeStreams decodes the mappings, scopes, locals and media types of a
// section. Nothing is committed unless all of them decode.
func (b *builder) decodeStreams(section *Section, sd *sectionData, doc *Document, names []*Name, sources []*Source) error {
	mappings, err := decodeMappings(section, doc.Mappings, names, sources)
	if err != nil {
		return err
	}
	scopes, err := decodeScopes(section, doc.Scopes)
	if err != nil {
		return err
	}
	locals, err := decodeLocals(section, doc.Locals, names, scopes)
	if err != nil {
		return err
	}
	mediaTypes, err := decodeMediaTypes(section, doc)
	if err != nil {
		return err
	}

	b.sm.commitMappings(sd, mappings)
	b.sm.scopes = append(b.sm.scopes, scopes...)
	b.sm.locals = append(b.sm.locals, locals...)
	for i, mediaType := range mediaTypes {
		sources[i].MediaType = mediaType
	}
	return nil
}

// unmarshal parses comment-stripped text into v.
func unmarshal(locator, stripped string, v any) error {
	if err := json.Unmarshal([]byte(stripped), v); err != nil {
		offset := int64(-1)
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		return &MalformedDocumentError{Locator: locator, Offset: offset, Err: err}
	}
	return nil
}

func at[T any](table []*T, i int) *T {
	if i < 0 || i >= len(table) {
		return nil
	}
	return table[i]
}
