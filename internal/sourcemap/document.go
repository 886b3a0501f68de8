package sourcemap

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/yousuf/mapindex/internal/jsonc"
)

// Document is a flat version 3 source map with the x_ms extensions.
type Document struct {
	Version        int       `json:"version"`
	File           string    `json:"file,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names,omitempty"`
	Mappings       string    `json:"mappings"`

	Scopes           string   `json:"x_ms_scopes,omitempty"`
	Locals           string   `json:"x_ms_locals,omitempty"`
	MediaTypes       []string `json:"x_ms_mediaTypes,omitempty"`
	SourceMediaTypes string   `json:"x_ms_sourceMediaTypes,omitempty"`
}

// embeddedContent returns the sourcesContent entry for a section-relative
// source index.
func (d *Document) embeddedContent(i int) (string, bool) {
	if i < 0 || i >= len(d.SourcesContent) || d.SourcesContent[i] == nil {
		return "", false
	}
	return *d.SourcesContent[i], true
}

// IndexDocument is an index map.
type IndexDocument struct {
	Version  int            `json:"version"`
	File     string         `json:"file,omitempty"`
	Sections []IndexSection `json:"sections"`
}

// IndexSection places a sub-map, given inline or by url, at an offset.
type IndexSection struct {
	Offset SectionOffset   `json:"offset"`
	URL    string          `json:"url,omitempty"`
	Map    json.RawMessage `json:"map,omitempty"`
}

// SectionOffset is where a section's generated output begins.
type SectionOffset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

var errNestedIndexMap = errors.New("index map sections cannot contain index maps")

// isIndexMap reports whether the JSON object in text has a sections member.
func isIndexMap(text string) bool {
	return gjson.Get(text, "sections").Exists()
}

// parseSectionDocument parses a flat map used as an index map section.
func parseSectionDocument(locator, text string) (*Document, error) {
	stripped := jsonc.Strip(text)
	if isIndexMap(stripped) {
		return nil, errNestedIndexMap
	}
	var doc Document
	if err := unmarshal(locator, stripped, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
