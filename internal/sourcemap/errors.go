package sourcemap

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded is wrapped by decode errors caused by Options limits.
var ErrLimitExceeded = errors.New("decode limit exceeded")

// MalformedDocumentError is returned when a map document cannot be parsed as
// JSON after comments are removed. It aborts the decode.
type MalformedDocumentError struct {
	Locator string
	// Offset is the byte offset of the syntax error in the comment-stripped
	// text, or -1 when unknown.
	Offset int64
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("malformed source map %q at offset %d: %v", e.Locator, e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed source map %q: %v", e.Locator, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// streamError holds what the malformed stream errors share.
type streamError struct {
	// Section is the index of the section whose stream failed.
	Section int
	// Offset is the byte offset in the stream where decoding failed.
	Offset int
	Reason string
	// Err is the underlying cause, usually a *vlq.DecodeError.
	Err error
}

func (e *streamError) format(stream string) string {
	msg := fmt.Sprintf("section %d: malformed %s at offset %d: %s", e.Section, stream, e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// MalformedMappingError reports a mappings stream that violates its grammar.
type MalformedMappingError struct{ streamError }

func (e *MalformedMappingError) Error() string { return e.format("mappings") }
func (e *MalformedMappingError) Unwrap() error { return e.Err }

// MalformedScopeError reports an x_ms_scopes stream that violates its grammar
// or leaves the scope tree unbalanced.
type MalformedScopeError struct{ streamError }

func (e *MalformedScopeError) Error() string { return e.format("x_ms_scopes") }
func (e *MalformedScopeError) Unwrap() error { return e.Err }

// MalformedLocalsError reports an x_ms_locals stream that violates its grammar.
type MalformedLocalsError struct{ streamError }

func (e *MalformedLocalsError) Error() string { return e.format("x_ms_locals") }
func (e *MalformedLocalsError) Unwrap() error { return e.Err }

// MalformedMediaTypesError reports an undecodable x_ms_sourceMediaTypes stream.
type MalformedMediaTypesError struct{ streamError }

func (e *MalformedMediaTypesError) Error() string { return e.format("x_ms_sourceMediaTypes") }
func (e *MalformedMediaTypesError) Unwrap() error { return e.Err }

// UnresolvedReferenceError reports an index outside the bounds of its table.
type UnresolvedReferenceError struct {
	Kind  string
	Index int
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s %d is out of range", e.Kind, e.Index)
}

// ContentUnavailableError is returned when the text of a source or generated
// file cannot be loaded.
type ContentUnavailableError struct {
	Locator string
	Err     error
}

func (e *ContentUnavailableError) Error() string {
	return fmt.Sprintf("content of %q is unavailable: %v", e.Locator, e.Err)
}

func (e *ContentUnavailableError) Unwrap() error { return e.Err }

// SectionError reports why an index map section contributed nothing.
type SectionError struct {
	Section int
	URL     string
	Err     error
}

func (e *SectionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("section %d (%s): %v", e.Section, e.URL, e.Err)
	}
	return fmt.Sprintf("section %d: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }
